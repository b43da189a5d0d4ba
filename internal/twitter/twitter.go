// Package twitter implements the x.com GraphQL platform behind the
// extraction engine.
package twitter

import (
	"context"
	"net/http"
	"regexp"

	"github.com/exyezed/xmeta/internal/extract"
)

var timelinePatterns = map[extract.TimelineKind]*regexp.Regexp{
	extract.KindMedia:       regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/([^/?#]+)/media/?$`),
	extract.KindTimeline:    regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/([^/?#]+)/timeline/?$`),
	extract.KindTweets:      regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/([^/?#]+)/tweets/?$`),
	extract.KindWithReplies: regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/([^/?#]+)/with_replies/?$`),
}

var searchPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/search\?q=(.+)$`)

// Platform constructs extractors for the x.com GraphQL API. The zero options
// talk to the live API; tests point BaseURL at a local server.
type Platform struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Platform.
type Option func(*Platform)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Platform) { p.httpClient = hc }
}

// WithBaseURL overrides the GraphQL API base URL.
func WithBaseURL(url string) Option {
	return func(p *Platform) { p.baseURL = url }
}

// New creates a Platform.
func New(opts ...Option) *Platform {
	p := &Platform{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeline creates an extractor for one account timeline URL.
func (p *Platform) Timeline(kind extract.TimelineKind, url string, cfg extract.Config) (extract.Extractor, error) {
	pattern, ok := timelinePatterns[kind]
	if !ok {
		return nil, &extract.InvalidRequestError{Kind: string(kind), URL: url}
	}
	m := pattern.FindStringSubmatch(url)
	if m == nil {
		return nil, &extract.InvalidRequestError{Kind: string(kind), URL: url}
	}
	return &Extractor{
		client:     newGraphQLClient(p.httpClient, p.baseURL, cfg.AuthToken),
		kind:       kind,
		screenName: m[1],
		cfg:        cfg,
	}, nil
}

// Search creates an extractor for one search URL.
func (p *Platform) Search(url string, cfg extract.Config) (extract.Extractor, error) {
	m := searchPattern.FindStringSubmatch(url)
	if m == nil {
		return nil, &extract.InvalidRequestError{Kind: "search", URL: url}
	}
	return &Extractor{
		client: newGraphQLClient(p.httpClient, p.baseURL, cfg.AuthToken),
		search: true,
		query:  m[1],
		cfg:    cfg,
	}, nil
}

// Extractor drives one timeline or search extraction against the GraphQL API.
type Extractor struct {
	client     *graphQLClient
	kind       extract.TimelineKind
	screenName string
	search     bool
	query      string
	cfg        extract.Config

	userID string
	stream *stream
}

// Initialize validates the session before any network call is made.
func (e *Extractor) Initialize(ctx context.Context) error {
	if e.cfg.AuthToken == "" {
		return extract.ErrAuthentication
	}
	return nil
}

// UserByScreenName looks up an account by handle.
func (e *Extractor) UserByScreenName(ctx context.Context, name string) (*extract.RawUser, error) {
	variables := map[string]any{
		"screen_name":              name,
		"withSafetyModeUserFields": true,
	}
	var resp userResponse
	if err := e.client.get(ctx, "UserByScreenName", variables, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.Errors.err(); err != nil {
		return nil, err
	}
	return e.rememberUser(parseUserResult(resp.Data.User.Result))
}

// UserByRestID looks up an account by its numeric rest id.
func (e *Extractor) UserByRestID(ctx context.Context, id string) (*extract.RawUser, error) {
	variables := map[string]any{
		"userId":                   id,
		"withSafetyModeUserFields": true,
	}
	var resp userResponse
	if err := e.client.get(ctx, "UserByRestId", variables, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.Errors.err(); err != nil {
		return nil, err
	}
	return e.rememberUser(parseUserResult(resp.Data.User.Result))
}

// rememberUser retains the resolved rest id for timeline pagination.
func (e *Extractor) rememberUser(user *extract.RawUser, err error) (*extract.RawUser, error) {
	if err != nil {
		return nil, err
	}
	e.userID = user.ID
	return user, nil
}

// TransformUser maps a raw account record to the normalized user record.
func (e *Extractor) TransformUser(u *extract.RawUser) extract.UserData {
	return transformUser(u)
}

// Stream returns the media item stream, creating it on first use.
func (e *Extractor) Stream() extract.Stream {
	if e.stream == nil {
		e.stream = newStream(e)
	}
	return e.stream
}

// Cursor returns the pagination token left by the stream, or "".
func (e *Extractor) Cursor() string {
	if e.stream == nil {
		return ""
	}
	return e.stream.cursor
}
