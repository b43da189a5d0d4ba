// Package extract implements the media metadata extraction engine: it drives
// a platform extractor's item stream and normalizes the results into a stable
// JSON-shaped structure.
package extract

import (
	"context"
	"encoding/json"
	"time"
)

// Media asset domains used by the platform.
const (
	ImageDomain = "pbs.twimg.com"
	VideoDomain = "video.twimg.com"
)

// MediaType is the user-requested media constraint for timeline extraction.
type MediaType string

// Supported media type filters.
const (
	MediaAll   MediaType = "all"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// Valid reports whether m names a supported media type filter.
func (m MediaType) Valid() bool {
	switch m {
	case MediaAll, MediaImage, MediaVideo, MediaGIF:
		return true
	}
	return false
}

// TimelineKind selects which timeline variant of an account is extracted.
type TimelineKind string

// Supported timeline kinds.
const (
	KindMedia       TimelineKind = "media"
	KindTimeline    TimelineKind = "timeline"
	KindTweets      TimelineKind = "tweets"
	KindWithReplies TimelineKind = "with_replies"
)

// Valid reports whether k names a supported timeline kind.
func (k TimelineKind) Valid() bool {
	switch k {
	case KindMedia, KindTimeline, KindTweets, KindWithReplies:
		return true
	}
	return false
}

// Config carries per-extractor settings, passed at construction time.
type Config struct {
	AuthToken string // auth_token session cookie
	Retweets  bool   // include retweets in the stream
	Count     int    // items per underlying request; 0 = extractor default
}

// ItemKind discriminates stream items.
type ItemKind int

// Stream item kinds. Only URL items carry media.
const (
	ItemDirectory ItemKind = iota
	ItemURL
)

// UserData is the normalized account record produced by
// Extractor.TransformUser and embedded in stream items.
type UserData struct {
	Name           string
	Nick           string
	Date           time.Time
	FollowersCount int
	FriendsCount   int
	StatusesCount  int
	ProfileImage   string
}

// TweetData is the metadata record attached to each stream item.
type TweetData struct {
	TweetID   int64
	Date      time.Time
	Type      string // "photo", "video" or "animated_gif"; empty when unknown
	RetweetID int64  // id of the retweeted tweet, 0 when not a retweet
	User      *UserData
}

// StreamItem is one yielded media record.
type StreamItem struct {
	Kind  ItemKind
	URL   string
	Tweet TweetData
}

// RawUser is the raw account record returned by user lookup, before
// transformation into UserData.
type RawUser struct {
	ID              string
	ScreenName      string
	Name            string
	CreatedAt       time.Time
	FollowersCount  int
	FriendsCount    int
	StatusesCount   int
	ProfileImageURL string
	WithheldScope   string // non-empty when the account is withheld
}

// Stream yields media items from the platform. Advancing it performs network
// I/O and can block; it returns io.EOF at natural exhaustion.
type Stream interface {
	Next(ctx context.Context) (*StreamItem, error)
}

// Extractor is the platform collaborator behind one extraction request.
type Extractor interface {
	Initialize(ctx context.Context) error
	UserByScreenName(ctx context.Context, name string) (*RawUser, error)
	UserByRestID(ctx context.Context, id string) (*RawUser, error)
	TransformUser(u *RawUser) UserData
	Stream() Stream
	// Cursor returns the opaque pagination token exposed after partial
	// consumption, or "" when none is available.
	Cursor() string
}

// Platform constructs extractors from canonical profile/search URLs.
type Platform interface {
	Timeline(kind TimelineKind, url string, cfg Config) (Extractor, error)
	Search(url string, cfg Config) (Extractor, error)
}

// AccountInfo is the snapshot of the target account in the output contract.
type AccountInfo struct {
	Name           string `json:"name"`
	Nick           string `json:"nick"`
	Date           string `json:"date"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	ProfileImage   string `json:"profile_image"`
	StatusesCount  int    `json:"statuses_count"`
}

// TimelineEntry is one media item in the output contract.
type TimelineEntry struct {
	URL       string `json:"url"`
	Date      string `json:"date"`
	TweetID   int64  `json:"tweet_id"`
	Type      string `json:"type,omitempty"`
	RetweetID int64  `json:"retweet_id,omitempty"`
	IsRetweet bool   `json:"is_retweet"`
}

// DateFilter describes the requested date window in date-range results.
type DateFilter struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Method string `json:"method"`
}

// PaginationMetadata describes the state of one timeline page.
type PaginationMetadata struct {
	NewEntries int     `json:"new_entries"`
	Page       int     `json:"page"`
	BatchSize  int     `json:"batch_size"`
	HasMore    bool    `json:"has_more"`
	Cursor     *string `json:"cursor"`
}

// SearchMetadata describes a completed date-range search.
type SearchMetadata struct {
	NewEntries int    `json:"new_entries"`
	Method     string `json:"method"`
	DateRange  string `json:"date_range"`
}

// Result is the populated body of a successful extraction.
type Result struct {
	AccountInfo *AccountInfo    `json:"account_info"`
	TotalURLs   int             `json:"total_urls"`
	Timeline    []TimelineEntry `json:"timeline"`
	SearchQuery string          `json:"search_query,omitempty"`
	DateFilter  *DateFilter     `json:"date_filter,omitempty"`
	Metadata    any             `json:"metadata"`
}

// Response is the outcome of one extraction call: either a populated result
// or a single error message, never both.
type Response struct {
	Result *Result
	Err    string
}

// OK reports whether the extraction succeeded.
func (r *Response) OK() bool { return r.Err == "" }

// MarshalJSON renders the success body, or {"error": "..."} on failure.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Err != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Err})
	}
	return json.Marshal(r.Result)
}

// UnmarshalJSON restores a Response persisted with MarshalJSON.
func (r *Response) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != "" {
		r.Err = probe.Error
		r.Result = nil
		return nil
	}
	r.Err = ""
	r.Result = new(Result)
	return json.Unmarshal(data, r.Result)
}

// TimelineRequest holds the parameters of one timeline extraction.
type TimelineRequest struct {
	Username     string       `json:"username"`
	AuthToken    string       `json:"auth_token"`
	TimelineType TimelineKind `json:"timeline_type"` // default: timeline
	BatchSize    int          `json:"batch_size"`    // 0 = unbounded
	Page         int          `json:"page"`          // zero-based
	MediaType    MediaType    `json:"media_type"`    // default: all
	Retweets     bool         `json:"retweets"`
}

// DateRangeRequest holds the parameters of one date-range search.
type DateRangeRequest struct {
	Username    string `json:"username"`
	AuthToken   string `json:"auth_token"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
	MediaFilter string `json:"media_filter"`
}
