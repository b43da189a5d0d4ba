package twitter

import (
	"context"
	"io"

	"github.com/exyezed/xmeta/internal/extract"
)

const (
	defaultTimelineCount = 100
	defaultSearchCount   = 20
	maxPageCount         = 100
)

// stream is a cursor-paged iterator over the media items of one timeline or
// search. It fetches lazily and yields one item per Next call.
type stream struct {
	ex      *Extractor
	pending []extract.StreamItem
	cursor  string
	done    bool
}

func newStream(ex *Extractor) *stream {
	return &stream{ex: ex}
}

// Next yields the next media item, fetching further pages as needed. It
// returns io.EOF at natural exhaustion.
func (s *stream) Next(ctx context.Context) (*extract.StreamItem, error) {
	for len(s.pending) == 0 {
		if s.done {
			return nil, io.EOF
		}
		if err := s.fetchPage(ctx); err != nil {
			return nil, err
		}
	}
	item := s.pending[0]
	s.pending = s.pending[1:]
	return &item, nil
}

func (s *stream) fetchPage(ctx context.Context) error {
	var (
		items      []extract.StreamItem
		nextCursor string
		tweetCount int
		err        error
	)
	if s.ex.search {
		items, nextCursor, tweetCount, err = s.searchPage(ctx)
	} else {
		items, nextCursor, tweetCount, err = s.timelinePage(ctx)
	}
	if err != nil {
		return err
	}

	s.pending = append(s.pending, items...)
	s.cursor = nextCursor
	// A page without tweets or without a follow-up cursor ends the stream.
	if tweetCount == 0 || nextCursor == "" {
		s.done = true
	}
	return nil
}

func (s *stream) timelinePage(ctx context.Context) ([]extract.StreamItem, string, int, error) {
	// The engine resolves the account before streaming, but a bare stream
	// still needs the rest id.
	if s.ex.userID == "" {
		if _, err := s.ex.UserByScreenName(ctx, s.ex.screenName); err != nil {
			return nil, "", 0, err
		}
	}

	variables := map[string]any{
		"userId":                                 s.ex.userID,
		"count":                                  s.pageCount(defaultTimelineCount),
		"includePromotedContent":                 false,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	if s.cursor != "" {
		variables["cursor"] = s.cursor
	}

	var resp userTweetsResponse
	if err := s.ex.client.get(ctx, "UserTweets", variables, nil, &resp); err != nil {
		return nil, "", 0, err
	}
	if err := resp.Errors.err(); err != nil {
		return nil, "", 0, err
	}

	items, nextCursor, tweetCount := extractItems(resp.timeline(), s.ex.cfg.Retweets)
	return items, nextCursor, tweetCount, nil
}

func (s *stream) searchPage(ctx context.Context) ([]extract.StreamItem, string, int, error) {
	variables := map[string]any{
		"rawQuery":    s.ex.query,
		"count":       s.pageCount(defaultSearchCount),
		"querySource": "typed_query",
		"product":     "Latest",
	}
	if s.cursor != "" {
		variables["cursor"] = s.cursor
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": false,
	}

	var resp searchResponse
	if err := s.ex.client.get(ctx, "SearchTimeline", variables, fieldToggles, &resp); err != nil {
		return nil, "", 0, err
	}
	if err := resp.Errors.err(); err != nil {
		return nil, "", 0, err
	}

	items, nextCursor, tweetCount := extractItems(resp.Data.SearchByRawQuery.SearchTimeline.Timeline, s.ex.cfg.Retweets)
	return items, nextCursor, tweetCount, nil
}

func (s *stream) pageCount(fallback int) int {
	count := s.ex.cfg.Count
	if count <= 0 {
		return fallback
	}
	if count > maxPageCount {
		return maxPageCount
	}
	return count
}
