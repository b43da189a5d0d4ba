package extract

import (
	"context"
	"errors"
	"io"
)

// Timeline extracts media metadata from an account timeline, one page at a
// time. Failures are returned as the error response shape, never raised.
func (s *Service) Timeline(ctx context.Context, req TimelineRequest) *Response {
	if err := validate(req.Username, req.AuthToken); err != nil {
		return fail(err)
	}

	result, err := s.timeline(ctx, req)
	if err != nil {
		return fail(err)
	}
	return &Response{Result: result}
}

func (s *Service) timeline(ctx context.Context, req TimelineRequest) (*Result, error) {
	username := ResolveUsername(req.Username)

	kind := req.TimelineType
	if kind == "" {
		kind = KindTimeline
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = MediaAll
	}

	// Any non-positive batch size means unbounded.
	batchSize := req.BatchSize
	if batchSize < 0 {
		batchSize = 0
	}

	cfg := Config{
		AuthToken: req.AuthToken,
		Retweets:  req.Retweets,
	}
	if batchSize > 0 {
		cfg.Count = batchSize
	}

	ex, err := s.platform.Timeline(kind, profileURL(username, kind), cfg)
	if err != nil {
		return nil, err
	}
	if err := ex.Initialize(ctx); err != nil {
		return nil, err
	}

	if _, err := s.resolveAccount(ctx, ex, username); err != nil {
		return nil, err
	}

	stream := ex.Stream()

	// Offset skip: page N replays N*batch_size iterator advances from the
	// start of this extractor instance. A stream that exhausts during the
	// skip yields an empty page, not an error.
	if batchSize > 0 && req.Page > 0 {
		toSkip := req.Page * batchSize
		for i := 0; i < toSkip; i++ {
			if _, err := stream.Next(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, err
			}
		}
	}

	result := &Result{Timeline: []TimelineEntry{}}
	fetched := 0

	for batchSize == 0 || fetched < batchSize {
		item, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		fetched++

		if item.Kind != ItemURL {
			continue
		}

		// The first item carrying an embedded user record populates the
		// account snapshot; this is not necessarily the first item yielded.
		if result.AccountInfo == nil && item.Tweet.User != nil {
			info := BuildAccountInfo(*item.Tweet.User)
			result.AccountInfo = &info
		}

		if !IsTwitterMedia(item.URL) {
			continue
		}
		if ShouldInclude(item.URL, item.Tweet, mediaType) {
			result.Timeline = append(result.Timeline, BuildTimelineEntry(item.URL, item.Tweet))
			result.TotalURLs++
		}
	}

	var cursor *string
	if c := ex.Cursor(); c != "" {
		cursor = &c
	}
	result.Metadata = &PaginationMetadata{
		NewEntries: len(result.Timeline),
		Page:       req.Page,
		BatchSize:  req.BatchSize,
		// Heuristic: a full batch suggests more data, natural exhaustion
		// below the cap does not.
		HasMore: batchSize > 0 && fetched == batchSize,
		Cursor:  cursor,
	}

	if result.AccountInfo == nil {
		return nil, ErrAccountNotFound
	}

	return result, nil
}
