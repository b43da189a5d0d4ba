package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DateRange extracts all media found by a date-bounded search query, driving
// the stream to exhaustion. Failures are returned as the error response
// shape, never raised.
func (s *Service) DateRange(ctx context.Context, req DateRangeRequest) *Response {
	if err := validate(req.Username, req.AuthToken); err != nil {
		return fail(err)
	}
	if req.StartDate == "" {
		return fail(errors.New("start date is required"))
	}
	if req.EndDate == "" {
		return fail(errors.New("end date is required"))
	}

	result, err := s.dateRange(ctx, req)
	if err != nil {
		return fail(err)
	}
	return &Response{Result: result}
}

func (s *Service) dateRange(ctx context.Context, req DateRangeRequest) (*Result, error) {
	username := ResolveUsername(req.Username)

	query := fmt.Sprintf("from:%s since:%s until:%s", username, req.StartDate, req.EndDate)
	if req.MediaFilter != "" {
		query += " " + req.MediaFilter
	}

	// Retweets are unconditionally excluded in search mode.
	cfg := Config{AuthToken: req.AuthToken, Retweets: false}

	ex, err := s.platform.Search("https://x.com/search?q="+query, cfg)
	if err != nil {
		return nil, err
	}
	if err := ex.Initialize(ctx); err != nil {
		return nil, err
	}

	// Search mode resolves by handle only; an id: username is passed through
	// verbatim rather than routed to a rest-id lookup.
	user, err := checkWithheld(ex.UserByScreenName(ctx, username))
	if err != nil {
		return nil, err
	}
	info := BuildAccountInfo(ex.TransformUser(user))

	result := &Result{
		AccountInfo: &info,
		Timeline:    []TimelineEntry{},
		SearchQuery: query,
		DateFilter: &DateFilter{
			Start:  req.StartDate,
			End:    req.EndDate,
			Method: "search_api",
		},
	}

	stream := ex.Stream()
	for {
		item, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// Mid-stream failure truncates accumulation but does not
				// fail the request.
				slog.Warn("error while fetching timeline items", "error", err)
			}
			break
		}
		if item.Kind != ItemURL || !IsTwitterMedia(item.URL) {
			continue
		}
		// Every media-domain item is accepted; search mode applies no
		// media type filter.
		result.Timeline = append(result.Timeline, BuildTimelineEntry(item.URL, item.Tweet))
		result.TotalURLs++
	}

	result.Metadata = &SearchMetadata{
		NewEntries: len(result.Timeline),
		Method:     "search_api",
		DateRange:  req.StartDate + " to " + req.EndDate,
	}

	return result, nil
}
