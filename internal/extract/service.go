package extract

import (
	"context"
	"errors"
	"fmt"
)

// Service runs extraction requests against a platform.
type Service struct {
	platform Platform
}

// NewService creates an extraction service on top of the given platform.
func NewService(platform Platform) *Service {
	return &Service{platform: platform}
}

// resolveAccount looks up the target account, by raw id for "id:<digits>"
// usernames and by handle otherwise.
func (s *Service) resolveAccount(ctx context.Context, ex Extractor, username string) (*RawUser, error) {
	if IsUserID(username) {
		return checkWithheld(ex.UserByRestID(ctx, username[len("id:"):]))
	}
	return checkWithheld(ex.UserByScreenName(ctx, username))
}

// checkWithheld screens a lookup outcome for withheld signals. An account
// record that declares a withheld scope is treated as a withheld failure even
// though the lookup itself succeeded.
func checkWithheld(user *RawUser, err error) (*RawUser, error) {
	if err != nil {
		if isWithheld(err) {
			return nil, ErrWithheld
		}
		return nil, err
	}
	if user.WithheldScope != "" {
		return nil, ErrWithheld
	}
	return user, nil
}

// validate checks the request fields every mode requires.
func validate(username, authToken string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if authToken == "" {
		return errors.New("auth token is required")
	}
	return nil
}

// fail wraps a classified failure into the error response shape. Extraction
// outcomes are always data; no failure escapes past this boundary.
func fail(err error) *Response {
	return &Response{Err: Message(err)}
}

func profileURL(username string, kind TimelineKind) string {
	return fmt.Sprintf("https://x.com/%s/%s", username, kind)
}
