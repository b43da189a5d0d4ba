package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed user-facing messages for classified failures.
const (
	MsgWithheld        = "Account withheld. Alternative version available at: https://www.patreon.com/exyezed"
	MsgAuthFailed      = "Authentication failed. Verify your auth token is valid."
	MsgAccountNotFound = "Failed to fetch account information. Check the username and auth token."
)

// Sentinel errors raised by the engines and the platform extractor.
var (
	// ErrWithheld marks an account withheld by the platform.
	ErrWithheld = errors.New("withheld")
	// ErrAuthentication marks missing or invalid credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAccountNotFound marks a stream that exhausted without ever
	// producing account information.
	ErrAccountNotFound = errors.New(MsgAccountNotFound)
)

// InvalidRequestError reports a synthesized URL that did not match the
// extractor's pattern.
type InvalidRequestError struct {
	Kind string
	URL  string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid URL for %s: %s", e.Kind, e.URL)
}

// BodyCarrier is implemented by errors that retain the raw response body of
// the failed platform request.
type BodyCarrier interface {
	ResponseBody() string
}

// ErrorKind is the classified category of an extraction failure.
type ErrorKind int

// Failure categories. Generic failures surface their own message verbatim.
const (
	KindGeneric ErrorKind = iota
	KindWithheld
	KindAuthFailed
)

// Classify maps a failure surfaced from the platform extractor to its error
// kind. Withheld detection succeeds on any of three signals: the withheld
// sentinel, "withheld" in the error message, or "withheld" in an attached
// response body. A withheld match takes priority over any other mapping.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}
	if isWithheld(err) {
		return KindWithheld
	}
	// gallery-dl style extractors signal missing credentials with a bare
	// "None" message; treat the typed sentinel the same way.
	if errors.Is(err, ErrAuthentication) || err.Error() == "None" {
		return KindAuthFailed
	}
	return KindGeneric
}

// Message renders the user-facing error string for a failure.
func Message(err error) string {
	switch Classify(err) {
	case KindWithheld:
		return MsgWithheld
	case KindAuthFailed:
		return MsgAuthFailed
	default:
		return err.Error()
	}
}

func isWithheld(err error) bool {
	if errors.Is(err, ErrWithheld) {
		return true
	}
	if strings.Contains(strings.ToLower(err.Error()), "withheld") {
		return true
	}
	var bc BodyCarrier
	if errors.As(err, &bc) && strings.Contains(strings.ToLower(bc.ResponseBody()), "withheld") {
		return true
	}
	return false
}
