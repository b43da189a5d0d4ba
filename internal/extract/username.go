package extract

import (
	"regexp"
	"strings"
)

var (
	userIDRe     = regexp.MustCompile(`^id:\d+$`)
	profileURLRe = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/@?([^/?#]+)`)
)

// ResolveUsername normalizes a username given in any supported input format
// into its canonical form: a lowercase handle, or an "id:<digits>" identifier
// returned unchanged. Accepted inputs are plain handles, "@handle" and full
// profile URLs on x.com or twitter.com.
func ResolveUsername(input string) string {
	if userIDRe.MatchString(input) {
		return input
	}

	input = strings.TrimSpace(input)

	if m := profileURLRe.FindStringSubmatch(input); m != nil {
		return strings.ToLower(strings.TrimLeft(m[1], "@"))
	}

	return strings.ToLower(strings.TrimLeft(input, "@"))
}

// IsUserID reports whether the resolved username is an explicit numeric id.
func IsUserID(username string) bool {
	return strings.HasPrefix(username, "id:")
}
