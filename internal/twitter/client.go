package twitter

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/exyezed/xmeta/internal/extract"
	"github.com/exyezed/xmeta/pkg/api"
)

const defaultBaseURL = "https://x.com/i/api/graphql"

// graphQLClient issues authenticated GraphQL GET requests against the x.com
// API. One client belongs to one extractor and holds its session cookies.
type graphQLClient struct {
	http      *api.Client
	baseURL   string
	authToken string
	csrfToken string
}

func newGraphQLClient(httpClient *http.Client, baseURL, authToken string) *graphQLClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &graphQLClient{
		http:      api.NewTwitterClient(httpClient),
		baseURL:   baseURL,
		authToken: authToken,
		csrfToken: generateCSRFToken(),
	}
}

// get performs a GraphQL GET for the named operation and decodes the JSON
// response into target. A 401 or 403 surfaces as an authentication failure
// joined with the underlying HTTP error so the response body stays reachable.
func (c *graphQLClient) get(ctx context.Context, operation string, variables, fieldToggles map[string]any, target any) error {
	ep, ok := endpoints[operation]
	if !ok {
		return fmt.Errorf("unknown operation: %s", operation)
	}
	url := addGraphQLParams(c.baseURL+ep.path(), variables, ep.Features, fieldToggles)

	err := c.http.GetAndDecode(ctx, url, target, c.headers())
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return errors.Join(extract.ErrAuthentication, err)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// headers returns the base headers required by Twitter's GraphQL API.
func (c *graphQLClient) headers() map[string]string {
	return map[string]string{
		"authorization":             "Bearer " + bearerToken,
		"x-csrf-token":              c.csrfToken,
		"x-twitter-active-user":     "yes",
		"x-twitter-auth-type":       "OAuth2Session",
		"x-twitter-client-language": "en",
		"content-type":              "application/json",
		"cookie":                    "auth_token=" + c.authToken + "; ct0=" + c.csrfToken,
		"referer":                   "https://x.com/",
		"origin":                    "https://x.com",
		"sec-fetch-dest":            "empty",
		"sec-fetch-mode":            "cors",
		"sec-fetch-site":            "same-origin",
	}
}

// generateCSRFToken returns a fresh ct0 cookie value.
func generateCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// apiErrors is the "errors" array present in GraphQL failure responses.
type apiErrors []struct {
	Message string `json:"message"`
}

func (e apiErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return fmt.Errorf("twitter API error: %s", e[0].Message)
}

// addGraphQLParams builds the full URL with variables, features, and optional fieldToggles.
func addGraphQLParams(url string, variables, features, fieldToggles map[string]any) string {
	v, _ := json.Marshal(variables)
	f, _ := json.Marshal(features)
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	result := url + sep + "variables=" + jsonEscape(v) + "&features=" + jsonEscape(f)
	if fieldToggles != nil {
		ft, _ := json.Marshal(fieldToggles)
		result += "&fieldToggles=" + jsonEscape(ft)
	}
	return result
}

func jsonEscape(b []byte) string {
	var result strings.Builder
	for _, ch := range string(b) {
		switch ch {
		case ' ':
			result.WriteString("%20")
		case '"':
			result.WriteString("%22")
		case '{':
			result.WriteString("%7B")
		case '}':
			result.WriteString("%7D")
		case '[':
			result.WriteString("%5B")
		case ']':
			result.WriteString("%5D")
		case ':':
			result.WriteString("%3A")
		case ',':
			result.WriteString("%2C")
		case '\'':
			result.WriteString("%27")
		case '|':
			result.WriteString("%7C")
		default:
			result.WriteRune(ch)
		}
	}
	return result.String()
}
