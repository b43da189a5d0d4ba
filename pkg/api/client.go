// Package api provides an HTTP client with rate limiting, retries and
// standard headers, shared by the platform API layer.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httputil "github.com/exyezed/xmeta/pkg/http"
)

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseClient     *http.Client
	RateLimiter    RateLimiter
	RetryPolicy    *RetryPolicy
	UserAgent      string
	DefaultHeaders map[string]string
}

// Client wraps an http.Client with rate limiting, retries and default headers.
type Client struct {
	client         *http.Client
	rateLimiter    RateLimiter
	retryPolicy    *RetryPolicy
	userAgent      string
	defaultHeaders map[string]string
}

// NewClient creates a new API client with the provided configuration.
func NewClient(config *ClientConfig) *Client {
	// Set defaults if not provided
	if config.BaseClient == nil {
		config.BaseClient = &http.Client{Timeout: 30 * time.Second}
	}
	if config.RateLimiter == nil {
		config.RateLimiter = NewNoOpRateLimiter()
	}
	if config.RetryPolicy == nil {
		config.RetryPolicy = DefaultRetryPolicy()
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.DefaultHeaders == nil {
		config.DefaultHeaders = make(map[string]string)
	}

	return &Client{
		client:         config.BaseClient,
		rateLimiter:    config.RateLimiter,
		retryPolicy:    config.RetryPolicy,
		userAgent:      config.UserAgent,
		defaultHeaders: config.DefaultHeaders,
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// GetAndDecode performs an HTTP GET request with rate limiting, retries, and
// JSON decoding. A non-200 response surfaces as an *HTTPError retaining the
// response body.
func (c *Client) GetAndDecode(ctx context.Context, url string, target any, additionalHeaders map[string]string) error {
	operation := func() error {
		// Apply rate limiting
		c.rateLimiter.Wait()

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.userAgent)
		for key, value := range c.defaultHeaders {
			req.Header.Set(key, value)
		}
		// Additional headers override defaults
		for key, value := range additionalHeaders {
			req.Header.Set(key, value)
		}

		start := time.Now()
		res, err := c.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logAPICall(url, duration, false, err)
			return fmt.Errorf("failed to perform GET request: %w", err)
		}

		if err := httputil.EnsureStatusOK(res); err != nil {
			body, _ := httputil.ReadResponseBody(res)
			c.logAPICall(url, duration, false, err)
			// Convert to our HTTPError type for retry logic; the body is
			// kept because failure responses still carry classifiable
			// platform errors.
			return &HTTPError{
				StatusCode: res.StatusCode,
				Message:    err.Error(),
				Body:       string(body),
			}
		}

		body, err := httputil.ReadResponseBody(res)
		if err != nil {
			c.logAPICall(url, duration, false, err)
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, target); err != nil {
			c.logAPICall(url, duration, false, err)
			return fmt.Errorf("failed to decode json response: %w", err)
		}

		c.logAPICall(url, duration, true, nil)
		return nil
	}

	return ExecuteWithRetry(ctx, operation, c.retryPolicy, fmt.Sprintf("GET %s", url))
}

// CanProceed returns true if a request can be made without rate limiting delay
func (c *Client) CanProceed() bool {
	return c.rateLimiter.CanProceed()
}

// SetDefaultHeader sets a default header that will be included in all requests
func (c *Client) SetDefaultHeader(key, value string) {
	c.defaultHeaders[key] = value
}

// logAPICall logs API call statistics
func (c *Client) logAPICall(url string, duration time.Duration, success bool, err error) {
	status := "success"
	if !success {
		status = "failure"
	}

	fields := []any{
		"url", url,
		"duration", duration,
		"status", status,
	}

	if err != nil {
		fields = append(fields, "error", err)
	}

	if success {
		slog.Debug("API call completed", fields...)
	} else {
		slog.Warn("API call failed", fields...)
	}
}

// NewTwitterClient creates an API client configured for the x.com GraphQL API.
func NewTwitterClient(baseClient *http.Client) *Client {
	return NewClient(&ClientConfig{
		BaseClient:  baseClient,
		RateLimiter: NewSimpleRateLimiter(1 * time.Second),
		RetryPolicy: DefaultRetryPolicy(),
		UserAgent:   defaultUserAgent,
		DefaultHeaders: map[string]string{
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
		},
	})
}
