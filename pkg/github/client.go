// Package github wraps the GitHub API operations the publishing pipeline
// needs: fork management and pull request lifecycle. It is a thin layer over
// go-github with retry and error classification on top.
package github

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the default GitHub API base URL
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 30 * time.Second
)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL for the GitHub API
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets a custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetryConfig configures retry behavior
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *Client) {
		c.retryConfig = config
	}
}

// Client is the GitHub API client used by repository automation.
//
// Example:
//
//	client := github.NewClient(token,
//	    github.WithRetryConfig(github.DefaultRetryConfig()),
//	)
type Client struct {
	token        string
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	githubClient *github.Client // Lazy-loaded go-github client
	retryConfig  *RetryConfig
}

// NewClient creates a new GitHub API client with the given token
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// GitHubClient returns the underlying go-github client (lazy-loaded)
func (c *Client) GitHubClient() *github.Client {
	if c.githubClient == nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		tc := oauth2.NewClient(ctx, ts)
		c.githubClient = github.NewClient(tc)

		// Set custom base URL if configured (for testing)
		if c.baseURL != DefaultBaseURL && c.baseURL != "" {
			baseURL := c.baseURL
			if baseURL[len(baseURL)-1] != '/' {
				baseURL += "/"
			}
			if parsedURL, err := url.Parse(baseURL); err == nil {
				c.githubClient.BaseURL = parsedURL
			}
		}
	}
	return c.githubClient
}

// withRetry runs fn with bounded exponential backoff. Authorization errors
// abort immediately; only transient failures are retried.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	maxAttempts := 1
	if c.retryConfig != nil {
		maxAttempts = c.retryConfig.MaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryConfig.GetDelay(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsAuthenticationError(lastErr) || !IsRetryableError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
