package github

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-github/v68/github"
)

func responseWithStatus(status int) *github.ErrorResponse {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: status},
		Message:  http.StatusText(status),
	}
}

func TestAsAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantOK     bool
		wantStatus int
	}{
		{
			name:       "direct APIError",
			err:        &APIError{StatusCode: 500, Message: "boom"},
			wantOK:     true,
			wantStatus: 500,
		},
		{
			name:       "wrapped APIError",
			err:        fmt.Errorf("context: %w", &APIError{StatusCode: 404}),
			wantOK:     true,
			wantStatus: 404,
		},
		{
			name:       "go-github error response",
			err:        responseWithStatus(http.StatusForbidden),
			wantOK:     true,
			wantStatus: 403,
		},
		{
			name:       "rate limit error",
			err:        &github.RateLimitError{Message: "slow down"},
			wantOK:     true,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr, ok := AsAPIError(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && apiErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		auth     bool
		notFound bool
		rate     bool
	}{
		{name: "unauthorized", err: responseWithStatus(http.StatusUnauthorized), auth: true},
		{name: "forbidden", err: responseWithStatus(http.StatusForbidden), auth: true},
		{name: "not found", err: responseWithStatus(http.StatusNotFound), notFound: true},
		{name: "rate limited", err: &github.RateLimitError{}, rate: true},
		{name: "too many requests", err: &APIError{StatusCode: http.StatusTooManyRequests}, rate: true},
		{name: "server error", err: responseWithStatus(http.StatusInternalServerError)},
		{name: "plain error", err: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthenticationError(tt.err); got != tt.auth {
				t.Errorf("IsAuthenticationError = %v, want %v", got, tt.auth)
			}
			if got := IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError = %v, want %v", got, tt.notFound)
			}
			if got := IsRateLimitError(tt.err); got != tt.rate {
				t.Errorf("IsRateLimitError = %v, want %v", got, tt.rate)
			}
		})
	}
}

func TestRetryConfigDelay(t *testing.T) {
	cfg := DefaultRetryConfig()

	if d := cfg.GetDelay(0); d != cfg.InitialDelay {
		t.Errorf("GetDelay(0) = %v", d)
	}
	if d := cfg.GetDelay(1); d != 2*cfg.InitialDelay {
		t.Errorf("GetDelay(1) = %v", d)
	}
	if d := cfg.GetDelay(20); d != cfg.MaxDelay {
		t.Errorf("GetDelay(20) = %v, want cap %v", d, cfg.MaxDelay)
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Error("nil is not retryable")
	}
	if IsRetryableError(responseWithStatus(http.StatusBadRequest)) {
		t.Error("400 is not retryable")
	}
	if !IsRetryableError(responseWithStatus(http.StatusServiceUnavailable)) {
		t.Error("503 is retryable")
	}
	if !IsRetryableError(&github.RateLimitError{}) {
		t.Error("rate limits are retryable")
	}
}
