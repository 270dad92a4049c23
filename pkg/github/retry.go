package github

import (
	"errors"
	"net"
	"net/http"
	"time"
)

// RetryConfig controls retry behavior for transient API failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Multiplier scales the delay between attempts.
	Multiplier float64
}

// DefaultRetryConfig returns the retry configuration used for publish runs.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  4,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
	}
}

// GetDelay returns the backoff delay after the given zero-based attempt.
func (r *RetryConfig) GetDelay(attempt int) time.Duration {
	delay := r.InitialDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * r.Multiplier)
		if delay >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	if delay > r.MaxDelay {
		return r.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether a response status code is worth retrying.
func (r *RetryConfig) ShouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsRetryableError reports whether an error is a transient network or
// server-side failure. Authorization and client errors are not retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if apiErr, ok := AsAPIError(err); ok {
		return DefaultRetryConfig().ShouldRetry(apiErr.StatusCode)
	}

	return false
}
