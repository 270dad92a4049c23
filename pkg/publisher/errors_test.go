package publisher

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/deep-esdl/deep-code/pkg/git"
	"github.com/deep-esdl/deep-code/pkg/github"
)

func TestClassifyRemoteError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  string
	}{
		{
			name:  "git auth failure",
			err:   fmt.Errorf("push: %w", git.ErrAuthFailed),
			check: IsAuthorizationError,
			want:  "AuthorizationError",
		},
		{
			name:  "api auth failure",
			err:   &github.APIError{StatusCode: http.StatusUnauthorized, Message: "bad credentials"},
			check: IsAuthorizationError,
			want:  "AuthorizationError",
		},
		{
			name:  "non fast-forward",
			err:   fmt.Errorf("push rejected: %w", git.ErrNotFastForward),
			check: IsRepositoryStateConflictError,
			want:  "RepositoryStateConflictError",
		},
		{
			name:  "server error",
			err:   &github.APIError{StatusCode: http.StatusBadGateway},
			check: IsTransientRemoteError,
			want:  "TransientRemoteError",
		},
		{
			name:  "rate limit",
			err:   &github.APIError{StatusCode: http.StatusTooManyRequests},
			check: IsTransientRemoteError,
			want:  "TransientRemoteError",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyRemoteError("push", tt.err)
			if !tt.check(classified) {
				t.Errorf("ClassifyRemoteError(%v) = %v, want %s", tt.err, classified, tt.want)
			}
			// The original error stays reachable.
			if !errors.Is(classified, tt.err) && !strings.Contains(classified.Error(), tt.err.Error()) {
				t.Errorf("classified error %v lost its cause %v", classified, tt.err)
			}
		})
	}
}

func TestClassifyRemoteErrorPassThrough(t *testing.T) {
	if ClassifyRemoteError("op", nil) != nil {
		t.Error("nil should stay nil")
	}

	// Already classified errors are not wrapped again.
	authErr := &AuthorizationError{Op: "fork", Err: errors.New("nope")}
	if got := ClassifyRemoteError("push", authErr); got != error(authErr) {
		t.Errorf("reclassified existing AuthorizationError: %v", got)
	}

	// Unrecognized errors keep the operation context but no category.
	plain := errors.New("boom")
	got := ClassifyRemoteError("clone", plain)
	if IsAuthorizationError(got) || IsTransientRemoteError(got) || IsRepositoryStateConflictError(got) {
		t.Errorf("plain error was categorized: %v", got)
	}
	if !errors.Is(got, plain) {
		t.Errorf("plain error lost its cause: %v", got)
	}
	if !strings.Contains(got.Error(), "clone") {
		t.Errorf("operation missing from %v", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	for _, err := range []error{
		&AuthorizationError{Op: "op", Err: cause},
		&TransientRemoteError{Op: "op", Err: cause},
		&RepositoryStateConflictError{Op: "op", Err: cause},
	} {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
		if !strings.Contains(err.Error(), "op") {
			t.Errorf("%T message lacks operation: %v", err, err)
		}
	}
}
