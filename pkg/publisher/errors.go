package publisher

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/deep-esdl/deep-code/pkg/git"
	"github.com/deep-esdl/deep-code/pkg/github"
)

// AuthorizationError indicates the remote rejected the configured
// credentials or the token lacks the required scope. Retrying without new
// credentials will not help.
type AuthorizationError struct {
	Op  string
	Err error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed during %s: %v", e.Op, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// IsAuthorizationError reports whether err is an AuthorizationError.
func IsAuthorizationError(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

// TransientRemoteError indicates a remote operation failed for a reason that
// may clear on its own (rate limiting, network trouble, 5xx responses). The
// run already retried with backoff before surfacing it.
type TransientRemoteError struct {
	Op  string
	Err error
}

func (e *TransientRemoteError) Error() string {
	return fmt.Sprintf("transient remote failure during %s: %v", e.Op, e.Err)
}

func (e *TransientRemoteError) Unwrap() error { return e.Err }

// IsTransientRemoteError reports whether err is a TransientRemoteError.
func IsTransientRemoteError(err error) bool {
	var transientErr *TransientRemoteError
	return errors.As(err, &transientErr)
}

// RepositoryStateConflictError indicates the remote repository state no
// longer matches what the pipeline expects, e.g. a publish branch that has
// diverged from the upstream base. Resolution requires manual intervention;
// the pipeline never forces over remote state.
type RepositoryStateConflictError struct {
	Op  string
	Err error
}

func (e *RepositoryStateConflictError) Error() string {
	return fmt.Sprintf("repository state conflict during %s: %v", e.Op, e.Err)
}

func (e *RepositoryStateConflictError) Unwrap() error { return e.Err }

// IsRepositoryStateConflictError reports whether err is a
// RepositoryStateConflictError.
func IsRepositoryStateConflictError(err error) bool {
	var conflictErr *RepositoryStateConflictError
	return errors.As(err, &conflictErr)
}

// ClassifyRemoteError maps low-level git and GitHub API errors onto the
// pipeline's error categories. Errors that are already classified, or that
// belong to other categories (validation, merge conflicts), pass through
// unchanged.
func ClassifyRemoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsAuthorizationError(err) || IsTransientRemoteError(err) || IsRepositoryStateConflictError(err) {
		return err
	}

	if errors.Is(err, git.ErrAuthFailed) || github.IsAuthenticationError(err) {
		return &AuthorizationError{Op: op, Err: err}
	}
	if errors.Is(err, git.ErrNotFastForward) {
		return &RepositoryStateConflictError{Op: op, Err: err}
	}

	var netErr net.Error
	if github.IsRateLimitError(err) || github.IsRetryableError(err) ||
		errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &TransientRemoteError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
