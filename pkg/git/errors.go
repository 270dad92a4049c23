// Package git provides the repository operations the publishing pipeline
// needs, built on go-git so clone, branch, commit and push all run
// in-process against a pluggable filesystem.
package git

import (
	"errors"
	"fmt"
)

// ErrNoChanges is returned when a commit is requested but the worktree is
// clean.
var ErrNoChanges = errors.New("no changes to commit")

// ErrNotFastForward is returned when a branch cannot be fast-forwarded and
// would require manual conflict resolution. It is never resolved by force.
var ErrNotFastForward = errors.New("not a fast-forward")

// ErrAuthFailed is returned when the remote rejects the provided
// credentials.
var ErrAuthFailed = errors.New("authentication failed")

// WrapError wraps an error with additional context while preserving the
// ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
