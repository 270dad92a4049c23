package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	// DefaultRemoteName is the remote a clone tracks (the fork).
	DefaultRemoteName = "origin"

	// UpstreamRemoteName is the remote used to sync with the upstream
	// catalog repository.
	UpstreamRemoteName = "upstream"
)

// Signature identifies the author of publish commits.
type Signature struct {
	Name  string
	Email string
}

// Options configures cloning and subsequent remote operations.
type Options struct {
	// FS is the filesystem holding the worktree (OS or in-memory).
	FS billy.Filesystem

	// Auth is the optional authentication for remote operations.
	Auth transport.AuthMethod

	// Depth limits the clone depth; 0 clones full history.
	Depth int
}

// BasicAuth builds token authentication for HTTPS remotes.
func BasicAuth(username, token string) transport.AuthMethod {
	return &githttp.BasicAuth{Username: username, Password: token}
}

// Repo wraps a go-git repository with the operations repository automation
// relies on.
type Repo struct {
	repo     *gogit.Repository
	worktree *gogit.Worktree
	fs       billy.Filesystem
	auth     transport.AuthMethod
}

// Clone clones remoteURL into the filesystem given by opts.FS.
func Clone(ctx context.Context, remoteURL string, opts *Options) (*Repo, error) {
	if remoteURL == "" {
		return nil, errors.New("remote URL cannot be empty")
	}
	if opts == nil || opts.FS == nil {
		return nil, errors.New("a worktree filesystem is required")
	}

	dotGitFS, err := opts.FS.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, WrapError(err, "failed to create .git directory")
	}
	storage := filesystem.NewStorage(dotGitFS, cache.NewObjectLRUDefault())

	repo, err := gogit.CloneContext(ctx, storage, opts.FS, &gogit.CloneOptions{
		URL:   remoteURL,
		Auth:  opts.Auth,
		Depth: opts.Depth,
	})
	if err != nil {
		return nil, classifyRemoteError(err, "failed to clone repository")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree")
	}

	return &Repo{repo: repo, worktree: worktree, fs: opts.FS, auth: opts.Auth}, nil
}

// Open opens an existing repository in the filesystem.
func Open(fs billy.Filesystem, auth transport.AuthMethod) (*Repo, error) {
	dotGitFS, err := fs.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, WrapError(err, "failed to access .git directory")
	}
	storage := filesystem.NewStorage(dotGitFS, cache.NewObjectLRUDefault())

	repo, err := gogit.Open(storage, fs)
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree")
	}
	return &Repo{repo: repo, worktree: worktree, fs: fs, auth: auth}, nil
}

// FS returns the worktree filesystem.
func (r *Repo) FS() billy.Filesystem {
	return r.fs
}

// Head returns the current HEAD commit hash.
func (r *Repo) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to resolve HEAD")
	}
	return head.Hash().String(), nil
}

// EnsureRemote makes sure a named remote pointing at url exists.
func (r *Repo) EnsureRemote(name, url string) error {
	_, err := r.repo.Remote(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gogit.ErrRemoteNotFound) {
		return WrapError(err, "failed to look up remote")
	}

	_, err = r.repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return WrapError(err, "failed to create remote")
	}
	return nil
}

// Fetch fetches from the named remote. Returns nil when already up to date.
func (r *Repo) Fetch(ctx context.Context, remote string) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	err := r.repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remote,
		Auth:       r.auth,
	})
	if err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		return classifyRemoteError(err, "failed to fetch from remote")
	}
	return nil
}

// ResolveRevision resolves a revision (branch, remote ref, SHA) to a hash.
func (r *Repo) ResolveRevision(rev string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", WrapError(err, fmt.Sprintf("failed to resolve %q", rev))
	}
	return hash.String(), nil
}

// EnsureBranchAt checks out the named branch, creating it at baseRev when it
// does not exist anywhere. A branch already pushed to origin is resumed from
// its remote-tracking ref, so a fresh clone picks up an in-flight publish
// branch instead of restarting it. An existing branch is fast-forwarded to
// baseRev when behind, kept as is when ahead, and reported as
// ErrNotFastForward when it has diverged. Nothing is ever reset
// destructively.
func (r *Repo) EnsureBranchAt(ctx context.Context, branch, baseRev string) error {
	baseHash, err := r.repo.ResolveRevision(plumbing.Revision(baseRev))
	if err != nil {
		return WrapError(err, fmt.Sprintf("failed to resolve base revision %q", baseRev))
	}

	refName := plumbing.NewBranchReferenceName(branch)
	current, err := r.branchStart(refName, branch, *baseHash)
	if err != nil {
		return err
	}

	if current != *baseHash {
		relation, relErr := r.relate(current, *baseHash)
		if relErr != nil {
			return relErr
		}
		switch relation {
		case relationBehind:
			// Fast-forward the stale branch to the new base.
			current = *baseHash
		case relationAhead:
			// Branch already carries publish commits on top of base.
		case relationDiverged:
			return fmt.Errorf("branch %q has diverged from %q: %w", branch, baseRev, ErrNotFastForward)
		}
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(refName, current)); err != nil {
		return WrapError(err, "failed to set branch reference")
	}
	if err := r.worktree.Checkout(&gogit.CheckoutOptions{Branch: refName, Force: true}); err != nil {
		return WrapError(err, "failed to checkout branch")
	}
	return nil
}

// branchStart determines where the branch currently points: the local ref if
// present, else the remote-tracking ref on origin, else the base.
func (r *Repo) branchStart(refName plumbing.ReferenceName, branch string, baseHash plumbing.Hash) (plumbing.Hash, error) {
	local, err := r.repo.Reference(refName, true)
	if err == nil {
		return local.Hash(), nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, WrapError(err, "failed to look up branch")
	}

	remoteRef := plumbing.NewRemoteReferenceName(DefaultRemoteName, branch)
	remote, err := r.repo.Reference(remoteRef, true)
	if err == nil {
		return remote.Hash(), nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, WrapError(err, "failed to look up remote branch")
	}

	return baseHash, nil
}

type commitRelation int

const (
	relationBehind commitRelation = iota
	relationAhead
	relationDiverged
)

// relate determines how branchHead relates to baseHash.
func (r *Repo) relate(branchHead, baseHash plumbing.Hash) (commitRelation, error) {
	branchCommit, err := r.repo.CommitObject(branchHead)
	if err != nil {
		return 0, WrapError(err, "failed to load branch commit")
	}
	baseCommit, err := r.repo.CommitObject(baseHash)
	if err != nil {
		return 0, WrapError(err, "failed to load base commit")
	}

	behind, err := branchCommit.IsAncestor(baseCommit)
	if err != nil {
		return 0, WrapError(err, "failed to compare commits")
	}
	if behind {
		return relationBehind, nil
	}

	ahead, err := baseCommit.IsAncestor(branchCommit)
	if err != nil {
		return 0, WrapError(err, "failed to compare commits")
	}
	if ahead {
		return relationAhead, nil
	}
	return relationDiverged, nil
}

// CommitAll stages every change in the worktree and commits it. Returns
// ErrNoChanges when the worktree is clean.
func (r *Repo) CommitAll(message string, sig Signature) (string, error) {
	if err := r.worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", WrapError(err, "failed to stage changes")
	}

	status, err := r.worktree.Status()
	if err != nil {
		return "", WrapError(err, "failed to get worktree status")
	}
	if status.IsClean() {
		return "", ErrNoChanges
	}

	hash, err := r.worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  sig.Name,
			Email: sig.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", WrapError(err, "failed to commit")
	}
	return hash.String(), nil
}

// Push pushes the named branch to the remote. Returns nil when the remote is
// already up to date and ErrNotFastForward when the remote branch cannot be
// fast-forwarded; it never forces.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	refspec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := r.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       r.auth,
	})
	if err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		if errors.Is(err, gogit.ErrNonFastForwardUpdate) {
			return fmt.Errorf("push of %q rejected: %w", branch, ErrNotFastForward)
		}
		return classifyRemoteError(err, "failed to push to remote")
	}
	return nil
}

// classifyRemoteError maps go-git transport errors onto the package's
// sentinel errors.
func classifyRemoteError(err error, msg string) error {
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return fmt.Errorf("%s: %w", msg, ErrAuthFailed)
	}
	if errors.Is(err, gogit.ErrNonFastForwardUpdate) {
		return fmt.Errorf("%s: %w", msg, ErrNotFastForward)
	}
	return WrapError(err, msg)
}
