// Package githubpr publishes catalog records by pushing a branch to a fork
// of the upstream catalog repository and opening (or refreshing) a pull
// request against it.
package githubpr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/deep-esdl/deep-code/pkg/config"
	"github.com/deep-esdl/deep-code/pkg/git"
	"github.com/deep-esdl/deep-code/pkg/github"
	"github.com/deep-esdl/deep-code/pkg/log"
	"github.com/deep-esdl/deep-code/pkg/publisher"
	"github.com/deep-esdl/deep-code/pkg/tree"
)

// DefaultTimeout bounds a single publish job, covering every remote step
// from fork to pull request.
const DefaultTimeout = 5 * time.Minute

// API is the slice of the GitHub client the publisher depends on.
type API interface {
	EnsureFork(ctx context.Context, owner, repo string) (*github.RepoInfo, error)
	FindPullRequestByHead(ctx context.Context, owner, repo, headBranch string) (*github.PRInfo, error)
	CreatePullRequest(ctx context.Context, owner, repo string, newPR *github.NewPullRequest) (*github.PRInfo, error)
	UpdatePullRequest(ctx context.Context, owner, repo string, prNumber int, title, body string) (*github.PRInfo, error)
}

// Publisher delivers catalog records as GitHub pull requests.
type Publisher struct {
	api       API
	auth      transport.AuthMethod
	committer git.Signature
	timeout   time.Duration

	worktree    func() (billy.Filesystem, error)
	cloneURL    func(fork *github.RepoInfo) string
	upstreamURL func(target config.RepoTarget) string
}

// Option customizes the publisher.
type Option func(*Publisher)

// WithCommitter sets the commit author identity.
func WithCommitter(sig git.Signature) Option {
	return func(p *Publisher) { p.committer = sig }
}

// WithTimeout bounds each publish job. Values <= 0 keep the default.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithWorktreeFactory overrides where clones are materialized. The default
// clones into memory.
func WithWorktreeFactory(factory func() (billy.Filesystem, error)) Option {
	return func(p *Publisher) { p.worktree = factory }
}

// WithCloneURL overrides how the fork's clone URL is derived.
func WithCloneURL(fn func(fork *github.RepoInfo) string) Option {
	return func(p *Publisher) { p.cloneURL = fn }
}

// WithUpstreamURL overrides how the upstream remote URL is derived.
func WithUpstreamURL(fn func(target config.RepoTarget) string) Option {
	return func(p *Publisher) { p.upstreamURL = fn }
}

// New creates a pull request publisher. creds may be nil when git remotes
// need no authentication.
func New(api API, creds *config.GitAccess, opts ...Option) *Publisher {
	p := &Publisher{
		api:       api,
		committer: git.Signature{Name: "deep-code", Email: "deep-code@deep.earthsystemdatalab.net"},
		timeout:   DefaultTimeout,
		worktree: func() (billy.Filesystem, error) {
			return memfs.New(), nil
		},
		cloneURL: func(fork *github.RepoInfo) string {
			return fork.CloneURL
		},
		upstreamURL: func(target config.RepoTarget) string {
			return target.CloneURL()
		},
	}
	if creds != nil {
		p.auth = git.BasicAuth(creds.Username, creds.Token)
		p.committer = git.Signature{
			Name:  creds.Username,
			Email: creds.Username + "@users.noreply.github.com",
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *Publisher) Name() string {
	return "github-pr"
}

// Publish merges the job's records into a fresh clone of the fork and
// delivers them as a pull request against the upstream catalog. Every remote
// step is classified into the pipeline's error categories on failure. The
// whole job runs under a deadline; hitting it fails this job only.
func (p *Publisher) Publish(ctx context.Context, job publisher.Job) publisher.JobResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result := publisher.JobResult{
		Mode:   job.Mode,
		Status: publisher.StatusSuccess,
		Branch: BranchName(job.ID, job.Mode),
	}
	for _, artifact := range job.Artifacts {
		result.Identifiers = append(result.Identifiers, artifact.ID)
	}

	target := job.Environment.Target()

	fork, err := p.api.EnsureFork(ctx, target.Owner, target.Name)
	if err != nil {
		result.Fail(publisher.ClassifyRemoteError("fork", err))
		return result
	}
	result.AddAction("ensured_fork", fmt.Sprintf("Fork ready: %s", fork.FullName), map[string]string{
		"fork": fork.FullName,
	})

	fs, err := p.worktree()
	if err != nil {
		result.Fail(fmt.Errorf("failed to prepare worktree: %w", err))
		return result
	}

	repo, err := git.Clone(ctx, p.cloneURL(fork), &git.Options{FS: fs, Auth: p.auth})
	if err != nil {
		result.Fail(publisher.ClassifyRemoteError("clone", err))
		return result
	}

	if err := p.prepareBranch(ctx, repo, target, result.Branch); err != nil {
		result.Fail(publisher.ClassifyRemoteError("branch", err))
		return result
	}
	result.AddAction("prepared_branch", fmt.Sprintf("Checked out branch %s at %s/%s",
		result.Branch, git.UpstreamRemoteName, target.BaseBranch), map[string]string{
		"branch": result.Branch,
	})

	mutation, err := p.merge(repo.FS(), job)
	if err != nil {
		result.Fail(err)
		return result
	}
	result.AddAction("merged_records", fmt.Sprintf("Merged %d record(s) into the catalog tree",
		len(job.Artifacts)), map[string]string{
		"created": strconv.Itoa(len(mutation.Created)),
		"updated": strconv.Itoa(len(mutation.Updated)),
	})

	upToDate := false
	hash, err := repo.CommitAll(CommitMessage(job, mutation), p.committer)
	switch {
	case errors.Is(err, git.ErrNoChanges):
		// The branch already carries these exact records.
		upToDate = true
		log.Debug("catalog already up to date", "branch", result.Branch)
	case err != nil:
		result.Fail(publisher.ClassifyRemoteError("commit", err))
		return result
	default:
		result.AddAction("created_commit", fmt.Sprintf("Committed records: %s", hash), map[string]string{
			"commit": hash,
		})
	}

	if err := repo.Push(ctx, git.DefaultRemoteName, result.Branch); err != nil {
		result.Fail(publisher.ClassifyRemoteError("push", err))
		return result
	}
	if !upToDate {
		result.AddAction("pushed_branch", fmt.Sprintf("Pushed branch to fork: %s", result.Branch), map[string]string{
			"branch": result.Branch,
		})
	}

	pr, created, err := p.ensurePullRequest(ctx, job, target, fork, result.Branch, mutation)
	if err != nil {
		result.Fail(publisher.ClassifyRemoteError("pull request", err))
		return result
	}
	result.PRNumber = pr.Number
	result.PRURL = pr.URL
	if created {
		result.AddAction("created_pr", fmt.Sprintf("Created PR #%d", pr.Number), map[string]string{
			"pr_number": strconv.Itoa(pr.Number),
			"pr_url":    pr.URL,
		})
	} else {
		result.AddAction("updated_pr", fmt.Sprintf("Updated PR #%d", pr.Number), map[string]string{
			"pr_number": strconv.Itoa(pr.Number),
			"pr_url":    pr.URL,
		})
		if upToDate {
			result.Status = publisher.StatusSkipped
		}
	}

	return result
}

// prepareBranch syncs the clone with the upstream catalog and checks out the
// publish branch on top of the upstream base.
func (p *Publisher) prepareBranch(ctx context.Context, repo *git.Repo, target config.RepoTarget, branch string) error {
	if err := repo.EnsureRemote(git.UpstreamRemoteName, p.upstreamURL(target)); err != nil {
		return err
	}
	if err := repo.Fetch(ctx, git.UpstreamRemoteName); err != nil {
		return err
	}

	baseRev := fmt.Sprintf("refs/remotes/%s/%s", git.UpstreamRemoteName, target.BaseBranch)
	return repo.EnsureBranchAt(ctx, branch, baseRev)
}

// merge loads the catalog tree from the worktree, merges the job's records
// and writes the result back.
func (p *Publisher) merge(fs billy.Filesystem, job publisher.Job) (*tree.Mutation, error) {
	cat, err := tree.Load(fs)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog tree: %w", err)
	}

	mutation, err := tree.Merge(cat, job.Artifacts)
	if err != nil {
		return nil, err
	}

	if err := mutation.Apply(fs); err != nil {
		return nil, fmt.Errorf("failed to apply merge: %w", err)
	}
	return mutation, nil
}

// ensurePullRequest finds the open PR for the publish branch, updating it
// when present and creating it when absent.
func (p *Publisher) ensurePullRequest(ctx context.Context, job publisher.Job, target config.RepoTarget,
	fork *github.RepoInfo, branch string, mutation *tree.Mutation) (*github.PRInfo, bool, error) {

	title := PRTitle(job)
	body := PRBody(job, mutation)

	existing, err := p.api.FindPullRequestByHead(ctx, target.Owner, target.Name, branch)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for existing PR: %w", err)
	}

	if existing != nil {
		pr, err := p.api.UpdatePullRequest(ctx, target.Owner, target.Name, existing.Number, title, body)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update PR: %w", err)
		}
		return pr, false, nil
	}

	head := branch
	if fork.Owner != target.Owner {
		head = fork.Owner + ":" + branch
	}
	pr, err := p.api.CreatePullRequest(ctx, target.Owner, target.Name, &github.NewPullRequest{
		Title:               title,
		Head:                head,
		Base:                target.BaseBranch,
		Body:                body,
		MaintainerCanModify: true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create PR: %w", err)
	}
	return pr, true, nil
}
