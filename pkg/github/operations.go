package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/deep-esdl/deep-code/pkg/log"
)

// forkPollInterval is the wait between polls while GitHub materializes a
// freshly requested fork.
const forkPollInterval = 2 * time.Second

// forkPollAttempts bounds the fork readiness polling.
const forkPollAttempts = 10

// convertFromGitHubPR converts a github.PullRequest to our PRInfo type
func convertFromGitHubPR(pr *github.PullRequest) *PRInfo {
	var baseRef, headRef string
	if base := pr.GetBase(); base != nil {
		baseRef = base.GetRef()
	}
	if head := pr.GetHead(); head != nil {
		headRef = head.GetRef()
	}

	author := ""
	if user := pr.GetUser(); user != nil {
		author = user.GetLogin()
	}

	return &PRInfo{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		State:     pr.GetState(),
		URL:       pr.GetHTMLURL(),
		BaseRef:   baseRef,
		HeadRef:   headRef,
		Author:    author,
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

// convertFromGitHubRepo converts a github.Repository to our RepoInfo type
func convertFromGitHubRepo(repo *github.Repository) *RepoInfo {
	owner := ""
	if repo.GetOwner() != nil {
		owner = repo.GetOwner().GetLogin()
	}
	return &RepoInfo{
		Owner:         owner,
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		CloneURL:      repo.GetCloneURL(),
		DefaultBranch: repo.GetDefaultBranch(),
		Fork:          repo.GetFork(),
	}
}

// GetCurrentUser retrieves the authenticated user's identity information
func (c *Client) GetCurrentUser(ctx context.Context) (*ActorInfo, error) {
	var info *ActorInfo
	err := c.withRetry(ctx, func() error {
		user, _, err := c.GitHubClient().Users.Get(ctx, "")
		if err != nil {
			return err
		}
		info = &ActorInfo{Login: user.GetLogin(), Type: user.GetType()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return info, nil
}

// GetRepository fetches basic repository information
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*RepoInfo, error) {
	var info *RepoInfo
	err := c.withRetry(ctx, func() error {
		r, _, err := c.GitHubClient().Repositories.Get(ctx, owner, repo)
		if err != nil {
			return err
		}
		info = convertFromGitHubRepo(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// EnsureFork makes sure a fork of owner/repo exists under the authenticated
// user's account, creating it when absent and reusing it when present.
// Fork creation is asynchronous on GitHub's side, so a freshly requested
// fork is polled until it becomes available.
func (c *Client) EnsureFork(ctx context.Context, owner, repo string) (*RepoInfo, error) {
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	// Reuse an existing fork.
	existing, err := c.GetRepository(ctx, user.Login, repo)
	if err == nil && existing.Fork {
		log.Debug("reusing existing fork", "fork", existing.FullName)
		return existing, nil
	}
	if err != nil && !IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check for existing fork: %w", err)
	}
	if err == nil && !existing.Fork {
		return nil, fmt.Errorf("repository %s/%s exists but is not a fork of %s/%s", user.Login, repo, owner, repo)
	}

	log.Info("forking repository", "upstream", owner+"/"+repo, "user", user.Login)
	_, _, err = c.GitHubClient().Repositories.CreateFork(ctx, owner, repo, nil)
	if err != nil {
		// 202 Accepted means the fork is being created asynchronously.
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) {
			return nil, fmt.Errorf("failed to create fork: %w", err)
		}
	}

	for attempt := 0; attempt < forkPollAttempts; attempt++ {
		fork, err := c.GetRepository(ctx, user.Login, repo)
		if err == nil {
			return fork, nil
		}
		if !IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to poll fork: %w", err)
		}

		select {
		case <-time.After(forkPollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("fork of %s/%s did not become available", owner, repo)
}

// CreatePullRequest creates a new pull request
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, newPR *NewPullRequest) (*PRInfo, error) {
	var info *PRInfo
	err := c.withRetry(ctx, func() error {
		pr, _, err := c.GitHubClient().PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
			Title:               &newPR.Title,
			Head:                &newPR.Head,
			Base:                &newPR.Base,
			Body:                &newPR.Body,
			MaintainerCanModify: github.Bool(newPR.MaintainerCanModify),
		})
		if err != nil {
			return err
		}
		info = convertFromGitHubPR(pr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return info, nil
}

// UpdatePullRequest updates an existing pull request
func (c *Client) UpdatePullRequest(ctx context.Context, owner, repo string, prNumber int, title, body string) (*PRInfo, error) {
	var info *PRInfo
	err := c.withRetry(ctx, func() error {
		pr, _, err := c.GitHubClient().PullRequests.Edit(ctx, owner, repo, prNumber, &github.PullRequest{
			Title: &title,
			Body:  &body,
		})
		if err != nil {
			return err
		}
		info = convertFromGitHubPR(pr)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request: %w", err)
	}
	return info, nil
}

// ListPullRequests lists all pull requests with the given state
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string, state string) ([]*PRInfo, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allPRs []*PRInfo
	for {
		var prs []*github.PullRequest
		var resp *github.Response
		err := c.withRetry(ctx, func() error {
			var err error
			prs, resp, err = c.GitHubClient().PullRequests.List(ctx, owner, repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			allPRs = append(allPRs, convertFromGitHubPR(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allPRs, nil
}

// FindPullRequestByHead finds the open PR whose head branch matches, or nil.
func (c *Client) FindPullRequestByHead(ctx context.Context, owner, repo, headBranch string) (*PRInfo, error) {
	prs, err := c.ListPullRequests(ctx, owner, repo, "open")
	if err != nil {
		return nil, err
	}
	for _, pr := range prs {
		if pr.HeadRef == headBranch {
			return pr, nil
		}
	}
	return nil, nil
}
