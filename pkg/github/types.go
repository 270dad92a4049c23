package github

import "time"

// PRInfo contains basic pull request information
type PRInfo struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	URL       string    `json:"url"`
	BaseRef   string    `json:"base_ref"`
	HeadRef   string    `json:"head_ref"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPullRequest contains information for creating a new pull request
type NewPullRequest struct {
	Title               string `json:"title"`
	Head                string `json:"head"`
	Base                string `json:"base"`
	Body                string `json:"body"`
	MaintainerCanModify bool   `json:"maintainer_can_modify"`
}

// RepoInfo contains basic repository information
type RepoInfo struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	CloneURL      string `json:"clone_url"`
	DefaultBranch string `json:"default_branch"`
	Fork          bool   `json:"fork"`
}

// ActorInfo represents the authenticated GitHub user
type ActorInfo struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}
