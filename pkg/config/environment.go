package config

import "fmt"

// Environment selects which upstream catalog repository a publish run writes
// into. The three environments map to distinct, non-overlapping repositories.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvStaging    Environment = "staging"
	EnvTesting    Environment = "testing"
)

// RepoTarget identifies an upstream catalog repository.
type RepoTarget struct {
	Owner string
	Name  string

	// BaseBranch is the upstream default branch pull requests target.
	BaseBranch string
}

// FullName returns the owner/name form of the repository.
func (t RepoTarget) FullName() string {
	return t.Owner + "/" + t.Name
}

// CloneURL returns the HTTPS clone URL of the repository.
func (t RepoTarget) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", t.Owner, t.Name)
}

const catalogRepoOwner = "ESA-EarthCODE"

var environmentTargets = map[Environment]RepoTarget{
	EnvProduction: {Owner: catalogRepoOwner, Name: "open-science-catalog-metadata", BaseBranch: "main"},
	EnvStaging:    {Owner: catalogRepoOwner, Name: "open-science-catalog-metadata-staging", BaseBranch: "main"},
	EnvTesting:    {Owner: catalogRepoOwner, Name: "open-science-catalog-metadata-testing", BaseBranch: "main"},
}

// ParseEnvironment validates an environment name from the CLI.
func ParseEnvironment(name string) (Environment, error) {
	env := Environment(name)
	if _, ok := environmentTargets[env]; !ok {
		return "", fmt.Errorf("unknown environment %q (expected production, staging or testing)", name)
	}
	return env, nil
}

// Valid reports whether the environment names a known catalog repository.
func (e Environment) Valid() bool {
	_, ok := environmentTargets[e]
	return ok
}

// Target resolves the upstream repository for the environment.
func (e Environment) Target() RepoTarget {
	return environmentTargets[e]
}
