package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GitAccessFile is the name of the credential file searched for in the
	// working directory and the user's home directory.
	GitAccessFile = ".gitaccess"

	// UsernameEnv and TokenEnv override the credential file when set.
	UsernameEnv = "DEEPCODE_GITHUB_USERNAME"
	TokenEnv    = "DEEPCODE_GITHUB_TOKEN"
)

// GitAccess holds the GitHub credentials used for publishing. The pipeline
// never inspects the file layout beyond this pair.
type GitAccess struct {
	Username string `yaml:"github-username"`
	Token    string `yaml:"github-token"`
}

// LoadGitAccess loads credentials with the following precedence:
// environment variables, then a .gitaccess file in dir, then one in the
// user's home directory.
func LoadGitAccess(dir string) (*GitAccess, error) {
	if user, token := os.Getenv(UsernameEnv), os.Getenv(TokenEnv); user != "" && token != "" {
		return &GitAccess{Username: user, Token: token}, nil
	}

	paths := []string{filepath.Join(dir, GitAccessFile)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, GitAccessFile))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var access GitAccess
		if err := yaml.Unmarshal(data, &access); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if access.Username == "" || access.Token == "" {
			return nil, fmt.Errorf("github credentials are missing in %s", path)
		}
		return &access, nil
	}

	return nil, fmt.Errorf("no credentials found: set %s/%s or provide a %s file", UsernameEnv, TokenEnv, GitAccessFile)
}
