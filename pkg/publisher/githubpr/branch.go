package githubpr

import (
	"fmt"
	"strings"

	"github.com/deep-esdl/deep-code/pkg/publisher"
	"github.com/deep-esdl/deep-code/pkg/tree"
)

// BranchPrefix namespaces all publish branches on the fork.
const BranchPrefix = "publish"

// BranchName derives the deterministic publish branch for a job. The same
// identifier and mode always map to the same branch, which is what lets a
// re-run reuse its earlier branch and pull request.
func BranchName(id string, mode publisher.Mode) string {
	return fmt.Sprintf("%s/%s-%s", BranchPrefix, sanitizeRef(id), mode)
}

// sanitizeRef turns an identifier into a git ref component.
func sanitizeRef(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		s = "records"
	}
	return s
}

// CommitMessage renders the commit message for a merged record set.
func CommitMessage(job publisher.Job, mutation *tree.Mutation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Add %s records for %s\n\n", job.Mode, job.ID)
	for _, id := range mutation.Created {
		fmt.Fprintf(&b, "- add %s\n", id)
	}
	for _, id := range mutation.Updated {
		fmt.Fprintf(&b, "- update %s\n", id)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PRTitle renders the pull request title for a job.
func PRTitle(job publisher.Job) string {
	switch job.Mode {
	case publisher.ModeWorkflow:
		return fmt.Sprintf("Add workflow %s", job.ID)
	default:
		return fmt.Sprintf("Add dataset collection %s", job.ID)
	}
}

// PRBody renders the pull request body, listing every record the branch
// carries.
func PRBody(job publisher.Job, mutation *tree.Mutation) string {
	var b strings.Builder
	if job.Title != "" && job.Title != job.ID {
		fmt.Fprintf(&b, "%s\n\n", job.Title)
	}
	fmt.Fprintf(&b, "This pull request publishes %s metadata for `%s`.\n\n", job.Mode, job.ID)
	if len(mutation.Created) > 0 {
		b.WriteString("New records:\n")
		for _, id := range mutation.Created {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
		b.WriteString("\n")
	}
	if len(mutation.Updated) > 0 {
		b.WriteString("Updated records:\n")
		for _, id := range mutation.Updated {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
