package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/deep-esdl/deep-code/pkg/catalog"
)

// MergeConflictError reports an identifier or namespace clash inside a
// single publish run. The merge for that mode is aborted with no partial
// write.
type MergeConflictError struct {
	ID     string
	Reason string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict for %q: %s", e.ID, e.Reason)
}

// IsMergeConflictError reports whether err is (or wraps) a MergeConflictError.
func IsMergeConflictError(err error) bool {
	var me *MergeConflictError
	return errors.As(err, &me)
}

// Mutation is the fully computed result of merging artifacts into a catalog
// tree. It is handed to repository automation for a single atomic commit.
type Mutation struct {
	// Files maps record paths (and the index file) to their new content.
	Files map[string][]byte

	// Created and Updated list the identifiers that were inserted or
	// replaced, in artifact order.
	Created []string
	Updated []string
}

// IsEmpty reports whether the mutation changes nothing beyond the index.
func (m *Mutation) IsEmpty() bool {
	return len(m.Created) == 0 && len(m.Updated) == 0
}

// Identifiers returns the merged identifiers, created first, then updated.
func (m *Mutation) Identifiers() []string {
	ids := append([]string{}, m.Created...)
	return append(ids, m.Updated...)
}

// Paths returns the touched file paths in sorted order.
func (m *Mutation) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Apply writes every staged file into the target filesystem. Callers apply a
// mutation exactly once, onto the branch working copy that will be committed.
func (m *Mutation) Apply(fs billy.Filesystem) error {
	for _, p := range m.Paths() {
		if dir := path.Dir(p); dir != "." {
			if err := fs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		if err := util.WriteFile(fs, p, m.Files[p], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
	}
	return nil
}

// Merge computes the tree mutation for the given artifacts.
//
// For each artifact, the index is consulted by record path (paths derive
// deterministically from identifiers): an absent record is inserted and its
// index entry appended at the end; a present record is replaced wholesale
// and its index entry updated in place. Sibling entries and unrelated record
// files are never touched. Records removed from config are not pruned.
func Merge(c *Catalog, artifacts []catalog.Artifact) (*Mutation, error) {
	if err := checkClashes(artifacts); err != nil {
		return nil, err
	}

	links := make([]indexLink, len(c.links))
	copy(links, c.links)

	byHref := make(map[string]int, len(links))
	for i, l := range links {
		if l.entry.Rel == "child" || l.entry.Rel == "item" {
			byHref[l.entry.Href] = i
		}
	}

	mut := &Mutation{Files: make(map[string][]byte, len(artifacts)+1)}

	for _, a := range artifacts {
		data, err := a.MarshalRecord()
		if err != nil {
			return nil, err
		}
		mut.Files[a.Path] = data

		entry := Entry{Rel: "child", Href: a.Path, Type: "application/json", Title: a.Title}
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal index entry for %q: %w", a.ID, err)
		}
		link := indexLink{entry: entry, raw: raw}

		if i, ok := byHref[a.Path]; ok {
			links[i] = link
			mut.Updated = append(mut.Updated, a.ID)
		} else {
			links = append(links, link)
			byHref[a.Path] = len(links) - 1
			mut.Created = append(mut.Created, a.ID)
		}
	}

	indexData, err := renderIndex(c.root, links)
	if err != nil {
		return nil, err
	}
	mut.Files[IndexFile] = indexData

	return mut, nil
}

// checkClashes rejects artifact sets that would write the same identifier or
// record path twice in one run, or map one identifier onto another's
// namespace.
func checkClashes(artifacts []catalog.Artifact) error {
	seenID := make(map[string]catalog.Kind, len(artifacts))
	seenPath := make(map[string]string, len(artifacts))

	for _, a := range artifacts {
		if a.ID == "" {
			return &MergeConflictError{ID: a.Path, Reason: "artifact has no identifier"}
		}
		if a.Path == "" || strings.HasPrefix(a.Path, "/") || strings.Contains(a.Path, "..") {
			return &MergeConflictError{ID: a.ID, Reason: fmt.Sprintf("invalid record path %q", a.Path)}
		}
		if kind, ok := seenID[a.ID]; ok {
			return &MergeConflictError{ID: a.ID, Reason: fmt.Sprintf("identifier already used by a %s artifact in this run", kind)}
		}
		if owner, ok := seenPath[a.Path]; ok {
			return &MergeConflictError{ID: a.ID, Reason: fmt.Sprintf("record path %q already claimed by %q", a.Path, owner)}
		}
		seenID[a.ID] = a.Kind
		seenPath[a.Path] = a.ID
	}
	return nil
}
