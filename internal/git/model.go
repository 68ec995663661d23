// Package git acquires diffs from the host git binary and describes the repository they come from
package git

import (
	"strings"
)

// Scope identifies which changes a DiffRequest selects
type Scope string

const (
	// ScopeStaged selects changes in the index (git diff --cached)
	ScopeStaged Scope = "staged"
	// ScopeFile selects changes to a single path
	ScopeFile Scope = "file"
	// ScopeCommit selects a commit or a commit range
	ScopeCommit Scope = "commit"
	// ScopeArgs passes raw arguments through to git diff
	ScopeArgs Scope = "args"
	// ScopeUnstaged selects working tree changes not yet staged
	ScopeUnstaged Scope = "unstaged"
)

// DiffRequest describes which diff to acquire. When several selectors are set,
// Staged wins over File, File over Commit, Commit over Args, and Args over Unstaged.
// With nothing set the staged changes are used.
type DiffRequest struct {
	Staged   bool
	Unstaged bool
	File     string
	Commit   string
	Args     []string
	MaxChars int // 0 disables truncation
}

// Scope returns the selector that applies to the request
func (r DiffRequest) Scope() Scope {
	switch {
	case r.Staged:
		return ScopeStaged
	case r.File != "":
		return ScopeFile
	case r.Commit != "":
		return ScopeCommit
	case len(r.Args) > 0:
		return ScopeArgs
	case r.Unstaged:
		return ScopeUnstaged
	default:
		return ScopeStaged
	}
}

// GitArgs returns the full git argument list, starting with "diff"
func (r DiffRequest) GitArgs() []string {
	return append([]string{"diff"}, r.selectorArgs()...)
}

// ColorArgs returns GitArgs with --color=always inserted after "diff"
func (r DiffRequest) ColorArgs() []string {
	return append([]string{"diff", "--color=always"}, r.selectorArgs()...)
}

func (r DiffRequest) selectorArgs() []string {
	switch r.Scope() {
	case ScopeFile:
		return []string{"--", r.File}
	case ScopeCommit:
		if strings.Contains(r.Commit, "..") {
			return []string{r.Commit}
		}
		return []string{r.Commit + "^.." + r.Commit}
	case ScopeArgs:
		return append([]string(nil), r.Args...)
	case ScopeUnstaged:
		return nil
	default:
		return []string{"--cached"}
	}
}

// ChangeType represents the type of change to a file
type ChangeType string

const (
	// ChangeTypeAdded represents a file that was added
	ChangeTypeAdded ChangeType = "added"
	// ChangeTypeModified represents a file that was modified
	ChangeTypeModified ChangeType = "modified"
	// ChangeTypeDeleted represents a file that was deleted
	ChangeTypeDeleted ChangeType = "deleted"
	// ChangeTypeRenamed represents a file that was renamed
	ChangeTypeRenamed ChangeType = "renamed"
)

// FileStat summarizes the changes to one file in a diff
type FileStat struct {
	Path       string
	OldPath    string // Only set for renamed files
	ChangeType ChangeType
	Language   string
	Added      int
	Deleted    int
	Binary     bool
}

// Summary aggregates per-file statistics of a diff
type Summary struct {
	Files   []FileStat
	Added   int
	Deleted int
}

// RepoInfo describes the repository a diff is taken from
type RepoInfo struct {
	Root     string
	Branch   string // Empty when HEAD is detached
	Head     string // Abbreviated HEAD commit hash, empty in a repository without commits
	Detached bool
}
