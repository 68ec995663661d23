package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/loggy"
)

// Runner executes the git binary
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Service provides Git operations
type Service struct {
	logger  *loggy.Logger
	runner  Runner
	dir     string
	timeout time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithRunner replaces the git binary runner
func WithRunner(r Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithDir sets the working directory git runs in. The default is the process working directory.
func WithDir(dir string) Option {
	return func(s *Service) { s.dir = dir }
}

// WithTimeout bounds every git invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a new Git service
func NewService(logger *loggy.Logger, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDiff runs git diff for the request and returns its output, truncated to req.MaxChars
func (s *Service) GetDiff(ctx context.Context, req DiffRequest) (string, error) {
	out, err := s.run(ctx, req.GitArgs())
	if err != nil {
		return "", err
	}

	diff := string(out)
	s.logger.Debug("Acquired diff", "scope", req.Scope(), "chars", len([]rune(diff)))

	if truncated := Truncate(diff, req.MaxChars); len(truncated) != len(diff) {
		s.logger.Info("Diff truncated", "max_chars", req.MaxChars)
		diff = truncated
	}

	return diff, nil
}

// WriteColorDiff writes the request's diff with git's own ANSI coloring to w
func (s *Service) WriteColorDiff(ctx context.Context, req DiffRequest, w io.Writer) error {
	out, err := s.run(ctx, req.ColorArgs())
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing colored diff: %w", err)
	}
	return nil
}

func (s *Service) run(ctx context.Context, args []string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug("Running git", "args", strings.Join(args, " "), "dir", s.dir)

	stdout, stderr, err := s.runner.Run(ctx, s.dir, args...)
	if err == nil {
		return stdout, nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, errs.Git(ctx.Err(), "Git error: git %s timed out after %s", args[0], s.timeout)
	case errors.Is(err, exec.ErrNotFound):
		return nil, errs.Git(err, "Git error: git executable not found in PATH")
	}

	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		msg = err.Error()
	}
	s.logger.Debug("git failed", "args", strings.Join(args, " "), "error", err, "stderr", msg)
	return nil, errs.Git(err, "Git error: %s", msg)
}

// Truncate cuts diff to maxChars characters and appends a notice with the original size.
// A non-positive maxChars, or a diff that already fits, is returned unchanged.
func Truncate(diff string, maxChars int) string {
	if maxChars <= 0 {
		return diff
	}

	runes := []rune(diff)
	if len(runes) <= maxChars {
		return diff
	}

	return string(runes[:maxChars]) +
		fmt.Sprintf("\n\n[Diff truncated to %d characters. Original size: %d characters]", maxChars, len(runes))
}

// Describe reports the repository root, branch and HEAD for the service's working directory
func (s *Service) Describe() (*RepoInfo, error) {
	dir := s.dir
	if dir == "" {
		dir = "."
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}

	info := &RepoInfo{}
	if wt, err := repo.Worktree(); err == nil {
		info.Root = wt.Filesystem.Root()
	} else if abs, err := filepath.Abs(dir); err == nil {
		info.Root = abs
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No commits yet; HEAD still names the unborn branch
			if ref, err := repo.Storer.Reference(plumbing.HEAD); err == nil && ref.Type() == plumbing.SymbolicReference {
				info.Branch = ref.Target().Short()
			}
			return info, nil
		}
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}

	info.Head = head.Hash().String()[:7]
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	} else {
		info.Detached = true
	}

	s.logger.Debug("Described repository", "root", info.Root, "branch", info.Branch, "head", info.Head)
	return info, nil
}
