package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/git"
	"github.com/tildaslashalef/prreview/internal/review"
)

func newTestConsole(opts ...Option) (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	opts = append([]Option{WithInteractive(false), WithWidth(80)}, opts...)
	return New(&out, &errOut, opts...), &out, &errOut
}

func TestNotice(t *testing.T) {
	c, out, errOut := newTestConsole()

	c.Notice("Information", "No changes found.")

	assert.Contains(t, out.String(), "Information")
	assert.Contains(t, out.String(), "No changes found.")
	assert.Empty(t, errOut.String())
}

func TestError(t *testing.T) {
	cause := errors.New("fatal: bad revision 'nope'")
	err := fmt.Errorf("review: %w", errs.Git(cause, "Git error: %v", cause))

	t.Run("plain", func(t *testing.T) {
		c, out, errOut := newTestConsole()
		c.Error(err, false, "run-01J0000000000000000000000")

		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "Error: review: Git error: fatal: bad revision 'nope'")
		assert.NotContains(t, errOut.String(), "caused by:")
		assert.NotContains(t, errOut.String(), "run:")
	})

	t.Run("verbose", func(t *testing.T) {
		c, _, errOut := newTestConsole()
		c.Error(err, true, "run-01J0000000000000000000000")

		assert.Contains(t, errOut.String(), "run: run-01J0000000000000000000000")
		assert.Contains(t, errOut.String(), "caused by:")
		assert.Contains(t, errOut.String(), "kind: git")
		assert.Equal(t, 2, strings.Count(errOut.String(), "caused by:"))
	})
}

func TestTable(t *testing.T) {
	c, out, _ := newTestConsole()

	c.Table("Configuration", []string{"Key", "Value"}, [][]string{
		{"provider", "gemini"},
		{"api_keys.gemini", "****"},
	})

	got := out.String()
	assert.Contains(t, got, "Configuration")
	assert.Contains(t, got, "KEY")
	assert.Contains(t, got, "api_keys.gemini")
	assert.Contains(t, got, "****")
}

func TestHeader(t *testing.T) {
	c, out, _ := newTestConsole()

	c.Header(review.Header{
		Provider: "gemini",
		Model:    "gemini-test",
		Repo:     &git.RepoInfo{Root: "/src/app", Branch: "main", Head: "abc1234"},
		Summary: &git.Summary{
			Files: []git.FileStat{
				{Path: "main.go", ChangeType: git.ChangeTypeAdded, Language: "Go", Added: 3},
				{Path: "logo.png", ChangeType: git.ChangeTypeModified, Binary: true},
			},
			Added: 3,
		},
	})

	got := out.String()
	assert.Contains(t, got, "/src/app (main @ abc1234)")
	assert.Contains(t, got, "gemini (gemini-test)")
	assert.Contains(t, got, "main.go")
	assert.Contains(t, got, "binary")
	assert.Contains(t, got, "2 files")
	assert.Contains(t, got, "+3")
}

func TestHeaderWithoutRepo(t *testing.T) {
	c, out, _ := newTestConsole()

	c.Header(review.Header{Provider: "openai", Model: "gpt"})

	assert.NotContains(t, out.String(), "Repository:")
	assert.Contains(t, out.String(), "openai (gpt)")
}

func TestDescribeRepo(t *testing.T) {
	assert.Equal(t, "/r (detached at 1234567)", describeRepo(&git.RepoInfo{Root: "/r", Head: "1234567", Detached: true}))
	assert.Equal(t, "/r (trunk, no commits)", describeRepo(&git.RepoInfo{Root: "/r", Branch: "trunk"}))
}

func TestReview(t *testing.T) {
	c, out, _ := newTestConsole()

	c.Review("Looks good overall.\n\nConclusion: approved")

	got := out.String()
	assert.Contains(t, got, "AI PR Review")
	assert.Contains(t, got, "Looks good overall.")
}

func TestConclusion(t *testing.T) {
	tests := []struct {
		name       string
		conclusion review.Conclusion
		want       string
	}{
		{"changes", review.ConclusionMakeChanges, "Review failed: Changes requested"},
		{"approved", review.ConclusionApproved, "Review passed: Approved"},
		{"none", review.ConclusionNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, _ := newTestConsole()
			c.Conclusion(tt.conclusion)

			if tt.want == "" {
				assert.Empty(t, out.String())
				return
			}
			assert.Equal(t, "\n"+tt.want+"\n", out.String())
		})
	}
}

func TestProgress(t *testing.T) {
	t.Run("non-interactive is silent", func(t *testing.T) {
		c, out, _ := newTestConsole()
		c.Progress("partial")
		assert.Empty(t, out.String())
	})

	t.Run("interactive writes only the new suffix", func(t *testing.T) {
		c, out, _ := newTestConsole(WithInteractive(true))

		c.Progress("Looks")
		c.Progress("Looks good")
		c.Progress("Looks good")

		got := out.String()
		assert.Equal(t, 1, strings.Count(got, "Looks"))
		assert.Equal(t, 1, strings.Count(got, " good"))
	})
}

func TestSpinnerNonInteractive(t *testing.T) {
	c, out, _ := newTestConsole()

	stop := c.Spinner(context.Background(), "Generating review")
	require.NotNil(t, stop)
	stop()
	stop()

	assert.Empty(t, out.String())
}

func TestSpinnerStopsWithContext(t *testing.T) {
	c, _, _ := newTestConsole(WithInteractive(true))

	ctx, cancel := context.WithCancel(context.Background())
	stop := c.Spinner(ctx, "Generating review")
	cancel()
	stop()
}
