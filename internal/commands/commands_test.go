package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/prreview/internal/app"
	"github.com/tildaslashalef/prreview/internal/config"
	"github.com/tildaslashalef/prreview/internal/console"
	"github.com/tildaslashalef/prreview/internal/llm"
)

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func testOptions(t *testing.T) app.Options {
	t.Helper()
	return app.Options{
		ConfigPath: filepath.Join(t.TempDir(), "pr-review.toml"),
		Console:    []console.Option{console.WithInteractive(false), console.WithWidth(100)},
	}
}

// runCLI runs pr-review with args and captures its output and exit code
func runCLI(t *testing.T, opts app.Options, args ...string) cliResult {
	t.Helper()

	cliApp := NewApp(BuildInfo{Version: "1.2.3", CommitHash: "abc1234", BuildTime: "2025-01-01T00:00:00Z"}, opts)
	var out, errOut bytes.Buffer
	cliApp.Writer = &out
	cliApp.ErrWriter = &errOut

	code := Execute(context.Background(), cliApp, append([]string{"pr-review"}, args...))
	return cliResult{stdout: out.String(), stderr: errOut.String(), code: code}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
}

// setupRepo creates a repository with one commit and a staged main.go
func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644))
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "Initial commit")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0644))
	runGit(t, dir, "add", "main.go")

	return dir
}

// geminiServer replies to every streaming request with chunks of review text
func geminiServer(t *testing.T, chunks ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			_, _ = fmt.Fprintf(w, `data: {"candidates":[{"content":{"parts":[{"text":%q}],"role":"model"}}]}`+"\n\n", c)
		}
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func reviewOptions(t *testing.T, dir string, server *httptest.Server) app.Options {
	opts := testOptions(t)
	opts.Dir = dir
	opts.GeminiHooks = []llm.GeminiOption{
		llm.WithGeminiBaseURL(server.URL + "/"),
		llm.WithGeminiHTTPClient(server.Client()),
	}
	return opts
}

func TestSuggest(t *testing.T) {
	names := []string{"review", "diff", "config", "completion", "version"}

	assert.Equal(t, "review", Suggest("revew", names)[0])
	assert.Equal(t, "config", Suggest("cnfig", names)[0])
	assert.Empty(t, Suggest("xyzzy", names))
	assert.LessOrEqual(t, len(Suggest("c", []string{"ca", "cb", "cc", "cd", "ce"})), 3)
}

func TestUnknownCommand(t *testing.T) {
	res := runCLI(t, testOptions(t), "revew")

	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unknown command 'revew'.")
	assert.Contains(t, res.stderr, "Did you mean one of these?")
	assert.Contains(t, res.stderr, "review")
	assert.Contains(t, res.stderr, "pr-review --help")
}

func TestUnknownCommandWithoutSuggestions(t *testing.T) {
	res := runCLI(t, testOptions(t), "xyzzy")

	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unknown command 'xyzzy'.")
	assert.NotContains(t, res.stderr, "Did you mean")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	res := runCLI(t, testOptions(t), "review", "--no-such-flag")
	assert.Equal(t, 2, res.code)
}

func TestConfigCommands(t *testing.T) {
	opts := testOptions(t)

	res := runCLI(t, opts, "config", "set", "provider", "OpenAI")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Configuration Updated")
	assert.Contains(t, res.stdout, "Updated: provider = OpenAI")

	data, err := os.ReadFile(opts.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `provider = "openai"`)

	res = runCLI(t, opts, "config", "set", "api_keys.gemini", "secret-key")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Updated: api_keys.gemini = ****")
	assert.NotContains(t, res.stdout, "secret-key")

	res = runCLI(t, opts, "config", "get", "api_keys.gemini")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "api_keys.gemini: ****")

	res = runCLI(t, opts, "config", "get", "provider")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "provider: openai")

	res = runCLI(t, opts, "config", "list")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "api_keys.gemini")
	assert.Contains(t, res.stdout, "<not set>")
	assert.Contains(t, res.stdout, opts.ConfigPath)
	assert.NotContains(t, res.stdout, "secret-key")

	res = runCLI(t, opts, "config", "unset", "api_keys.gemini")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Removed: api_keys.gemini")

	res = runCLI(t, opts, "config", "unset", "api_keys.gemini")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Key 'api_keys.gemini' not found in config")

	res = runCLI(t, opts, "config", "path")
	require.Equal(t, 0, res.code)
	assert.Equal(t, opts.ConfigPath+"\n", res.stdout)
}

func TestConfigSetKeepsEnvOverridesOutOfFile(t *testing.T) {
	t.Setenv("PR_REVIEW_MODEL", "env-only-model")
	t.Setenv("PR_REVIEW_MAX_CHARS", "123")
	opts := testOptions(t)

	res := runCLI(t, opts, "config", "set", "api_keys.gemini", "k")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(opts.ConfigPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env-only-model")
	assert.NotContains(t, string(data), "max_chars = 123")
	assert.Contains(t, string(data), config.DefaultModel)

	res = runCLI(t, opts, "config", "unset", "api_keys.gemini")
	require.Equal(t, 0, res.code, res.stderr)

	data, err = os.ReadFile(opts.ConfigPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env-only-model")

	res = runCLI(t, opts, "config", "get", "model")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "model: "+config.DefaultModel)
}

func TestConfigGetMissingKeyWarns(t *testing.T) {
	res := runCLI(t, testOptions(t), "config", "get", "nope")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Warning")
	assert.Contains(t, res.stdout, "Key 'nope' not found in config")
}

func TestConfigSetErrors(t *testing.T) {
	opts := testOptions(t)

	res := runCLI(t, opts, "config", "set", "max_chars", "lots")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "max_chars")

	res = runCLI(t, opts, "config", "set", "provder", "openai")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unknown config key 'provder'.")
	assert.Contains(t, res.stderr, "provider")

	res = runCLI(t, opts, "config", "set", "provider")
	assert.Equal(t, 2, res.code)

	res = runCLI(t, opts, "config", "sett", "provider", "openai")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unknown command 'sett'.")

	_, err := os.Stat(opts.ConfigPath)
	assert.True(t, os.IsNotExist(err), "failed commands must not write the config")
}

func TestMalformedConfigIsConfigError(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.ConfigPath, []byte("provider = [unclosed"), 0600))

	res := runCLI(t, opts, "config", "list")

	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Error loading config")
}

func TestCompletion(t *testing.T) {
	opts := testOptions(t)

	for _, shell := range []string{"bash", "zsh", "fish"} {
		res := runCLI(t, opts, "completion", shell)
		require.Equal(t, 0, res.code, shell)
		assert.Contains(t, res.stdout, "--generate-bash-completion", shell)
		assert.Contains(t, res.stdout, "pr-review", shell)
	}

	res := runCLI(t, opts, "completion", "tcsh")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unsupported shell 'tcsh'")

	res = runCLI(t, opts, "completion")
	assert.Equal(t, 2, res.code)
}

func TestVersion(t *testing.T) {
	res := runCLI(t, testOptions(t), "version")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "pr-review 1.2.3")
	assert.Contains(t, res.stdout, "abc1234")
}

func TestDiffCommand(t *testing.T) {
	dir := setupRepo(t)
	opts := testOptions(t)
	opts.Dir = dir

	res := runCLI(t, opts, "diff", "--staged")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "+func main() {}")

	res = runCLI(t, opts, "diff", "--stat")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "main.go")
	assert.Contains(t, res.stdout, "+3")

	res = runCLI(t, opts, "diff", "--stat", "--max-chars", "20")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "main.go")
	assert.Contains(t, res.stdout, "+3")

	res = runCLI(t, opts, "diff", "--unstaged")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No changes found.")

	res = runCLI(t, opts, "diff", "--commit", "does-not-exist")
	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stderr, "Git error")
}

func TestReviewCommand(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	t.Run("approved", func(t *testing.T) {
		server, calls := geminiServer(t, "Looks good.", "\n\nConclusion: APPROVED")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review")

		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, int32(1), calls.Load())
		assert.Contains(t, res.stdout, "AI PR Review")
		assert.Contains(t, res.stdout, "Looks good.")
		assert.Contains(t, res.stdout, "Review passed: Approved")
		assert.Contains(t, res.stdout, "main.go")
	})

	t.Run("default action reviews", func(t *testing.T) {
		server, calls := geminiServer(t, "Conclusion: APPROVED")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server))

		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("changes requested", func(t *testing.T) {
		server, _ := geminiServer(t, "- rename x\n\nConclusion: MAKE CHANGES")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review")

		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stdout, "Review failed: Changes requested")
		assert.Empty(t, res.stderr)
	})

	t.Run("ignore errors", func(t *testing.T) {
		server, _ := geminiServer(t, "Conclusion: MAKE CHANGES")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review", "--ignore-errors")

		assert.Equal(t, 0, res.code)
	})

	t.Run("empty diff skips the provider", func(t *testing.T) {
		server, calls := geminiServer(t, "unused")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review", "--unstaged")

		assert.Equal(t, 0, res.code)
		assert.Contains(t, res.stdout, "No changes found.")
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("git error", func(t *testing.T) {
		server, calls := geminiServer(t, "unused")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review", "--commit", "nope")

		assert.Equal(t, 3, res.code)
		assert.Contains(t, res.stderr, "Git error")
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("unimplemented provider", func(t *testing.T) {
		server, calls := geminiServer(t, "unused")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review", "--provider", "openai", "--api-key", "k")

		assert.Equal(t, 4, res.code)
		assert.Contains(t, res.stderr, "not yet implemented")
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("unknown provider", func(t *testing.T) {
		server, _ := geminiServer(t, "unused")
		res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review", "--provider", "foo", "--api-key", "k")

		assert.Equal(t, 4, res.code)
		assert.Contains(t, res.stderr, "Unknown provider: foo")
	})
}

func TestReviewMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	server, calls := geminiServer(t, "unused")

	res := runCLI(t, reviewOptions(t, setupRepo(t), server), "review")

	assert.Equal(t, 4, res.code)
	assert.Contains(t, res.stderr, "GEMINI_API_KEY not found")
	assert.Equal(t, int32(0), calls.Load())
}

func TestVerboseShowsCauseChain(t *testing.T) {
	opts := testOptions(t)
	opts.Dir = setupRepo(t)

	res := runCLI(t, opts, "--verbose", "diff", "--commit", "nope")

	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stderr, "caused by:")
	assert.Contains(t, res.stderr, "kind: git")
	assert.Contains(t, res.stderr, "run: run-")
	assert.Contains(t, res.stderr, "level=DEBUG")
	assert.Contains(t, res.stderr, "Command failed")
}
