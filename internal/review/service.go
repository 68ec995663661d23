// Package review runs the review pipeline: diff, prompt, provider stream, verdict
package review

import (
	"context"
	"strings"
	"time"

	"github.com/tildaslashalef/prreview/internal/config"
	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/git"
	"github.com/tildaslashalef/prreview/internal/llm"
	"github.com/tildaslashalef/prreview/internal/loggy"
)

// DiffSource produces the diff to review
type DiffSource interface {
	GetDiff(ctx context.Context, req git.DiffRequest) (string, error)
}

// RepoDescriber reports where the diff comes from. It is optional.
type RepoDescriber interface {
	Describe() (*git.RepoInfo, error)
}

// Gateway dispatches a prompt to a provider
type Gateway interface {
	Send(ctx context.Context, prompt, provider, model, apiKey string) (*llm.Stream, error)
}

// Renderer presents the review as it happens. Implementations must not affect the outcome.
type Renderer interface {
	Notice(title, message string)
	Header(h Header)
	Spinner(ctx context.Context, message string) context.CancelFunc
	Progress(partial string)
	Review(document string)
	Conclusion(c Conclusion)
}

// Header describes a review before it is dispatched
type Header struct {
	Provider string
	Model    string
	Repo     *git.RepoInfo
	Summary  *git.Summary
}

// Options control one review run
type Options struct {
	Diff         git.DiffRequest
	Overrides    config.Overrides
	IgnoreErrors bool
	Timeout      time.Duration // bounds the provider call, zero disables
}

// Result is the outcome of a review run
type Result struct {
	Skipped     bool // the diff was empty and nothing was sent
	Credentials config.Credentials
	Response    Response
	Verdict     Verdict
	Conclusion  Conclusion
	Duration    time.Duration
}

// Service orchestrates a review
type Service struct {
	config    *config.Config
	diffs     DiffSource
	describer RepoDescriber
	gateway   Gateway
	renderer  Renderer
	logger    *loggy.Logger
}

// NewService creates a new review service. describer may be nil.
func NewService(
	cfg *config.Config,
	diffs DiffSource,
	describer RepoDescriber,
	gateway Gateway,
	renderer Renderer,
	logger *loggy.Logger,
) *Service {
	return &Service{
		config:    cfg,
		diffs:     diffs,
		describer: describer,
		gateway:   gateway,
		renderer:  renderer,
		logger:    logger,
	}
}

// Run reviews the diff selected by opts. A review that requests changes returns the
// Result together with a verdict error unless opts.IgnoreErrors is set.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	creds, err := s.config.ResolveCredentials(opts.Overrides)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Resolved credentials", "provider", creds.Provider, "model", creds.Model)

	// The header summarizes the whole diff; only the prompt is truncated
	full := opts.Diff
	full.MaxChars = 0
	raw, err := s.diffs.GetDiff(ctx, full)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw) == "" {
		s.logger.Info("No changes to review", "scope", opts.Diff.Scope())
		s.renderer.Notice("Information", "No changes found.")
		return &Result{Skipped: true, Credentials: creds, Duration: time.Since(start)}, nil
	}

	s.renderer.Header(s.header(creds, raw))

	diff := git.Truncate(raw, opts.Diff.MaxChars)
	if len(diff) != len(raw) {
		s.logger.Info("Diff truncated", "max_chars", opts.Diff.MaxChars)
	}

	prompt := BuildPrompt(diff)
	s.logger.Info("Sending review request",
		"provider", creds.Provider,
		"model", creds.Model,
		"prompt_version", PromptVersion,
		"diff_chars", len(diff),
	)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	stopSpinner := s.renderer.Spinner(ctx, "Getting PR review...")
	defer stopSpinner()

	stream, err := s.gateway.Send(ctx, prompt, creds.Provider, creds.Model, creds.APIKey)
	if err != nil {
		return nil, err
	}

	response, verdict, err := Aggregate(stream, func(partial string) {
		stopSpinner()
		s.renderer.Progress(partial)
	})
	stopSpinner()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Credentials: creds,
		Response:    response,
		Verdict:     verdict,
		Conclusion:  ConclusionOf(response.Text()),
		Duration:    time.Since(start),
	}

	s.renderer.Review(response.Text())
	s.renderer.Conclusion(result.Conclusion)

	s.logger.Info("Review finished",
		"verdict", verdict,
		"response_chars", len(response.Text()),
		"duration", result.Duration,
	)

	if verdict == ChangesRequested && !opts.IgnoreErrors {
		return result, errs.Verdict("Review failed: Changes requested")
	}

	return result, nil
}

// header gathers repository details for display. Failures only cost the details.
func (s *Service) header(creds config.Credentials, diff string) Header {
	h := Header{Provider: creds.Provider, Model: creds.Model}

	if s.describer != nil {
		if info, err := s.describer.Describe(); err != nil {
			s.logger.Debug("Could not describe repository", "error", err)
		} else {
			h.Repo = info
		}
	}

	if summary, err := git.Summarize(diff); err != nil {
		s.logger.Debug("Could not summarize diff", "error", err)
	} else {
		h.Summary = summary
	}

	return h
}
