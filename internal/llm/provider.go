// Package llm dispatches review prompts to generative-AI providers and exposes their streamed replies
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/loggy"
)

var (
	// ErrUnknownProvider is returned for provider names no Provider is registered under
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNotImplemented is returned by providers that are recognized but not yet supported
	ErrNotImplemented = errors.New("provider not yet implemented")
)

// Provider names
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Provider opens a streamed completion for a prompt
type Provider interface {
	Name() string
	Stream(ctx context.Context, prompt, model, apiKey string) (*Stream, error)
}

// Gateway routes prompts to the provider registered under a name
type Gateway struct {
	providers map[string]Provider
	logger    *loggy.Logger
}

// NewGateway creates a gateway over the given providers
func NewGateway(logger *loggy.Logger, providers ...Provider) *Gateway {
	g := &Gateway{
		providers: make(map[string]Provider, len(providers)),
		logger:    logger,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

// NewDefaultGateway registers the Gemini provider and the OpenAI and Anthropic placeholders
func NewDefaultGateway(logger *loggy.Logger, geminiOpts ...GeminiOption) *Gateway {
	return NewGateway(logger,
		NewGeminiProvider(logger, geminiOpts...),
		NewUnimplementedProvider(ProviderOpenAI, "OpenAI"),
		NewUnimplementedProvider(ProviderAnthropic, "Anthropic"),
	)
}

// Providers returns the registered provider names, sorted
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Send dispatches prompt to the named provider. Every failure, including ones raised
// while the returned stream is iterated, is a provider error.
func (g *Gateway) Send(ctx context.Context, prompt, provider, model, apiKey string) (*Stream, error) {
	name := strings.ToLower(strings.TrimSpace(provider))

	p, ok := g.providers[name]
	if !ok {
		return nil, errs.Provider(ErrUnknownProvider, "Unknown provider: %s", provider)
	}

	g.logger.Debug("Dispatching prompt", "provider", name, "model", model, "prompt_chars", len(prompt))

	stream, err := p.Stream(ctx, prompt, model, apiKey)
	if err != nil {
		return nil, providerError(name, err)
	}

	return stream.mapErrors(func(err error) error {
		g.logger.Debug("Provider stream failed", "provider", name, "error", err)
		return providerError(name, err)
	}), nil
}

func providerError(provider string, err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.Provider(err, "Error with AI provider %s: %v", provider, err)
}

// unimplementedProvider fails fast without touching the network
type unimplementedProvider struct {
	name    string
	display string
}

// NewUnimplementedProvider returns a placeholder registered under name
func NewUnimplementedProvider(name, display string) Provider {
	return &unimplementedProvider{name: name, display: display}
}

func (p *unimplementedProvider) Name() string { return p.name }

func (p *unimplementedProvider) Stream(context.Context, string, string, string) (*Stream, error) {
	return nil, errs.Provider(fmt.Errorf("%s: %w", p.name, ErrNotImplemented), "%s provider not yet implemented", p.display)
}
