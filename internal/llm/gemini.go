package llm

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/tildaslashalef/prreview/internal/loggy"
)

// GeminiProvider streams completions from the Gemini API
type GeminiProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *loggy.Logger
}

// GeminiOption configures a GeminiProvider
type GeminiOption func(*GeminiProvider)

// WithGeminiBaseURL points the provider at a different API endpoint
func WithGeminiBaseURL(url string) GeminiOption {
	return func(p *GeminiProvider) { p.baseURL = url }
}

// WithGeminiHTTPClient sets the HTTP client used for API calls
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(p *GeminiProvider) { p.httpClient = c }
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(logger *loggy.Logger, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider
func (p *GeminiProvider) Name() string { return ProviderGemini }

// Stream implements Provider. The request is sent when the stream is first iterated.
func (p *GeminiProvider) Stream(ctx context.Context, prompt, model, apiKey string) (*Stream, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	p.logger.Debug("Opening Gemini stream", "model", model, "base_url", p.baseURL)

	responses := client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), nil)

	return NewStream(func(yield func(Fragment, error) bool) {
		chunks := 0
		for resp, err := range responses {
			if err != nil {
				yield(Fragment{}, err)
				return
			}
			chunks++
			if !yield(geminiFragment(resp), nil) {
				return
			}
		}
		p.logger.Debug("Gemini stream finished", "chunks", chunks)
	}), nil
}

func geminiFragment(resp *genai.GenerateContentResponse) Fragment {
	if resp == nil {
		return Fragment{}
	}
	text := resp.Text()
	return Fragment{Text: text, HasText: text != ""}
}
