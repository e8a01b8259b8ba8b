package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"lawxpert-backend/internal/llm"
	"lawxpert-backend/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Client implements llm.Generator using the Gemini API.
type Client struct {
	models *genai.Models
	model  string
}

// Options tweaks client construction; zero values use the SDK defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient constructs a Gemini client. It is meant to be built once at startup
// and shared.
func NewClient(ctx context.Context, apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user turn.
func (c *Client) Generate(ctx context.Context, prompt string) (*llm.Response, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate model=%s: %w", c.model, err)
	}
	if resp != nil && resp.UsageMetadata != nil {
		telemetry.Info("llm.usage", map[string]any{
			"provider":          "gemini",
			"model":             c.model,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		})
	}
	return toResponse(resp), nil
}

func toResponse(resp *genai.GenerateContentResponse) *llm.Response {
	if resp == nil {
		return &llm.Response{}
	}
	out := &llm.Response{Text: resp.Text()}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			out.Candidates = append(out.Candidates, llm.Candidate{})
			continue
		}
		parts := make([]string, 0, len(cand.Content.Parts))
		for _, p := range cand.Content.Parts {
			if p == nil {
				continue
			}
			parts = append(parts, p.Text)
		}
		out.Candidates = append(out.Candidates, llm.Candidate{Parts: parts})
	}
	return out
}

var _ llm.Generator = (*Client)(nil)
