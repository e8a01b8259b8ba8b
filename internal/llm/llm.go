package llm

import (
	"context"
	"errors"
	"strings"
)

// Generator abstracts generative model providers used for document analysis.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
}

// Response is a provider-neutral view of a generation result: a primary text
// field plus the raw candidates it was derived from.
type Response struct {
	Text       string
	Candidates []Candidate
}

// Candidate holds the text parts of one generated candidate.
type Candidate struct {
	Parts []string
}

// ErrNoText is returned when a response carries no usable text.
var ErrNoText = errors.New("model response has no text")

// ResponseText returns the primary text, falling back to the first part of the
// first candidate.
func ResponseText(resp *Response) (string, error) {
	if resp == nil {
		return "", ErrNoText
	}
	if strings.TrimSpace(resp.Text) != "" {
		return resp.Text, nil
	}
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Parts) > 0 {
		if part := resp.Candidates[0].Parts[0]; strings.TrimSpace(part) != "" {
			return part, nil
		}
	}
	return "", ErrNoText
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (*Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (*Response, error) {
	return f(ctx, prompt)
}
