package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/genai"

	"lawxpert-backend/internal/llm"
)

func TestGenerateSendsPromptAndReadsText(t *testing.T) {
	var (
		mu       sync.Mutex
		paths    []string
		apiKeys  []string
		captured string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		paths = append(paths, r.URL.Path)
		apiKeys = append(apiKeys, r.Header.Get("x-goog-api-key"))
		if len(payload.Contents) > 0 && len(payload.Contents[0].Parts) > 0 {
			captured = payload.Contents[0].Parts[0].Text
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"A short summary."}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), "test-key", "gemini-2.0-flash", Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Generate(context.Background(), "Summarize this lease")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text, err := llm.ResponseText(resp)
	if err != nil {
		t.Fatalf("ResponseText: %v", err)
	}
	if text != "A short summary." {
		t.Fatalf("unexpected text %q", text)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 {
		t.Fatalf("expected 1 request, got %d", len(paths))
	}
	if !strings.Contains(paths[0], "gemini-2.0-flash:generateContent") {
		t.Fatalf("unexpected path %q", paths[0])
	}
	if apiKeys[0] != "test-key" {
		t.Fatalf("expected api key header, got %q", apiKeys[0])
	}
	if captured != "Summarize this lease" {
		t.Fatalf("unexpected prompt sent: %q", captured)
	}
}

func TestGenerateSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), "bad-key", "", Options{BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", client.Model())
	}

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error from 400 response")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(context.Background(), " ", "gemini-2.0-flash", Options{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestToResponseKeepsCandidateParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "first"}, {Text: "second"}}}},
			nil,
		},
	}

	got := toResponse(resp)
	if len(got.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got.Candidates))
	}
	if got.Candidates[0].Parts[0] != "first" || got.Candidates[0].Parts[1] != "second" {
		t.Fatalf("unexpected parts %v", got.Candidates[0].Parts)
	}
	if len(got.Candidates[1].Parts) != 0 {
		t.Fatalf("expected empty candidate for nil content")
	}
	if text, err := llm.ResponseText(got); err != nil || !strings.HasPrefix(text, "first") {
		t.Fatalf("unexpected response text %q (%v)", text, err)
	}
}
