package analysis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"lawxpert-backend/internal/llm"
	"lawxpert-backend/internal/shared/server/middleware"
	"lawxpert-backend/internal/shared/telemetry"
)

// stubGenerator answers each prompt by kind and records every call.
type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	// failAt makes the n-th call (1-based) fail; zero never fails.
	failAt int
	// partsOnly returns text only through the first candidate part.
	partsOnly bool
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (*llm.Response, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	n := len(g.prompts)
	g.mu.Unlock()

	if g.failAt == n {
		return nil, errors.New("upstream unavailable")
	}
	text := "ANSWER"
	switch {
	case strings.HasPrefix(prompt, "Analyze this legal document"):
		text = "SUMMARY"
	case strings.HasPrefix(prompt, "Extract and explain"):
		text = "CLAUSES"
	}
	if g.partsOnly {
		return &llm.Response{Candidates: []llm.Candidate{{Parts: []string{text}}}}, nil
	}
	return &llm.Response{Text: text}, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *stubGenerator) prompt(i int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompts[i]
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
	err      error
}

func (o *recordingObserver) Observe(ctx context.Context, out Outcome) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, out)
	return o.err
}

func (o *recordingObserver) last(t *testing.T) Outcome {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.outcomes) == 0 {
		t.Fatal("expected an observed outcome")
	}
	return o.outcomes[len(o.outcomes)-1]
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)
	r := gin.New()
	r.Use(middleware.RequestID())
	h.RegisterRoutes(&r.RouterGroup)
	return r
}

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("file", file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}
