package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lawxpert-backend/internal/analysis"
	"lawxpert-backend/internal/llm"
	"lawxpert-backend/internal/shared/config"
	"lawxpert-backend/internal/shared/server/middleware"
	"lawxpert-backend/internal/shared/telemetry"
)

func testRouter(limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (*llm.Response, error) {
		return &llm.Response{Text: "ok"}, nil
	})
	return NewRouter(RouterDeps{
		Config:          config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:5173"}},
		AnalysisHandler: analysis.NewHandler(analysis.NewService(gen, 0)),
		RateLimiter:     limiter,
	})
}

func TestHealth(t *testing.T) {
	r := testRouter(nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil || body["ok"] != true {
		t.Fatalf("unexpected body %q (%v)", resp.Body.String(), err)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := testRouter(nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "upstream_calls_total") {
		t.Fatalf("unexpected metrics response %d %q", resp.Code, resp.Body.String())
	}
}

func TestAnalyzeRouteWithPreflightAndRateLimit(t *testing.T) {
	r := testRouter(middleware.NewRateLimiter(1, 1, nil))

	pre := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	pre.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, pre)
	if resp.Code != http.StatusNoContent || resp.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected preflight %d %v", resp.Code, resp.Header())
	}

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("text=hello"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	if w := post(); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := post(); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8000", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
