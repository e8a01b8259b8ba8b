package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lawxpert-backend/internal/archive"
	"lawxpert-backend/internal/audit"
	"lawxpert-backend/internal/shared/config"
	"lawxpert-backend/internal/shared/telemetry"
)

func init() {
	telemetry.SetOutput(io.Discard)
}

func baseConfig() config.Config {
	return config.Config{
		Env:               "dev",
		LLMProvider:       config.ProviderGemini,
		LLMModel:          "gemini-2.0-flash",
		LLMAPIKey:         "test-key",
		LLMTimeoutSeconds: 30,
		ArchiveStore:      "none",
		RateLimitBurst:    5,
		CORSAllowOrigin:   []string{"*"},
	}
}

func TestBuildRequiresAPIKey(t *testing.T) {
	cfg := baseConfig()
	cfg.LLMAPIKey = ""
	if _, err := Build(context.Background(), cfg); err == nil || err.Error() != "GEMINI_API_KEY is required" {
		t.Fatalf("expected missing gemini key error, got %v", err)
	}

	cfg.LLMProvider = config.ProviderOpenAI
	if _, err := Build(context.Background(), cfg); err == nil || err.Error() != "OPENAI_API_KEY is required" {
		t.Fatalf("expected missing openai key error, got %v", err)
	}
}

func TestBuildDefaultsToMemoryAudit(t *testing.T) {
	app, err := Build(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if _, ok := app.AuditRepo.(*audit.MemoryRepo); !ok {
		t.Fatalf("expected memory audit repo, got %T", app.AuditRepo)
	}
	if app.AnalysisHandler.Archiver != nil {
		t.Fatal("expected archive disabled")
	}
	if len(app.AnalysisHandler.Observers) != 1 {
		t.Fatalf("expected audit observer, got %d", len(app.AnalysisHandler.Observers))
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.Code)
	}
}

func TestBuildWithSQLiteAndLocalArchive(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.AuditSQLitePath = filepath.Join(dir, "audit.db")
	cfg.ArchiveStore = "local"
	cfg.LocalStoreDir = filepath.Join(dir, "archive")
	cfg.LLMProvider = config.ProviderOpenAI
	cfg.LLMModel = "gpt-4o-mini"

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.DB == nil {
		t.Fatal("expected sqlite handle")
	}
	if _, ok := app.AuditRepo.(*audit.SQLRepo); !ok {
		t.Fatalf("expected sql audit repo, got %T", app.AuditRepo)
	}
	if _, ok := app.AnalysisHandler.Archiver.(*archive.Archiver); !ok {
		t.Fatalf("expected archiver, got %T", app.AnalysisHandler.Archiver)
	}
	if app.AnalysisService.CallTimeout.Seconds() != 30 {
		t.Fatalf("unexpected call timeout %v", app.AnalysisService.CallTimeout)
	}
}

func TestOpenAuditRepoFallsBackInDev(t *testing.T) {
	cfg := baseConfig()
	cfg.DatabaseURL = "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"

	sqlDB, repo, err := OpenAuditRepo(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
	if sqlDB != nil {
		t.Fatal("expected no db handle on fallback")
	}
	if _, ok := repo.(*audit.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", repo)
	}

	cfg.Env = "production"
	if _, _, err := OpenAuditRepo(context.Background(), cfg); err == nil {
		t.Fatal("expected error outside dev")
	}
}

func TestBuildGeneratorWithPacing(t *testing.T) {
	cfg := baseConfig()
	cfg.LLMRatePerMinute = 30
	cfg.LLMBurst = 2

	gen, err := BuildGenerator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildGenerator: %v", err)
	}
	if gen == nil {
		t.Fatal("expected generator")
	}
}
