package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lawxpert-backend/internal/analysis"
	"lawxpert-backend/internal/archive"
	"lawxpert-backend/internal/audit"
	"lawxpert-backend/internal/llm"
	"lawxpert-backend/internal/llm/gemini"
	openai "lawxpert-backend/internal/llm/openai"
	"lawxpert-backend/internal/queue"
	"lawxpert-backend/internal/services/health"
	"lawxpert-backend/internal/shared/config"
	"lawxpert-backend/internal/shared/server"
	"lawxpert-backend/internal/shared/server/middleware"
	"lawxpert-backend/internal/shared/storage/db"
	"lawxpert-backend/internal/shared/storage/object"
	localstore "lawxpert-backend/internal/shared/storage/object/local"
	s3store "lawxpert-backend/internal/shared/storage/object/s3"
	"lawxpert-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	AuditRepo       audit.Repo
	Store           object.ObjectStore
	Events          *queue.EventPublisher
	Generator       llm.Generator
	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
}

// Build prepares dependencies and the router. A missing model API key is an
// error; optional stores fall back or stay disabled.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	gen, err := BuildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, repo, err := OpenAuditRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	events, err := buildEvents(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		AuditRepo: repo,
		Store:     store,
		Events:    events,
		Generator: gen,
	}
	app.AnalysisService = analysis.NewService(gen, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	app.AnalysisHandler = analysis.NewHandler(app.AnalysisService)
	app.AnalysisHandler.MaxUploadBytes = cfg.MaxUploadBytes

	recorder := audit.NewRecorder(repo, nil)
	if events != nil {
		recorder.Publisher = events
	}
	app.AnalysisHandler.Observers = []analysis.Observer{recorder}
	if store != nil {
		app.AnalysisHandler.Archiver = archive.New(store)
	}

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(float64(cfg.RateLimitPerMinute), cfg.RateLimitBurst, nil)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		Health:          health.NewService(pinger),
		RateLimiter:     limiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"llm_provider":  cfg.LLMProvider,
		"llm_model":     cfg.LLMModel,
		"audit_store":   auditStoreName(cfg, sqlDB),
		"archive_store": cfg.ArchiveStore,
		"events":        events != nil,
	})
	return app, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// BuildGenerator constructs the configured model client, paced when
// LLM_RATE_PER_MINUTE is set.
func BuildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		return nil, fmt.Errorf("%s is required", config.APIKeyVar(cfg.LLMProvider))
	}

	var gen llm.Generator
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		gen = client
	default:
		client, err := gemini.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, gemini.Options{})
		if err != nil {
			return nil, err
		}
		gen = client
	}
	return llm.RateLimited(gen, float64(cfg.LLMRatePerMinute), cfg.LLMBurst), nil
}

// OpenAuditRepo picks the audit store: Postgres when DATABASE_URL is set,
// SQLite when AUDIT_SQLITE_PATH is set, memory otherwise. In dev a failing
// database falls back to memory.
func OpenAuditRepo(ctx context.Context, cfg config.Config) (*sql.DB, audit.Repo, error) {
	dialect, dsn, ok := db.Resolve(cfg.DatabaseURL, cfg.AuditSQLitePath)
	if !ok {
		return nil, audit.NewMemoryRepo(), nil
	}
	sqlDB, err := db.Open(ctx, dialect, dsn, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB, dialect); err != nil {
			closeDB(sqlDB)
			sqlDB = nil
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.audit_fallback", map[string]any{
				"dialect": string(dialect),
				"error":   err.Error(),
			})
			return nil, audit.NewMemoryRepo(), nil
		}
		return nil, nil, err
	}
	return sqlDB, audit.NewSQLRepo(sqlDB, dialect), nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArchiveStore {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildEvents(ctx context.Context, cfg config.Config) (*queue.EventPublisher, error) {
	if strings.TrimSpace(cfg.EventsQueueURL) == "" {
		return nil, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.EventsQueueURL, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return queue.NewEventPublisher(client), nil
}

func auditStoreName(cfg config.Config, sqlDB *sql.DB) string {
	switch {
	case sqlDB == nil:
		return "memory"
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		return "postgres"
	default:
		return "sqlite"
	}
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
