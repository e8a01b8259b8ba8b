package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel = "gemini-2.0-flash"
	defaultCORSOrigins = "https://lawexpert.vercel.app,http://localhost:5173,*"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	LLMProvider       string
	LLMModel          string
	LLMAPIKey         string
	LLMTimeoutSeconds int
	LLMRatePerMinute  int
	LLMBurst          int

	RateLimitPerMinute int
	RateLimitBurst     int
	MaxUploadBytes     int64

	LogLevel  string
	LogFormat string

	DatabaseURL     string
	AuditSQLitePath string

	ArchiveStore  string
	LocalStoreDir string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	SSEKMSKeyID   string

	EventsQueueURL string
}

// Load reads configuration from environment variables with sensible defaults.
// Values from CONFIG_FILE, when set, replace the built-in defaults; the
// environment still wins over both.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file := fileConfig{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			log.Printf("config: ignoring CONFIG_FILE %s: %v", path, err)
		} else {
			file = loaded
		}
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", pick(file.LLM.Provider, ProviderGemini)))
	model := getEnv("LLM_MODEL", file.LLM.Model)
	if model == "" && provider == ProviderGemini {
		model = defaultGeminiModel
	}

	return Config{
		Port:            getEnv("PORT", pick(file.Server.Port, "8000")),
		Env:             normalizeEnv(getEnv("ENV", pick(file.Server.Env, "dev"))),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", pick(strings.Join(file.Server.CORSAllowOrigins, ","), defaultCORSOrigins))),

		LLMProvider:       provider,
		LLMModel:          model,
		LLMAPIKey:         apiKeyFor(provider),
		LLMTimeoutSeconds: getEnvInt("LLM_TIMEOUT_SECONDS", pickInt(file.LLM.TimeoutSeconds, 120)),
		LLMRatePerMinute:  getEnvInt("LLM_RATE_PER_MINUTE", file.LLM.RatePerMinute),
		LLMBurst:          getEnvInt("LLM_BURST", pickInt(file.LLM.Burst, 1)),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", file.Server.RateLimitPerMinute),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", pickInt(file.Server.RateLimitBurst, 5)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", file.Server.MaxUploadBytes)),

		LogLevel:  getEnv("LOG_LEVEL", pick(file.Log.Level, "info")),
		LogFormat: getEnv("LOG_FORMAT", pick(file.Log.Format, "json")),

		DatabaseURL:     getEnv("DATABASE_URL", file.Audit.DatabaseURL),
		AuditSQLitePath: getEnv("AUDIT_SQLITE_PATH", file.Audit.SQLitePath),

		ArchiveStore:  normalizeArchiveStore(getEnv("ARCHIVE_STORE", pick(file.Archive.Store, "none"))),
		LocalStoreDir: getEnv("LOCAL_STORE_DIR", pick(file.Archive.LocalDir, "./data")),
		AWSRegion:     getEnv("AWS_REGION", file.Archive.AWSRegion),
		S3Bucket:      getEnv("S3_BUCKET", file.Archive.S3Bucket),
		S3Prefix:      getEnv("S3_PREFIX", file.Archive.S3Prefix),
		SSEKMSKeyID:   getEnv("SSE_KMS_KEY_ID", file.Archive.SSEKMSKeyID),

		EventsQueueURL: getEnv("ANALYSIS_EVENTS_QUEUE_URL", file.Events.QueueURL),
	}
}

// APIKeyVar names the environment variable holding the key for the provider.
func APIKeyVar(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

func apiKeyFor(provider string) string {
	return strings.TrimSpace(os.Getenv(APIKeyVar(provider)))
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func pick(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func pickInt(val, def int) int {
	if val != 0 {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderOpenAI:
		return ProviderOpenAI
	default:
		return ProviderGemini
	}
}

func normalizeArchiveStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "none"
	}
}
