package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string
	// EvalModel is pinned for per-question grading; it changes independently
	// of GeminiModel so grading stays stable across feature-model upgrades.
	EvalModel string

	MaxLLMRetries int
	BackoffBase   time.Duration

	DatabaseURL string
	GitHubToken string

	PerFileCharLimit int
	TotalCharLimit   int

	UploadDir string

	// Retention bounds how long upload records and evaluation results are
	// kept before the janitor purges them.
	Retention time.Duration
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
		return v
	}
	return def
}

func getEnvSeconds(k string, def float64) time.Duration {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(k)), 64); err == nil && v > 0 {
		def = v
	}
	return time.Duration(def * float64(time.Second))
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		// API key may be absent: the generation client then answers every
		// request with a CONFIG_ERROR outcome instead of crashing at boot.
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		EvalModel:    getEnv("EVAL_MODEL", "gemini-2.5-pro"),

		MaxLLMRetries: getEnvInt("MAX_LLM_RETRIES", 3),
		BackoffBase:   getEnvSeconds("BACKOFF_BASE", 1.0),

		DatabaseURL: ForceSSL(os.Getenv("DATABASE_URL")),
		GitHubToken: os.Getenv("GITHUB_TOKEN"),

		PerFileCharLimit: getEnvInt("GIT_EVAL_PER_FILE_CHAR_LIMIT", 15000),
		TotalCharLimit:   getEnvInt("GIT_EVAL_TOTAL_CHAR_LIMIT", 100000),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		Retention: time.Duration(getEnvInt("RETENTION_DAYS", 7)) * 24 * time.Hour,
	}
}

// ForceSSL appends sslmode=require to a Postgres DSN that does not pin one;
// the managed databases this runs against refuse plaintext connections.
func ForceSSL(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "sslmode") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&sslmode=require"
	}
	return dsn + "?sslmode=require"
}
