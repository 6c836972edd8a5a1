package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/ManojkumarGunda/Assignment-Agent/internal/config"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/github"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/handle"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/llm"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

func main() {
	cfg := config.Load()

	// --- Postgres ---
	if cfg.DatabaseURL == "" {
		log.Fatal("database DSN is empty: set DATABASE_URL")
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db.Ping: %v", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			log.Fatalf("store.Migrate: %v", err)
		}
		log.Printf("db connected: %s", safeDSNSummary(cfg.DatabaseURL))
	}

	results := store.NewResultRepo(db)
	details := store.NewDetailRepo(db)
	uploads := store.NewUploadRepo(db)

	// --- LLM + services ---
	if cfg.GeminiAPIKey == "" {
		log.Print("GEMINI_API_KEY not found in environment")
	}
	client := llm.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	client.MaxRetries = cfg.MaxLLMRetries
	client.Backoff = cfg.BackoffBase

	grader := eval.New(client, cfg.EvalModel)
	grader.PerFileCharLimit = cfg.PerFileCharLimit
	grader.TotalCharLimit = cfg.TotalCharLimit

	h := handle.New(grader, github.New(cfg.GitHubToken), results, details, uploads, cfg.UploadDir)

	if cfg.Retention > 0 {
		go janitor(context.Background(), cfg.Retention, results, uploads)
	}

	// --- HTTP ---
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/upload", h.Upload)
	mux.HandleFunc("/results/{fileID}", h.ResultByFile)
	mux.HandleFunc("/github/evaluate", h.GithubEvaluate)
	mux.HandleFunc("/github/grade", h.GithubGrade)
	mux.HandleFunc("/reevaluate", h.Reevaluate)
	mux.HandleFunc("/reevaluate/health", h.ReevaluateHealth)
	mux.HandleFunc("/debug/extracted/{id}", h.DebugExtracted)
	mux.HandleFunc("/report/{id}", h.Report)

	addr := "0.0.0.0:" + cfg.Port
	log.Printf("assignment-agent listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

// janitor purges evaluation results and upload records past the retention
// window. Stored files on disk are left to the host's tmp cleanup.
func janitor(ctx context.Context, retention time.Duration, results *store.ResultRepo, uploads *store.UploadRepo) {
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()
	for {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if n, err := results.PurgeOlderThan(rctx, retention); err != nil {
			log.Printf("janitor: purge results: %v", err)
		} else if n > 0 {
			log.Printf("janitor: purged %d stale results", n)
		}
		if n, err := uploads.PurgeOlderThan(rctx, retention); err != nil {
			log.Printf("janitor: purge uploads: %v", err)
		} else if n > 0 {
			log.Printf("janitor: purged %d stale upload records", n)
		}
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// safeDSNSummary hides credentials when logging the DSN.
func safeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "(unparsable dsn)"
	}
	host := u.Host
	dbname := strings.TrimPrefix(u.Path, "/")
	return host + "/" + dbname
}
