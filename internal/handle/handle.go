// Package handle wires the grading services to HTTP. Handlers keep the same
// shape everywhere: method guard, JSON body decode, deadline from the request,
// JSON envelope out.
package handle

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/github"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/llm"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

// RepoFetcher lists and downloads a repository's files for evaluation.
type RepoFetcher interface {
	FetchRepositoryFiles(ctx context.Context, repoURL string, maxFiles int) ([]github.File, error)
}

const maxRepoFiles = 100

type Handle struct {
	Eval    *eval.Service
	Fetcher RepoFetcher

	Results *store.ResultRepo
	Details *store.DetailRepo
	Uploads *store.UploadRepo

	UploadDir string
}

func New(ev *eval.Service, fetcher RepoFetcher, results *store.ResultRepo, details *store.DetailRepo, uploads *store.UploadRepo, uploadDir string) *Handle {
	return &Handle{
		Eval:      ev,
		Fetcher:   fetcher,
		Results:   results,
		Details:   details,
		Uploads:   uploads,
		UploadDir: uploadDir,
	}
}

// apiResponse is the envelope every evaluation endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Result  any    `json:"result"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, err error) {
	var f *llm.Failure
	if errors.As(err, &f) {
		log.Printf("[handle] llm failure kind=%s status=%v raw=%s", f.Kind, f.StatusCode, f.Raw)
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Error: f.Message})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: false, Error: err.Error()})
}

// requestTimeout reads the deadline from the X-Request-Timeout header or the
// timeoutSec query parameter, falling back to def.
func requestTimeout(r *http.Request, def time.Duration) time.Duration {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return def
}
