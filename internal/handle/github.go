package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type gitEvaluateReq struct {
	GithubURL string `json:"github_url"`
}

type gitGradeReq struct {
	GithubURL   string `json:"github_url"`
	Description string `json:"description"`
}

// GithubEvaluate fetches a repository and summarizes the project.
func (h *Handle) GithubEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req gitEvaluateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.GithubURL) == "" {
		http.Error(w, "github_url is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(r, 180*time.Second))
	defer cancel()

	files, err := h.Fetcher.FetchRepositoryFiles(ctx, req.GithubURL, maxRepoFiles)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if len(files) == 0 {
		writeJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Error:   "No files found in repository or unable to access repository",
		})
		return
	}

	info, err := h.Eval.EvaluateGitRepository(ctx, req.GithubURL, files)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Result: info})
}

// GithubGrade grades a repository against the grader's description/question.
func (h *Handle) GithubGrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req gitGradeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.GithubURL) == "" {
		http.Error(w, "github_url is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		http.Error(w, "description is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(r, 180*time.Second))
	defer cancel()

	files, err := h.Fetcher.FetchRepositoryFiles(ctx, req.GithubURL, maxRepoFiles)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if len(files) == 0 {
		writeJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Error:   "No files found in repository or unable to access repository",
		})
		return
	}

	grading, err := h.Eval.GradeGitRepository(ctx, req.GithubURL, files, req.Description)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Result: grading})
}
