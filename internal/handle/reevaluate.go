package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval/types"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/extract"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

type reevaluateReq struct {
	FileID      string `json:"file_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type reevaluateResult struct {
	ResultID     int64              `json:"result_id"`
	StudentName  string             `json:"student_name"`
	ScorePercent float64            `json:"score_percent"`
	Votes        []float64          `json:"votes"`
	Details      []types.EvalDetail `json:"details"`
}

// Reevaluate re-runs grading for one previously uploaded file: re-extracts the
// question/answer pairs and consensus-grades each one, then replaces the
// stored result.
func (h *Handle) Reevaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req reevaluateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		http.Error(w, "Description is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	fileID := strings.TrimSpace(req.FileID)
	if fileID == "" {
		http.Error(w, "File ID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(r, 600*time.Second))
	defer cancel()

	path, filename, err := h.locateUpload(ctx, fileID)
	if err != nil {
		writeJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Error: fmt.Sprintf("File with ID %s not found. It may have been cleaned up. Please re-upload the file.",
				fileID),
		})
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		writeFailure(w, err)
		return
	}

	pairs, err := h.Eval.ExtractQA(ctx, string(content))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if len(pairs) == 0 {
		// Structured extraction found nothing; fall back to the line heuristics.
		for _, p := range extract.QAPairs(string(content)) {
			pairs = append(pairs, types.ExtractedQA{
				Question:        p.Question,
				StudentAnswer:   p.Answer,
				IsAnswerPresent: p.Answer != "",
			})
		}
	}
	if len(pairs) == 0 {
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Error: "No questions found in file"})
		return
	}

	var (
		details []types.EvalDetail
		votes   []float64
		sum     float64
		correct int
	)
	for _, p := range pairs {
		detail, _, err := h.Eval.EvaluateQA(ctx, req.Description, p.Question, p.StudentAnswer)
		if err != nil {
			writeFailure(w, err)
			return
		}
		details = append(details, *detail)
		v := detail.Vote()
		votes = append(votes, v)
		sum += v
		if detail.IsCorrect {
			correct++
		}
	}
	score := sum / float64(len(pairs)) * 100

	student := strings.TrimSuffix(filename, filepath.Ext(filename))
	resultID, err := h.Results.Upsert(ctx, store.ResultRow{
		FileID:       fileID,
		StudentName:  student,
		ScorePercent: score,
		Reasoning:    joinFeedback(details),
		Summary:      fmt.Sprintf("%s: %d of %d questions fully correct (%.1f%%)", req.Title, correct, len(pairs), score),
		Votes:        votes,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.Details.ReplaceForResult(ctx, resultID, details); err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Result: reevaluateResult{
		ResultID:     resultID,
		StudentName:  student,
		ScorePercent: score,
		Votes:        votes,
		Details:      details,
	}})
}

// ReevaluateHealth describes the endpoint so deploy checks can probe it.
func (h *Handle) ReevaluateHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"endpoint": "/reevaluate",
		"method":   "POST",
		"message":  "Re-evaluate endpoint is available",
	})
}

// locateUpload resolves a file id to its stored path and original filename.
// The database record is authoritative; the upload directory scan covers
// files saved before the uploads table existed.
func (h *Handle) locateUpload(ctx context.Context, fileID string) (path, filename string, err error) {
	if h.Uploads != nil {
		if row, err := h.Uploads.Find(ctx, fileID); err == nil {
			return row.StoredPath, row.OriginalFilename, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return "", "", err
		}
	}

	matches, _ := filepath.Glob(filepath.Join(h.UploadDir, fileID+".*"))
	for _, m := range matches {
		if filepath.Base(m) == fileID+".meta.json" {
			continue
		}
		path = m
		break
	}
	if path == "" {
		return "", "", fmt.Errorf("file %s not found", fileID)
	}

	filename = filepath.Base(path)
	if b, err := os.ReadFile(filepath.Join(h.UploadDir, fileID+".meta.json")); err == nil {
		var md struct {
			OriginalFilename string `json:"original_filename"`
		}
		if json.Unmarshal(b, &md) == nil && md.OriginalFilename != "" {
			filename = md.OriginalFilename
		}
	}
	return path, filename, nil
}

func joinFeedback(details []types.EvalDetail) string {
	var b strings.Builder
	for i, d := range details {
		if d.Feedback == "" {
			continue
		}
		fmt.Fprintf(&b, "Q%d: %s\n", i+1, d.Feedback)
	}
	return strings.TrimRight(b.String(), "\n")
}
