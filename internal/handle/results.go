package handle

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval/types"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

type resultPayload struct {
	ResultID     int64              `json:"result_id"`
	FileID       string             `json:"file_id"`
	StudentName  string             `json:"student_name"`
	ScorePercent float64            `json:"score_percent"`
	Reasoning    string             `json:"reasoning"`
	Summary      string             `json:"summary"`
	Votes        []float64          `json:"votes"`
	CreatedAt    time.Time          `json:"created_at"`
	Details      []types.EvalDetail `json:"details"`
}

// ResultByFile returns the latest stored evaluation for an uploaded file.
// maxAgeSec, when given, treats older results as missing so clients know to
// re-evaluate instead of showing a stale grade.
func (h *Handle) ResultByFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	fileID := strings.TrimSpace(r.PathValue("fileID"))
	if fileID == "" {
		http.Error(w, "file id is required", http.StatusBadRequest)
		return
	}

	var maxAge time.Duration
	if s := r.URL.Query().Get("maxAgeSec"); s != "" {
		if v, _ := strconv.Atoi(s); v > 0 {
			maxAge = time.Duration(v) * time.Second
		}
	}

	result, err := h.Results.FindByFileID(r.Context(), fileID, maxAge)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "no result for file "+fileID, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	details, err := h.Details.ListForResult(r.Context(), result.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Result: resultPayload{
		ResultID:     result.ID,
		FileID:       result.FileID,
		StudentName:  result.StudentName,
		ScorePercent: result.ScorePercent,
		Reasoning:    result.Reasoning,
		Summary:      result.Summary,
		Votes:        result.Votes,
		CreatedAt:    result.CreatedAt,
		Details:      details,
	}})
}
