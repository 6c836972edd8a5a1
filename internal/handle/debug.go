package handle

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/extract"
)

// DebugExtracted returns the raw extracted text plus the heuristic QA pairs
// for an uploaded file, for debugging extraction issues.
func (h *Handle) DebugExtracted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	fileID := strings.TrimSpace(r.PathValue("id"))
	if fileID == "" {
		http.Error(w, "file id is required", http.StatusBadRequest)
		return
	}

	path, filename, err := h.locateUpload(r.Context(), fileID)
	if err != nil {
		http.Error(w, "File with ID "+fileID+" not found", http.StatusNotFound)
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	content := string(b)

	pairs := extract.QAPairs(content)
	writeJSON(w, http.StatusOK, map[string]any{
		"filename":      filename,
		"extension":     strings.TrimPrefix(filepath.Ext(filename), "."),
		"file_type":     strings.TrimPrefix(filepath.Ext(path), "."),
		"content":       content,
		"qa_pairs":      pairs,
		"has_questions": extract.HasQuestions(content, pairs),
	})
}
