package handle

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/report"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

// Report renders the PDF evaluation report for a stored result and streams it.
func (h *Handle) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "bad result id", http.StatusBadRequest)
		return
	}

	result, err := h.Results.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "result not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	details, err := h.Details.ListForResult(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	path, err := report.GeneratePDF(result, details)
	if err != nil {
		http.Error(w, "report generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}
