package handle

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

// maxUploadBytes caps a single student file.
const maxUploadBytes = 20 << 20

type uploadResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Upload stores a student file under a generated id so it can be evaluated and
// re-evaluated later. A sidecar meta.json keeps the original filename for
// installs running without the uploads table.
func (h *Handle) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "bad multipart body: "+err.Error(), http.StatusBadRequest)
		return
	}
	src, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer src.Close()

	fileID, err := newFileID()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ext := strings.ToLower(filepath.Ext(hdr.Filename))

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	storedPath := filepath.Join(h.UploadDir, fileID+ext)
	dst, err := os.Create(storedPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(storedPath)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	meta, _ := json.Marshal(map[string]string{"original_filename": hdr.Filename})
	_ = os.WriteFile(filepath.Join(h.UploadDir, fileID+".meta.json"), meta, 0o644)

	if h.Uploads != nil {
		if err := h.Uploads.Save(r.Context(), store.UploadRow{
			FileID:           fileID,
			OriginalFilename: hdr.Filename,
			Extension:        strings.TrimPrefix(ext, "."),
			StoredPath:       storedPath,
		}); err != nil {
			writeFailure(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Result: uploadResult{
		FileID:   fileID,
		Filename: hdr.Filename,
		Size:     size,
	}})
}

func newFileID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
