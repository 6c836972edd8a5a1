package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/github"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/llm"
)

// stubFetcher answers FetchRepositoryFiles from canned data.
type stubFetcher struct {
	files []github.File
	err   error
}

func (f *stubFetcher) FetchRepositoryFiles(context.Context, string, int) ([]github.File, error) {
	return f.files, f.err
}

// cannedGen answers every generation call with the same text.
type cannedGen struct{ text string }

func (g cannedGen) Generate(context.Context, string, llm.Request) (string, error) {
	return g.text, nil
}

func newTestEval(text string) *eval.Service {
	client := llm.New("test-key", "default-model")
	client.Gen = cannedGen{text: text}
	client.Backoff = time.Millisecond
	return eval.New(client, "eval-model")
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequestTimeout(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/github/evaluate", nil)
	assert.Equal(t, 30*time.Second, requestTimeout(r, 30*time.Second))

	r = httptest.NewRequest(http.MethodPost, "/github/evaluate", nil)
	r.Header.Set("X-Request-Timeout", "45")
	assert.Equal(t, 45*time.Second, requestTimeout(r, 30*time.Second))

	r = httptest.NewRequest(http.MethodPost, "/github/evaluate?timeoutSec=90", nil)
	assert.Equal(t, 90*time.Second, requestTimeout(r, 30*time.Second))

	r = httptest.NewRequest(http.MethodPost, "/github/evaluate", nil)
	r.Header.Set("X-Request-Timeout", "nope")
	assert.Equal(t, 30*time.Second, requestTimeout(r, 30*time.Second))
}

func TestGithubEvaluateRejectsNonPost(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, "")
	rec := httptest.NewRecorder()
	h.GithubEvaluate(rec, httptest.NewRequest(http.MethodGet, "/github/evaluate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGithubEvaluateRequiresURL(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, "")
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"github_url": "  "}`)
	h.GithubEvaluate(rec, httptest.NewRequest(http.MethodPost, "/github/evaluate", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGithubEvaluateEmptyRepository(t *testing.T) {
	h := New(nil, &stubFetcher{}, nil, nil, nil, "")
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"github_url": "https://github.com/a/b"}`)
	h.GithubEvaluate(rec, httptest.NewRequest(http.MethodPost, "/github/evaluate", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "No files found")
}

func TestGithubEvaluateSuccess(t *testing.T) {
	fetcher := &stubFetcher{files: []github.File{{Path: "main.go", Content: "package main"}}}
	ev := newTestEval(`{"project_about": "a CLI tool", "technology_stack": ["Go"]}`)
	h := New(ev, fetcher, nil, nil, nil, "")

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"github_url": "https://github.com/a/b"}`)
	h.GithubEvaluate(rec, httptest.NewRequest(http.MethodPost, "/github/evaluate", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
}

func TestGithubEvaluateSurfacesLLMFailureMessageOnly(t *testing.T) {
	fetcher := &stubFetcher{files: []github.File{{Path: "main.go", Content: "package main"}}}
	ev := newTestEval("this is not json") // structured decode will fail
	h := New(ev, fetcher, nil, nil, nil, "")

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"github_url": "https://github.com/a/b"}`)
	h.GithubEvaluate(rec, httptest.NewRequest(http.MethodPost, "/github/evaluate", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.NotContains(t, resp.Error, "this is not json", "raw model output must not leak to clients")
}

func TestGithubGradeRequiresDescription(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, "")
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"github_url": "https://github.com/a/b", "description": ""}`)
	h.GithubGrade(rec, httptest.NewRequest(http.MethodPost, "/github/grade", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReevaluateValidation(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, "")
	for name, body := range map[string]string{
		"missing description": `{"file_id": "f1", "title": "HW1"}`,
		"missing title":       `{"file_id": "f1", "description": "rubric"}`,
		"missing file id":     `{"title": "HW1", "description": "rubric"}`,
		"bad json":            `{`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Reevaluate(rec, httptest.NewRequest(http.MethodPost, "/reevaluate", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestReevaluateUnknownFile(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, t.TempDir())
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"file_id": "ghost", "title": "HW1", "description": "rubric"}`)
	h.Reevaluate(rec, httptest.NewRequest(http.MethodPost, "/reevaluate", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "ghost")
	assert.Contains(t, resp.Error, "re-upload")
}

func TestReevaluateHealth(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, "")
	rec := httptest.NewRecorder()
	h.ReevaluateHealth(rec, httptest.NewRequest(http.MethodGet, "/reevaluate/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "/reevaluate", resp["endpoint"])
}

func TestDebugExtracted(t *testing.T) {
	dir := t.TempDir()
	content := "Q1: What is a slice?\nAnswer: A view over an array."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f42.txt"), []byte(content), 0o644))
	meta := `{"original_filename": "homework.txt"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f42.meta.json"), []byte(meta), 0o644))

	h := New(nil, nil, nil, nil, nil, dir)
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/debug/extracted/f42", nil)
	r.SetPathValue("id", "f42")
	h.DebugExtracted(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "homework.txt", resp["filename"])
	assert.Equal(t, content, resp["content"])
	assert.Equal(t, true, resp["has_questions"])
	require.Len(t, resp["qa_pairs"], 1)
}

func TestUploadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	h := New(nil, nil, nil, nil, nil, dir)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "homework.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Q1: What is a pointer?\nAnswer: An address."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	h.Upload(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool         `json:"success"`
		Result  uploadResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Result.FileID)
	assert.Equal(t, "homework.txt", resp.Result.Filename)
	assert.Greater(t, resp.Result.Size, int64(0))

	// the stored file must be findable through the debug path
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/debug/extracted/"+resp.Result.FileID, nil)
	r.SetPathValue("id", resp.Result.FileID)
	h.DebugExtracted(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var dbg map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dbg))
	assert.Equal(t, "homework.txt", dbg["filename"])
	assert.Equal(t, true, dbg["has_questions"])
}

func TestUploadRequiresFileField(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, t.TempDir())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	h.Upload(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDebugExtractedNotFound(t *testing.T) {
	h := New(nil, nil, nil, nil, nil, t.TempDir())
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/debug/extracted/missing", nil)
	r.SetPathValue("id", "missing")
	h.DebugExtracted(rec, r)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
