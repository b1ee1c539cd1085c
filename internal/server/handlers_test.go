package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kissanvaani/kissanvaani/internal/config"
	"github.com/kissanvaani/kissanvaani/internal/embedding"
	"github.com/kissanvaani/kissanvaani/internal/ingest"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/pipeline"
	"github.com/kissanvaani/kissanvaani/internal/storage"
	"github.com/kissanvaani/kissanvaani/internal/vector"
	"go.uber.org/zap"
)

// stubAsker records the upload and returns a canned response.
type stubAsker struct {
	resp     *models.AskResponse
	err      error
	gotBlob  []byte
	gotHint  string
	askCount int
}

func (s *stubAsker) Ask(_ context.Context, blob []byte, hint string) (*models.AskResponse, error) {
	s.askCount++
	s.gotBlob = blob
	s.gotHint = hint
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestServer(t *testing.T, asker Asker) (*Server, string) {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	emb := embedding.NewMockEmbedder(8)
	idx, err := vector.NewMemoryIndex(8)
	if err != nil {
		t.Fatal(err)
	}
	ing := ingest.NewIngester(store, emb, idx)

	artifactsDir := t.TempDir()
	srv := NewServer(asker, ing, store, idx,
		&config.ServerConfig{Host: "localhost", Port: 0},
		artifactsDir, zap.NewNop())
	return srv, artifactsDir
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleLiveness(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "ok" {
		t.Errorf("body = %v", out)
	}
}

func TestHandleAsk(t *testing.T) {
	en := "/audio/r_answer_1_en.mp3"
	asker := &stubAsker{resp: &models.AskResponse{
		HinglishText:  "seba ki kheti",
		SearchQueries: []string{"seba ki kheti", "how to grow apple"},
		Answers: []*models.BilingualAnswer{
			{English: "Plant in winter.", Hindi: "सर्दियों में लगाएं।", AudioEN: &en},
		},
	}}
	srv, _ := newTestServer(t, asker)

	body, contentType := multipartBody(t, "file", "question.webm", []byte("fake-webm"))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if asker.gotHint != "webm" {
		t.Errorf("hint = %q", asker.gotHint)
	}
	if string(asker.gotBlob) != "fake-webm" {
		t.Errorf("blob = %q", asker.gotBlob)
	}
	var out models.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.HinglishText != "seba ki kheti" || len(out.Answers) != 1 {
		t.Errorf("response = %+v", out)
	}
	if out.Answers[0].AudioEN == nil || *out.Answers[0].AudioEN != en {
		t.Errorf("audio_en = %v", out.Answers[0].AudioEN)
	}
	// audio_hi was never synthesized; it must serialize as null, not be omitted.
	if !strings.Contains(rec.Body.String(), `"audio_hi":null`) {
		t.Errorf("audio_hi not null in %s", rec.Body.String())
	}
}

func TestHandleAsk_AnyFieldName(t *testing.T) {
	asker := &stubAsker{resp: &models.AskResponse{}}
	srv, _ := newTestServer(t, asker)

	body, contentType := multipartBody(t, "audio", "q.mp3", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if asker.askCount != 1 {
		t.Error("pipeline not invoked")
	}
	if asker.gotHint != "mp3" {
		t.Errorf("hint = %q", asker.gotHint)
	}
}

func TestHandleAsk_PipelineErrorIs200(t *testing.T) {
	asker := &stubAsker{err: pipeline.ErrNoSpeech}
	srv, _ := newTestServer(t, asker)

	body, contentType := multipartBody(t, "file", "q.wav", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with error payload", rec.Code)
	}
	var out models.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Error != "No speech detected" {
		t.Errorf("error = %q", out.Error)
	}
}

func TestHandleAsk_MissingFile(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("note", "no file here"); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ask", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleAsk_OversizedUploadRejected(t *testing.T) {
	asker := &stubAsker{resp: &models.AskResponse{}}
	srv, _ := newTestServer(t, asker)

	body, contentType := multipartBody(t, "file", "big.wav", bytes.Repeat([]byte("x"), maxUploadBytes+1))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if asker.askCount != 0 {
		t.Error("pipeline ran on an oversized upload")
	}
}

func TestHandleAudio(t *testing.T) {
	srv, artifactsDir := newTestServer(t, &stubAsker{})
	name := "r1_answer_1_en.mp3"
	if err := os.WriteFile(filepath.Join(artifactsDir, name), []byte("ID3bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/audio/"+name, nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "ID3bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandleAudio_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{})
	req := httptest.NewRequest(http.MethodGet, "/audio/nope.mp3", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleAudio_RejectsTraversal(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{})
	req := httptest.NewRequest(http.MethodGet, "/audio/..%2Fsecret.mp3", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleCreateEntryAndStatus(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{})

	payload := `{"question": "how to grow apple", "answer": "Plant in winter.", "crop": "apple"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created["id"] == "" || created["status"] != "indexed" {
		t.Errorf("created = %v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec = httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status struct {
		Entries         int64 `json:"entries"`
		VectorIndexSize int   `json:"vector_index_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Entries != 1 || status.VectorIndexSize != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestHandleCreateEntry_RequiresAnswer(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader(`{"question": "q"}`))
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleAsk_UnknownErrorMessage(t *testing.T) {
	asker := &stubAsker{err: errors.New("backend exploded with secrets")}
	srv, _ := newTestServer(t, asker)

	body, contentType := multipartBody(t, "file", "q.wav", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)

	var out models.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Error != "Internal error" {
		t.Errorf("error = %q, raw errors must not leak", out.Error)
	}
	if strings.Contains(rec.Body.String(), "secrets") {
		t.Error("raw error leaked to client")
	}
}
