package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func wavFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := os.WriteFile(path, []byte("RIFFxxxxWAVE"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenAIEngine_Transcribe(t *testing.T) {
	var gotAuth, gotModel, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file field missing: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": " seb ki kheti "}`))
	}))
	defer srv.Close()

	engine := NewOpenAIEngine(srv.URL, "test-key", "")
	got, err := engine.Transcribe(context.Background(), wavFixture(t), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got != "seb ki kheti" {
		t.Errorf("transcript = %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q", gotModel)
	}
	if gotLang != "hi" {
		t.Errorf("language = %q", gotLang)
	}
}

func TestOpenAIEngine_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	engine := NewOpenAIEngine(srv.URL, "", "whisper-1")
	_, err := engine.Transcribe(context.Background(), wavFixture(t), "")
	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %T, want *TranscriptionError", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("status not surfaced: %v", err)
	}
}

func TestOpenAIEngine_MissingFile(t *testing.T) {
	engine := NewOpenAIEngine("http://unused.invalid", "", "")
	_, err := engine.Transcribe(context.Background(), "/no/such/file.wav", "")
	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %T, want *TranscriptionError", err)
	}
}
