package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGoogleSynthesizer_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client") != "tw-ob" {
			t.Errorf("client = %q", q.Get("client"))
		}
		if q.Get("tl") != "hi" {
			t.Errorf("tl = %q", q.Get("tl"))
		}
		if q.Get("q") != "नमस्ते" {
			t.Errorf("q = %q", q.Get("q"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake-mp3-bytes"))
	}))
	defer srv.Close()

	synth := NewGoogleSynthesizer(srv.URL, 5*time.Second)
	out := filepath.Join(t.TempDir(), "answers", "a_1_hi.mp3")
	if err := synth.Synthesize(context.Background(), "नमस्ते", "hi", out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ID3") {
		t.Errorf("unexpected contents %q", data)
	}
}

func TestGoogleSynthesizer_HTTPErrorWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	synth := NewGoogleSynthesizer(srv.URL, 5*time.Second)
	dir := t.TempDir()
	out := filepath.Join(dir, "x.mp3")
	if err := synth.Synthesize(context.Background(), "text", "en", out); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("artifacts left behind: %v", entries)
	}
}

func TestMockSynthesizer(t *testing.T) {
	m := &MockSynthesizer{FailLangs: map[string]bool{"en": true}}
	dir := t.TempDir()

	if err := m.Synthesize(context.Background(), "text", "en", filepath.Join(dir, "en.mp3")); err == nil {
		t.Error("expected failure for en")
	}
	if err := m.Synthesize(context.Background(), "text", "hi", filepath.Join(dir, "hi.mp3")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "hi.mp3")); err != nil {
		t.Errorf("placeholder missing: %v", err)
	}
}
