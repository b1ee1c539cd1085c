package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

var errTTSUnavailable = errors.New("tts unavailable")

// GoogleSynthesizer fetches MP3 speech from the unauthenticated translate_tts
// endpoint.
type GoogleSynthesizer struct {
	endpoint string
	client   *http.Client
}

// NewGoogleSynthesizer creates a synthesizer against endpoint with the given
// per-call timeout.
func NewGoogleSynthesizer(endpoint string, timeout time.Duration) *GoogleSynthesizer {
	if endpoint == "" {
		endpoint = "https://translate.google.com/translate_tts"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleSynthesizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Synthesize fetches speech for text in lang and writes the MP3 to outPath.
// Parent directories are created as needed. Nothing is written on failure.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, lang, outPath string) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	tmp := outPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outPath)
}

// writePlaceholder creates an empty MP3 artifact; shared by the mock.
func writePlaceholder(outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("ID3"), 0644)
}
