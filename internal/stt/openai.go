package stt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"context"
)

// OpenAIEngine transcribes via an OpenAI-compatible audio.transcriptions endpoint
// (hosted Whisper). Used when a local whisper binary is not available.
type OpenAIEngine struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewOpenAIEngine creates an HTTP engine. model defaults to "whisper-1".
func NewOpenAIEngine(endpoint, apiKey, model string) *OpenAIEngine {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAIEngine{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 5 * time.Minute},
	}
}

// Transcribe uploads the waveform as multipart form data and decodes the
// {"text": ...} response.
func (o *OpenAIEngine) Transcribe(ctx context.Context, wavPath string, language string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", o.model); err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return "", &TranscriptionError{Engine: "openai", Err: err}
		}
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, &body)
	if err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", &TranscriptionError{Engine: "openai", Err: fmt.Errorf("http %d: %s", resp.StatusCode, string(b))}
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TranscriptionError{Engine: "openai", Err: err}
	}
	return strings.TrimSpace(out.Text), nil
}
