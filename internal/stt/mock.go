package stt

import "context"

// MockEngine returns a fixed transcript (or error) regardless of input. For tests.
type MockEngine struct {
	Text string
	Err  error
}

// Transcribe returns the configured transcript or error.
func (m *MockEngine) Transcribe(ctx context.Context, wavPath string, language string) (string, error) {
	if m.Err != nil {
		return "", &TranscriptionError{Engine: "mock", Err: m.Err}
	}
	return m.Text, nil
}
