// Package translate provides machine translation of answer text.
package translate

import "context"

// Translator translates text into a target language. Translation is
// best-effort enrichment: callers fall back to the source text on error.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// MockTranslator returns a fixed translation or error. For tests.
type MockTranslator struct {
	Text string
	Err  error
}

// Translate returns the configured translation; when Text is empty and there
// is no error, the input is echoed back.
func (m *MockTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Text == "" {
		return text, nil
	}
	return m.Text, nil
}
