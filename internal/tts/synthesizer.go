// Package tts synthesizes speech for answer text.
package tts

import "context"

// Synthesizer converts text in a language into an audio artifact at outPath.
// Synthesis is best-effort: callers omit the audio reference on error rather
// than failing the request.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, outPath string) error
}

// MockSynthesizer writes a placeholder artifact or fails per language. For tests.
type MockSynthesizer struct {
	FailLangs map[string]bool
	Err       error
}

// Synthesize writes a stub MP3 file unless the language is configured to fail.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, lang, outPath string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.FailLangs[lang] {
		return errTTSUnavailable
	}
	return writePlaceholder(outPath)
}
