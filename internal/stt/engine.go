// Package stt provides pluggable speech-to-text engines.
package stt

import (
	"context"
	"fmt"
)

// Engine transcribes a canonical waveform into raw text. An empty string is a
// valid result (no speech); engine failures are returned as *TranscriptionError.
type Engine interface {
	Transcribe(ctx context.Context, wavPath string, language string) (string, error)
}

// TranscriptionError is returned when the speech-to-text engine itself fails.
// It is distinct from an empty transcript, which is a valid result.
type TranscriptionError struct {
	Engine string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (%s): %v", e.Engine, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }
