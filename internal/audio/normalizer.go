// Package audio converts uploaded audio into the canonical waveform used for transcription.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ConversionError is returned when the external converter exits non-zero.
// Output carries the tool's diagnostic output.
type ConversionError struct {
	Format string
	Output string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("audio conversion failed (format %q): %v: %s", e.Format, e.Err, e.Output)
	}
	return fmt.Sprintf("audio conversion failed (format %q): %v", e.Format, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Normalizer converts arbitrary audio containers (WAV, MP3, WEBM, OPUS, ...)
// into mono 16 kHz PCM WAV via ffmpeg.
type Normalizer struct {
	ffmpegPath string
	workDir    string
}

// NewNormalizer creates a normalizer that invokes the ffmpeg binary at
// ffmpegPath and writes intermediate files under workDir. Empty arguments
// default to "ffmpeg" on PATH and the system temp directory.
func NewNormalizer(ffmpegPath, workDir string) *Normalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Normalizer{ffmpegPath: ffmpegPath, workDir: workDir}
}

// Normalize writes blob to a temporary file and converts it to a mono 16 kHz
// PCM WAV. It returns the WAV path and a cleanup function that removes every
// temporary file; callers must invoke cleanup on all exit paths. On failure
// Normalize removes its own temporaries before returning.
func (n *Normalizer) Normalize(ctx context.Context, blob []byte, formatHint string) (string, func(), error) {
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(formatHint)), ".")
	if ext == "" {
		ext = "bin"
	}
	token := uuid.New().String()
	inPath := filepath.Join(n.workDir, fmt.Sprintf("upload_%s.%s", token, ext))
	wavPath := filepath.Join(n.workDir, fmt.Sprintf("canonical_%s.wav", token))

	if err := os.WriteFile(inPath, blob, 0600); err != nil {
		return "", nil, fmt.Errorf("write upload: %w", err)
	}

	// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, n.ffmpegPath,
		"-y", "-i", inPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		wavPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(inPath)
		_ = os.Remove(wavPath)
		return "", nil, &ConversionError{Format: ext, Output: tail(stderr.String(), 512), Err: err}
	}
	if fi, err := os.Stat(wavPath); err != nil || fi.Size() == 0 {
		_ = os.Remove(inPath)
		_ = os.Remove(wavPath)
		return "", nil, &ConversionError{Format: ext, Output: "converter produced no output", Err: err}
	}

	cleanup := func() {
		_ = os.Remove(inPath)
		_ = os.Remove(wavPath)
	}
	return wavPath, cleanup, nil
}

// tail returns the last max bytes of s. ffmpeg front-loads banner noise; the
// useful diagnostic is at the end.
func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
