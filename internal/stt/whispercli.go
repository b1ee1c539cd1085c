package stt

import (
	"context"
	"os/exec"
	"strings"
)

// WhisperCLI runs a local whisper.cpp-style binary and reads the transcript
// from stdout.
type WhisperCLI struct {
	command   string
	modelPath string
}

// NewWhisperCLI creates a CLI engine invoking command with the given model file.
func NewWhisperCLI(command, modelPath string) *WhisperCLI {
	if command == "" {
		command = "whisper-cli"
	}
	return &WhisperCLI{command: command, modelPath: modelPath}
}

// Transcribe runs the whisper binary over wavPath. The -nt/-np flags suppress
// timestamps and progress output so stdout is the bare transcript.
func (w *WhisperCLI) Transcribe(ctx context.Context, wavPath string, language string) (string, error) {
	args := []string{"-nt", "-np", "-f", wavPath}
	if w.modelPath != "" {
		args = append(args, "-m", w.modelPath)
	}
	if language != "" {
		args = append(args, "-l", language)
	}
	cmd := exec.CommandContext(ctx, w.command, args...)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", &TranscriptionError{Engine: "whisper-cli", Err: exitWithStderr(ee)}
		}
		return "", &TranscriptionError{Engine: "whisper-cli", Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}

type stderrError struct {
	err    error
	stderr string
}

func (e *stderrError) Error() string { return e.err.Error() + ": " + e.stderr }
func (e *stderrError) Unwrap() error { return e.err }

func exitWithStderr(ee *exec.ExitError) error {
	return &stderrError{err: ee, stderr: strings.TrimSpace(string(ee.Stderr))}
}
