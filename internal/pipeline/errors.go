package pipeline

import (
	"errors"

	"github.com/kissanvaani/kissanvaani/internal/audio"
	"github.com/kissanvaani/kissanvaani/internal/retrieval"
	"github.com/kissanvaani/kissanvaani/internal/stt"
)

// ErrNoSpeech signals an empty transcript. It is a valid terminal condition,
// not an engine failure: the request short-circuits with a user-facing
// message and no downstream component runs.
var ErrNoSpeech = errors.New("no speech detected")

// UserMessage maps a pipeline error to the user-facing error string carried
// in the 200 response payload. Raw engine errors never reach the caller.
func UserMessage(err error) string {
	var convErr *audio.ConversionError
	var sttErr *stt.TranscriptionError
	var idxErr *retrieval.IndexQueryError
	switch {
	case errors.Is(err, ErrNoSpeech):
		return "No speech detected"
	case errors.As(err, &convErr):
		return "Audio conversion failed"
	case errors.As(err, &sttErr):
		return "Transcription failed"
	case errors.As(err, &idxErr):
		return "Search index unavailable"
	default:
		return "Internal error"
	}
}
