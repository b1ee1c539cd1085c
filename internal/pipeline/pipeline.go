// Package pipeline orchestrates one spoken question end to end: normalize,
// transcribe, romanize, expand, retrieve, merge, and assemble bilingual answers.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kissanvaani/kissanvaani/internal/expand"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/retrieval"
	"github.com/kissanvaani/kissanvaani/internal/romanize"
	"github.com/kissanvaani/kissanvaani/internal/stt"
	"github.com/kissanvaani/kissanvaani/internal/translate"
	"github.com/kissanvaani/kissanvaani/internal/tts"
	"github.com/kissanvaani/kissanvaani/pkg/utils"
	"go.uber.org/zap"
)

// Normalizer converts an uploaded audio blob into a canonical waveform file.
// The cleanup function removes every temporary file and must be called on all
// exit paths.
type Normalizer interface {
	Normalize(ctx context.Context, blob []byte, formatHint string) (wavPath string, cleanup func(), err error)
}

// Settings holds the request-independent pipeline parameters.
type Settings struct {
	// ArtifactsDir is where synthesized MP3s are written.
	ArtifactsDir string
	// Language is the recognition language hint passed to the transcriber.
	Language string
	// FallbackAnswer is used when retrieval produces no results.
	FallbackAnswer string
}

// Pipeline handles one request end to end. All dependencies are initialized
// once at process start and shared read-only across concurrent requests.
type Pipeline struct {
	normalizer  Normalizer
	transcriber stt.Engine
	expander    *expand.Expander
	engine      *retrieval.Engine
	translator  translate.Translator
	synthesizer tts.Synthesizer
	settings    Settings
	logger      *zap.Logger
}

// New creates a pipeline with the given dependencies.
func New(
	normalizer Normalizer,
	transcriber stt.Engine,
	expander *expand.Expander,
	engine *retrieval.Engine,
	translator translate.Translator,
	synthesizer tts.Synthesizer,
	settings Settings,
	logger *zap.Logger,
) *Pipeline {
	if settings.FallbackAnswer == "" {
		settings.FallbackAnswer = "Maaf kijiye, mujhe iska jawab nahi mila"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		normalizer:  normalizer,
		transcriber: transcriber,
		expander:    expander,
		engine:      engine,
		translator:  translator,
		synthesizer: synthesizer,
		settings:    settings,
		logger:      logger,
	}
}

// Ask answers one spoken question. Hard failures (conversion, transcription
// engine, total index failure) are returned as typed errors for the server to
// map into an error payload; translation and synthesis degrade per item.
func (p *Pipeline) Ask(ctx context.Context, blob []byte, formatHint string) (*models.AskResponse, error) {
	wavPath, cleanup, err := p.normalizer.Normalize(ctx, blob, formatHint)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	text, err := p.transcriber.Transcribe(ctx, wavPath, p.settings.Language)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoSpeech
	}

	hinglish := romanize.Romanize(text)
	queries := p.expander.Expand(hinglish)
	p.logger.Debug("query expanded",
		zap.String("hinglish", utils.Truncate(hinglish, 120)),
		zap.Int("queries", len(queries)))

	merged, err := p.engine.Search(ctx, queries)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		merged = []*models.MatchCandidate{{
			Metadata: map[string]string{"answer": p.settings.FallbackAnswer},
		}}
	}

	reqID := uuid.New().String()
	answers := make([]*models.BilingualAnswer, len(merged))
	var wg sync.WaitGroup
	for i, cand := range merged {
		wg.Add(1)
		go func(i int, cand *models.MatchCandidate) {
			defer wg.Done()
			answers[i] = p.buildAnswer(ctx, reqID, i+1, cand)
		}(i, cand)
	}
	wg.Wait()

	return &models.AskResponse{
		HinglishText:  hinglish,
		SearchQueries: queries,
		Answers:       answers,
	}, nil
}

// buildAnswer translates one candidate and synthesizes audio for both
// languages. English and Hindi synthesis succeed or fail independently.
func (p *Pipeline) buildAnswer(ctx context.Context, reqID string, rank int, cand *models.MatchCandidate) *models.BilingualAnswer {
	en := cand.AnswerText()
	if en == "" {
		en = p.settings.FallbackAnswer
	}
	hi, err := p.translator.Translate(ctx, en, "hi")
	if err != nil {
		p.logger.Warn("translation failed, keeping source text", zap.Int("rank", rank), zap.Error(err))
		hi = en
	}

	answer := &models.BilingualAnswer{English: en, Hindi: hi}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		answer.AudioEN = p.synthesize(ctx, reqID, rank, "en", en)
	}()
	go func() {
		defer wg.Done()
		answer.AudioHI = p.synthesize(ctx, reqID, rank, "hi", hi)
	}()
	wg.Wait()
	return answer
}

// synthesize writes one audio artifact and returns its serving reference, or
// nil when synthesis failed. Artifact names carry the request token so
// concurrent requests never collide.
func (p *Pipeline) synthesize(ctx context.Context, reqID string, rank int, lang, text string) *string {
	name := fmt.Sprintf("%s_answer_%d_%s.mp3", reqID, rank, lang)
	path := filepath.Join(p.settings.ArtifactsDir, name)
	if err := p.synthesizer.Synthesize(ctx, text, lang, path); err != nil {
		p.logger.Warn("speech synthesis failed",
			zap.String("lang", lang),
			zap.Int("rank", rank),
			zap.Error(err))
		return nil
	}
	ref := "/audio/" + name
	return &ref
}
