package retrieval

import (
	"context"
	"sync"

	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/pkg/utils"
	"go.uber.org/zap"
)

// Engine fans out one retrieval per expanded query and merges the results.
// Queries share no mutable state, so the searches run in parallel.
type Engine struct {
	runner     QueryRunner
	maxAnswers int
	logger     *zap.Logger
}

// NewEngine creates an engine returning up to maxAnswers merged results.
func NewEngine(runner QueryRunner, maxAnswers int, logger *zap.Logger) *Engine {
	if maxAnswers <= 0 {
		maxAnswers = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{runner: runner, maxAnswers: maxAnswers, logger: logger}
}

// Search retrieves candidates for every query in parallel and merges them.
// The first query must be the canonical one. A failing query is logged and
// skipped; Search returns an error only when the canonical query failed and
// no other query produced results.
func (e *Engine) Search(ctx context.Context, queries []string) ([]*models.MatchCandidate, error) {
	results := make([][]*models.MatchCandidate, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results[i], errs[i] = e.runner.Retrieve(ctx, q)
		}(i, q)
	}
	wg.Wait()

	var all []*models.MatchCandidate
	for i, res := range results {
		if errs[i] != nil {
			e.logger.Warn("query search failed",
				zap.String("query", utils.Truncate(queries[i], 120)),
				zap.Error(errs[i]))
			continue
		}
		all = append(all, res...)
	}

	if len(all) == 0 && len(errs) > 0 && errs[0] != nil {
		return nil, errs[0]
	}
	return Merge(all, e.maxAnswers), nil
}
