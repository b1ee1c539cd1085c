// Package retrieval runs vector search over the Q&A corpus and ranks the results.
package retrieval

import (
	"context"
	"fmt"

	"github.com/kissanvaani/kissanvaani/internal/embedding"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/storage"
	"github.com/kissanvaani/kissanvaani/internal/vector"
)

// IndexQueryError is returned when the vector index is unreachable or rejects
// a query. It is reported per expanded query; one failing query does not
// abort the others.
type IndexQueryError struct {
	Query string
	Err   error
}

func (e *IndexQueryError) Error() string {
	return fmt.Sprintf("index query failed for %q: %v", e.Query, e.Err)
}

func (e *IndexQueryError) Unwrap() error { return e.Err }

// QueryRunner executes one nearest-neighbour search for a single query string.
type QueryRunner interface {
	Retrieve(ctx context.Context, query string) ([]*models.MatchCandidate, error)
}

// Retriever embeds a query, searches the vector index, and attaches the
// stored entry metadata to each hit. Read-only; safe for concurrent use.
type Retriever struct {
	embedder embedding.Embedder
	index    vector.Index
	store    storage.Store
	topK     int
}

// NewRetriever creates a retriever returning up to topK candidates per query.
func NewRetriever(embedder embedding.Embedder, index vector.Index, store storage.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{embedder: embedder, index: index, store: store, topK: topK}
}

// Retrieve runs one search. Hits whose stored entry cannot be loaded keep an
// empty metadata map; the assembler treats missing fields as empty strings.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*models.MatchCandidate, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &IndexQueryError{Query: query, Err: fmt.Errorf("embed: %w", err)}
	}
	hits, err := r.index.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, &IndexQueryError{Query: query, Err: err}
	}
	candidates := make([]*models.MatchCandidate, 0, len(hits))
	for _, hit := range hits {
		meta := map[string]string{}
		if entry, err := r.store.GetEntry(ctx, hit.ID); err == nil {
			meta["question"] = entry.Question
			meta["answer"] = entry.Answer
			if entry.Crop != "" {
				meta["crop"] = entry.Crop
			}
			if entry.Source != "" {
				meta["source"] = entry.Source
			}
		}
		candidates = append(candidates, &models.MatchCandidate{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: meta,
		})
	}
	return candidates, nil
}
