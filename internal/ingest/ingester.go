// Package ingest loads Q&A corpus files into storage and the vector index.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kissanvaani/kissanvaani/internal/embedding"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/storage"
	"github.com/kissanvaani/kissanvaani/internal/vector"
	"go.uber.org/zap"
)

// Ingester indexes QA entries into storage and the vector index.
type Ingester struct {
	store    storage.Store
	embedder embedding.Embedder
	index    vector.Index
	logger   *zap.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets a logger for debug output (entries ingested, files loaded).
func WithLogger(l *zap.Logger) Option {
	return func(ing *Ingester) { ing.logger = l }
}

// NewIngester creates an ingester with the given dependencies.
func NewIngester(store storage.Store, embedder embedding.Embedder, index vector.Index, opts ...Option) *Ingester {
	ing := &Ingester{store: store, embedder: embedder, index: index, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestEntry stores one entry and indexes its question embedding. Re-ingesting
// an existing ID replaces both the stored row and the vector.
func (ing *Ingester) IngestEntry(ctx context.Context, e *models.QAEntry) error {
	if strings.TrimSpace(e.Answer) == "" {
		return fmt.Errorf("entry has no answer")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	text := e.Question
	if strings.TrimSpace(text) == "" {
		text = e.Answer
	}
	vec, err := ing.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed entry: %w", err)
	}
	if err := ing.store.UpsertEntry(ctx, e); err != nil {
		return fmt.Errorf("failed to store entry: %w", err)
	}
	if err := ing.index.Remove(ctx, []string{e.ID}); err != nil {
		return fmt.Errorf("failed to replace vector: %w", err)
	}
	if err := ing.index.Add(ctx, []string{e.ID}, [][]float32{vec}); err != nil {
		// Roll back the row so a stored entry is never unsearchable.
		if delErr := ing.store.DeleteEntry(ctx, e.ID); delErr != nil {
			ing.logger.Warn("entry rollback failed", zap.String("id", e.ID), zap.Error(delErr))
		}
		return fmt.Errorf("failed to index vector: %w", err)
	}
	ing.logger.Debug("entry ingested", zap.String("id", e.ID), zap.String("crop", e.Crop))
	return nil
}

// IngestFile loads one corpus file by extension (.json or .xlsx) and ingests
// every entry. Returns the number of entries ingested.
func (ing *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	var (
		entries []*models.QAEntry
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entries, err = readJSON(path)
	case ".xlsx":
		entries, err = readXLSX(path)
	default:
		return 0, fmt.Errorf("unsupported corpus file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if err := ing.IngestEntry(ctx, e); err != nil {
			ing.logger.Warn("skipping entry", zap.String("path", path), zap.Error(err))
			continue
		}
		n++
	}
	ing.logger.Debug("corpus file ingested", zap.String("path", path), zap.Int("entries", n))
	return n, nil
}

// IngestDirectory ingests every supported corpus file under dir.
func (ing *Ingester) IngestDirectory(ctx context.Context, dir string) (int, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(item.Name()))
		if ext != ".json" && ext != ".xlsx" {
			continue
		}
		n, err := ing.IngestFile(ctx, filepath.Join(dir, item.Name()))
		if err != nil {
			ing.logger.Warn("corpus file skipped", zap.String("file", item.Name()), zap.Error(err))
			continue
		}
		total += n
	}
	return total, nil
}
