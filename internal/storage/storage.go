// Package storage defines persistence for the agricultural Q&A corpus.
package storage

import (
	"context"

	"github.com/kissanvaani/kissanvaani/internal/models"
)

// Store defines QA entry persistence operations.
type Store interface {
	UpsertEntry(ctx context.Context, e *models.QAEntry) error
	GetEntry(ctx context.Context, id string) (*models.QAEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, offset, limit int) ([]*models.QAEntry, error)
	CountEntries(ctx context.Context) (int64, error)
	Close() error
}
