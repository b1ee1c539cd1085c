// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kissanvaani/kissanvaani/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS qa_entries (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		crop TEXT,
		source TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_qa_entries_crop ON qa_entries(crop);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertEntry inserts an entry, replacing any existing row with the same ID.
func (s *SQLiteStore) UpsertEntry(ctx context.Context, e *models.QAEntry) error {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO qa_entries (id, question, answer, crop, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   question = excluded.question,
		   answer = excluded.answer,
		   crop = excluded.crop,
		   source = excluded.source,
		   updated_at = excluded.updated_at`,
		e.ID, e.Question, e.Answer, e.Crop, e.Source, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// GetEntry returns an entry by ID.
func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*models.QAEntry, error) {
	var e models.QAEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, crop, source, created_at, updated_at
		 FROM qa_entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.Question, &e.Answer, &e.Crop, &e.Source, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEntry removes an entry by ID.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM qa_entries WHERE id = ?`, id)
	return err
}

// ListEntries returns entries ordered by creation time.
func (s *SQLiteStore) ListEntries(ctx context.Context, offset, limit int) ([]*models.QAEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, crop, source, created_at, updated_at
		 FROM qa_entries ORDER BY created_at LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*models.QAEntry
	for rows.Next() {
		var e models.QAEntry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Crop, &e.Source, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountEntries returns the total number of entries.
func (s *SQLiteStore) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa_entries`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
