// Package sqlite stores records as JSON documents in a SQLite database and
// runs the summary aggregations used by the report command.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// commitEvery bounds the number of inserts held in one transaction.
const commitEvery = 1000

var schema = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	`CREATE TABLE IF NOT EXISTS elements (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		id   TEXT NOT NULL,
		type TEXT NOT NULL,
		doc  TEXT NOT NULL
	)`,
	"CREATE INDEX IF NOT EXISTS idx_elements_type ON elements(type)",
}

// Store is a document store of shaped records. It implements pipeline.Loader.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	tx      *sql.Tx
	insert  *sql.Stmt
	pending int
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Pragmas and the open write transaction are per connection.
	db.SetMaxOpenConns(1)

	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return &Store{db: db, logger: logger}, nil
}

// Reset removes all stored records.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Flush(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM elements"); err != nil {
		return fmt.Errorf("reset elements: %w", err)
	}
	return nil
}

// Load inserts rec as one document row.
func (s *Store) Load(ctx context.Context, rec domain.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}

	if s.tx == nil {
		if err := s.begin(ctx); err != nil {
			return err
		}
	}
	if _, err := s.insert.ExecContext(ctx, rec.ID(), rec.Type(), string(doc)); err != nil {
		return fmt.Errorf("insert %s %s: %w", rec.Type(), rec.ID(), err)
	}

	s.pending++
	if s.pending >= commitEvery {
		return s.commit()
	}
	return nil
}

// Flush commits any buffered inserts.
func (s *Store) Flush() error {
	if s.tx == nil {
		return nil
	}
	return s.commit()
}

// Close commits buffered inserts and closes the database.
func (s *Store) Close() error {
	return errors.Join(s.Flush(), s.db.Close())
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM elements").Scan(&n); err != nil {
		return 0, fmt.Errorf("count elements: %w", err)
	}
	return n, nil
}

// begin opens the write transaction. It outlives the ctx of the Load that
// starts it so Close can still commit after a run's context has ended.
func (s *Store) begin(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO elements (id, type, doc) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	s.tx, s.insert = tx, stmt
	return nil
}

func (s *Store) commit() error {
	tx, n := s.tx, s.pending
	s.tx, s.insert, s.pending = nil, nil, 0
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %d records: %w", n, err)
	}
	s.logger.Debug("committed records", "count", n)
	return nil
}
