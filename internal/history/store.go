// Package history persists apply batches to SQLite so past runs can be
// listed, inspected, and removed.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/skovand/redline/internal/batch"
)

// DB is the interface accepted by NewStore. It abstracts the database
// operations needed by Store so that callers can supply a real *sql.DB or
// a wrapper that injects faults, records calls, etc.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

const idCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func generateId() string {
	return gonanoid.MustGenerate(idCharset, 6)
}

//go:embed schema.sql
var schemaSQL string

// ErrBatchNotFound reports a batch ID with no row behind it.
var ErrBatchNotFound = errors.New("batch not found")

// Batch is one persisted apply run. Results is populated by GetBatch only.
type Batch struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Root        string         `json:"root"`
	ActionCount int            `json:"action_count"`
	Results     []batch.Result `json:"results,omitempty"`
}

// Store provides operations for saving and retrieving apply batches. Do
// not access its internal database directly.
type Store struct {
	db          DB
	idGenerator func() string
}

// NewStore initializes and returns a new Store backed by the given DB. It
// runs the embedded schema DDL against db before returning. The caller is
// responsible for opening and closing the underlying database connection.
func NewStore(ctx context.Context, db DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, idGenerator: generateId}, nil
}

// SaveBatch persists one apply run and returns its ID. The batch row and
// all result rows are written in a single transaction.
func (s *Store) SaveBatch(ctx context.Context, root string, results []batch.Result) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.generateUniqueIDInTx(ctx, tx)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, created_at, root, action_count) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC(), root, len(results))
	if err != nil {
		return "", fmt.Errorf("failed to insert batch: %w", err)
	}

	for seq, res := range results {
		var stdout, stderr sql.NullString
		var exitCode sql.NullInt64
		if res.Output != nil {
			stdout = sql.NullString{String: res.Output.Stdout, Valid: true}
			stderr = sql.NullString{String: res.Output.Stderr, Valid: true}
			exitCode = sql.NullInt64{Int64: int64(res.Output.ExitCode), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results (batch_id, seq, kind, target, status, detail, stdout, stderr, exit_code)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, seq, res.Kind, res.Target, string(res.Status), res.Detail, stdout, stderr, exitCode)
		if err != nil {
			return "", fmt.Errorf("failed to insert result %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// generateUniqueIDInTx generates an ID checking for collisions within a
// transaction.
func (s *Store) generateUniqueIDInTx(ctx context.Context, tx *sql.Tx) (string, error) {
	maxAttempts := 10
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := s.idGenerator()
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches WHERE id = ?`, id).Scan(&n); err != nil {
			return "", fmt.Errorf("failed to check ID collision: %w", err)
		}
		if n == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxAttempts)
}

// ListBatches returns batches newest-first, without their results. A
// non-positive limit falls back to 50.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, root, action_count FROM batches
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.Root, &b.ActionCount); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}
	return batches, nil
}

// GetBatch returns one batch with its results in application order.
func (s *Store) GetBatch(ctx context.Context, id string) (Batch, error) {
	var b Batch
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, root, action_count FROM batches WHERE id = ?`, id).
		Scan(&b.ID, &b.CreatedAt, &b.Root, &b.ActionCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, fmt.Errorf("%s: %w", id, ErrBatchNotFound)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("failed to get batch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, target, status, detail, stdout, stderr, exit_code
		 FROM results WHERE batch_id = ? ORDER BY seq`, id)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res batch.Result
		var status string
		var stdout, stderr sql.NullString
		var exitCode sql.NullInt64
		if err := rows.Scan(&res.Kind, &res.Target, &status, &res.Detail, &stdout, &stderr, &exitCode); err != nil {
			return Batch{}, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Status = batch.Status(status)
		if stdout.Valid {
			res.Output = &batch.CommandOutput{
				Stdout:   stdout.String,
				Stderr:   stderr.String,
				ExitCode: int(exitCode.Int64),
			}
		}
		b.Results = append(b.Results, res)
	}
	if err := rows.Err(); err != nil {
		return Batch{}, fmt.Errorf("failed to iterate results: %w", err)
	}
	return b, nil
}

// DeleteBatch removes a batch and its results.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE batch_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", id, ErrBatchNotFound)
	}
	return tx.Commit()
}
