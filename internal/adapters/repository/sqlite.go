package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/metrics"
)

// SQLiteStore persists records in a SQLite database. The record is kept as
// a JSON payload; the ordering columns are denormalized for listing.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path. ":memory:" is allowed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.initializeSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initializeSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			asked_at INTEGER NOT NULL,
			status TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			payload TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_questions_asked_at ON questions(asked_at DESC, id);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Save implements Store.Save.
func (s *SQLiteStore) Save(ctx context.Context, rec model.Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositorySaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if rec.Question.ID == "" {
		return ErrInvalidID
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode question %s: %w", rec.Question.ID, err)
	}

	const query = `
		INSERT INTO questions (id, asked_at, status, updated_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			asked_at = excluded.asked_at,
			status = excluded.status,
			updated_at = excluded.updated_at,
			payload = excluded.payload
	`
	if _, err := s.conn.ExecContext(ctx, query,
		rec.Question.ID,
		rec.Question.AskedAt.UnixNano(),
		string(rec.Status),
		rec.UpdatedAt.UnixNano(),
		string(payload),
	); err != nil {
		metrics.RecordErrorByComponent("repository", "sqlite_write")
		return fmt.Errorf("save question %s: %w", rec.Question.ID, err)
	}
	metrics.UpdateStoredQuestions(s.Count(ctx))
	return nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var payload string
	err := s.conn.QueryRowContext(ctx, `SELECT payload FROM questions WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Record{}, ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("get question %s: %w", id, err)
	}
	return decodeRecord(payload)
}

// Delete implements Store.Delete.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	return nil
}

// Recent implements Store.Recent.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]model.Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT payload FROM questions ORDER BY asked_at DESC, id ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		rec, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count implements Store.Count. Query failures count as zero.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0
	}
	return n
}

func decodeRecord(payload string) (model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return model.Record{}, fmt.Errorf("decode question: %w", err)
	}
	return rec, nil
}
