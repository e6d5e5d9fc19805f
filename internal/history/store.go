// Package history persists search session summaries in SQLite so past
// searches can be listed from the command line.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/fsearch/internal/models"
)

// DefaultRecentLimit is used by Recent when limit <= 0.
const DefaultRecentLimit = 20

// timeLayout is fixed width so started_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the session history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the history database at dbPath. ":memory:" opens a
// private in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry retries stmt with exponential backoff while the database is locked.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a session summary. Recording the same session ID twice
// replaces the earlier row.
func (s *Store) Record(ctx context.Context, summary models.SessionSummary) error {
	if summary.ID == "" {
		return fmt.Errorf("record session: missing id")
	}

	query := `INSERT OR REPLACE INTO search_sessions
		(id, root, pattern, state, matched, delivered, cap_reached, traversal_errors, started_at, duration_ms, error_message, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		summary.ID,
		summary.Root,
		summary.Pattern,
		string(summary.State),
		summary.Matched,
		summary.Delivered,
		summary.CapReached,
		summary.TraversalErrors,
		summary.StartedAt.UTC().Format(timeLayout),
		summary.Duration.Milliseconds(),
		nullString(summary.Error),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", summary.ID, err)
	}
	return nil
}

// Recent returns up to limit summaries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `SELECT id, root, pattern, state, matched, delivered, cap_reached, traversal_errors, started_at, duration_ms, error_message
		FROM search_sessions
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionSummary
	for rows.Next() {
		var (
			summary    models.SessionSummary
			state      string
			startedAt  string
			durationMS int64
			errMsg     sql.NullString
		)
		if err := rows.Scan(
			&summary.ID,
			&summary.Root,
			&summary.Pattern,
			&state,
			&summary.Matched,
			&summary.Delivered,
			&summary.CapReached,
			&summary.TraversalErrors,
			&startedAt,
			&durationMS,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		summary.State = models.SessionState(state)
		summary.Duration = time.Duration(durationMS) * time.Millisecond
		summary.Error = errMsg.String
		if t, err := time.Parse(timeLayout, startedAt); err == nil {
			summary.StartedAt = t
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Count returns the number of recorded sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
