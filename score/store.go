// Package score persists finished runs in SQLite and answers high-score queries
package score

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lixenwraith/void-striker/game"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationTable = "schema_migrations"

// ErrNotConfigured is returned by a nil or closed store
var ErrNotConfigured = errors.New("score: store is not configured")

// Entry is one high-score row
type Entry struct {
	ID         string    `json:"id"`
	Score      int       `json:"score"`
	Level      int       `json:"level"`
	Kills      int       `json:"kills"`
	Difficulty string    `json:"difficulty"`
	EndedAt    time.Time `json:"ended_at"`
}

// Store is the SQLite-backed high score table; implements game.ScoreRecorder
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations
// ":memory:" opens a private in-memory database
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("score: storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("score: open sqlite db: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("score: ping sqlite db: %w", err)
	}

	if err := applyMigrations(db, migrationFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("score: run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record inserts a finished run; recording the same run ID twice keeps the first
func (s *Store) Record(ctx context.Context, run game.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	run.ID = strings.TrimSpace(run.ID)
	if run.ID == "" {
		return fmt.Errorf("score: run id is required")
	}
	if run.Score < 0 {
		return fmt.Errorf("score: negative score %d", run.Score)
	}
	if run.EndedAt.IsZero() {
		run.EndedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO runs (id, score, level, kills, difficulty, ended_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Score, run.Level, run.Kills, run.Difficulty, run.EndedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("score: insert run %s: %w", run.ID, err)
	}
	return nil
}

// Best returns the highest recorded score, 0 when empty
func (s *Store) Best(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrNotConfigured
	}
	var best int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(score), 0) FROM runs`).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("score: best: %w", err)
	}
	return best, nil
}

// Top returns up to n runs ordered by score, earliest first on ties
func (s *Store) Top(ctx context.Context, n int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, score, level, kills, difficulty, ended_at
FROM runs
ORDER BY score DESC, ended_at ASC
LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("score: top: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ended int64
		if err := rows.Scan(&e.ID, &e.Score, &e.Level, &e.Kills, &e.Difficulty, &ended); err != nil {
			return nil, fmt.Errorf("score: scan: %w", err)
		}
		e.EndedAt = time.UnixMilli(ended).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("score: rows: %w", err)
	}
	return out, nil
}

// Count returns the number of recorded runs
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrNotConfigured
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("score: count: %w", err)
	}
	return n, nil
}

// applyMigrations executes each embedded .sql file under root at most once
func applyMigrations(db *sql.DB, migrations fs.FS, root string) error {
	entries, err := fs.ReadDir(migrations, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(*) FROM `+migrationTable+` WHERE name = ?`, file).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrations, root+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		up := extractUp(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// extractUp returns the SQL in the -- +migrate Up section
func extractUp(content string) string {
	const upMarker, downMarker = "-- +migrate Up", "-- +migrate Down"
	up := strings.Index(content, upMarker)
	if up == -1 {
		return content
	}
	body := content[up+len(upMarker):]
	if down := strings.Index(body, downMarker); down != -1 {
		body = body[:down]
	}
	return body
}
