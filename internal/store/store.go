package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists rotation tracker partitions and the failure log in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Posted is one tracker entry: a post already selected for a platform.
type Posted struct {
	Platform string
	PostID   string
	PostedAt time.Time
}

// Failure is one failure log entry.
type Failure struct {
	ID        string
	Platform  string
	Error     string
	Message   string
	CreatedAt time.Time
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListPosted returns the post IDs recorded in a platform's partition.
func (s *Store) ListPosted(ctx context.Context, platform string) ([]string, error) {
	entries, err := s.History(ctx, platform)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PostID)
	}
	return ids, nil
}

// History returns a platform's tracker entries, oldest first.
func (s *Store) History(ctx context.Context, platform string) ([]Posted, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(platform) == "" {
		return nil, errors.New("platform is required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, post_id, posted_at
		FROM posted
		WHERE platform = ?
		ORDER BY posted_at ASC, post_id ASC
	`, platform)
	if err != nil {
		return nil, fmt.Errorf("list posted: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Posted
	for rows.Next() {
		var (
			e        Posted
			postedAt string
		)
		if err := rows.Scan(&e.Platform, &e.PostID, &postedAt); err != nil {
			return nil, fmt.Errorf("scan posted: %w", err)
		}
		e.PostedAt, err = parseTime(postedAt)
		if err != nil {
			return nil, fmt.Errorf("parse posted_at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posted: %w", err)
	}

	return entries, nil
}

// AddPosted records postID in a platform's partition. Re-adding an ID is a no-op.
func (s *Store) AddPosted(ctx context.Context, platform, postID string) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(platform) == "" {
		return errors.New("platform is required")
	}
	if strings.TrimSpace(postID) == "" {
		return errors.New("post_id is required")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO posted(platform, post_id, posted_at) VALUES(?, ?, ?)",
		platform, postID, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("add posted: %w", err)
	}
	return nil
}

// ClearPosted deletes every entry in a platform's partition and returns how
// many were removed. Other partitions are untouched.
func (s *Store) ClearPosted(ctx context.Context, platform string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(platform) == "" {
		return 0, errors.New("platform is required")
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM posted WHERE platform = ?", platform)
	if err != nil {
		return 0, fmt.Errorf("clear posted: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// LogFailure appends an entry to the failure log and returns it.
func (s *Store) LogFailure(ctx context.Context, platform, errText, message string) (Failure, error) {
	if s == nil || s.db == nil {
		return Failure{}, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(platform) == "" {
		return Failure{}, errors.New("platform is required")
	}
	if strings.TrimSpace(errText) == "" {
		return Failure{}, errors.New("error text is required")
	}

	f := Failure{
		ID:        uuid.NewString(),
		Platform:  platform,
		Error:     errText,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}

	var messageVal sql.NullString
	if message != "" {
		messageVal = sql.NullString{String: message, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO failures(id, platform, error, message, created_at) VALUES(?, ?, ?, ?, ?)",
		f.ID, f.Platform, f.Error, messageVal, formatTime(f.CreatedAt),
	)
	if err != nil {
		return Failure{}, fmt.Errorf("log failure: %w", err)
	}
	return f, nil
}

// FailureFilter holds optional filters for Failures.
type FailureFilter struct {
	Platform string // empty means all platforms
	Limit    int    // zero means no limit
}

// Failures returns failure log entries, newest first.
func (s *Store) Failures(ctx context.Context, filter FailureFilter) ([]Failure, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := "SELECT id, platform, error, message, created_at FROM failures"
	var args []any
	if filter.Platform != "" {
		query += " WHERE platform = ?"
		args = append(args, filter.Platform)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var failures []Failure
	for rows.Next() {
		var (
			f          Failure
			messageVal sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&f.ID, &f.Platform, &f.Error, &messageVal, &createdAt); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if messageVal.Valid {
			f.Message = messageVal.String
		}
		f.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}

	return failures, nil
}

// PartitionCount reports how many tracker entries each platform holds.
func (s *Store) PartitionCount(ctx context.Context) (map[string]int, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, "SELECT platform, COUNT(*) FROM posted GROUP BY platform")
	if err != nil {
		return nil, fmt.Errorf("count partitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			platform string
			n        int
		)
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, fmt.Errorf("scan partition count: %w", err)
		}
		counts[platform] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partition counts: %w", err)
	}
	return counts, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return time.Time{}.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}
