// store.go — SQLite persistence of named timeline snapshots.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/ozdemirkulaoglu/dakka/internal/timeline"
)

// ErrNotFound is returned when no session matches.
var ErrNotFound = errors.New("session not found")

// Session is a saved timeline snapshot of one tab.
type Session struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	TabID      int               `json:"tabId"`
	CreatedAt  time.Time         `json:"createdAt"`
	EntryCount int               `json:"entryCount"`
	Timeline   timeline.Timeline `json:"timeline,omitempty"`
}

// Store is a session database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions(
	  id            TEXT    PRIMARY KEY,
	  name          TEXT    NOT NULL,
	  tab_id        INTEGER NOT NULL,
	  created_at    INTEGER NOT NULL,
	  entry_count   INTEGER NOT NULL,
	  timeline_json TEXT    NOT NULL CHECK (json_valid(timeline_json))
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_name    ON sessions(name);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a snapshot of tl under name and returns the new session.
func (s *Store) Save(ctx context.Context, name string, tabID int, tl timeline.Timeline) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, errors.New("session name cannot be empty")
	}
	if tl == nil {
		tl = timeline.Timeline{}
	}
	data, err := json.Marshal(tl)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode timeline: %w", err)
	}

	sess := Session{
		ID:         uuid.NewString(),
		Name:       name,
		TabID:      tabID,
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
		EntryCount: len(tl),
		Timeline:   timeline.Clone(tl),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, name, tab_id, created_at, entry_count, timeline_json) VALUES(?,?,?,?,?,json(?))`,
		sess.ID, sess.Name, sess.TabID, sess.CreatedAt.UnixMilli(), sess.EntryCount, string(data))
	if err != nil {
		return Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

// Get returns the session with the given id, or the newest one with that name.
func (s *Store) Get(ctx context.Context, idOrName string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, name, tab_id, created_at, entry_count, timeline_json
	FROM sessions
	WHERE id = ? OR name = ?
	ORDER BY (id = ?) DESC, created_at DESC
	LIMIT 1`, idOrName, idOrName, idOrName)

	var (
		sess    Session
		created int64
		data    string
	)
	err := row.Scan(&sess.ID, &sess.Name, &sess.TabID, &created, &sess.EntryCount, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%q: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	sess.CreatedAt = time.UnixMilli(created).UTC()
	if err := json.Unmarshal([]byte(data), &sess.Timeline); err != nil {
		return Session{}, fmt.Errorf("failed to decode timeline of %s: %w", sess.ID, err)
	}
	return sess, nil
}

// List returns every session without its timeline, newest first.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, tab_id, created_at, entry_count
	FROM sessions
	ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess    Session
			created int64
		)
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.TabID, &created, &sess.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Delete removes the session with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return nil
}
