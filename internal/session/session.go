// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists per-session document state: the extracted
// text, its extraction stats, and the keyword profile derived from it.
// Sessions survive process restarts so an uploaded document can keep
// serving study requests.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/study-engine/pkg/types"
)

const dbFile = "sessions.db"

// DefaultID is the session used when a caller does not name one.
const DefaultID = "default"

// ErrNotFound means no session exists under the requested ID.
var ErrNotFound = errors.New("session not found")

// Session is one uploaded document and everything derived from it.
type Session struct {
	ID         string
	FileName   string
	FilePath   string
	Extraction types.Extraction
	Profile    types.KeywordProfile
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store manages the session SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the session database at dataDir/sessions.db,
// creating the schema on first use.
func NewStore(cfg types.SessionConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			file_name TEXT,
			file_path TEXT,
			text TEXT,
			page_count INTEGER,
			extracted_pages INTEGER,
			word_count INTEGER,
			methods_used TEXT,
			status TEXT,
			message TEXT,
			profile TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save upserts a session. CreatedAt is preserved on update; UpdatedAt is
// always set to now.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	now := time.Now().UTC()
	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	methodsJSON, _ := json.Marshal(sess.Extraction.MethodsUsed)
	profileJSON, _ := json.Marshal(sess.Profile)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, file_name, file_path, text, page_count, extracted_pages,
			word_count, methods_used, status, message, profile, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			file_name=excluded.file_name, file_path=excluded.file_path, text=excluded.text,
			page_count=excluded.page_count, extracted_pages=excluded.extracted_pages,
			word_count=excluded.word_count, methods_used=excluded.methods_used,
			status=excluded.status, message=excluded.message, profile=excluded.profile,
			updated_at=excluded.updated_at`,
		sess.ID, sess.FileName, sess.FilePath, sess.Extraction.Text,
		sess.Extraction.PageCount, sess.Extraction.ExtractedPages,
		sess.Extraction.WordCount, string(methodsJSON),
		string(sess.Extraction.Status), sess.Extraction.Message,
		string(profileJSON),
		createdAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// Get loads a session by ID. Returns ErrNotFound when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var (
		sess                   Session
		methodsJSON            string
		profileJSON            string
		status                 string
		createdStr, updatedStr string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, file_path, text, page_count, extracted_pages,
			word_count, methods_used, status, message, profile, created_at, updated_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(
		&sess.ID, &sess.FileName, &sess.FilePath, &sess.Extraction.Text,
		&sess.Extraction.PageCount, &sess.Extraction.ExtractedPages,
		&sess.Extraction.WordCount, &methodsJSON, &status,
		&sess.Extraction.Message, &profileJSON, &createdStr, &updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("loading session %s: %w", id, err)
	}

	sess.Extraction.Status = types.ExtractionStatus(status)
	if methodsJSON != "" {
		json.Unmarshal([]byte(methodsJSON), &sess.Extraction.MethodsUsed)
	}
	if profileJSON != "" {
		json.Unmarshal([]byte(profileJSON), &sess.Profile)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return sess, nil
}

// SaveProfile stores an updated keyword profile for an existing session.
func (s *Store) SaveProfile(ctx context.Context, id string, profile types.KeywordProfile) error {
	profileJSON, _ := json.Marshal(profile)
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET profile = ?, updated_at = ? WHERE id = ?`,
		string(profileJSON), time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("updating profile for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Info is a listing row: session metadata without the document text.
type Info struct {
	ID        string
	FileName  string
	WordCount int
	Topic     string
	UpdatedAt time.Time
}

// List returns all sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, word_count, profile, updated_at
		 FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info        Info
			profileJSON string
			updatedStr  string
		)
		if err := rows.Scan(&info.ID, &info.FileName, &info.WordCount, &profileJSON, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		var profile types.KeywordProfile
		if profileJSON != "" {
			json.Unmarshal([]byte(profileJSON), &profile)
		}
		info.Topic = profile.Topic
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
