package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jchen2215/promptforge/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements SessionStore on SQLite. Sessions and their turns live
// in separate tables; SaveHistory replaces a session's turns in one
// transaction so concurrent turns on the same session cannot interleave rows.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT 'New Session',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetHistory returns a session's turns ordered by creation time. Unknown
// sessions yield an empty slice.
func (s *SQLiteStore) GetHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	safe, err := SanitizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, session_id, role, content, created_at FROM turns
		 WHERE session_id = ? ORDER BY created_at ASC, seq ASC`, safe)
	if err != nil {
		return nil, fmt.Errorf("%w: query turns: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var t domain.Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan turn: %v", domain.ErrCorruptState, err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read turns: %v", domain.ErrStorageUnavailable, err)
	}
	return turns, nil
}

// SaveHistory replaces the session's full turn sequence. The session row is
// created implicitly on first save, recording the owning user.
func (s *SQLiteStore) SaveHistory(ctx context.Context, sessionID, userID string, turns []domain.Turn) error {
	safe, err := SanitizeSessionID(sessionID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET updated_at = excluded.updated_at`,
		safe, userID, now, now); err != nil {
		return fmt.Errorf("%w: upsert session: %v", domain.ErrStorageUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, safe); err != nil {
		return fmt.Errorf("%w: clear turns: %v", domain.ErrStorageUnavailable, err)
	}

	for i, t := range turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (turn_id, session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, safe, i, t.Role, t.Content, t.CreatedAt); err != nil {
			return fmt.Errorf("%w: insert turn: %v", domain.ErrStorageUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// GetSession retrieves a session row, nil when absent.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	safe, err := SanitizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	var session domain.Session
	err = s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, title, created_at, updated_at FROM sessions WHERE session_id = ?`,
		safe).Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query session: %v", domain.ErrStorageUnavailable, err)
	}
	return &session, nil
}

// DeleteHistory removes a session and its turns, reporting whether the
// session existed.
func (s *SQLiteStore) DeleteHistory(ctx context.Context, sessionID string) (bool, error) {
	safe, err := SanitizeSessionID(sessionID)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, safe)
	if err != nil {
		return false, fmt.Errorf("%w: delete session: %v", domain.ErrStorageUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", domain.ErrStorageUnavailable, err)
	}
	return affected > 0, nil
}

// SessionExists reports whether a session row exists.
func (s *SQLiteStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	safe, err := SanitizeSessionID(sessionID)
	if err != nil {
		return false, err
	}

	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ?`, safe).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: query session: %v", domain.ErrStorageUnavailable, err)
	}
	return true, nil
}
