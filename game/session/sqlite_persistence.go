package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/escape-room-game/game/snapshot"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	display_id TEXT NOT NULL,
	campaign_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	last_accessed_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS session_blobs (
	session_id TEXT NOT NULL,
	blob_key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (session_id, blob_key)
);`

// SQLitePersistence implements SessionPersistence on a SQLite database.
// Session metadata and state blobs live in separate tables so each blob
// keeps its own versioned envelope.
type SQLitePersistence struct {
	db *sql.DB
}

// NewSQLitePersistence opens (or creates) the database at path
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session tables: %w", err)
	}
	return &SQLitePersistence{db: db}, nil
}

// Close closes the database
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}

// Save upserts the session row and replaces its blobs in one transaction
func (sp *SQLitePersistence) Save(data *PersistedSessionData) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if !validID(data.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, data.ID)
	}
	key := strings.ToLower(data.ID)

	tx, err := sp.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sessions (id, display_id, campaign_id, created_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_id = excluded.display_id,
			campaign_id = excluded.campaign_id,
			last_accessed_at = excluded.last_accessed_at`,
		key, data.ID, data.CampaignID,
		data.CreatedAt.UTC().Format(time.RFC3339Nano),
		data.LastAccessedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save session %s: %w", data.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM session_blobs WHERE session_id = ?`, key); err != nil {
		return fmt.Errorf("clear blobs for %s: %w", data.ID, err)
	}
	for blobKey, value := range data.Blobs {
		if _, err := tx.Exec(`INSERT INTO session_blobs (session_id, blob_key, value) VALUES (?, ?, ?)`,
			key, blobKey, string(value)); err != nil {
			return fmt.Errorf("save blob %s for %s: %w", blobKey, data.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads a session row and its blobs
func (sp *SQLitePersistence) Load(id string) (*PersistedSessionData, error) {
	key := strings.ToLower(id)

	var data PersistedSessionData
	var createdAt, accessedAt string
	err := sp.db.QueryRow(`SELECT display_id, campaign_id, created_at, last_accessed_at
		FROM sessions WHERE id = ?`, key).Scan(&data.ID, &data.CampaignID, &createdAt, &accessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if data.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("session %s created_at: %w", id, err)
	}
	if data.LastAccessedAt, err = time.Parse(time.RFC3339Nano, accessedAt); err != nil {
		return nil, fmt.Errorf("session %s last_accessed_at: %w", id, err)
	}

	rows, err := sp.db.Query(`SELECT blob_key, value FROM session_blobs WHERE session_id = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("load blobs for %s: %w", id, err)
	}
	defer rows.Close()

	data.Blobs = make(snapshot.Blobs)
	for rows.Next() {
		var blobKey, value string
		if err := rows.Scan(&blobKey, &value); err != nil {
			return nil, fmt.Errorf("scan blob for %s: %w", id, err)
		}
		data.Blobs[blobKey] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read blobs for %s: %w", id, err)
	}
	return &data, nil
}

// Delete removes a session and its blobs
func (sp *SQLitePersistence) Delete(id string) error {
	key := strings.ToLower(id)

	tx, err := sp.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	if _, err := tx.Exec(`DELETE FROM session_blobs WHERE session_id = ?`, key); err != nil {
		return fmt.Errorf("delete blobs for %s: %w", id, err)
	}
	return tx.Commit()
}

// ListAll returns all persisted session IDs
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var n int
	err := sp.db.QueryRow(`SELECT COUNT(1) FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&n)
	return err == nil && n > 0
}
