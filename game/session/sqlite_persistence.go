package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/CentralLoaf/Gridworld-DQN/game/service"

	_ "modernc.org/sqlite"
)

// SQLitePersistence implements SessionPersistence on a SQLite database
type SQLitePersistence struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLitePersistence opens (or creates) the database at path
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	p := &SQLitePersistence{path: path}
	if err := p.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	return p, nil
}

// Init opens the database and creates the sessions table
func (p *SQLitePersistence) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.path == "" {
		return errors.New("sqlite path is required")
	}
	if p.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", p.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	p.db = db
	return nil
}

// Save upserts a session row
func (p *SQLitePersistence) Save(session *service.Session) error {
	db, err := p.getDB()
	if err != nil {
		return err
	}

	payload, err := encodeSession(session, false)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(context.Background(), `
		INSERT INTO sessions (id, config_id, last_accessed_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_id = excluded.config_id,
			last_accessed_at = excluded.last_accessed_at,
			payload = excluded.payload
	`, strings.ToLower(session.ID), session.ConfigID, session.LastAccessedAt.Unix(), payload)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads a session row
func (p *SQLitePersistence) Load(id string) (*service.Session, error) {
	db, err := p.getDB()
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = db.QueryRowContext(context.Background(), `SELECT payload FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	return decodeSession(payload)
}

// Delete removes a session row
func (p *SQLitePersistence) Delete(id string) error {
	db, err := p.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(context.Background(), `DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all stored session IDs
func (p *SQLitePersistence) ListAll() ([]string, error) {
	db, err := p.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(context.Background(), `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (p *SQLitePersistence) Exists(id string) bool {
	db, err := p.getDB()
	if err != nil {
		return false
	}

	var one int
	err = db.QueryRowContext(context.Background(), `SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}

// Close closes the database
func (p *SQLitePersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *SQLitePersistence) getDB() (*sql.DB, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.db == nil {
		return nil, errors.New("session store is not initialized")
	}
	return p.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			config_id TEXT NOT NULL,
			last_accessed_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
