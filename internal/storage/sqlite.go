package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/gravitas-games/crimeboss/pkg/engine"
)

// SQLiteStore keeps one JSON document per boss in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the save database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS saves (
		boss_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		document TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	return err
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts the snapshot unless a newer version is already stored.
func (s *SQLiteStore) Save(ctx context.Context, bossID string, state engine.State) error {
	doc, err := encode(state)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (boss_id, version, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(boss_id) DO UPDATE SET
			version = excluded.version,
			document = excluded.document,
			updated_at = excluded.updated_at
		WHERE excluded.version >= saves.version`,
		bossID, int64(state.Version), string(doc), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", bossID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", bossID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s at version %d", ErrStaleSnapshot, bossID, state.Version)
	}
	return nil
}

// Load returns the stored snapshot for bossID.
func (s *SQLiteStore) Load(ctx context.Context, bossID string) (engine.State, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM saves WHERE boss_id = ?`, bossID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.State{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, bossID)
	}
	if err != nil {
		return engine.State{}, fmt.Errorf("failed to load snapshot for %s: %w", bossID, err)
	}
	return decode([]byte(doc))
}

// Delete removes the save for bossID. Deleting a missing save is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, bossID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE boss_id = ?`, bossID); err != nil {
		return fmt.Errorf("failed to delete snapshot for %s: %w", bossID, err)
	}
	return nil
}
