package scene

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLite stores the latest snapshot of each room in a single table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS scenes (
            room       TEXT PRIMARY KEY,
            data       BLOB NOT NULL,
            version    INTEGER NOT NULL DEFAULT 1,
            updated_at TEXT NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("migrate scenes: %w", err)
	}
	return nil
}

func (s *SQLite) LoadSnapshot(ctx context.Context, room string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM scenes WHERE room = ?`, room).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return data, nil
}

func (s *SQLite) SaveSnapshot(ctx context.Context, room string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO scenes (room, data, version, updated_at)
        VALUES (?, ?, 1, ?)
        ON CONFLICT(room) DO UPDATE SET
            data = excluded.data,
            version = scenes.version + 1,
            updated_at = excluded.updated_at
    `, room, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert scene: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
