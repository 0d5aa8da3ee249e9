package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrawl/scrawl/internal/typeid"
)

// keepVersions is how many snapshots per room survive each save.
const keepVersions = 20

// Postgres appends a versioned snapshot per save and loads the latest.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS scene_snapshots (
            id         TEXT PRIMARY KEY,
            room       TEXT NOT NULL,
            version    INTEGER NOT NULL,
            document   JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (room, version)
        )
    `)
	if err != nil {
		return fmt.Errorf("migrate scene_snapshots: %w", err)
	}
	return nil
}

func (p *Postgres) LoadSnapshot(ctx context.Context, room string) ([]byte, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `
        SELECT document FROM scene_snapshots
        WHERE room = $1
        ORDER BY version DESC
        LIMIT 1
    `, room).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return data, nil
}

func (p *Postgres) SaveSnapshot(ctx context.Context, room string, data []byte) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int
	err = tx.QueryRow(ctx, `
        INSERT INTO scene_snapshots (id, room, version, document)
        SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3
        FROM scene_snapshots WHERE room = $2
        RETURNING version
    `, typeid.NewSnapshotID(), room, string(data)).Scan(&version)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM scene_snapshots WHERE room = $1 AND version <= $2`, room, version-keepVersions); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
