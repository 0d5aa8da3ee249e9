package scene

import (
	"context"
	"fmt"
	"path/filepath"
)

// Options selects and configures a persistence backend.
type Options struct {
	Driver      string // memory, file, sqlite or postgres
	DataDir     string
	SQLitePath  string
	DatabaseURL string
}

func OpenBackend(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", "file":
		return NewFile(opts.DataDir)
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.DataDir, "scrawl.db")
		}
		return OpenSQLite(ctx, path)
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_URL")
		}
		return OpenPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
