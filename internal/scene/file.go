package scene

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File stores each room as drawing_<room>.json in a directory.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(room string) (string, error) {
	if err := ValidRoom(room); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, "drawing_"+room+".json"), nil
}

func (f *File) LoadSnapshot(_ context.Context, room string) ([]byte, error) {
	p, err := f.path(room)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// SaveSnapshot writes to a temp file and renames it over the old snapshot so
// readers never see a partial scene.
func (f *File) SaveSnapshot(_ context.Context, room string, data []byte) error {
	p, err := f.path(room)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".drawing-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
