package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/scrawl/scrawl/internal/document"
)

// Load reads the room's scene. It fails closed: a missing, unreadable or
// malformed snapshot yields an empty scene and a warning.
func Load(ctx context.Context, backend Snapshotter, room string, logger *slog.Logger) []document.Shape {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := backend.LoadSnapshot(ctx, room)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("load scene failed, starting empty", "room", room, "error", err)
		}
		return []document.Shape{}
	}
	shapes, err := Decode(data)
	if err != nil {
		logger.Warn("corrupt scene snapshot, starting empty", "room", room, "size", humanize.Bytes(uint64(len(data))), "error", err)
		return []document.Shape{}
	}
	return shapes
}

// Save writes a full snapshot of shapes. A failed write is logged and
// retried once; the second failure is returned.
func Save(ctx context.Context, backend Snapshotter, room string, shapes []document.Shape, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := Encode(shapes)
	if err != nil {
		return err
	}

	err = backend.SaveSnapshot(ctx, room, data)
	if err != nil {
		logger.Warn("save scene failed, retrying", "room", room, "error", err)
		err = backend.SaveSnapshot(ctx, room, data)
	}
	if err != nil {
		logger.Error("save scene failed", "room", room, "size", humanize.Bytes(uint64(len(data))), "error", err)
		return fmt.Errorf("save scene: %w", err)
	}

	logger.Debug("scene saved", "room", room, "shapes", len(shapes), "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// Store is the in-memory shape list of one room. It is not safe for
// concurrent use; a room's editors share it from a single goroutine.
type Store struct {
	room    string
	backend Snapshotter
	logger  *slog.Logger
	shapes  []document.Shape
}

func NewStore(room string, backend Snapshotter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		room:    room,
		backend: backend,
		logger:  logger.With("room", room),
		shapes:  []document.Shape{},
	}
}

func (s *Store) Room() string { return s.room }

// Load replaces the list with the persisted scene.
func (s *Store) Load(ctx context.Context) []document.Shape {
	s.shapes = Load(ctx, s.backend, s.room, s.logger)
	return s.shapes
}

// Save persists the current list.
func (s *Store) Save(ctx context.Context) error {
	return Save(ctx, s.backend, s.room, s.shapes, s.logger)
}

// Shapes returns the list in z-order. Callers must not retain it across
// mutations.
func (s *Store) Shapes() []document.Shape { return s.shapes }

func (s *Store) Len() int { return len(s.shapes) }

// At returns a pointer to the shape at i for in-place mutation.
func (s *Store) At(i int) (*document.Shape, bool) {
	if i < 0 || i >= len(s.shapes) {
		return nil, false
	}
	return &s.shapes[i], true
}

// IndexOf returns the index of the shape with the given id, or -1.
func (s *Store) IndexOf(id string) int {
	for i := range s.shapes {
		if s.shapes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Append(shape document.Shape) {
	s.shapes = append(s.shapes, shape)
}

func (s *Store) ReplaceAt(i int, shape document.Shape) error {
	if i < 0 || i >= len(s.shapes) {
		return ErrIndexOutOfRange
	}
	s.shapes[i] = shape
	return nil
}

func (s *Store) RemoveAt(i int) error {
	if i < 0 || i >= len(s.shapes) {
		return ErrIndexOutOfRange
	}
	s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	return nil
}

func (s *Store) Clear() {
	s.shapes = []document.Shape{}
}

// Replace swaps in an externally supplied list, sanitized.
func (s *Store) Replace(shapes []document.Shape) {
	s.shapes = Sanitize(shapes)
}
