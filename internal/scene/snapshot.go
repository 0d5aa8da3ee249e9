// Package scene owns the ordered shape list of a room and its persistence.
package scene

import (
	"context"
	"errors"
	"regexp"
	"sync"
)

var (
	ErrNotFound        = errors.New("scene not found")
	ErrInvalidRoom     = errors.New("invalid room name")
	ErrIndexOutOfRange = errors.New("shape index out of range")
)

var roomPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidRoom checks that a room name is safe to use as a storage key.
func ValidRoom(room string) error {
	if !roomPattern.MatchString(room) {
		return ErrInvalidRoom
	}
	return nil
}

// Snapshotter persists one full scene snapshot per room. LoadSnapshot returns
// ErrNotFound when nothing has been saved for the room.
type Snapshotter interface {
	LoadSnapshot(ctx context.Context, room string) ([]byte, error)
	SaveSnapshot(ctx context.Context, room string, data []byte) error
}

// Backend is a Snapshotter that holds resources.
type Backend interface {
	Snapshotter
	Close() error
}

// Memory keeps snapshots in process memory.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string][]byte)}
}

func (m *Memory) LoadSnapshot(_ context.Context, room string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.rooms[room]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) SaveSnapshot(_ context.Context, room string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Close() error { return nil }
