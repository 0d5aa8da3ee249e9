// Package live serves editor sessions over websockets. Every room runs one
// goroutine that owns its scene; each connected client drives its own
// editor on that scene and receives rendered frames.
package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/scrawl/scrawl/internal/scene"
)

const (
	loadTimeout = 10 * time.Second
	eventBuffer = 64
)

// Room is the shared scene of one room and the clients editing it.
type Room struct {
	name   string
	store  *scene.Store
	events chan func()
	quit   chan struct{}
	done   chan struct{}
	saved  bool

	mu      sync.Mutex
	clients map[string]*Client // clientID -> client
}

// roomSnapshotter marks the room dirty whenever an editor persists, so the
// other clients get a fresh frame.
type roomSnapshotter struct {
	scene.Snapshotter
	room *Room
}

func (s roomSnapshotter) SaveSnapshot(ctx context.Context, room string, data []byte) error {
	s.room.saved = true
	return s.Snapshotter.SaveSnapshot(ctx, room, data)
}

// run executes queued events until quit closes. Events already queued when
// the last client leaves still run, so a final pointer-up is persisted.
func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case fn := <-r.events:
			fn()
		case <-r.quit:
			for {
				select {
				case fn := <-r.events:
					fn()
				default:
					return
				}
			}
		}
	}
}

// do queues fn on the room goroutine. It reports false once the room closed.
func (r *Room) do(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.quit:
		return false
	}
}

type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*Room // room name -> room
	closing map[string]*Room // rooms still draining after their last client left
	backend scene.Snapshotter
	logger  *slog.Logger
}

func NewHub(backend scene.Snapshotter, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:   make(map[string]*Room),
		closing: make(map[string]*Room),
		backend: backend,
		logger:  logger,
	}
}

// Register adds the client to its room, opening the room on first use.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RoomName]
	if !ok {
		room = &Room{
			name:    client.RoomName,
			clients: make(map[string]*Client),
			events:  make(chan func(), eventBuffer),
			quit:    make(chan struct{}),
			done:    make(chan struct{}),
		}
		room.store = scene.NewStore(room.name, roomSnapshotter{Snapshotter: h.backend, room: room}, h.logger)
		h.rooms[room.name] = room
		prev := h.closing[room.name]
		go room.run()
		room.do(func() {
			// a reopened room loads only after the previous one flushed its saves
			if prev != nil {
				<-prev.done
			}
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			room.store.Load(ctx)
		})
	}
	room.mu.Lock()
	room.clients[client.ClientID] = client
	room.mu.Unlock()
	client.room = room
	h.mu.Unlock()

	room.do(func() {
		client.attach(room.store)
	})

	h.logger.Info("client joined", "client", client.ClientID, "room", client.RoomName)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RoomName]
	if !ok {
		h.mu.Unlock()
		return
	}
	room.mu.Lock()
	_, member := room.clients[client.ClientID]
	delete(room.clients, client.ClientID)
	empty := len(room.clients) == 0
	room.mu.Unlock()
	if !member {
		h.mu.Unlock()
		return
	}
	client.close()
	if empty {
		delete(h.rooms, room.name)
		h.closing[room.name] = room
		close(room.quit)
		go h.forget(room)
	}
	h.mu.Unlock()

	h.logger.Info("client left", "client", client.ClientID, "room", client.RoomName)
}

// forget drops a closed room once it has drained its queue.
func (h *Hub) forget(room *Room) {
	<-room.done
	h.mu.Lock()
	if h.closing[room.name] == room {
		delete(h.closing, room.name)
	}
	h.mu.Unlock()
}

// Invalidate reloads a room's scene after it was replaced from outside the
// live sessions and pushes fresh frames. Rooms without clients are skipped.
func (h *Hub) Invalidate(name string) {
	h.mu.Lock()
	room, ok := h.rooms[name]
	h.mu.Unlock()
	if !ok {
		return
	}
	room.do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		room.store.Load(ctx)
		for _, c := range room.members() {
			c.refresh()
		}
	})
}

// Rooms returns the number of open rooms.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// dispatch runs a client event on its room goroutine and fans out frames
// when the event persisted the scene.
func (h *Hub) dispatch(sender *Client, msg *Message) {
	room := sender.room
	room.do(func() {
		room.saved = false
		sender.handle(msg)
		if !room.saved {
			sender.refresh()
			return
		}
		for _, c := range room.members() {
			c.refresh()
		}
	})
}

// members snapshots the room's clients.
func (r *Room) members() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}
