package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/scrawl/scrawl/internal/engine"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/scene"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024

	defaultWidth  = 1280
	defaultHeight = 800
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	RoomName  string
	ClientID  string
	logger    *slog.Logger

	// owned by the room goroutine
	room     *Room
	editor   *engine.Editor
	surface  *render.Recorder
	measurer hittest.Measurer
	prompts  map[int]func(text string, ok bool)
	seq      int
}

func NewClient(hub *Hub, conn *websocket.Conn, roomName, clientID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		RoomName: roomName,
		ClientID: clientID,
		logger:   hub.logger.With("client", clientID, "room", roomName),
		surface:  render.NewRecorder(defaultWidth, defaultHeight),
		measurer: hittest.Default(),
		prompts:  make(map[int]func(string, bool)),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// attach builds the client's editor on the room scene and greets it.
func (c *Client) attach(store *scene.Store) {
	c.editor = engine.New(store, engine.Options{
		Surface:   c.surface,
		Measurer:  c.measurer,
		TextEntry: c,
		Logger:    c.logger,
	})
	c.sendPayload(TypeWelcome, WelcomePayload{
		ClientID: c.ClientID,
		Room:     c.RoomName,
		Tools:    engine.Tools,
	})
	c.refresh()
}

// OpenTextEntry forwards a text prompt to the browser. The reply arrives as
// text.commit or text.cancel and is resolved on the room goroutine.
func (c *Client) OpenTextEntry(at geom.Point, resolve func(string, bool)) func() {
	c.seq++
	token := c.seq
	c.prompts[token] = resolve
	screen := c.editor.Viewport().WorldToScreen(at.X, at.Y)
	c.sendPayload(TypeTextOpen, TextOpenPayload{Token: token, X: screen.X, Y: screen.Y})
	return func() {
		delete(c.prompts, token)
		c.sendPayload(TypeTextClose, TextPayload{Token: token})
	}
}

func (c *Client) resolveText(token int, text string, ok bool) {
	resolve, found := c.prompts[token]
	if !found {
		return
	}
	delete(c.prompts, token)
	resolve(text, ok)
}

// refresh renders the client's view and sends frame and state.
func (c *Client) refresh() {
	if c.editor == nil {
		return
	}
	c.editor.Redraw()
	c.sendPayload(TypeFrame, FramePayload{
		Width:    c.surface.Width,
		Height:   c.surface.Height,
		Commands: c.surface.Commands,
	})

	st := StatePayload{
		Tool:     c.editor.Tool(),
		State:    c.editor.State(),
		Style:    c.editor.Style(),
		Viewport: c.editor.Viewport(),
		Shapes:   len(c.editor.Shapes()),
	}
	if idx, ok := c.editor.Selection(); ok {
		st.Selection = &idx
	}
	c.sendPayload(TypeState, st)
}

var errBadPayload = errors.New("invalid payload")

func decode(msg *Message, v interface{}) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w for %s: empty", errBadPayload, msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w for %s: %w", errBadPayload, msg.Type, err)
	}
	return nil
}

// handle applies one client event to its editor.
func (c *Client) handle(msg *Message) {
	if err := c.apply(msg); err != nil {
		c.logger.Warn("rejected message", "type", msg.Type, "error", err)
		c.sendPayload(TypeError, ErrorPayload{Error: err.Error()})
	}
}

func (c *Client) apply(msg *Message) error {
	e := c.editor
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		switch msg.Type {
		case TypePointerDown:
			e.PointerDown(p.X, p.Y)
		case TypePointerMove:
			e.PointerMove(p.X, p.Y)
		default:
			e.PointerUp(p.X, p.Y)
		}

	case TypeWheel:
		var p WheelPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Wheel(p.X, p.Y, p.DeltaY)

	case TypeToolSelect:
		var p ToolPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		tool, err := engine.ParseTool(p.Tool)
		if err != nil {
			return err
		}
		e.SelectTool(tool)

	case TypeStyleStroke, TypeStyleBg:
		var p ColorPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if msg.Type == TypeStyleStroke {
			e.SetStrokeColor(p.Color)
		} else {
			e.SetBgColor(p.Color)
		}

	case TypeStyleWidth:
		var p WidthPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.SetStrokeWidth(p.Width)

	case TypeStyleDash:
		var p DashPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.SetStrokeStyle(p.Style)

	case TypeShapeDelete:
		e.DeleteSelected()

	case TypeSceneClear:
		e.ClearAll()

	case TypeTextCommit, TypeTextCancel:
		var p TextPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		c.resolveText(p.Token, p.Text, msg.Type == TypeTextCommit)

	case TypeResize:
		var p ResizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w for %s: size %dx%d", errBadPayload, msg.Type, p.Width, p.Height)
		}
		c.surface.Width, c.surface.Height = p.Width, p.Height

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			c.logger.Debug("read error", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("invalid message", "error", err)
			continue
		}

		msg.ClientID = c.ClientID
		msg.Room = c.RoomName

		c.hub.dispatch(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.logger.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendPayload(typ string, payload interface{}) {
	msg, err := newMessage(typ, payload)
	if err != nil {
		c.logger.Error("marshal message", "type", typ, "error", err)
		return
	}
	c.Send(msg)
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal message", "error", err)
		return
	}

	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("client send buffer full, dropping message")
	}
}
