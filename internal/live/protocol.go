package live

import (
	"encoding/json"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/engine"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/viewport"
)

type Message struct {
	Type     string          `json:"type"`
	Room     string          `json:"room,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeWheel       = "wheel"
	TypeToolSelect  = "tool.select"
	TypeStyleStroke = "style.stroke"
	TypeStyleBg     = "style.bg"
	TypeStyleWidth  = "style.width"
	TypeStyleDash   = "style.dash"
	TypeShapeDelete = "shape.delete"
	TypeSceneClear  = "scene.clear"
	TypeTextCommit  = "text.commit"
	TypeTextCancel  = "text.cancel"
	TypeResize      = "resize"

	// Server to client
	TypeWelcome   = "welcome"
	TypeFrame     = "frame"
	TypeState     = "state"
	TypeTextOpen  = "text.open"
	TypeTextClose = "text.close"
	TypeError     = "error"
)

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type WheelPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type ColorPayload struct {
	Color string `json:"color"`
}

type WidthPayload struct {
	Width float64 `json:"width"`
}

type DashPayload struct {
	Style document.StrokeStyle `json:"style"`
}

type TextPayload struct {
	Token int    `json:"token"`
	Text  string `json:"text,omitempty"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type WelcomePayload struct {
	ClientID string        `json:"clientId"`
	Room     string        `json:"room"`
	Tools    []engine.Tool `json:"tools"`
}

type FramePayload struct {
	Width    int                  `json:"width"`
	Height   int                  `json:"height"`
	Commands []render.DrawCommand `json:"commands"`
}

type StatePayload struct {
	Tool      engine.Tool       `json:"tool"`
	State     engine.State      `json:"state"`
	Style     document.Style    `json:"style"`
	Viewport  viewport.Viewport `json:"viewport"`
	Selection *int              `json:"selection,omitempty"`
	Shapes    int               `json:"shapes"`
}

// TextOpenPayload asks the client to show an input at a screen position.
type TextOpenPayload struct {
	Token int     `json:"token"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func newMessage(typ string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
