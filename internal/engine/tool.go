package engine

import (
	"errors"
	"fmt"

	"github.com/scrawl/scrawl/internal/document"
)

var ErrUnknownTool = errors.New("unknown tool")

type Tool string

const (
	ToolRect    Tool = "rect"
	ToolCircle  Tool = "circle"
	ToolDiamond Tool = "diamond"
	ToolLine    Tool = "line"
	ToolArrow   Tool = "arrow"
	ToolPencil  Tool = "pencil"
	ToolText    Tool = "text"
	ToolEraser  Tool = "eraser"
	ToolSelect  Tool = "select"
	ToolPan     Tool = "pan"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolRect, ToolCircle, ToolDiamond, ToolLine, ToolArrow, ToolPencil, ToolText, ToolEraser, ToolSelect, ToolPan}

func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// shapeType maps a drawing tool to the shape it creates.
func (t Tool) shapeType() document.ShapeType {
	switch t {
	case ToolRect:
		return document.ShapeRect
	case ToolCircle:
		return document.ShapeCircle
	case ToolDiamond:
		return document.ShapeDiamond
	case ToolLine:
		return document.ShapeLine
	case ToolArrow:
		return document.ShapeArrow
	case ToolPencil:
		return document.ShapePencil
	case ToolEraser:
		return document.ShapeEraser
	case ToolText:
		return document.ShapeText
	case ToolSelect:
		return document.ShapeSelect
	}
	return ""
}

func (t Tool) freehand() bool {
	return t == ToolPencil || t == ToolEraser
}

// State is the active gesture.
type State int

const (
	Idle State = iota
	Drawing
	Panning
	Dragging
	Resizing
	Rotating
	EditingText
)

var stateNames = [...]string{"idle", "drawing", "panning", "dragging", "resizing", "rotating", "editing-text"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
