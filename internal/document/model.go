package document

import (
	"math"

	"github.com/scrawl/scrawl/internal/geom"
)

type ShapeType string

const (
	ShapeRect    ShapeType = "rect"
	ShapeCircle  ShapeType = "circle"
	ShapeDiamond ShapeType = "diamond"
	ShapePencil  ShapeType = "pencil"
	ShapeEraser  ShapeType = "eraser"
	ShapeLine    ShapeType = "line"
	ShapeArrow   ShapeType = "arrow"
	ShapeText    ShapeType = "text"
	ShapeSelect  ShapeType = "select"
)

// Transparent is the fill sentinel that skips the fill pass.
const Transparent = "transparent"

type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

const (
	DefaultStrokeColor = "#FFFFFF"
	DefaultStrokeWidth = 2.0
	DefaultTextSize    = 16.0
	EraserWidth        = 10.0
	MinTextSize        = 10.0
	MaxTextSize        = 72.0
)

// Shape is one scene primitive. Type selects which geometry fields apply:
//
//	rect, diamond, select: X, Y, Width, Height (X,Y is the minimum corner)
//	circle:                CenterX, CenterY, Radius, with X, Y, Width, Height derived
//	line, arrow:           StartX, StartY, EndX, EndY
//	pencil, eraser:        Path
//	text:                  X, Y (baseline-left), Text, Size
type Shape struct {
	ID   string    `json:"id"`
	Type ShapeType `json:"type"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	StartX float64 `json:"startX,omitempty"`
	StartY float64 `json:"startY,omitempty"`
	EndX   float64 `json:"endX,omitempty"`
	EndY   float64 `json:"endY,omitempty"`

	Path []geom.Point `json:"path,omitempty"`

	Text string  `json:"text,omitempty"`
	Size float64 `json:"size,omitempty"`

	Color       string      `json:"color,omitempty"`
	BgColor     string      `json:"bgColor,omitempty"`
	StrokeWidth float64     `json:"strokeWidth"`
	StrokeStyle StrokeStyle `json:"strokeStyle,omitempty"`
	Rotation    float64     `json:"rotation,omitempty"`
}

// Style is the set of defaults applied to newly created shapes.
type Style struct {
	Stroke string      `json:"stroke"`
	Fill   string      `json:"fill"`
	Width  float64     `json:"width"`
	Dash   StrokeStyle `json:"dash"`
}

func DefaultStyle() Style {
	return Style{
		Stroke: DefaultStrokeColor,
		Fill:   Transparent,
		Width:  DefaultStrokeWidth,
		Dash:   StrokeSolid,
	}
}

// IsStroke reports whether the shape is a freehand or eraser path.
func (s *Shape) IsStroke() bool {
	return s.Type == ShapePencil || s.Type == ShapeEraser
}

// Rotatable reports whether the shape carries a rotation.
func (s *Shape) Rotatable() bool {
	switch s.Type {
	case ShapeRect, ShapeCircle, ShapeDiamond, ShapeText, ShapeLine, ShapeArrow:
		return true
	}
	return false
}

// Selectable reports whether hit-testing may return the shape.
func (s *Shape) Selectable() bool {
	return s.Type != ShapeEraser
}

// Fillable reports whether the shape has a fill pass.
func (s *Shape) Fillable() bool {
	switch s.Type {
	case ShapeRect, ShapeCircle, ShapeDiamond, ShapeText:
		return true
	}
	return false
}

// Translate moves every position field of the shape by (dx, dy).
func (s *Shape) Translate(dx, dy float64) {
	switch s.Type {
	case ShapeRect, ShapeDiamond, ShapeSelect, ShapeText:
		s.X += dx
		s.Y += dy
	case ShapeCircle:
		s.CenterX += dx
		s.CenterY += dy
		s.SyncEllipseBounds()
	case ShapeLine, ShapeArrow:
		s.StartX += dx
		s.StartY += dy
		s.EndX += dx
		s.EndY += dy
	case ShapePencil, ShapeEraser:
		for i := range s.Path {
			s.Path[i].X += dx
			s.Path[i].Y += dy
		}
	}
}

// Pivot returns the point the shape rotates about.
func (s *Shape) Pivot() geom.Point {
	switch s.Type {
	case ShapeCircle:
		return geom.Pt(s.CenterX, s.CenterY)
	case ShapeLine, ShapeArrow:
		return geom.Pt((s.StartX+s.EndX)/2, (s.StartY+s.EndY)/2)
	case ShapeText:
		return geom.Pt(s.X, s.Y)
	case ShapePencil, ShapeEraser:
		return geom.BoundsOf(s.Path).Center()
	default:
		return geom.Pt(s.X+s.Width/2, s.Y+s.Height/2)
	}
}

// Box returns the unrotated bounds of box-like shapes and ellipses. Text
// bounds depend on font metrics and are computed by the hit-test package.
func (s *Shape) Box() geom.Rect {
	switch s.Type {
	case ShapeCircle:
		return geom.Rect{X: s.CenterX - s.Radius, Y: s.CenterY - s.Radius, Width: 2 * s.Radius, Height: 2 * s.Radius}
	case ShapeLine, ShapeArrow:
		return geom.RectFromCorners(geom.Pt(s.StartX, s.StartY), geom.Pt(s.EndX, s.EndY))
	case ShapePencil, ShapeEraser:
		return geom.BoundsOf(s.Path)
	default:
		return geom.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
	}
}

// SyncEllipseBounds recomputes the derived bounding box of an ellipse.
func (s *Shape) SyncEllipseBounds() {
	s.X = s.CenterX - s.Radius
	s.Y = s.CenterY - s.Radius
	s.Width = 2 * s.Radius
	s.Height = 2 * s.Radius
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	if s.Path != nil {
		s.Path = append([]geom.Point(nil), s.Path...)
	}
	return s
}

// Normalize restores the dimension invariants on a shape that came from
// outside the editor. It returns false when the shape cannot be kept.
func (s *Shape) Normalize() bool {
	s.StrokeWidth = math.Abs(s.StrokeWidth)
	switch s.Type {
	case ShapeRect, ShapeDiamond:
		r := geom.RectFromCorners(geom.Pt(s.X, s.Y), geom.Pt(s.X+s.Width, s.Y+s.Height))
		s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.Width, r.Height
	case ShapeCircle:
		s.Radius = math.Abs(s.Radius)
		s.SyncEllipseBounds()
	case ShapeLine, ShapeArrow:
	case ShapePencil, ShapeEraser:
		if len(s.Path) < 2 {
			return false
		}
		s.Rotation = 0
	case ShapeText:
		if s.Size <= 0 {
			s.Size = DefaultTextSize
		}
	default:
		// selection rectangles and unknown kinds never persist
		return false
	}
	return true
}
