package hittest

import (
	"math"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
)

type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "tl"
	HandleTopRight    Handle = "tr"
	HandleBottomLeft  Handle = "bl"
	HandleBottomRight Handle = "br"
	HandleTop         Handle = "top"
	HandleRight       Handle = "right"
	HandleBottom      Handle = "bottom"
	HandleLeft        Handle = "left"
	HandleStart       Handle = "start"
	HandleEnd         Handle = "end"
	HandleResize      Handle = "resize"
	HandleRotate      Handle = "rotate"
)

const (
	// HandleHalfSize is the grab tolerance around a handle, in screen pixels.
	HandleHalfSize = 4.0
	// RotateOffset is the distance of the rotation knob from its edge, in screen pixels.
	RotateOffset = 20.0
)

// Anchor is one interactive handle of a shape in world space. For the
// rotation knob, Stem is the point its connector starts from.
type Anchor struct {
	Handle Handle
	At     geom.Point
	Stem   geom.Point
}

// Handles lists the anchors of s at the given viewport scale. Screen-fixed
// offsets are divided by scale so they keep their on-screen size.
func Handles(s *document.Shape, scale float64, m Measurer) []Anchor {
	if scale <= 0 {
		scale = 1
	}
	off := RotateOffset / scale

	switch s.Type {
	case document.ShapeRect, document.ShapeDiamond, document.ShapeSelect:
		x, y, w, h := s.X, s.Y, s.Width, s.Height
		anchors := []Anchor{
			{Handle: HandleTopLeft, At: geom.Pt(x, y)},
			{Handle: HandleTopRight, At: geom.Pt(x+w, y)},
			{Handle: HandleBottomLeft, At: geom.Pt(x, y+h)},
			{Handle: HandleBottomRight, At: geom.Pt(x+w, y+h)},
		}
		if s.Type == document.ShapeSelect {
			return anchors
		}
		return append(anchors, Anchor{
			Handle: HandleRotate,
			At:     geom.Pt(x+w/2, y-off),
			Stem:   geom.Pt(x+w/2, y),
		})

	case document.ShapeCircle:
		cx, cy, r := s.CenterX, s.CenterY, s.Radius
		return []Anchor{
			{Handle: HandleTop, At: geom.Pt(cx, cy-r)},
			{Handle: HandleRight, At: geom.Pt(cx+r, cy)},
			{Handle: HandleBottom, At: geom.Pt(cx, cy+r)},
			{Handle: HandleLeft, At: geom.Pt(cx-r, cy)},
			{Handle: HandleRotate, At: geom.Pt(cx, cy-r-off), Stem: geom.Pt(cx, cy-r)},
		}

	case document.ShapeLine, document.ShapeArrow:
		anchors := []Anchor{
			{Handle: HandleStart, At: geom.Pt(s.StartX, s.StartY)},
			{Handle: HandleEnd, At: geom.Pt(s.EndX, s.EndY)},
		}
		dx, dy := s.EndX-s.StartX, s.EndY-s.StartY
		length := math.Hypot(dx, dy)
		if length > 0 {
			mid := s.Pivot()
			anchors = append(anchors, Anchor{
				Handle: HandleRotate,
				At:     geom.Pt(mid.X-dy/length*off, mid.Y+dx/length*off),
				Stem:   mid,
			})
		}
		return anchors

	case document.ShapeText:
		b := TextBounds(s, m)
		return []Anchor{
			{Handle: HandleResize, At: geom.Pt(b.X+b.Width, s.Y)},
			{Handle: HandleRotate, At: geom.Pt(b.X+b.Width/2, b.Y-off), Stem: geom.Pt(b.X+b.Width/2, b.Y)},
		}
	}
	return nil
}

// ResolveHandle returns the handle of s under the world point p, if any.
func ResolveHandle(p geom.Point, s *document.Shape, scale float64, m Measurer) Handle {
	if scale <= 0 {
		scale = 1
	}
	tol := HandleHalfSize / scale
	for _, a := range Handles(s, scale, m) {
		if math.Abs(p.X-a.At.X) <= tol && math.Abs(p.Y-a.At.Y) <= tol {
			return a.Handle
		}
	}
	return HandleNone
}

// Opposite returns the diagonally opposite box corner.
func Opposite(h Handle) Handle {
	switch h {
	case HandleTopLeft:
		return HandleBottomRight
	case HandleTopRight:
		return HandleBottomLeft
	case HandleBottomLeft:
		return HandleTopRight
	case HandleBottomRight:
		return HandleTopLeft
	}
	return h
}
