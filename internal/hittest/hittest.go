// Package hittest finds the shape and handle under a world-space point.
package hittest

import (
	"math"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
)

// LineMargin is added to a connector's stroke width when testing proximity.
const LineMargin = 5.0

// TextBounds returns the unrotated box of a text shape: [x, x+w] x [y-size, y].
func TextBounds(s *document.Shape, m Measurer) geom.Rect {
	w := 0.0
	if m != nil {
		w = m.MeasureText(s.Text, s.Size)
	}
	return geom.Rect{X: s.X, Y: s.Y - s.Size, Width: w, Height: s.Size}
}

// Bounds returns the unrotated bounds of any shape.
func Bounds(s *document.Shape, m Measurer) geom.Rect {
	if s.Type == document.ShapeText {
		return TextBounds(s, m)
	}
	return s.Box()
}

// local maps p into the shape's unrotated frame.
func local(p geom.Point, s *document.Shape) geom.Point {
	if s.Rotation == 0 {
		return p
	}
	c := s.Pivot()
	return geom.RotateAbout(s.Rotation, c.X, c.Y).Invert().Apply(p)
}

// PointInShape reports whether the world point p lies on or inside s.
func PointInShape(p geom.Point, s *document.Shape, m Measurer) bool {
	switch s.Type {
	case document.ShapeRect:
		q := local(p, s)
		return s.Box().Contains(q.X, q.Y)

	case document.ShapeSelect:
		return s.Box().Contains(p.X, p.Y)

	case document.ShapeDiamond:
		hw, hh := s.Width/2, s.Height/2
		if hw == 0 || hh == 0 {
			return false
		}
		c := s.Pivot()
		q := local(p, s)
		return math.Abs((q.X-c.X)/hw)+math.Abs((q.Y-c.Y)/hh) <= 1

	case document.ShapeCircle:
		dx, dy := p.X-s.CenterX, p.Y-s.CenterY
		return dx*dx+dy*dy <= s.Radius*s.Radius

	case document.ShapeLine, document.ShapeArrow:
		return nearSegment(p, geom.Pt(s.StartX, s.StartY), geom.Pt(s.EndX, s.EndY), s.StrokeWidth+LineMargin)

	case document.ShapeText:
		q := local(p, s)
		return TextBounds(s, m).Contains(q.X, q.Y)

	case document.ShapePencil:
		tol := s.StrokeWidth/2 + LineMargin
		for i := 1; i < len(s.Path); i++ {
			if nearSegment(p, s.Path[i-1], s.Path[i], tol) {
				return true
			}
		}
		for _, pt := range s.Path {
			if pt.Dist(p) <= tol {
				return true
			}
		}
		return false
	}
	return false
}

// nearSegment rejects points whose projection falls outside the segment and
// accepts those within tol of its supporting line. Zero-length segments
// never match.
func nearSegment(p, a, b geom.Point, tol float64) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	proj := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / length
	if proj < 0 || proj > length {
		return false
	}
	dist := math.Abs((p.Y-a.Y)*dx-(p.X-a.X)*dy) / length
	return dist <= tol
}

// FindTopmost scans from the most recently appended shape down and returns
// the index of the first selectable shape containing p.
func FindTopmost(p geom.Point, shapes []document.Shape, m Measurer) (int, bool) {
	for i := len(shapes) - 1; i >= 0; i-- {
		s := &shapes[i]
		if !s.Selectable() {
			continue
		}
		if PointInShape(p, s, m) {
			return i, true
		}
	}
	return -1, false
}
