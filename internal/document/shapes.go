package document

import (
	"math"

	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/typeid"
)

func styled(t ShapeType, st Style) Shape {
	return Shape{
		ID:          typeid.NewShapeID(),
		Type:        t,
		Color:       st.Stroke,
		BgColor:     st.Fill,
		StrokeWidth: math.Abs(st.Width),
		StrokeStyle: st.Dash,
	}
}

func boxed(t ShapeType, a, b geom.Point, st Style) Shape {
	s := styled(t, st)
	r := geom.RectFromCorners(a, b)
	s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.Width, r.Height
	return s
}

// NewRect builds a rectangle from two opposite drag corners.
func NewRect(a, b geom.Point, st Style) Shape {
	return boxed(ShapeRect, a, b, st)
}

// NewDiamond builds a diamond inscribed in the box spanned by a and b.
func NewDiamond(a, b geom.Point, st Style) Shape {
	return boxed(ShapeDiamond, a, b, st)
}

// NewSelection builds a selection rectangle. It carries no style.
func NewSelection(a, b geom.Point) Shape {
	r := geom.RectFromCorners(a, b)
	return Shape{
		ID:     typeid.NewShapeID(),
		Type:   ShapeSelect,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}

// NewEllipse builds a circle centered between a and b whose radius is half
// the drag diagonal.
func NewEllipse(a, b geom.Point, st Style) Shape {
	s := styled(ShapeCircle, st)
	s.CenterX = (a.X + b.X) / 2
	s.CenterY = (a.Y + b.Y) / 2
	s.Radius = a.Dist(b) / 2
	s.SyncEllipseBounds()
	return s
}

// NewLine builds a segment from a to b. Lines have no fill.
func NewLine(a, b geom.Point, st Style) Shape {
	s := styled(ShapeLine, st)
	s.StartX, s.StartY, s.EndX, s.EndY = a.X, a.Y, b.X, b.Y
	s.BgColor = ""
	return s
}

// NewArrow builds a line with an arrowhead at b.
func NewArrow(a, b geom.Point, st Style) Shape {
	s := NewLine(a, b, st)
	s.Type = ShapeArrow
	return s
}

// NewStroke builds a pencil or eraser shape from a recorded path. Paths with
// fewer than two points are rejected.
func NewStroke(t ShapeType, path []geom.Point, st Style) (Shape, bool) {
	if len(path) < 2 {
		return Shape{}, false
	}
	s := styled(t, st)
	s.BgColor = ""
	s.Path = append([]geom.Point(nil), path...)
	if t == ShapeEraser {
		s.Color = ""
		s.StrokeStyle = ""
		s.StrokeWidth = EraserWidth
	}
	return s, true
}

// NewText builds a text shape anchored at its baseline-left point.
func NewText(at geom.Point, text string, st Style) Shape {
	s := styled(ShapeText, st)
	s.X, s.Y = at.X, at.Y
	s.Text = text
	s.Size = DefaultTextSize
	return s
}
