package render

import (
	"math"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/viewport"
)

const (
	DefaultBackground = "#000000"

	// ArrowHeadLength is the length of each arrowhead side, in world units.
	ArrowHeadLength = 15.0
	arrowHeadAngle  = math.Pi / 6

	overlayColor = "#0000FF"
	handleFill   = "#FFFFFF"
	knobFill     = "#008000"
	handleSize   = 12.0
)

var overlayDash = []float64{5, 5}

// Frame is everything one redraw needs.
type Frame struct {
	Shapes     []document.Shape
	Viewport   viewport.Viewport
	Selected   *document.Shape // drawn with handles in screen space
	Preview    *document.Shape // in-progress gesture, not yet in Shapes
	Background string
}

type Renderer struct {
	Measurer hittest.Measurer
}

func New(m hittest.Measurer) *Renderer {
	if m == nil {
		m = hittest.Default()
	}
	return &Renderer{Measurer: m}
}

// Render clears the surface and draws the frame: shapes in list order under
// the viewport transform, then the preview, then the selection overlay at
// identity. A nil surface is a no-op.
func (r *Renderer) Render(s Surface, f Frame) {
	if s == nil {
		return
	}
	bg := f.Background
	if bg == "" {
		bg = DefaultBackground
	}
	s.Clear(bg)

	view := f.Viewport.Matrix()
	for i := range f.Shapes {
		if f.Shapes[i].Type == document.ShapeSelect {
			continue
		}
		r.drawShape(s, view, &f.Shapes[i], bg)
	}

	if f.Preview != nil {
		if f.Preview.Type == document.ShapeSelect {
			s.DrawPath(view, boxPath(f.Preview), Paint{
				Stroke:    overlayColor,
				LineWidth: 1,
				Dash:      overlayDash,
			})
		} else {
			r.drawShape(s, view, f.Preview, bg)
		}
	}

	if f.Selected != nil {
		r.drawOverlay(s, f.Viewport, f.Selected)
	}
}

func boxPath(sh *document.Shape) geom.Path {
	return geom.RectPath(sh.X, sh.Y, sh.Width, sh.Height)
}

func dashPattern(style document.StrokeStyle, width float64) []float64 {
	w := math.Max(width, 1)
	switch style {
	case document.StrokeDashed:
		return []float64{4 * w, 2 * w}
	case document.StrokeDotted:
		return []float64{w, 2 * w}
	}
	return nil
}

func fillOf(sh *document.Shape) string {
	if sh.BgColor == document.Transparent {
		return ""
	}
	return sh.BgColor
}

// shapeMatrix composes the viewport with the shape's own rotation about its pivot.
func shapeMatrix(view geom.Matrix2D, sh *document.Shape) geom.Matrix2D {
	if sh.Rotation == 0 {
		return view
	}
	switch sh.Type {
	case document.ShapeRect, document.ShapeDiamond, document.ShapeCircle, document.ShapeText:
		p := sh.Pivot()
		return view.Multiply(geom.RotateAbout(sh.Rotation, p.X, p.Y))
	}
	return view
}

func (r *Renderer) drawShape(s Surface, view geom.Matrix2D, sh *document.Shape, bg string) {
	m := shapeMatrix(view, sh)
	outline := Paint{
		Stroke:    sh.Color,
		LineWidth: sh.StrokeWidth,
		Dash:      dashPattern(sh.StrokeStyle, sh.StrokeWidth),
	}

	switch sh.Type {
	case document.ShapeRect:
		p := outline
		p.Fill = fillOf(sh)
		s.DrawPath(m, boxPath(sh), p)

	case document.ShapeDiamond:
		cx, cy := sh.X+sh.Width/2, sh.Y+sh.Height/2
		p := outline
		p.Fill = fillOf(sh)
		s.DrawPath(m, geom.Polygon(
			geom.Pt(cx, sh.Y),
			geom.Pt(sh.X+sh.Width, cy),
			geom.Pt(cx, sh.Y+sh.Height),
			geom.Pt(sh.X, cy),
		), p)

	case document.ShapeCircle:
		p := outline
		p.Fill = fillOf(sh)
		s.DrawPath(m, geom.EllipsePath(sh.CenterX, sh.CenterY, sh.Radius, sh.Radius), p)

	case document.ShapeLine:
		s.DrawPath(m, geom.Polyline(geom.Pt(sh.StartX, sh.StartY), geom.Pt(sh.EndX, sh.EndY)), outline)

	case document.ShapeArrow:
		end := geom.Pt(sh.EndX, sh.EndY)
		s.DrawPath(m, geom.Polyline(geom.Pt(sh.StartX, sh.StartY), end), outline)
		s.DrawPath(m, ArrowHead(geom.Pt(sh.StartX, sh.StartY), end), Paint{Fill: sh.Color})

	case document.ShapePencil:
		if len(sh.Path) < 2 {
			return
		}
		s.DrawPath(m, geom.Polyline(sh.Path...), outline)

	case document.ShapeEraser:
		if len(sh.Path) < 2 {
			return
		}
		s.DrawPath(m, geom.Polyline(sh.Path...), Paint{Stroke: bg, LineWidth: sh.StrokeWidth})

	case document.ShapeText:
		if fill := fillOf(sh); fill != "" {
			b := hittest.TextBounds(sh, r.Measurer)
			s.DrawPath(m, geom.RectPath(b.X, b.Y, b.Width, b.Height), Paint{Fill: fill})
		}
		s.DrawText(m, sh.Text, sh.X, sh.Y, sh.Size, Paint{Fill: sh.Color})
	}
}

// ArrowHead returns the closed triangle at end for a segment from start.
func ArrowHead(start, end geom.Point) geom.Path {
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	return geom.Polygon(
		end,
		geom.Pt(end.X-ArrowHeadLength*math.Cos(angle-arrowHeadAngle), end.Y-ArrowHeadLength*math.Sin(angle-arrowHeadAngle)),
		geom.Pt(end.X-ArrowHeadLength*math.Cos(angle+arrowHeadAngle), end.Y-ArrowHeadLength*math.Sin(angle+arrowHeadAngle)),
	)
}

// drawOverlay draws the dashed outline and handles of the selection in
// screen space so their size does not depend on zoom.
func (r *Renderer) drawOverlay(s Surface, v viewport.Viewport, sh *document.Shape) {
	screen := geom.Identity()
	toScreen := func(p geom.Point) geom.Point { return v.WorldToScreen(p.X, p.Y) }
	dashed := Paint{Stroke: overlayColor, LineWidth: 1, Dash: overlayDash}

	switch sh.Type {
	case document.ShapeRect, document.ShapeDiamond, document.ShapeSelect, document.ShapePencil:
		b := sh.Box()
		s.DrawPath(screen, geom.Polygon(
			toScreen(geom.Pt(b.X, b.Y)),
			toScreen(geom.Pt(b.X+b.Width, b.Y)),
			toScreen(geom.Pt(b.X+b.Width, b.Y+b.Height)),
			toScreen(geom.Pt(b.X, b.Y+b.Height)),
		), dashed)
	case document.ShapeCircle:
		c := toScreen(geom.Pt(sh.CenterX, sh.CenterY))
		rad := sh.Radius * v.Matrix().ScaleFactor()
		s.DrawPath(screen, geom.EllipsePath(c.X, c.Y, rad, rad), dashed)
	case document.ShapeText:
		b := hittest.TextBounds(sh, r.Measurer)
		tl, br := toScreen(geom.Pt(b.X, b.Y)), toScreen(geom.Pt(b.X+b.Width, b.Y+b.Height))
		s.DrawPath(screen, geom.RectPath(tl.X, tl.Y, br.X-tl.X, br.Y-tl.Y), dashed)
	}

	scale := v.Matrix().ScaleFactor()
	for _, a := range hittest.Handles(sh, scale, r.Measurer) {
		at := toScreen(a.At)
		if a.Handle == hittest.HandleRotate {
			stem := toScreen(a.Stem)
			s.DrawPath(screen, geom.Polyline(stem, at), Paint{Stroke: overlayColor, LineWidth: 1})
			s.DrawPath(screen, geom.EllipsePath(at.X, at.Y, handleSize/2, handleSize/2), Paint{
				Fill:      knobFill,
				Stroke:    overlayColor,
				LineWidth: 1,
			})
			continue
		}
		s.DrawPath(screen, geom.RectPath(at.X-handleSize/2, at.Y-handleSize/2, handleSize, handleSize), Paint{
			Fill:      handleFill,
			Stroke:    overlayColor,
			LineWidth: 1,
		})
	}
}
