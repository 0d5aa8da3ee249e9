package engine

import (
	"math"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/viewport"
)

// minTextResize is the smallest drag width, in world units, that rescales text.
const minTextResize = 10

func (e *Editor) toWorld(sx, sy float64) geom.Point {
	return e.session.Viewport.ScreenToWorld(sx, sy)
}

func (e *Editor) scale() float64 {
	return e.session.Viewport.Matrix().ScaleFactor()
}

// PointerDown starts a gesture at the screen position. It is ignored unless
// the editor is Idle.
func (e *Editor) PointerDown(sx, sy float64) {
	s := e.session
	if s.State != Idle {
		return
	}
	w := e.toWorld(sx, sy)
	s.anchor = w
	s.lastScreen = geom.Pt(sx, sy)

	switch s.Tool {
	case ToolPan:
		s.State = Panning
	case ToolSelect:
		e.beginSelect(w)
	case ToolPencil, ToolEraser:
		s.path = []geom.Point{w}
		s.State = Drawing
	case ToolText:
		e.openText(w)
	default:
		s.preview = e.buildShape(s.anchor, w)
		s.State = Drawing
	}
	e.Redraw()
}

// beginSelect resolves a click with the select tool: a handle of the current
// selection wins, then the topmost shape, then the marquee body. Anything
// else starts a new marquee.
func (e *Editor) beginSelect(w geom.Point) {
	s := e.session
	if sel, _, ok := e.selected(); ok {
		if h := hittest.ResolveHandle(w, sel, e.scale(), e.measurer); h != hittest.HandleNone {
			e.beginHandle(sel, h, w)
			return
		}
	}

	if idx, ok := hittest.FindTopmost(w, e.store.Shapes(), e.measurer); ok {
		e.selectIndex(idx)
		sel, _ := e.store.At(idx)
		if h := hittest.ResolveHandle(w, sel, e.scale(), e.measurer); h != hittest.HandleNone {
			e.beginHandle(sel, h, w)
			return
		}
		s.State = Dragging
		return
	}

	if s.marquee != nil && s.marquee.Box().Contains(w.X, w.Y) {
		s.State = Dragging
		return
	}

	e.clearSelection()
	preview := document.NewSelection(w, w)
	s.preview = &preview
	s.State = Drawing
}

func (e *Editor) beginHandle(sel *document.Shape, h hittest.Handle, w geom.Point) {
	s := e.session
	s.handle = h
	if h == hittest.HandleRotate {
		s.prevAngle = w.Angle(sel.Pivot())
		s.State = Rotating
		return
	}
	s.State = Resizing
}

// PointerMove continues the active gesture.
func (e *Editor) PointerMove(sx, sy float64) {
	s := e.session
	w := e.toWorld(sx, sy)

	switch s.State {
	case Panning:
		s.Viewport.PanBy(sx-s.lastScreen.X, sy-s.lastScreen.Y)
		s.lastScreen = geom.Pt(sx, sy)
	case Dragging:
		if sel, _, ok := e.selected(); ok {
			d := w.Sub(s.anchor)
			sel.Translate(d.X, d.Y)
		}
		s.anchor = w
	case Resizing:
		if sel, _, ok := e.selected(); ok {
			e.resize(sel, w)
		}
	case Rotating:
		if sel, _, ok := e.selected(); ok {
			e.rotate(sel, w)
		}
	case Drawing:
		e.extendDrawing(w)
	default:
		return
	}
	e.Redraw()
}

// PointerUp completes the active gesture. Completed edits are persisted.
func (e *Editor) PointerUp(sx, sy float64) {
	s := e.session
	w := e.toWorld(sx, sy)

	switch s.State {
	case Panning:
	case Dragging, Resizing, Rotating:
		e.persistEdit()
	case Drawing:
		e.finishDrawing(w)
	default:
		return
	}
	s.path = nil
	s.preview = nil
	s.handle = hittest.HandleNone
	s.State = Idle
	e.Redraw()
}

// Wheel zooms about the cursor. It is accepted in every state.
func (e *Editor) Wheel(sx, sy, deltaY float64) {
	e.session.Viewport.ZoomAt(sx, sy, viewport.WheelFactor(deltaY))
	e.Redraw()
}

// --- Drawing ---

func (e *Editor) buildShape(a, b geom.Point) *document.Shape {
	st := e.session.Style
	var sh document.Shape
	switch e.session.Tool {
	case ToolRect:
		sh = document.NewRect(a, b, st)
	case ToolDiamond:
		sh = document.NewDiamond(a, b, st)
	case ToolCircle:
		sh = document.NewEllipse(a, b, st)
	case ToolLine:
		sh = document.NewLine(a, b, st)
	case ToolArrow:
		sh = document.NewArrow(a, b, st)
	case ToolSelect:
		sh = document.NewSelection(a, b)
	default:
		return nil
	}
	return &sh
}

func (e *Editor) extendDrawing(w geom.Point) {
	s := e.session
	if !s.Tool.freehand() {
		s.preview = e.buildShape(s.anchor, w)
		return
	}
	s.path = append(s.path, w)
	if s.preview == nil {
		if sh, ok := document.NewStroke(s.Tool.shapeType(), s.path, s.Style); ok {
			s.preview = &sh
		}
		return
	}
	s.preview.Path = s.path
}

func (e *Editor) finishDrawing(w geom.Point) {
	s := e.session
	switch {
	case s.Tool.freehand():
		// points come from pointer moves only; the release point is not recorded
		sh, ok := document.NewStroke(s.Tool.shapeType(), s.path, s.Style)
		if !ok {
			e.logger.Debug("stroke discarded", "points", len(s.path))
			return
		}
		e.store.Append(sh)
		e.persist()

	case s.Tool == ToolSelect:
		m := document.NewSelection(s.anchor, w)
		e.clearSelection()
		s.marquee = &m

	default:
		sh := e.buildShape(s.anchor, w)
		if sh == nil {
			return
		}
		e.store.Append(*sh)
		e.persist()
	}
}

// --- Resize and rotate ---

func boxCorner(r geom.Rect, h hittest.Handle) geom.Point {
	switch h {
	case hittest.HandleTopLeft:
		return geom.Pt(r.X, r.Y)
	case hittest.HandleTopRight:
		return geom.Pt(r.X+r.Width, r.Y)
	case hittest.HandleBottomLeft:
		return geom.Pt(r.X, r.Y+r.Height)
	default:
		return geom.Pt(r.X+r.Width, r.Y+r.Height)
	}
}

// cornerOf names the corner p occupies relative to the fixed corner.
func cornerOf(p, fixed geom.Point) hittest.Handle {
	left, top := p.X < fixed.X, p.Y < fixed.Y
	switch {
	case left && top:
		return hittest.HandleTopLeft
	case top:
		return hittest.HandleTopRight
	case left:
		return hittest.HandleBottomLeft
	default:
		return hittest.HandleBottomRight
	}
}

func (e *Editor) resize(sh *document.Shape, w geom.Point) {
	s := e.session
	switch sh.Type {
	case document.ShapeRect, document.ShapeDiamond, document.ShapeSelect:
		fixed := boxCorner(sh.Box(), hittest.Opposite(s.handle))
		r := geom.RectFromCorners(fixed, w)
		sh.X, sh.Y, sh.Width, sh.Height = r.X, r.Y, r.Width, r.Height
		s.handle = cornerOf(w, fixed)

	case document.ShapeCircle:
		sh.Radius = w.Dist(geom.Pt(sh.CenterX, sh.CenterY))
		sh.SyncEllipseBounds()

	case document.ShapeLine, document.ShapeArrow:
		switch s.handle {
		case hittest.HandleStart:
			sh.StartX, sh.StartY = w.X, w.Y
		case hittest.HandleEnd:
			sh.EndX, sh.EndY = w.X, w.Y
		}

	case document.ShapeText:
		target := w.X - sh.X
		width := e.measurer.MeasureText(sh.Text, sh.Size)
		if target <= minTextResize || width <= 0 {
			return
		}
		size := sh.Size * target / width
		sh.Size = math.Max(document.MinTextSize, math.Min(document.MaxTextSize, size))
	}
}

// rotate applies the angle swept since the previous move. Lines turn their
// endpoints about the midpoint; other shapes accumulate Rotation.
func (e *Editor) rotate(sh *document.Shape, w geom.Point) {
	s := e.session
	pivot := sh.Pivot()
	angle := w.Angle(pivot)
	delta := angle - s.prevAngle
	s.prevAngle = angle

	switch sh.Type {
	case document.ShapeLine, document.ShapeArrow:
		start := geom.Pt(sh.StartX, sh.StartY).RotateAround(pivot, delta)
		end := geom.Pt(sh.EndX, sh.EndY).RotateAround(pivot, delta)
		sh.StartX, sh.StartY = start.X, start.Y
		sh.EndX, sh.EndY = end.X, end.Y
	default:
		if sh.Rotatable() {
			sh.Rotation += delta
		}
	}
}
