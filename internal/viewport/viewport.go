// Package viewport maps between screen and world coordinates for a pannable,
// zoomable canvas.
package viewport

import (
	"math"

	"github.com/scrawl/scrawl/internal/geom"
)

const (
	MinScale = 0.1
	MaxScale = 10.0
)

// Viewport is the pan/zoom transform: screen = world*Scale + Offset.
type Viewport struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

func New() Viewport {
	return Viewport{Scale: 1}
}

func clampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// scale treats the zero value as an unscaled viewport.
func (v Viewport) scale() float64 {
	if v.Scale == 0 {
		return 1
	}
	return v.Scale
}

func (v Viewport) ScreenToWorld(sx, sy float64) geom.Point {
	s := v.scale()
	return geom.Point{X: (sx - v.OffsetX) / s, Y: (sy - v.OffsetY) / s}
}

func (v Viewport) WorldToScreen(wx, wy float64) geom.Point {
	s := v.scale()
	return geom.Point{X: wx*s + v.OffsetX, Y: wy*s + v.OffsetY}
}

// ZoomAt rescales by factor while keeping the world point under the screen
// point (sx, sy) fixed on screen.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	world := v.ScreenToWorld(sx, sy)
	next := clampScale(v.scale() * factor)
	v.OffsetX = sx - world.X*next
	v.OffsetY = sy - world.Y*next
	v.Scale = next
}

func (v *Viewport) PanBy(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// Matrix returns the world to screen transform.
func (v Viewport) Matrix() geom.Matrix2D {
	s := v.scale()
	return geom.Translate(v.OffsetX, v.OffsetY).Multiply(geom.Scale(s, s))
}

// WheelFactor maps a wheel delta to a zoom factor: scrolling down zooms out.
func WheelFactor(deltaY float64) float64 {
	if deltaY > 0 {
		return 0.9
	}
	return 1.1
}

// Fit returns a viewport that shows bounds centered in a w x h surface with
// padding screen pixels on each side. Empty bounds yield the identity view.
func Fit(bounds geom.Rect, w, h, padding float64) Viewport {
	if bounds.Width <= 0 && bounds.Height <= 0 {
		return New()
	}
	availW := math.Max(w-2*padding, 1)
	availH := math.Max(h-2*padding, 1)
	s := math.Inf(1)
	if bounds.Width > 0 {
		s = availW / bounds.Width
	}
	if bounds.Height > 0 {
		s = math.Min(s, availH/bounds.Height)
	}
	s = clampScale(s)
	c := bounds.Center()
	return Viewport{
		Scale:   s,
		OffsetX: w/2 - c.X*s,
		OffsetY: h/2 - c.Y*s,
	}
}
