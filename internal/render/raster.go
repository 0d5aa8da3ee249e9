package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/scrawl/scrawl/internal/geom"
)

var (
	fontOnce sync.Once
	ttf      *truetype.Font
	fontErr  error
)

func regularFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		ttf, fontErr = truetype.Parse(goregular.TTF)
	})
	return ttf, fontErr
}

// Raster is an in-memory RGBA surface backed by gg.
type Raster struct {
	dc    *gg.Context
	faces map[int]font.Face
}

func NewRaster(width, height int) *Raster {
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &Raster{dc: dc, faces: make(map[int]font.Face)}
}

func (r *Raster) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

// Image returns the backing image. It is reused across frames.
func (r *Raster) Image() *image.RGBA {
	return r.dc.Image().(*image.RGBA)
}

func (r *Raster) EncodePNG(w io.Writer) error {
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Raster) Clear(background string) {
	c, ok := ParseColor(background)
	if !ok {
		c = color.NRGBA{A: 255}
	}
	r.dc.SetColor(c)
	r.dc.Clear()
}

func (r *Raster) DrawPath(m geom.Matrix2D, path geom.Path, paint Paint) {
	if len(path) == 0 {
		return
	}
	for _, cmd := range path.Transform(m) {
		p := cmd.Pts
		switch cmd.Op {
		case geom.OpMove:
			r.dc.MoveTo(p[0], p[1])
		case geom.OpLine:
			r.dc.LineTo(p[0], p[1])
		case geom.OpCubic:
			r.dc.CubicTo(p[0], p[1], p[2], p[3], p[4], p[5])
		case geom.OpClose:
			r.dc.ClosePath()
		}
	}

	if fill, ok := ParseColor(paint.Fill); ok {
		r.dc.SetColor(fill)
		r.dc.FillPreserve()
	}
	if stroke, ok := ParseColor(paint.Stroke); ok && paint.LineWidth > 0 {
		k := m.ScaleFactor()
		r.dc.SetColor(stroke)
		r.dc.SetLineWidth(paint.LineWidth * k)
		r.dc.SetDash(scaleDash(paint.Dash, k)...)
		r.dc.StrokePreserve()
		r.dc.SetDash()
	}
	r.dc.ClearPath()
}

func (r *Raster) DrawText(m geom.Matrix2D, text string, x, y, size float64, paint Paint) {
	fill, ok := ParseColor(paint.Fill)
	if !ok || text == "" {
		return
	}
	px := int(math.Round(size * m.ScaleFactor()))
	if px < 1 {
		return
	}
	face, err := r.face(px)
	if err != nil {
		return
	}
	sx, sy := m.TransformPoint(x, y)

	r.dc.Push()
	r.dc.SetFontFace(face)
	r.dc.SetColor(fill)
	r.dc.RotateAbout(m.Angle(), sx, sy)
	r.dc.DrawString(text, sx, sy)
	r.dc.Pop()
}

func (r *Raster) face(px int) (font.Face, error) {
	if f, ok := r.faces[px]; ok {
		return f, nil
	}
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: float64(px), DPI: 72})
	r.faces[px] = face
	return face, nil
}

func scaleDash(dash []float64, k float64) []float64 {
	if len(dash) == 0 {
		return nil
	}
	out := make([]float64, len(dash))
	for i, d := range dash {
		out[i] = d * k
	}
	return out
}
