package render

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/scrawl/scrawl/internal/geom"
)

const pdfFontFamily = "goregular"

// PDF is a single-page vector surface. One device pixel maps to one point.
type PDF struct {
	doc    *gofpdf.Fpdf
	width  int
	height int
}

func NewPDF(width, height int) *PDF {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddUTF8FontFromBytes(pdfFontFamily, "", goregular.TTF)
	doc.AddPage()
	doc.SetLineCapStyle("round")
	doc.SetLineJoinStyle("round")
	return &PDF{doc: doc, width: width, height: height}
}

func (p *PDF) Size() (int, int) { return p.width, p.height }

func (p *PDF) Clear(background string) {
	// unparseable backgrounds fall back to black
	c, _ := ParseColor(background)
	p.doc.SetFillColor(int(c.R), int(c.G), int(c.B))
	p.doc.Rect(0, 0, float64(p.width), float64(p.height), "F")
}

func (p *PDF) DrawPath(m geom.Matrix2D, path geom.Path, paint Paint) {
	if len(path) == 0 {
		return
	}
	style := ""
	if c, ok := ParseColor(paint.Fill); ok {
		p.doc.SetFillColor(int(c.R), int(c.G), int(c.B))
		style += "F"
	}
	if c, ok := ParseColor(paint.Stroke); ok && paint.LineWidth > 0 {
		k := m.ScaleFactor()
		p.doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.doc.SetLineWidth(paint.LineWidth * k)
		p.doc.SetDashPattern(scaleDash(paint.Dash, k), 0)
		style += "D"
	}
	if style == "" {
		return
	}

	for _, cmd := range path.Transform(m) {
		pt := cmd.Pts
		switch cmd.Op {
		case geom.OpMove:
			p.doc.MoveTo(pt[0], pt[1])
		case geom.OpLine:
			p.doc.LineTo(pt[0], pt[1])
		case geom.OpCubic:
			p.doc.CurveBezierCubicTo(pt[0], pt[1], pt[2], pt[3], pt[4], pt[5])
		case geom.OpClose:
			p.doc.ClosePath()
		}
	}
	p.doc.DrawPath(style)
}

func (p *PDF) DrawText(m geom.Matrix2D, text string, x, y, size float64, paint Paint) {
	c, ok := ParseColor(paint.Fill)
	if !ok || text == "" {
		return
	}
	sx, sy := m.TransformPoint(x, y)
	p.doc.SetFont(pdfFontFamily, "", size*m.ScaleFactor())
	p.doc.SetTextColor(int(c.R), int(c.G), int(c.B))

	// gofpdf rotates counter-clockwise; canvas angles run clockwise on screen
	angle := m.Angle()
	if angle != 0 {
		p.doc.TransformBegin()
		p.doc.TransformRotate(-angle*180/math.Pi, sx, sy)
	}
	p.doc.Text(sx, sy, text)
	if angle != 0 {
		p.doc.TransformEnd()
	}
}

// Write emits the document.
func (p *PDF) Write(w io.Writer) error {
	if err := p.doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
