package document

import (
	"math"

	"github.com/scrawl/scrawl/internal/geom"
)

// NewSampleScene returns a small scene exercising every persisted shape kind.
func NewSampleScene() []Shape {
	st := DefaultStyle()

	card := NewRect(geom.Pt(80, 80), geom.Pt(320, 220), Style{
		Stroke: "#4FC3F7",
		Fill:   "#0D47A1",
		Width:  3,
		Dash:   StrokeSolid,
	})

	tilted := NewDiamond(geom.Pt(400, 90), geom.Pt(540, 210), Style{
		Stroke: "#FFB74D",
		Fill:   Transparent,
		Width:  2,
		Dash:   StrokeDashed,
	})
	tilted.Rotation = math.Pi / 12

	dot := NewEllipse(geom.Pt(600, 100), geom.Pt(700, 200), Style{
		Stroke: "#81C784",
		Fill:   "#1B5E20",
		Width:  2,
		Dash:   StrokeSolid,
	})

	link := NewArrow(geom.Pt(320, 150), geom.Pt(400, 150), st)
	rule := NewLine(geom.Pt(80, 260), geom.Pt(700, 260), Style{
		Stroke: "#9E9E9E",
		Width:  1,
		Dash:   StrokeDotted,
	})

	var wave []geom.Point
	for i := 0; i <= 40; i++ {
		x := 80 + float64(i)*15
		wave = append(wave, geom.Pt(x, 330+20*math.Sin(float64(i)/3)))
	}
	squiggle, _ := NewStroke(ShapePencil, wave, Style{Stroke: "#F06292", Width: 3, Dash: StrokeSolid})

	title := NewText(geom.Pt(90, 120), "scrawl", st)
	title.Size = 28

	return []Shape{card, tilted, dot, link, rule, squiggle, title}
}
