package hittest

import (
	"testing"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
)

func TestResolveHandleBox(t *testing.T) {
	rect := document.NewRect(geom.Pt(10, 10), geom.Pt(110, 60), document.DefaultStyle())

	tests := []struct {
		name  string
		p     geom.Point
		scale float64
		want  Handle
	}{
		{"top left", geom.Pt(12, 9), 1, HandleTopLeft},
		{"bottom right", geom.Pt(110, 60), 1, HandleBottomRight},
		{"rotate knob", geom.Pt(60, -10), 1, HandleRotate},
		{"body", geom.Pt(60, 30), 1, HandleNone},
		{"outside tolerance", geom.Pt(15, 10), 1, HandleNone},
		// at 2x zoom the tolerance is 2 world units and the knob sits 10 above
		{"zoomed miss", geom.Pt(13, 10), 2, HandleNone},
		{"zoomed knob", geom.Pt(60, 0), 2, HandleRotate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveHandle(tt.p, &rect, tt.scale, fixed); got != tt.want {
				t.Errorf("ResolveHandle(%v) = %q, want %q", tt.p, got, tt.want)
			}
		})
	}
}

func TestResolveHandleEllipseAndLine(t *testing.T) {
	st := document.DefaultStyle()
	circle := document.NewEllipse(geom.Pt(0, 0), geom.Pt(100, 0), st)
	if got := ResolveHandle(geom.Pt(100, 0), &circle, 1, fixed); got != HandleRight {
		t.Errorf("circle right = %q", got)
	}
	if got := ResolveHandle(geom.Pt(50, -70), &circle, 1, fixed); got != HandleRotate {
		t.Errorf("circle rotate = %q", got)
	}

	line := document.NewLine(geom.Pt(0, 0), geom.Pt(100, 0), st)
	if got := ResolveHandle(geom.Pt(0, 0), &line, 1, fixed); got != HandleStart {
		t.Errorf("line start = %q", got)
	}
	// perpendicular (-dy, dx) of a rightward segment points down on screen
	if got := ResolveHandle(geom.Pt(50, 20), &line, 1, fixed); got != HandleRotate {
		t.Errorf("line rotate = %q", got)
	}

	dot := document.NewLine(geom.Pt(5, 5), geom.Pt(5, 5), st)
	for _, a := range Handles(&dot, 1, fixed) {
		if a.Handle == HandleRotate {
			t.Error("zero length line has a rotation knob")
		}
	}
}

func TestResolveHandleText(t *testing.T) {
	text := document.NewText(geom.Pt(10, 50), "hello", document.DefaultStyle())
	if got := ResolveHandle(geom.Pt(50, 50), &text, 1, fixed); got != HandleResize {
		t.Errorf("text resize = %q", got)
	}
	if got := ResolveHandle(geom.Pt(30, 14), &text, 1, fixed); got != HandleRotate {
		t.Errorf("text rotate = %q", got)
	}
}

func TestStrokesHaveNoHandles(t *testing.T) {
	s, _ := document.NewStroke(document.ShapePencil, []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, document.DefaultStyle())
	if hs := Handles(&s, 1, fixed); len(hs) != 0 {
		t.Errorf("pencil handles = %v", hs)
	}
}

func TestOpposite(t *testing.T) {
	pairs := map[Handle]Handle{
		HandleTopLeft:  HandleBottomRight,
		HandleTopRight: HandleBottomLeft,
		HandleRotate:   HandleRotate,
	}
	for in, want := range pairs {
		if got := Opposite(in); got != want {
			t.Errorf("Opposite(%q) = %q, want %q", in, got, want)
		}
	}
}
