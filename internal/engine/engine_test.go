package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/scene"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const eps = 1e-9

func newEditor(t *testing.T, opts Options) (*Editor, *scene.Memory) {
	t.Helper()
	mem := scene.NewMemory()
	store := scene.NewStore("test-room", mem, quiet)
	store.Load(context.Background())
	opts.Logger = quiet
	if opts.Measurer == nil {
		opts.Measurer = hittest.FixedMeasurer(0.5)
	}
	return New(store, opts), mem
}

func drag(e *Editor, from, to geom.Point) {
	e.PointerDown(from.X, from.Y)
	e.PointerMove(to.X, to.Y)
	e.PointerUp(to.X, to.Y)
}

func persisted(t *testing.T, mem *scene.Memory) []document.Shape {
	t.Helper()
	return scene.Load(context.Background(), mem, "test-room", quiet)
}

func TestDrawSelectDragDelete(t *testing.T) {
	e, mem := newEditor(t, Options{})

	e.SelectTool(ToolRect)
	drag(e, geom.Pt(10, 10), geom.Pt(110, 60))
	shapes := e.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	r := shapes[0]
	if r.Type != document.ShapeRect || r.X != 10 || r.Y != 10 || r.Width != 100 || r.Height != 50 {
		t.Fatalf("rect = %+v", r)
	}
	if got := persisted(t, mem); len(got) != 1 {
		t.Fatalf("persisted %d shapes, want 1", len(got))
	}

	e.SelectTool(ToolSelect)
	e.PointerDown(50, 30)
	e.PointerUp(50, 30)
	if idx, ok := e.Selection(); !ok || idx != 0 {
		t.Fatalf("Selection = %d, %v; want 0, true", idx, ok)
	}

	drag(e, geom.Pt(50, 30), geom.Pt(70, 35))
	r = e.Shapes()[0]
	if r.X != 30 || r.Y != 15 {
		t.Errorf("after drag x, y = %v, %v; want 30, 15", r.X, r.Y)
	}
	if got := persisted(t, mem); got[0].X != 30 || got[0].Y != 15 {
		t.Errorf("persisted after drag = %+v", got[0])
	}

	e.DeleteSelected()
	if len(e.Shapes()) != 0 {
		t.Errorf("shapes after delete = %v", e.Shapes())
	}
	if _, ok := e.Selection(); ok {
		t.Error("selection survived delete")
	}
	if got := persisted(t, mem); len(got) != 0 {
		t.Errorf("persisted after delete = %v", got)
	}
	if e.State() != Idle {
		t.Errorf("state = %v", e.State())
	}
}

func TestShapeTools(t *testing.T) {
	tests := []struct {
		tool  Tool
		check func(document.Shape) bool
	}{
		{ToolRect, func(s document.Shape) bool { return s.X == 0 && s.Y == 0 && s.Width == 30 && s.Height == 40 }},
		{ToolDiamond, func(s document.Shape) bool { return s.Type == document.ShapeDiamond && s.Width == 30 }},
		{ToolCircle, func(s document.Shape) bool { return s.CenterX == 15 && s.CenterY == 20 && s.Radius == 25 }},
		{ToolLine, func(s document.Shape) bool { return s.StartX == 30 && s.StartY == 40 && s.EndX == 0 && s.EndY == 0 }},
		{ToolArrow, func(s document.Shape) bool { return s.Type == document.ShapeArrow && s.EndX == 0 }},
	}
	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			e, _ := newEditor(t, Options{})
			e.SelectTool(tt.tool)
			// drag up-left so box shapes must normalize
			drag(e, geom.Pt(30, 40), geom.Pt(0, 0))
			if len(e.Shapes()) != 1 {
				t.Fatalf("shapes = %d", len(e.Shapes()))
			}
			if s := e.Shapes()[0]; !tt.check(s) {
				t.Errorf("shape = %+v", s)
			}
		})
	}
}

func TestZeroLengthGestureKeepsZeroSizeShape(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.SelectTool(ToolRect)
	e.PointerDown(5, 5)
	e.PointerUp(5, 5)
	s := e.Shapes()
	if len(s) != 1 || s[0].Width != 0 || s[0].Height != 0 {
		t.Errorf("shapes = %+v", s)
	}
}

func TestStrokes(t *testing.T) {
	e, mem := newEditor(t, Options{})

	e.PointerDown(1, 1)
	e.PointerUp(1, 1)
	if len(e.Shapes()) != 0 {
		t.Fatalf("single-point stroke kept: %+v", e.Shapes())
	}
	if _, err := mem.LoadSnapshot(context.Background(), "test-room"); !errors.Is(err, scene.ErrNotFound) {
		t.Errorf("discarded stroke persisted, err = %v", err)
	}

	e.PointerDown(0, 0)
	e.PointerUp(10, 10)
	if len(e.Shapes()) != 0 {
		t.Fatalf("stroke without moves kept: %+v", e.Shapes())
	}
	if _, err := mem.LoadSnapshot(context.Background(), "test-room"); !errors.Is(err, scene.ErrNotFound) {
		t.Errorf("stroke without moves persisted, err = %v", err)
	}

	e.PointerDown(0, 0)
	e.PointerMove(5, 5)
	e.PointerMove(10, 0)
	e.PointerUp(12, 3)
	pencil := e.Shapes()[0]
	want := []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}
	if pencil.Type != document.ShapePencil || !reflect.DeepEqual(pencil.Path, want) {
		t.Errorf("pencil path = %v, want %v", pencil.Path, want)
	}

	e.SelectTool(ToolEraser)
	drag(e, geom.Pt(0, 0), geom.Pt(0, 10))
	eraser := e.Shapes()[1]
	if eraser.Type != document.ShapeEraser || eraser.StrokeWidth != document.EraserWidth {
		t.Errorf("eraser = %+v", eraser)
	}
}

func TestClickSelectsTopmost(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.SelectTool(ToolRect)
	drag(e, geom.Pt(0, 0), geom.Pt(100, 100))
	drag(e, geom.Pt(50, 50), geom.Pt(150, 150))

	e.SelectTool(ToolSelect)
	e.PointerDown(75, 75)
	e.PointerUp(75, 75)
	if idx, _ := e.Selection(); idx != 1 {
		t.Errorf("overlap selected %d, want 1", idx)
	}
	e.PointerDown(25, 25)
	e.PointerUp(25, 25)
	if idx, _ := e.Selection(); idx != 0 {
		t.Errorf("selected %d, want 0", idx)
	}
}

func TestRotateAndBack(t *testing.T) {
	e, mem := newEditor(t, Options{})
	e.SelectTool(ToolRect)
	drag(e, geom.Pt(10, 10), geom.Pt(110, 60))
	e.SelectTool(ToolSelect)
	e.PointerDown(50, 30)
	e.PointerUp(50, 30)

	// knob sits above the top edge; pivot is (60, 35)
	e.PointerDown(60, -10)
	if e.State() != Rotating {
		t.Fatalf("state = %v, want rotating", e.State())
	}
	e.PointerMove(105, 35)
	if got := e.Shapes()[0].Rotation; math.Abs(got-math.Pi/2) > eps {
		t.Errorf("rotation = %v, want pi/2", got)
	}
	e.PointerMove(60, -10)
	e.PointerUp(60, -10)
	if got := e.Shapes()[0].Rotation; math.Abs(got) > eps {
		t.Errorf("rotation after reversing = %v", got)
	}
	if got := persisted(t, mem); math.Abs(got[0].Rotation) > eps {
		t.Errorf("persisted rotation = %v", got[0].Rotation)
	}
}

func TestRotateLineTurnsEndpoints(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.SelectTool(ToolLine)
	drag(e, geom.Pt(0, 0), geom.Pt(100, 0))
	e.SelectTool(ToolSelect)
	e.PointerDown(50, 0)
	e.PointerUp(50, 0)

	// knob at mid + perp * 20 = (50, 20)
	e.PointerDown(50, 20)
	if e.State() != Rotating {
		t.Fatalf("state = %v", e.State())
	}
	e.PointerMove(30, 0)
	e.PointerUp(30, 0)
	l := e.Shapes()[0]
	if l.Rotation != 0 {
		t.Errorf("line rotation = %v, want endpoints rotated instead", l.Rotation)
	}
	if math.Abs(l.StartX-50) > eps || math.Abs(l.StartY+50) > eps || math.Abs(l.EndX-50) > eps || math.Abs(l.EndY-50) > eps {
		t.Errorf("line = (%v,%v)-(%v,%v)", l.StartX, l.StartY, l.EndX, l.EndY)
	}
}

func TestResizeCornerFlips(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.SelectTool(ToolRect)
	drag(e, geom.Pt(10, 10), geom.Pt(110, 60))
	e.SelectTool(ToolSelect)
	e.PointerDown(50, 30)
	e.PointerUp(50, 30)

	e.PointerDown(110, 60)
	if e.State() != Resizing {
		t.Fatalf("state = %v, want resizing", e.State())
	}
	e.PointerMove(0, 0)
	r := e.Shapes()[0]
	if r.X != 0 || r.Y != 0 || r.Width != 10 || r.Height != 10 {
		t.Errorf("after crossing = %+v", r)
	}
	e.PointerMove(20, 30)
	e.PointerUp(20, 30)
	r = e.Shapes()[0]
	if r.X != 10 || r.Y != 10 || r.Width != 10 || r.Height != 20 {
		t.Errorf("after return = %+v", r)
	}
}

func TestResizeCircleAndText(t *testing.T) {
	e, _ := newEditor(t, Options{TextEntry: TextEntryFunc(func(_ geom.Point, resolve func(string, bool)) func() {
		resolve("abcd", true)
		return func() {}
	})})
	e.SelectTool(ToolCircle)
	drag(e, geom.Pt(0, 0), geom.Pt(60, 80))
	e.SelectTool(ToolSelect)
	e.PointerDown(30, 40)
	e.PointerUp(30, 40)
	// right handle at (80, 40)
	drag(e, geom.Pt(80, 40), geom.Pt(30, 100))
	c := e.Shapes()[0]
	if c.Radius != 60 || c.Width != 120 || c.X != -30 {
		t.Errorf("circle = %+v", c)
	}

	e.SelectTool(ToolText)
	e.PointerDown(200, 40)
	e.SelectTool(ToolSelect)
	e.PointerDown(210, 30)
	e.PointerUp(210, 30)
	if idx, _ := e.Selection(); idx != 1 {
		t.Fatalf("text not selected")
	}
	// width 32 at size 16, handle at (232, 40)
	drag(e, geom.Pt(232, 40), geom.Pt(264, 40))
	if got := e.Shapes()[1].Size; got != 32 {
		t.Errorf("text size = %v, want 32", got)
	}
	drag(e, geom.Pt(264, 40), geom.Pt(205, 40))
	if got := e.Shapes()[1].Size; got != 32 {
		t.Errorf("narrow drag changed size to %v", got)
	}
	drag(e, geom.Pt(264, 40), geom.Pt(900, 40))
	if got := e.Shapes()[1].Size; got != document.MaxTextSize {
		t.Errorf("text size = %v, want clamp to %v", got, document.MaxTextSize)
	}
}

func TestMarqueeIsNotPersisted(t *testing.T) {
	e, mem := newEditor(t, Options{})
	e.SelectTool(ToolSelect)
	e.PointerDown(10, 10)
	e.PointerMove(40, 30)
	if f := e.Frame(); f.Preview == nil || f.Preview.Type != document.ShapeSelect {
		t.Fatalf("preview = %+v", f.Preview)
	}
	e.PointerUp(40, 30)

	m, ok := e.Marquee()
	if !ok || m != (geom.Rect{X: 10, Y: 10, Width: 30, Height: 20}) {
		t.Errorf("Marquee = %+v, %v", m, ok)
	}
	if len(e.Shapes()) != 0 {
		t.Errorf("marquee entered the scene")
	}
	if _, err := mem.LoadSnapshot(context.Background(), "test-room"); !errors.Is(err, scene.ErrNotFound) {
		t.Errorf("marquee persisted, err = %v", err)
	}

	drag(e, geom.Pt(20, 20), geom.Pt(25, 20))
	if m, _ := e.Marquee(); m.X != 15 {
		t.Errorf("marquee not dragged: %+v", m)
	}
	e.DeleteSelected()
	if _, ok := e.Marquee(); ok {
		t.Error("marquee survived delete")
	}
}

func TestPanAndWheel(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.SelectTool(ToolPan)
	e.PointerDown(0, 0)
	e.PointerMove(10, 5)
	e.PointerMove(20, 10)
	e.PointerUp(20, 10)
	if v := e.Viewport(); v.OffsetX != 20 || v.OffsetY != 10 {
		t.Errorf("viewport = %+v", v)
	}
	if len(e.Shapes()) != 0 {
		t.Error("pan created shapes")
	}

	before := e.Viewport().ScreenToWorld(100, 100)
	e.Wheel(100, 100, -1)
	v := e.Viewport()
	if math.Abs(v.Scale-1.1) > eps {
		t.Errorf("scale = %v", v.Scale)
	}
	if after := v.ScreenToWorld(100, 100); math.Abs(after.X-before.X) > eps || math.Abs(after.Y-before.Y) > eps {
		t.Errorf("cursor moved from %v to %v", before, after)
	}
}

func TestStyleSetters(t *testing.T) {
	e, mem := newEditor(t, Options{})
	e.SetStrokeColor("#FF0000")
	e.SetBgColor("#00FF00")
	e.SetStrokeWidth(-4)
	if err := e.SetStrokeStyle(document.StrokeDashed); err != nil {
		t.Fatal(err)
	}
	if err := e.SetStrokeStyle("wavy"); err == nil {
		t.Error("SetStrokeStyle accepted wavy")
	}

	e.SelectTool(ToolLine)
	drag(e, geom.Pt(0, 0), geom.Pt(50, 0))
	l := e.Shapes()[0]
	if l.Color != "#FF0000" || l.StrokeWidth != 4 || l.StrokeStyle != document.StrokeDashed || l.BgColor != "" {
		t.Errorf("line = %+v", l)
	}

	e.SelectTool(ToolSelect)
	e.PointerDown(25, 0)
	e.PointerUp(25, 0)
	e.SetStrokeColor("#0000FF")
	e.SetBgColor("#FFFF00")
	if got := persisted(t, mem)[0]; got.Color != "#0000FF" || got.BgColor != "" {
		t.Errorf("persisted = %+v", got)
	}
}

func TestClearAll(t *testing.T) {
	e, mem := newEditor(t, Options{})
	e.SelectTool(ToolRect)
	drag(e, geom.Pt(0, 0), geom.Pt(10, 10))
	e.SelectTool(ToolSelect)
	e.PointerDown(5, 5)
	e.PointerUp(5, 5)
	e.ClearAll()
	if len(e.Shapes()) != 0 || len(persisted(t, mem)) != 0 {
		t.Error("ClearAll left shapes")
	}
	if _, ok := e.Selection(); ok {
		t.Error("selection survived ClearAll")
	}
}

// prompter records open prompts and resolves them on demand.
type prompter struct {
	at       []geom.Point
	resolve  func(string, bool)
	canceled int
}

func (p *prompter) OpenTextEntry(at geom.Point, resolve func(string, bool)) func() {
	p.at = append(p.at, at)
	p.resolve = resolve
	return func() { p.canceled++ }
}

func TestTextEntry(t *testing.T) {
	p := &prompter{}
	e, mem := newEditor(t, Options{TextEntry: p})
	e.SelectTool(ToolText)

	e.PointerDown(20, 30)
	if e.State() != EditingText {
		t.Fatalf("state = %v", e.State())
	}
	e.PointerDown(50, 50)
	if len(p.at) != 1 {
		t.Errorf("pointer-down while editing opened %d prompts", len(p.at))
	}
	p.resolve("  hello ", true)
	if e.State() != Idle {
		t.Errorf("state after commit = %v", e.State())
	}
	got := persisted(t, mem)
	if len(got) != 1 || got[0].Text != "  hello " || got[0].Size != document.DefaultTextSize || got[0].X != 20 || got[0].Y != 30 {
		t.Fatalf("persisted = %+v", got)
	}

	e.PointerDown(0, 0)
	p.resolve("   ", true)
	e.PointerDown(0, 0)
	p.resolve("ignored", false)
	if len(e.Shapes()) != 1 {
		t.Errorf("blank or cancelled text added shapes: %+v", e.Shapes())
	}

	e.PointerDown(0, 0)
	stale := p.resolve
	e.SelectTool(ToolRect)
	if p.canceled != 1 {
		t.Errorf("cancel called %d times", p.canceled)
	}
	stale("late", true)
	if len(e.Shapes()) != 1 || e.State() != Idle {
		t.Errorf("stale resolve applied: %+v", e.Shapes())
	}
}

func TestSelectionFollowsIdentity(t *testing.T) {
	e, _ := newEditor(t, Options{})
	e.SelectTool(ToolRect)
	drag(e, geom.Pt(0, 0), geom.Pt(10, 10))
	drag(e, geom.Pt(100, 100), geom.Pt(110, 110))
	e.SelectTool(ToolSelect)
	e.PointerDown(105, 105)
	e.PointerUp(105, 105)

	if err := e.Store().RemoveAt(0); err != nil {
		t.Fatal(err)
	}
	if idx, ok := e.Selection(); !ok || idx != 0 {
		t.Errorf("Selection = %d, %v; want re-indexed 0", idx, ok)
	}
	e.Store().Clear()
	if _, ok := e.Selection(); ok {
		t.Error("selection of vanished shape survived")
	}
}

func TestRedrawRecordsFrame(t *testing.T) {
	rec := render.NewRecorder(200, 100)
	e, _ := newEditor(t, Options{Surface: rec})
	e.SelectTool(ToolRect)
	e.PointerDown(0, 0)
	e.PointerMove(20, 20)
	// clear plus preview
	if len(rec.Commands) != 2 {
		t.Errorf("commands = %d, want 2", len(rec.Commands))
	}
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools {
		if got, err := ParseTool(string(tool)); err != nil || got != tool {
			t.Errorf("ParseTool(%q) = %q, %v", tool, got, err)
		}
	}
	if _, err := ParseTool("lasso"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("ParseTool(lasso) err = %v", err)
	}
	if s := Rotating.String(); s != "rotating" {
		t.Errorf("String = %q", s)
	}
}

func TestPointerDownIgnoredMidGesture(t *testing.T) {
	e, mem := newEditor(t, Options{})
	e.SelectTool(ToolRect)

	e.PointerDown(0, 0)
	e.PointerMove(40, 40)
	e.PointerDown(200, 200)
	if e.State() != Drawing || len(e.Shapes()) != 0 {
		t.Fatalf("down while drawing: state %s, %d shapes", e.State(), len(e.Shapes()))
	}
	e.PointerUp(40, 40)
	if r := e.Shapes()[0]; r.X != 0 || r.Y != 0 || r.Width != 40 || r.Height != 40 {
		t.Fatalf("rect = %+v, want anchor kept at origin", r)
	}

	e.SelectTool(ToolSelect)
	e.PointerDown(20, 20)
	e.PointerMove(30, 20)
	if e.State() != Dragging {
		t.Fatalf("state = %s, want dragging", e.State())
	}
	e.PointerDown(300, 300)
	if e.State() != Dragging {
		t.Errorf("down while dragging changed state to %s", e.State())
	}
	if idx, ok := e.Selection(); !ok || idx != 0 {
		t.Errorf("selection = %d, %v", idx, ok)
	}
	e.PointerMove(40, 20)
	e.PointerUp(40, 20)
	if r := e.Shapes()[0]; r.X != 20 || r.Y != 0 || len(e.Shapes()) != 1 {
		t.Errorf("dragged rect = %+v", r)
	}
	if got := persisted(t, mem); len(got) != 1 || got[0].X != 20 {
		t.Errorf("persisted = %+v", got)
	}
}
