// Package engine turns pointer, wheel and toolbar events into scene edits.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/scene"
	"github.com/scrawl/scrawl/internal/viewport"
)

// saveTimeout bounds one snapshot write.
const saveTimeout = 5 * time.Second

// TextEntry is the host capability that collects text for the text tool.
// OpenTextEntry shows an input at the world position and later calls resolve
// exactly once, with ok false on cancellation. resolve must be called from
// the goroutine that drives the Editor. The returned cancel closes the input
// without resolving.
type TextEntry interface {
	OpenTextEntry(at geom.Point, resolve func(text string, ok bool)) (cancel func())
}

// TextEntryFunc adapts a function to TextEntry.
type TextEntryFunc func(at geom.Point, resolve func(text string, ok bool)) func()

func (f TextEntryFunc) OpenTextEntry(at geom.Point, resolve func(text string, ok bool)) func() {
	return f(at, resolve)
}

type textPrompt struct {
	token  int
	at     geom.Point
	cancel func()
}

// Session is the mutable interaction state of one editor.
type Session struct {
	Tool     Tool
	State    State
	Viewport viewport.Viewport
	Style    document.Style

	// anchor is the world point of the gesture start, advanced by drags.
	anchor     geom.Point
	lastScreen geom.Point

	// selection is a weak reference into the store, revalidated by id.
	selIndex int
	selID    string
	marquee  *document.Shape

	handle    hittest.Handle
	prevAngle float64

	path    []geom.Point
	preview *document.Shape

	prompt    *textPrompt
	promptSeq int
}

// NewSession returns an idle session with the pencil tool and default style.
func NewSession() *Session {
	return &Session{
		Tool:     ToolPencil,
		State:    Idle,
		Viewport: viewport.New(),
		Style:    document.DefaultStyle(),
		selIndex: -1,
	}
}

// Options configures an Editor. Every field is optional.
type Options struct {
	Surface   render.Surface
	Measurer  hittest.Measurer
	TextEntry TextEntry
	Logger    *slog.Logger
}

// Editor is the interaction state machine for one viewer of a room. It is
// not safe for concurrent use; deliver every event from one goroutine.
type Editor struct {
	store    *scene.Store
	session  *Session
	surface  render.Surface
	renderer *render.Renderer
	measurer hittest.Measurer
	text     TextEntry
	logger   *slog.Logger
}

// New returns an Editor on store. Zero Options fields get defaults.
func New(store *scene.Store, opts Options) *Editor {
	m := opts.Measurer
	if m == nil {
		m = hittest.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		store:    store,
		session:  NewSession(),
		surface:  opts.Surface,
		renderer: render.New(m),
		measurer: m,
		text:     opts.TextEntry,
		logger:   logger.With("room", store.Room()),
	}
}

// --- Accessors ---

func (e *Editor) State() State                    { return e.session.State }
func (e *Editor) Tool() Tool                      { return e.session.Tool }
func (e *Editor) Style() document.Style           { return e.session.Style }
func (e *Editor) Viewport() viewport.Viewport     { return e.session.Viewport }
func (e *Editor) Shapes() []document.Shape        { return e.store.Shapes() }
func (e *Editor) Store() *scene.Store             { return e.store }
func (e *Editor) SetSurface(s render.Surface)     { e.surface = s }
func (e *Editor) SetViewport(v viewport.Viewport) { e.session.Viewport = v }

// Selection returns the index of the selected scene shape.
func (e *Editor) Selection() (int, bool) {
	_, idx, ok := e.selected()
	if !ok || idx < 0 {
		return -1, false
	}
	return idx, true
}

// Marquee returns the active selection rectangle, if any.
func (e *Editor) Marquee() (geom.Rect, bool) {
	if e.session.marquee == nil {
		return geom.Rect{}, false
	}
	return e.session.marquee.Box(), true
}

// Frame assembles what the renderer needs for the current state.
func (e *Editor) Frame() render.Frame {
	sel, _, _ := e.selected()
	return render.Frame{
		Shapes:   e.store.Shapes(),
		Viewport: e.session.Viewport,
		Selected: sel,
		Preview:  e.session.preview,
	}
}

// Redraw renders the current frame to the editor's surface.
func (e *Editor) Redraw() {
	if e.surface == nil {
		return
	}
	e.renderer.Render(e.surface, e.Frame())
}

// --- Selection ---

// selected resolves the selection. Scene shapes are checked against their
// id and re-indexed if the list moved under them; a vanished shape clears
// the selection. The marquee is returned with index -1.
func (e *Editor) selected() (*document.Shape, int, bool) {
	s := e.session
	if s.marquee != nil {
		return s.marquee, -1, true
	}
	if s.selID == "" {
		return nil, -1, false
	}
	if sh, ok := e.store.At(s.selIndex); ok && sh.ID == s.selID {
		return sh, s.selIndex, true
	}
	if idx := e.store.IndexOf(s.selID); idx >= 0 {
		s.selIndex = idx
		sh, _ := e.store.At(idx)
		return sh, idx, true
	}
	e.clearSelection()
	return nil, -1, false
}

func (e *Editor) selectIndex(i int) {
	sh, ok := e.store.At(i)
	if !ok {
		e.clearSelection()
		return
	}
	e.session.selIndex = i
	e.session.selID = sh.ID
	e.session.marquee = nil
}

func (e *Editor) clearSelection() {
	e.session.selIndex = -1
	e.session.selID = ""
	e.session.marquee = nil
}

// selectedShape returns the selected scene shape, excluding the marquee.
func (e *Editor) selectedShape() (*document.Shape, int, bool) {
	sh, idx, ok := e.selected()
	if !ok || idx < 0 {
		return nil, -1, false
	}
	return sh, idx, true
}

// persist writes a full snapshot. Failures are logged by the store and never
// interrupt the interaction.
func (e *Editor) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	_ = e.store.Save(ctx)
}

// persistEdit saves after a gesture on the selection. Marquee edits stay
// local.
func (e *Editor) persistEdit() {
	if _, _, ok := e.selectedShape(); ok {
		e.persist()
	}
}

// --- Control surface ---

// SelectTool cancels any open text entry, drops the selection unless the new
// tool is select and forces the editor back to Idle.
func (e *Editor) SelectTool(t Tool) {
	s := e.session
	e.cancelText()
	switch s.State {
	case Dragging, Resizing, Rotating:
		e.persistEdit()
	}
	s.path = nil
	s.preview = nil
	s.handle = hittest.HandleNone
	if t != ToolSelect {
		e.clearSelection()
	}
	s.Tool = t
	s.State = Idle
	e.logger.Debug("tool selected", "tool", t)
	e.Redraw()
}

// SetStrokeColor sets the stroke color for new shapes and the selected one.
func (e *Editor) SetStrokeColor(color string) {
	e.session.Style.Stroke = color
	if sh, _, ok := e.selectedShape(); ok {
		sh.Color = color
		e.persist()
	}
	e.Redraw()
}

// SetBgColor sets the fill color. It reaches the selection only if it is fillable.
func (e *Editor) SetBgColor(color string) {
	e.session.Style.Fill = color
	if sh, _, ok := e.selectedShape(); ok && sh.Fillable() {
		sh.BgColor = color
		e.persist()
	}
	e.Redraw()
}

// SetStrokeWidth takes the absolute value of width.
func (e *Editor) SetStrokeWidth(width float64) {
	width = math.Abs(width)
	e.session.Style.Width = width
	if sh, _, ok := e.selectedShape(); ok {
		sh.StrokeWidth = width
		e.persist()
	}
	e.Redraw()
}

// SetStrokeStyle rejects styles other than solid, dashed and dotted.
func (e *Editor) SetStrokeStyle(style document.StrokeStyle) error {
	switch style {
	case document.StrokeSolid, document.StrokeDashed, document.StrokeDotted:
	default:
		return fmt.Errorf("unknown stroke style %q", style)
	}
	e.session.Style.Dash = style
	if sh, _, ok := e.selectedShape(); ok {
		sh.StrokeStyle = style
		e.persist()
	}
	e.Redraw()
	return nil
}

// DeleteSelected removes the selected shape and clears the selection. A
// marquee selection is simply dismissed.
func (e *Editor) DeleteSelected() {
	_, idx, ok := e.selected()
	if !ok {
		return
	}
	e.clearSelection()
	if idx >= 0 {
		if err := e.store.RemoveAt(idx); err != nil {
			e.logger.Warn("delete shape", "index", idx, "error", err)
			return
		}
		e.persist()
	}
	e.Redraw()
}

// ClearAll empties the scene and persists the empty snapshot.
func (e *Editor) ClearAll() {
	e.clearSelection()
	e.store.Clear()
	e.persist()
	e.Redraw()
}

// Reload replaces the scene from storage, keeping the selection when its
// shape survives.
func (e *Editor) Reload(ctx context.Context) {
	e.store.Load(ctx)
	e.selected()
	e.Redraw()
}
