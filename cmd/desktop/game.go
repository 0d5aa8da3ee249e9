package main

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/engine"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/scene"
)

// palette cycles with the C key.
var palette = []string{document.DefaultStrokeColor, "#FF5555", "#55FF55", "#5599FF", "#FFDD55"}

type game struct {
	editor  *engine.Editor
	raster  *render.Raster
	canvas  *ebiten.Image
	prompt  *prompt
	width   int
	height  int
	color   int
	pressed bool
}

// prompt is the inline text input opened by the text tool.
type prompt struct {
	at      geom.Point
	text    []rune
	resolve func(string, bool)
}

func newGame(store *scene.Store, sample bool) *game {
	g := &game{}
	g.editor = engine.New(store, engine.Options{TextEntry: g})
	if sample && store.Len() == 0 {
		store.Replace(document.NewSampleScene())
		store.Save(context.Background())
	}
	return g
}

// OpenTextEntry starts collecting typed characters at the screen position of at.
func (g *game) OpenTextEntry(at geom.Point, resolve func(string, bool)) func() {
	p := &prompt{at: g.editor.Viewport().WorldToScreen(at.X, at.Y), resolve: resolve}
	g.prompt = p
	g.pressed = false
	return func() {
		if g.prompt == p {
			g.prompt = nil
		}
	}
}

func (g *game) Update() error {
	if g.prompt != nil {
		g.updatePrompt()
		return nil
	}

	for key, tool := range toolKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.editor.SelectTool(tool)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.editor.DeleteSelected()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.color = (g.color + 1) % len(palette)
		g.editor.SetStrokeColor(palette[g.color])
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.editor.SetStrokeWidth(g.editor.Style().Width + 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.editor.SetStrokeWidth(max(g.editor.Style().Width-1, 1))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) && ebiten.IsKeyPressed(ebiten.KeyShift) {
		g.editor.ClearAll()
	}

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.editor.PointerDown(x, y)
		g.pressed = true
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.editor.PointerUp(x, y)
		g.pressed = false
	case g.pressed:
		g.editor.PointerMove(x, y)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		// ebiten reports wheel up as positive; browsers report it as negative deltaY
		g.editor.Wheel(x, y, -wy)
	}
	return nil
}

func (g *game) updatePrompt() {
	p := g.prompt
	p.text = ebiten.AppendInputChars(p.text)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(p.text) > 0 {
		p.text = p.text[:len(p.text)-1]
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.prompt = nil
		p.resolve(string(p.text), true)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.prompt = nil
		p.resolve("", false)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.raster == nil {
		return
	}
	// the editor repaints the raster after every event it handles
	g.canvas.WritePixels(g.raster.Image().Pix)
	screen.DrawImage(g.canvas, nil)

	if p := g.prompt; p != nil {
		vector.DrawFilledRect(screen, float32(p.at.X-2), float32(p.at.Y-18), float32(6*len(p.text)+12), 20, color.NRGBA{0x33, 0x33, 0x33, 0xE0}, false)
		ebitenutil.DebugPrintAt(screen, string(p.text)+"_", int(p.at.X), int(p.at.Y)-16)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  %s  width %.0f", g.editor.Tool(), g.editor.State(), g.editor.Style().Width), 8, g.height-20)
}

// Layout sizes the raster to the window so one screen pixel is one surface pixel.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height || g.raster == nil {
		g.width, g.height = outsideWidth, outsideHeight
		g.raster = render.NewRaster(outsideWidth, outsideHeight)
		if g.canvas != nil {
			g.canvas.Deallocate()
		}
		g.canvas = ebiten.NewImage(outsideWidth, outsideHeight)
		g.editor.SetSurface(g.raster)
		g.editor.Redraw()
	}
	return outsideWidth, outsideHeight
}
