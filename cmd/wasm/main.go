//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"syscall/js"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/engine"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/scene"
)

const defaultRoom = "default"

var (
	ed      *engine.Editor
	surface = render.NewRecorder(1280, 800)
	backend = localStorage{}
)

func main() {
	openRoom(defaultRoom)

	// Create the engine API object
	scrawlEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → editor) ---
	scrawlEngine.Set("loadRoom", js.FuncOf(loadRoom))
	scrawlEngine.Set("loadSample", js.FuncOf(loadSample))
	scrawlEngine.Set("resize", js.FuncOf(resize))
	scrawlEngine.Set("pointerDown", js.FuncOf(pointer(func(x, y float64) { ed.PointerDown(x, y) })))
	scrawlEngine.Set("pointerMove", js.FuncOf(pointer(func(x, y float64) { ed.PointerMove(x, y) })))
	scrawlEngine.Set("pointerUp", js.FuncOf(pointer(func(x, y float64) { ed.PointerUp(x, y) })))
	scrawlEngine.Set("wheel", js.FuncOf(wheel))
	scrawlEngine.Set("selectTool", js.FuncOf(selectTool))
	scrawlEngine.Set("setStrokeColor", js.FuncOf(stringArg(func(s string) { ed.SetStrokeColor(s) })))
	scrawlEngine.Set("setBgColor", js.FuncOf(stringArg(func(s string) { ed.SetBgColor(s) })))
	scrawlEngine.Set("setStrokeWidth", js.FuncOf(setStrokeWidth))
	scrawlEngine.Set("setStrokeStyle", js.FuncOf(setStrokeStyle))
	scrawlEngine.Set("deleteSelected", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ed.DeleteSelected()
		return nil
	}))
	scrawlEngine.Set("clearAll", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ed.ClearAll()
		return nil
	}))

	// --- Queries (frontend ← editor) ---
	scrawlEngine.Set("render", js.FuncOf(renderFrame))
	scrawlEngine.Set("getState", js.FuncOf(getState))
	scrawlEngine.Set("getScene", js.FuncOf(getScene))

	// Register on global scope
	js.Global().Set("scrawlEngine", scrawlEngine)

	// Signal that WASM is ready
	js.Global().Set("scrawlWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func openRoom(room string) {
	store := scene.NewStore(room, backend, slog.Default())
	store.Load(context.Background())
	ed = engine.New(store, engine.Options{
		Surface:   surface,
		TextEntry: engine.TextEntryFunc(openTextEntry),
	})
	ed.Redraw()
}

// openTextEntry calls the page's scrawlOpenTextEntry(x, y, resolve) with
// screen coordinates. The page calls resolve(text) to commit or
// resolve(null) to cancel, and may call the returned close function.
func openTextEntry(at geom.Point, resolve func(string, bool)) func() {
	open := js.Global().Get("scrawlOpenTextEntry")
	if open.Type() != js.TypeFunction {
		resolve("", false)
		return func() {}
	}
	screen := ed.Viewport().WorldToScreen(at.X, at.Y)

	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cb.Release()
		if len(args) == 0 || args[0].Type() != js.TypeString {
			resolve("", false)
			return nil
		}
		resolve(args[0].String(), true)
		return nil
	})
	closer := open.Invoke(screen.X, screen.Y, cb)
	return func() {
		if closer.Type() == js.TypeFunction {
			closer.Invoke()
		}
	}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

func loadRoom(this js.Value, args []js.Value) interface{} {
	room := defaultRoom
	if len(args) > 0 && args[0].Type() == js.TypeString {
		room = args[0].String()
	}
	if err := scene.ValidRoom(room); err != nil {
		return result(err)
	}
	openRoom(room)
	return result(nil)
}

func loadSample(this js.Value, args []js.Value) interface{} {
	ed.Store().Replace(document.NewSampleScene())
	err := ed.Store().Save(context.Background())
	ed.Redraw()
	return result(err)
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	surface.Width, surface.Height = args[0].Int(), args[1].Int()
	ed.Redraw()
	return nil
}

func pointer(fn func(x, y float64)) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) < 2 {
			return nil
		}
		fn(args[0].Float(), args[1].Float())
		return nil
	}
}

func stringArg(fn func(string)) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			return nil
		}
		fn(args[0].String())
		return nil
	}
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	ed.Wheel(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func selectTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	tool, err := engine.ParseTool(args[0].String())
	if err != nil {
		return result(err)
	}
	ed.SelectTool(tool)
	return result(nil)
}

func setStrokeWidth(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.SetStrokeWidth(args[0].Float())
	return nil
}

func setStrokeStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	return result(ed.SetStrokeStyle(document.StrokeStyle(args[0].String())))
}

// --- Query Handlers ---

func renderFrame(this js.Value, args []js.Value) interface{} {
	data, err := surface.JSON()
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) interface{} {
	state := map[string]interface{}{
		"tool":     ed.Tool(),
		"state":    ed.State(),
		"style":    ed.Style(),
		"viewport": ed.Viewport(),
	}
	if idx, ok := ed.Selection(); ok {
		state["selection"] = idx
	}
	data, _ := json.Marshal(state)
	return js.ValueOf(string(data))
}

func getScene(this js.Value, args []js.Value) interface{} {
	data, err := scene.Encode(ed.Shapes())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}
