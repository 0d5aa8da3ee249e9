//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/scrawl/scrawl/internal/scene"
)

// localStorage keeps snapshots in the browser under drawing_<room>.
type localStorage struct{}

func (localStorage) key(room string) string { return "drawing_" + room }

func (s localStorage) LoadSnapshot(_ context.Context, room string) ([]byte, error) {
	v := js.Global().Get("localStorage").Call("getItem", s.key(room))
	if v.IsNull() || v.IsUndefined() {
		return nil, scene.ErrNotFound
	}
	return []byte(v.String()), nil
}

func (s localStorage) SaveSnapshot(_ context.Context, room string, data []byte) (err error) {
	// setItem throws when the quota is exceeded
	defer func() {
		if v := recover(); v != nil {
			if jsErr, ok := v.(js.Error); ok {
				err = jsErr
				return
			}
			panic(v)
		}
	}()
	js.Global().Get("localStorage").Call("setItem", s.key(room), string(data))
	return nil
}
