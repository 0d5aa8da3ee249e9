// Command desktop runs the editor in a native window.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/scrawl/scrawl/internal/config"
	"github.com/scrawl/scrawl/internal/engine"
	"github.com/scrawl/scrawl/internal/scene"
)

func main() {
	roomName := flag.String("room", "desktop", "room to open")
	sample := flag.Bool("sample", false, "seed an empty room with the sample scene")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := scene.ValidRoom(*roomName); err != nil {
		slog.Error("invalid room", "room", *roomName, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	backend, err := scene.OpenBackend(ctx, scene.Options{
		Driver:      cfg.StoreDriver,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		slog.Error("open scene store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	store := scene.NewStore(*roomName, backend, slog.Default())
	store.Load(ctx)

	g := newGame(store, *sample)

	ebiten.SetWindowTitle("scrawl - " + *roomName)
	ebiten.SetWindowSize(cfg.ExportWidth, cfg.ExportHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		slog.Error("run window", "error", err)
		os.Exit(1)
	}
}

// toolKeys maps number keys to tools in toolbar order.
var toolKeys = map[ebiten.Key]engine.Tool{
	ebiten.Key1: engine.ToolRect,
	ebiten.Key2: engine.ToolCircle,
	ebiten.Key3: engine.ToolDiamond,
	ebiten.Key4: engine.ToolLine,
	ebiten.Key5: engine.ToolArrow,
	ebiten.Key6: engine.ToolPencil,
	ebiten.Key7: engine.ToolText,
	ebiten.Key8: engine.ToolEraser,
	ebiten.Key9: engine.ToolSelect,
	ebiten.Key0: engine.ToolPan,
}
