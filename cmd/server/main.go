package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/scrawl/scrawl/internal/auth"
	"github.com/scrawl/scrawl/internal/config"
	"github.com/scrawl/scrawl/internal/discovery"
	"github.com/scrawl/scrawl/internal/live"
	"github.com/scrawl/scrawl/internal/room"
	"github.com/scrawl/scrawl/internal/scene"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := scene.OpenBackend(ctx, scene.Options{
		Driver:      cfg.StoreDriver,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		slog.Error("open scene store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	var authService *auth.Service
	if cfg.AuthEnabled {
		authService = auth.NewService(cfg.JWTSecret)
	}

	hub := live.NewHub(backend, slog.Default())
	roomService := room.NewService(backend, hub, slog.Default())
	roomHandler := room.NewHandler(roomService, authService, cfg.ExportWidth, cfg.ExportHeight)

	r := mux.NewRouter()

	// Global middleware
	r.Use(recoverPanics)
	r.Use(logRequests)
	r.Use(cors(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	roomHandler.Register(r)

	// Preflight for every route; the cors middleware answers it
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// WebSocket endpoint
	ws := http.Handler(hub.Handler(cfg.Origins()))
	if authService != nil {
		ws = authService.RoomMiddleware(ws)
	}
	r.Handle("/ws/rooms/{room}", ws)

	if cfg.MDNSEnabled {
		announcer, err := discovery.Announce(cfg.MDNSInstance, cfg.Port, slog.Default())
		if err != nil {
			slog.Warn("mdns announcement disabled", "error", err)
		} else {
			defer announcer.Close()
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver, "auth", cfg.AuthEnabled)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
