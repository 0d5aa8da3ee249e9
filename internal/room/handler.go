package room

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/scrawl/scrawl/internal/auth"
	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/scene"
)

const (
	maxSceneSize = 8 << 20
	maxExportDim = 8192
)

type Handler struct {
	service      *Service
	auth         *auth.Service // nil when tokens are not required
	exportWidth  int
	exportHeight int
}

func NewHandler(service *Service, authSvc *auth.Service, exportWidth, exportHeight int) *Handler {
	return &Handler{
		service:      service,
		auth:         authSvc,
		exportWidth:  exportWidth,
		exportHeight: exportHeight,
	}
}

// Register mounts the room routes. Mutations require a room token when auth
// is enabled; reads and exports stay public.
func (h *Handler) Register(r *mux.Router) {
	rooms := r.PathPrefix("/rooms/{room}").Subrouter()
	rooms.HandleFunc("/scene", h.GetScene).Methods("GET")
	rooms.HandleFunc("/render.png", h.RenderPNG).Methods("GET")
	rooms.HandleFunc("/export.pdf", h.ExportPDF).Methods("GET")
	rooms.HandleFunc("/token", h.IssueToken).Methods("POST")
	rooms.Handle("/scene", h.protect(h.PutScene)).Methods("PUT")
	rooms.Handle("/scene", h.protect(h.DeleteScene)).Methods("DELETE")
}

func (h *Handler) protect(fn http.HandlerFunc) http.Handler {
	if h.auth == nil {
		return fn
	}
	return h.auth.RoomMiddleware(fn)
}

func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	shapes, err := h.service.Get(r.Context(), mux.Vars(r)["room"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shapes)
}

func (h *Handler) PutScene(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	r.Body = http.MaxBytesReader(w, r.Body, maxSceneSize)

	var shapes []document.Shape
	if err := json.NewDecoder(r.Body).Decode(&shapes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scene body"})
		return
	}

	stored, err := h.service.Replace(r.Context(), room, shapes)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *Handler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), mux.Vars(r)["room"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportSize reads width and height query parameters, falling back to the
// configured export size.
func (h *Handler) exportSize(r *http.Request) (int, int, bool) {
	size := func(key string, def int) (int, bool) {
		v := r.URL.Query().Get(key)
		if v == "" {
			return def, true
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxExportDim {
			return 0, false
		}
		return n, true
	}
	width, okW := size("width", h.exportWidth)
	height, okH := size("height", h.exportHeight)
	return width, height, okW && okH
}

func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	width, height, ok := h.exportSize(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width and height must be between 1 and 8192"})
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderPNG(r.Context(), room, width, height, &buf); err != nil {
		handleServiceError(w, err)
		return
	}
	slog.Debug("rendered png", "room", room, "size", humanize.Bytes(uint64(buf.Len())))
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	width, height, ok := h.exportSize(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width and height must be between 1 and 8192"})
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderPDF(r.Context(), room, width, height, &buf); err != nil {
		handleServiceError(w, err)
		return
	}
	slog.Debug("exported pdf", "room", room, "size", humanize.Bytes(uint64(buf.Len())))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+room+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	if h.auth == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "auth disabled"})
		return
	}
	if err := scene.ValidRoom(room); err != nil {
		handleServiceError(w, err)
		return
	}
	token, err := h.auth.IssueRoomToken(room)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scene.ErrInvalidRoom):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room name"})
	case errors.Is(err, scene.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
