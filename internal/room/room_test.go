package room

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/scrawl/scrawl/internal/auth"
	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/scene"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type invalidations []string

func (i *invalidations) Invalidate(room string) { *i = append(*i, room) }

func newRouter(t *testing.T, authSvc *auth.Service) (*mux.Router, *invalidations) {
	t.Helper()
	inv := &invalidations{}
	h := NewHandler(NewService(scene.NewMemory(), inv, quiet), authSvc, 320, 200)
	r := mux.NewRouter()
	h.Register(r)
	return r, inv
}

func do(r http.Handler, method, url string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleBody(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(document.NewSampleScene())
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSceneLifecycle(t *testing.T) {
	r, inv := newRouter(t, nil)

	rec := do(r, "GET", "/rooms/board/scene", nil, nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty GET = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(r, "PUT", "/rooms/board/scene", sampleBody(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT = %d %s", rec.Code, rec.Body.String())
	}
	if len(*inv) != 1 || (*inv)[0] != "board" {
		t.Errorf("invalidations = %v", *inv)
	}

	rec = do(r, "GET", "/rooms/board/scene", nil, nil)
	var shapes []document.Shape
	if err := json.Unmarshal(rec.Body.Bytes(), &shapes); err != nil {
		t.Fatal(err)
	}
	if len(shapes) != len(document.NewSampleScene()) {
		t.Errorf("GET returned %d shapes", len(shapes))
	}

	rec = do(r, "DELETE", "/rooms/board/scene", nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d", rec.Code)
	}
	rec = do(r, "GET", "/rooms/board/scene", nil, nil)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("after DELETE = %q", rec.Body.String())
	}
}

func TestPutSanitizes(t *testing.T) {
	r, _ := newRouter(t, nil)
	body := []byte(`[{"type":"rect","x":10,"y":10,"width":-5,"height":4,"strokeWidth":-3},{"type":"select","width":5},{"type":"pencil","path":[{"x":1,"y":1}]}]`)
	rec := do(r, "PUT", "/rooms/board/scene", body, nil)
	var shapes []document.Shape
	if err := json.Unmarshal(rec.Body.Bytes(), &shapes); err != nil {
		t.Fatal(err)
	}
	if len(shapes) != 1 {
		t.Fatalf("stored = %+v", shapes)
	}
	if s := shapes[0]; s.X != 5 || s.Width != 5 || s.StrokeWidth != 3 || s.ID == "" {
		t.Errorf("rect = %+v", s)
	}
}

func TestBadRequests(t *testing.T) {
	r, _ := newRouter(t, nil)
	tests := []struct {
		name, method, url string
		body              []byte
		status            int
	}{
		{"bad json", "PUT", "/rooms/board/scene", []byte("{"), http.StatusBadRequest},
		{"bad room", "GET", "/rooms/bad.room/scene", nil, http.StatusBadRequest},
		{"zero width", "GET", "/rooms/board/render.png?width=0", nil, http.StatusBadRequest},
		{"huge height", "GET", "/rooms/board/export.pdf?height=99999", nil, http.StatusBadRequest},
		{"token without auth", "POST", "/rooms/board/token", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(r, tt.method, tt.url, tt.body, nil); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	r, _ := newRouter(t, nil)
	do(r, "PUT", "/rooms/board/scene", sampleBody(t), nil)

	rec := do(r, "GET", "/rooms/board/render.png?width=200&height=100", nil, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("render = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("image size = %v", b)
	}

	rec = do(r, "GET", "/rooms/empty/render.png", nil, nil)
	if img, err := png.Decode(rec.Body); err != nil || img.Bounds().Dx() != 320 {
		t.Errorf("default size render: %v", err)
	}
}

func TestExportPDF(t *testing.T) {
	r, _ := newRouter(t, nil)
	do(r, "PUT", "/rooms/board/scene", sampleBody(t), nil)
	rec := do(r, "GET", "/rooms/board/export.pdf", nil, nil)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("export = %d (%d bytes)", rec.Code, rec.Body.Len())
	}
}

func TestMutationsNeedRoomToken(t *testing.T) {
	r, _ := newRouter(t, auth.NewService("secret"))

	if rec := do(r, "PUT", "/rooms/board/scene", []byte("[]"), nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("PUT without token = %d", rec.Code)
	}
	if rec := do(r, "GET", "/rooms/board/scene", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("GET without token = %d", rec.Code)
	}

	rec := do(r, "POST", "/rooms/board/token", nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("token = %d", rec.Code)
	}
	var tok auth.Token
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
		t.Fatal(err)
	}
	h := http.Header{"Authorization": {"Bearer " + tok.Token}}
	if rec := do(r, "PUT", "/rooms/board/scene", []byte("[]"), h); rec.Code != http.StatusOK {
		t.Errorf("PUT with token = %d", rec.Code)
	}
	if rec := do(r, "DELETE", "/rooms/other/scene", nil, h); rec.Code != http.StatusForbidden {
		t.Errorf("DELETE other room = %d", rec.Code)
	}
}

func TestSceneBounds(t *testing.T) {
	st := document.DefaultStyle()
	st.Width = 0
	rect := document.NewRect(geom.Pt(0, 0), geom.Pt(20, 10), st)
	rect.Rotation = math.Pi / 2
	line := document.NewLine(geom.Pt(100, 50), geom.Pt(200, 50), st)

	b := SceneBounds([]document.Shape{rect, line}, hittest.FixedMeasurer(0.5))
	// rotated rect spans x 5..15, y -5..15
	want := geom.Rect{X: 5, Y: -5, Width: 195, Height: 55}
	if math.Abs(b.X-want.X) > 1e-9 || math.Abs(b.Y-want.Y) > 1e-9 ||
		math.Abs(b.Width-want.Width) > 1e-9 || math.Abs(b.Height-want.Height) > 1e-9 {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
	if got := SceneBounds(nil, nil); got != (geom.Rect{}) {
		t.Errorf("empty bounds = %+v", got)
	}
}
