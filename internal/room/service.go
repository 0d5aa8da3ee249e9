// Package room exposes per-room scene snapshots and exports over HTTP.
package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
	"github.com/scrawl/scrawl/internal/hittest"
	"github.com/scrawl/scrawl/internal/render"
	"github.com/scrawl/scrawl/internal/scene"
	"github.com/scrawl/scrawl/internal/viewport"
)

// exportPadding is the margin around exported scenes, in pixels.
const exportPadding = 24

// Invalidator is told when a room's snapshot changed outside its live
// editors.
type Invalidator interface {
	Invalidate(room string)
}

type Service struct {
	backend  scene.Snapshotter
	live     Invalidator
	measurer hittest.Measurer
	logger   *slog.Logger
}

func NewService(backend scene.Snapshotter, live Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:  backend,
		live:     live,
		measurer: hittest.Default(),
		logger:   logger,
	}
}

// Get returns the persisted scene. Missing and unreadable snapshots are
// both an empty scene.
func (s *Service) Get(ctx context.Context, room string) ([]document.Shape, error) {
	if err := scene.ValidRoom(room); err != nil {
		return nil, err
	}
	return scene.Load(ctx, s.backend, room, s.logger), nil
}

// Replace stores shapes as the room's scene after sanitizing them.
func (s *Service) Replace(ctx context.Context, room string, shapes []document.Shape) ([]document.Shape, error) {
	if err := scene.ValidRoom(room); err != nil {
		return nil, err
	}
	shapes = scene.Sanitize(shapes)
	if err := scene.Save(ctx, s.backend, room, shapes, s.logger); err != nil {
		return nil, fmt.Errorf("replace scene: %w", err)
	}
	s.notify(room)
	return shapes, nil
}

func (s *Service) Clear(ctx context.Context, room string) error {
	_, err := s.Replace(ctx, room, []document.Shape{})
	return err
}

func (s *Service) notify(room string) {
	if s.live != nil {
		s.live.Invalidate(room)
	}
}

// SceneBounds returns the world extent of shapes including rotation and
// stroke width.
func SceneBounds(shapes []document.Shape, m hittest.Measurer) geom.Rect {
	var pts []geom.Point
	for i := range shapes {
		sh := &shapes[i]
		if sh.Type == document.ShapeSelect {
			continue
		}
		b := hittest.Bounds(sh, m).Inset(-sh.StrokeWidth / 2)
		if sh.Rotation != 0 && sh.Rotatable() {
			pivot := sh.Pivot()
			b = geom.RotateAbout(sh.Rotation, pivot.X, pivot.Y).TransformRect(b)
		}
		pts = append(pts, geom.Pt(b.X, b.Y), geom.Pt(b.X+b.Width, b.Y+b.Height))
	}
	return geom.BoundsOf(pts)
}

func (s *Service) frame(ctx context.Context, room string, width, height int) (render.Frame, error) {
	shapes, err := s.Get(ctx, room)
	if err != nil {
		return render.Frame{}, err
	}
	bounds := SceneBounds(shapes, s.measurer)
	return render.Frame{
		Shapes:   shapes,
		Viewport: viewport.Fit(bounds, float64(width), float64(height), exportPadding),
	}, nil
}

// RenderPNG draws the room's scene fitted to a width x height image.
func (s *Service) RenderPNG(ctx context.Context, room string, width, height int, w io.Writer) error {
	f, err := s.frame(ctx, room, width, height)
	if err != nil {
		return err
	}
	r := render.NewRaster(width, height)
	render.New(s.measurer).Render(r, f)
	return r.EncodePNG(w)
}

// RenderPDF draws the room's scene onto a single width x height point page.
func (s *Service) RenderPDF(ctx context.Context, room string, width, height int, w io.Writer) error {
	f, err := s.frame(ctx, room, width, height)
	if err != nil {
		return err
	}
	p := render.NewPDF(width, height)
	render.New(s.measurer).Render(p, f)
	return p.Write(w)
}
