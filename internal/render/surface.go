// Package render draws a scene onto a drawing surface.
package render

import (
	"encoding/json"

	"github.com/scrawl/scrawl/internal/geom"
)

// Paint describes how a path is filled and stroked. Empty colours skip the
// pass. LineWidth and Dash are in the units of the matrix they are drawn with.
type Paint struct {
	Fill      string
	Stroke    string
	LineWidth float64
	Dash      []float64
}

// Surface is a drawing target. Every call takes the matrix mapping its
// coordinates to device pixels.
type Surface interface {
	Size() (width, height int)
	Clear(background string)
	DrawPath(m geom.Matrix2D, path geom.Path, paint Paint)
	// DrawText draws text with its baseline-left corner at (x, y), filled with paint.Fill.
	DrawText(m geom.Matrix2D, text string, x, y, size float64, paint Paint)
}

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string      `json:"op"`                    // Operation: "clear", "path", "text"
	Transform   []float64   `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        geom.Path   `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string      `json:"fill,omitempty"`        // Fill color
	Stroke      string      `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64     `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64   `json:"dash,omitempty"`        // Line dash pattern
	Text        string      `json:"text,omitempty"`        // Content for "text" ops
	X           float64     `json:"x,omitempty"`           // Text baseline-left x
	Y           float64     `json:"y,omitempty"`           // Text baseline y
	Size        float64     `json:"size,omitempty"`        // Font size
}

// Recorder is a Surface that buffers draw commands for a remote canvas.
type Recorder struct {
	Width    int
	Height   int
	Commands []DrawCommand
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

// Clear drops buffered commands and starts a new frame.
func (r *Recorder) Clear(background string) {
	r.Commands = r.Commands[:0]
	r.Commands = append(r.Commands, DrawCommand{Op: "clear", Fill: background})
}

func (r *Recorder) DrawPath(m geom.Matrix2D, path geom.Path, paint Paint) {
	if len(path) == 0 {
		return
	}
	r.Commands = append(r.Commands, DrawCommand{
		Op:          "path",
		Transform:   m.ToSlice(),
		Path:        path,
		Fill:        paint.Fill,
		Stroke:      paint.Stroke,
		StrokeWidth: paint.LineWidth,
		Dash:        paint.Dash,
	})
}

func (r *Recorder) DrawText(m geom.Matrix2D, text string, x, y, size float64, paint Paint) {
	if text == "" {
		return
	}
	r.Commands = append(r.Commands, DrawCommand{
		Op:        "text",
		Transform: m.ToSlice(),
		Text:      text,
		X:         x,
		Y:         y,
		Size:      size,
		Fill:      paint.Fill,
	})
}

// JSON serializes the buffered frame.
func (r *Recorder) JSON() ([]byte, error) {
	return json.Marshal(r.Commands)
}
