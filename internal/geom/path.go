package geom

import "encoding/json"

// PathOp is a path command opcode.
type PathOp string

const (
	OpMove  PathOp = "M"
	OpLine  PathOp = "L"
	OpCubic PathOp = "C"
	OpClose PathOp = "Z"
)

// PathCommand is a single path instruction: ["M", x, y], ["L", x, y],
// ["C", cx1, cy1, cx2, cy2, x, y], or ["Z"].
type PathCommand struct {
	Op  PathOp
	Pts []float64
}

// MarshalJSON encodes the command in the flat array form consumed by canvas hosts.
func (c PathCommand) MarshalJSON() ([]byte, error) {
	out := make([]interface{}, 0, len(c.Pts)+1)
	out = append(out, string(c.Op))
	for _, v := range c.Pts {
		out = append(out, v)
	}
	return json.Marshal(out)
}

// Path is an ordered list of path commands.
type Path []PathCommand

// MoveTo appends an M command.
func (p Path) MoveTo(x, y float64) Path {
	return append(p, PathCommand{Op: OpMove, Pts: []float64{x, y}})
}

// LineTo appends an L command.
func (p Path) LineTo(x, y float64) Path {
	return append(p, PathCommand{Op: OpLine, Pts: []float64{x, y}})
}

// CubicTo appends a C command.
func (p Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) Path {
	return append(p, PathCommand{Op: OpCubic, Pts: []float64{cx1, cy1, cx2, cy2, x, y}})
}

// Close appends a Z command.
func (p Path) Close() Path {
	return append(p, PathCommand{Op: OpClose})
}

// RectPath generates path commands for a rectangle.
func RectPath(x, y, w, h float64) Path {
	return Path{}.
		MoveTo(x, y).
		LineTo(x+w, y).
		LineTo(x+w, y+h).
		LineTo(x, y+h).
		Close()
}

// EllipsePath generates path commands for an ellipse using bezier curves.
func EllipsePath(cx, cy, rx, ry float64) Path {
	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	const k = 0.5522847498
	kx, ky := rx*k, ry*k

	// Four bezier curves to approximate an ellipse
	return Path{}.
		MoveTo(cx+rx, cy).
		CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry).
		CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy).
		CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry).
		CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy).
		Close()
}

// Polygon generates a closed path through the points.
func Polygon(points ...Point) Path {
	p := Polyline(points...)
	if len(p) == 0 {
		return p
	}
	return p.Close()
}

// Polyline generates an open path through the points.
func Polyline(points ...Point) Path {
	if len(points) == 0 {
		return nil
	}
	p := make(Path, 0, len(points)+1)
	p = p.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p = p.LineTo(pt.X, pt.Y)
	}
	return p
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m Matrix2D) Path {
	if m.IsIdentity() {
		return p
	}
	out := make(Path, len(p))
	for i, cmd := range p {
		pts := make([]float64, len(cmd.Pts))
		for j := 0; j+1 < len(cmd.Pts); j += 2 {
			pts[j], pts[j+1] = m.TransformPoint(cmd.Pts[j], cmd.Pts[j+1])
		}
		out[i] = PathCommand{Op: cmd.Op, Pts: pts}
	}
	return out
}
