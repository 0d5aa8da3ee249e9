package render

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/scrawl/scrawl/internal/document"
)

// ParseColor understands the CSS forms the editor stores: #rgb, #rrggbb,
// #rrggbbaa, rgb(), rgba() and named colours. ok is false for the
// transparent sentinel and for anything unparseable.
func ParseColor(s string) (c color.NRGBA, ok bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == document.Transparent:
		return color.NRGBA{}, false
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s)
	}
	if named, found := colornames.Map[s]; found {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, true
	}
	return color.NRGBA{}, false
}

func parseHex(h string) (color.NRGBA, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func parseFunc(s string) (color.NRGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) < 3 || len(parts) > 4 {
		return color.NRGBA{}, false
	}
	var ch [4]uint8
	ch[3] = 255
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		if i == 3 {
			f *= 255
		}
		ch[i] = uint8(max(0, min(255, f)))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}
