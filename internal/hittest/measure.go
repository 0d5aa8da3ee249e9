package hittest

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the advance width of text at a font size, in world units.
type Measurer interface {
	MeasureText(text string, size float64) float64
}

// referenceSize is the size the font face is rasterized at. Unhinted advances
// scale linearly, so other sizes are derived from it.
const referenceSize = 64

// FontMeasurer measures text with the Go Regular face.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

// NewFontMeasurer parses the embedded Go Regular font.
func NewFontMeasurer() (*FontMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    referenceSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return &FontMeasurer{face: face}, nil
}

var (
	defaultOnce     sync.Once
	defaultMeasurer Measurer
)

// Default returns a shared FontMeasurer, falling back to FixedMeasurer when
// the embedded font cannot be loaded.
func Default() Measurer {
	defaultOnce.Do(func() {
		m, err := NewFontMeasurer()
		if err != nil {
			defaultMeasurer = FixedMeasurer(0.6)
			return
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}

func (m *FontMeasurer) MeasureText(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	m.mu.Lock()
	adv := font.MeasureString(m.face, text)
	m.mu.Unlock()
	return float64(adv) / 64 * size / referenceSize
}

// FixedMeasurer gives every rune the same advance, as a fraction of the
// font size.
type FixedMeasurer float64

func (f FixedMeasurer) MeasureText(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * float64(f)
}
