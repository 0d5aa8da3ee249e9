package scene

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/typeid"
)

// Encode serializes the persisted shapes. Selection rectangles are overlay
// state and are never written.
func Encode(shapes []document.Shape) ([]byte, error) {
	out := make([]document.Shape, 0, len(shapes))
	for _, s := range shapes {
		if s.Type == document.ShapeSelect {
			continue
		}
		out = append(out, s)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot and repairs it: shapes breaking the dimension
// invariants are normalized or dropped and missing or repeated ids are
// replaced. Empty input is an empty scene.
func Decode(data []byte) ([]document.Shape, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []document.Shape{}, nil
	}
	var shapes []document.Shape
	if err := json.Unmarshal(data, &shapes); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return Sanitize(shapes), nil
}

// Sanitize returns the shapes that may be persisted, normalized.
func Sanitize(shapes []document.Shape) []document.Shape {
	out := make([]document.Shape, 0, len(shapes))
	seen := make(map[string]bool, len(shapes))
	for _, s := range shapes {
		if !s.Normalize() {
			continue
		}
		if s.ID == "" || seen[s.ID] {
			s.ID = typeid.NewShapeID()
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}
