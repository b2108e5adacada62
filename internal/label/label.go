// Package label places feature names on the globe. It finds which feature
// bounds are visible through a grid of screen rays, anchors a label at each
// visible centroid, and drops labels that overlap a larger feature's label.
package label

import (
	"fmt"

	"github.com/Faultbox/chronoglobe/internal/engine/text"
)

// Layouter measures label text. *text.Layouter implements it.
type Layouter interface {
	Layout(s string, maxWidth, maxHeight float32) (text.Layout, error)
	Compact()
}

// Rect is a pixel rectangle with inclusive edges, Y down.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Overlaps reports whether two rectangles share any pixel edge or area.
func (a Rect) Overlaps(b Rect) bool {
	return !(a.Right < b.Left || a.Left > b.Right || a.Bottom < b.Top || a.Top > b.Bottom)
}

// Label is a placed feature name.
type Label struct {
	Text    string
	Feature int     // index into feature.Metadata.Entries
	X, Y    float32 // anchor in pixels, Y down
	Color   [3]uint8
	Area    float32 // projected feature bounds in square pixels
	Rect    Rect
	Layout  text.Layout
}

// TextLayoutError is returned when a label cannot be measured, even after
// compacting the glyph cache.
type TextLayoutError struct {
	Text string
	Err  error
}

func (e *TextLayoutError) Error() string {
	return fmt.Sprintf("layout %q: %v", e.Text, e.Err)
}

func (e *TextLayoutError) Unwrap() error { return e.Err }
