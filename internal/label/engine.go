package label

import (
	"errors"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/engine/camera"
	"github.com/Faultbox/chronoglobe/internal/engine/picking"
	"github.com/Faultbox/chronoglobe/internal/engine/text"
	"github.com/Faultbox/chronoglobe/internal/feature"
	"github.com/Faultbox/chronoglobe/internal/logger"
	"github.com/Faultbox/chronoglobe/pkg/math"
)

// DefaultRayDensity is the number of rays cast across the screen width.
const DefaultRayDensity = 15

// Engine rebuilds labels whenever the camera comes to rest. While the camera
// moves it holds no rays and no labels.
type Engine struct {
	Radius  float32
	Density int

	layouter Layouter
	eye      math.Vec3
	rays     []math.Vec3
	labels   []Label
}

// NewEngine creates a label engine for a globe of the given radius.
func NewEngine(layouter Layouter, radius float32, density int) *Engine {
	if density < 1 {
		density = DefaultRayDensity
	}
	return &Engine{
		Radius:   radius,
		Density:  density,
		layouter: layouter,
	}
}

// Rays returns the current ray directions. A non-empty result means the
// labels are valid for this frame.
func (e *Engine) Rays() []math.Vec3 { return e.rays }

// Labels returns the labels placed at the last regeneration.
func (e *Engine) Labels() []Label { return e.labels }

// Ready reports whether labels may be drawn.
func (e *Engine) Ready() bool { return len(e.rays) > 0 }

// Invalidate forces a regeneration on the next settled frame.
func (e *Engine) Invalidate() {
	e.rays = e.rays[:0]
	e.labels = nil
}

// Update advances the engine by one frame. It clears everything while moving
// and regenerates once after the camera settles. It reports whether the
// labels were rebuilt.
func (e *Engine) Update(moving bool, u camera.Uniform, width, height int, meta *feature.Metadata) (bool, error) {
	if moving {
		if len(e.rays) > 0 || e.labels != nil {
			e.Invalidate()
		}
		return false, nil
	}
	if len(e.rays) > 0 || width <= 0 || height <= 0 {
		return false, nil
	}

	e.eye = u.Eye.XYZ()
	e.rays = GenerateRays(u.View, u.Proj, width, height, e.Density, e.rays[:0])

	if meta == nil {
		e.labels = []Label{}
		return true, nil
	}

	candidates, err := e.candidates(u, width, height, meta, e.Visible(meta))
	if err != nil {
		// The grid stays, so settled frames do not retry until the next
		// movement, resize or dataset change.
		e.labels = []Label{}
		logger.Warn("dropping labels until the view changes", zap.Error(err))
		return true, err
	}
	e.labels = Cull(candidates)

	logger.Debug("labels regenerated",
		zap.Int("rays", len(e.rays)),
		zap.Int("candidates", len(candidates)),
		zap.Int("labels", len(e.labels)))
	return true, nil
}

// GenerateRays casts density rays per row through the centre of each grid
// cell, appending the directions to dst. Cells are square with side
// ceil(width/density), and there are ceil(height/side) rows.
func GenerateRays(view, proj math.Mat4, width, height, density int, dst []math.Vec3) []math.Vec3 {
	w, h := float32(width), float32(height)
	gap := math32.Ceil(w / float32(density))
	rows := int(math32.Ceil(h / gap))

	for row := 0; row < rows; row++ {
		y := (float32(row) + 0.5) * gap
		for col := 0; col < density; col++ {
			x := (float32(col) + 0.5) * gap
			ndc := math.Vec2{X: 2*x/w - 1, Y: 1 - 2*y/h}
			dst = append(dst, picking.ScreenRay(view, proj, ndc))
		}
	}
	return dst
}

// Visible returns indices into meta.Bounds of the quads hit by at least one
// ray in front of the globe's horizon.
func (e *Engine) Visible(meta *feature.Metadata) []int {
	maxDistSq := picking.HemisphereRadiusSq(e.eye, e.Radius)

	var visible []int
	for i, b := range meta.Bounds {
		q := b.Quad
		for _, dir := range e.rays {
			ray := picking.Ray{Origin: e.eye, Dir: dir}
			if picking.Hit(ray.IntersectQuad(q.TopLeft, q.TopRight, q.BottomLeft, q.BottomRight, maxDistSq)) {
				visible = append(visible, i)
				break
			}
		}
	}
	return visible
}

func (e *Engine) candidates(u camera.Uniform, width, height int, meta *feature.Metadata, visible []int) ([]Label, error) {
	w, h := float32(width), float32(height)

	out := make([]Label, 0, len(visible))
	for _, bi := range visible {
		b := meta.Bounds[bi]
		name, ok := meta.Name(b.Feature)
		if !ok {
			continue
		}

		anchor, inFront := picking.WorldToScreen(b.Quad.Centroid, u.View, u.Proj)
		if !inFront || math32.Abs(anchor.X) > 1 || math32.Abs(anchor.Y) > 1 {
			continue
		}
		tl, _ := picking.WorldToScreen(b.Quad.TopLeft, u.View, u.Proj)
		br, _ := picking.WorldToScreen(b.Quad.BottomRight, u.View, u.Proj)
		area := math32.Abs((br.X-tl.X)/2*w) * math32.Abs((br.Y-tl.Y)/2*h)

		px := (anchor.X + 1) / 2 * w
		py := (1 - anchor.Y) / 2 * h

		lay, err := e.layout(name, w-px, h-py)
		if err != nil {
			return nil, err
		}

		left := int(math32.Floor(px))
		right := width
		if lay.LineWidth != 0 {
			right = left + int(math32.Ceil(lay.LineWidth))
		}
		top := int(math32.Floor(py))
		bottom := top + lay.LineCount*int(math32.Ceil(lay.LineHeight))

		var color [3]uint8
		if b.Feature < len(meta.Colors) {
			color = meta.Colors[b.Feature]
		}

		out = append(out, Label{
			Text:    name,
			Feature: b.Feature,
			X:       px,
			Y:       py,
			Color:   color,
			Area:    area,
			Rect:    Rect{Left: left, Top: top, Right: right, Bottom: bottom},
			Layout:  lay,
		})
	}
	return out, nil
}

func (e *Engine) layout(name string, maxW, maxH float32) (text.Layout, error) {
	lay, err := e.layouter.Layout(name, maxW, maxH)
	if errors.Is(err, text.ErrAtlasFull) {
		e.layouter.Compact()
		lay, err = e.layouter.Layout(name, maxW, maxH)
	}
	if err != nil {
		return text.Layout{}, &TextLayoutError{Text: name, Err: err}
	}
	return lay, nil
}
