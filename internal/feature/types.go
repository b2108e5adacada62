// Package feature turns GeoJSON boundary datasets into globe meshes and the
// metadata the label engine needs.
package feature

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb/geojson"

	"github.com/Faultbox/chronoglobe/pkg/math"
)

// NameKey is the property that identifies a feature.
const NameKey = "NAME"

// Vertex is one packed feature vertex: position then color, 6 float32s.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// VertexStride is the byte size of a Vertex in the vertex buffer.
const VertexStride = 6 * 4

// Mesh is the combined feature geometry of one dataset.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// BoundingQuad is the planar lon/lat box of one polygon lifted onto the sphere,
// plus its area-weighted centroid.
type BoundingQuad struct {
	Centroid    math.Vec3
	TopLeft     math.Vec3
	TopRight    math.Vec3
	BottomLeft  math.Vec3
	BottomRight math.Vec3

	// Planar is the source rectangle with X = lon and Y = lat in degrees.
	Planar r2.Rect
}

// Bound ties a bounding quad to the feature it came from.
// A feature can own zero or many bounds.
type Bound struct {
	Quad    BoundingQuad
	Feature int
}

// Metadata holds per-feature arrays indexed by feature index.
type Metadata struct {
	Entries []geojson.Properties
	Colors  [][3]uint8
	Bounds  []Bound
}

// Len returns the number of accepted features.
func (m *Metadata) Len() int {
	return len(m.Entries)
}

// Name returns the label text of a feature.
func (m *Metadata) Name(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.Entries) {
		return "", false
	}
	return Name(m.Entries[idx])
}

// Name extracts the NAME property. Missing and null values are rejected.
// Non-string values are formatted with fmt.Sprint.
func Name(props geojson.Properties) (string, bool) {
	if props == nil {
		return "", false
	}
	v, ok := props[NameKey]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// BuildOptions controls tessellation.
type BuildOptions struct {
	// SubdivisionDeg is the longest planar edge allowed in an output triangle.
	// Zero or less disables subdivision.
	SubdivisionDeg float32
	// Radius is the base globe radius.
	Radius float32
	// Lift raises feature geometry above the globe surface.
	Lift float32
	// MaxTriangles caps the output of a single polygon. Zero means DefaultMaxTriangles.
	MaxTriangles int
}

// DefaultLift is the height features sit above the base globe.
const DefaultLift float32 = 1

// DefaultMaxTriangles bounds subdivision of a single polygon.
const DefaultMaxTriangles = 1_000_000

// SubdivisionForGlobe returns the edge threshold matching a globe mesh of the
// given resolution, min(360/slices, 360/stacks) degrees.
func SubdivisionForGlobe(slices, stacks int) float32 {
	n := slices
	if stacks > n {
		n = stacks
	}
	if n <= 0 {
		return 0
	}
	return 360 / float32(n)
}
