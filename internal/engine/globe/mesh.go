// Package globe builds the base sphere mesh and prepares the basemap image
// draped over it.
package globe

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Vertex is a sphere vertex. The fragment shader derives texture
// coordinates from the position.
type Vertex struct {
	Position [3]float32
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = 3 * 4

// Mesh holds the sphere geometry ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// BuildMesh builds a UV sphere with a vertex at each pole, stacks-1 rings of
// slices vertices, fans around the poles and quads between rings. Triangles
// wind counter-clockwise seen from outside.
func BuildMesh(slices, stacks int, radius float32) (*Mesh, error) {
	if slices < 3 || stacks < 2 {
		return nil, fmt.Errorf("sphere needs at least 3 slices and 2 stacks, got %d x %d", slices, stacks)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("invalid radius %v", radius)
	}

	rings := stacks - 1
	m := &Mesh{
		Vertices: make([]Vertex, 0, rings*slices+2),
		Indices:  make([]uint32, 0, 6*slices*rings),
	}

	m.Vertices = append(m.Vertices, Vertex{Position: [3]float32{0, radius, 0}})
	for i := 0; i < rings; i++ {
		phi := math32.Pi * float32(i+1) / float32(stacks)
		sinPhi, cosPhi := math32.Sincos(phi)
		for j := 0; j < slices; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(slices)
			sinTheta, cosTheta := math32.Sincos(theta)
			m.Vertices = append(m.Vertices, Vertex{Position: [3]float32{
				sinPhi * cosTheta * radius,
				cosPhi * radius,
				sinPhi * sinTheta * radius,
			}})
		}
	}
	m.Vertices = append(m.Vertices, Vertex{Position: [3]float32{0, -radius, 0}})

	top := uint32(0)
	bottom := uint32(len(m.Vertices) - 1)
	n := uint32(slices)

	for i := uint32(0); i < n; i++ {
		i0 := i + 1
		i1 := (i+1)%n + 1
		m.Indices = append(m.Indices, top, i1, i0)
	}

	for j := uint32(0); j < uint32(rings-1); j++ {
		j0 := j*n + 1
		j1 := (j+1)*n + 1
		for i := uint32(0); i < n; i++ {
			i0 := j0 + i
			i1 := j0 + (i+1)%n
			i2 := j1 + (i+1)%n
			i3 := j1 + i
			m.Indices = append(m.Indices, i3, i0, i1, i1, i2, i3)
		}
	}

	last := uint32(rings-1)*n + 1
	for i := uint32(0); i < n; i++ {
		i0 := last + i
		i1 := last + (i+1)%n
		m.Indices = append(m.Indices, bottom, i0, i1)
	}

	return m, nil
}
