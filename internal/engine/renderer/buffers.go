package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/chronoglobe/internal/engine/globe"
	"github.com/Faultbox/chronoglobe/internal/feature"
)

// gpuMesh is an indexed triangle list living in one VAO/VBO/EBO set.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// attrib describes one float vertex attribute.
type attrib struct {
	location uint32
	size     int32
	offset   uintptr
}

func uploadMesh(vertices unsafe.Pointer, vertexBytes int, stride int32, indices []uint32, attribs ...attrib) *gpuMesh {
	m := &gpuMesh{count: int32(len(indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, vertexBytes, vertices, gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	for _, a := range attribs {
		gl.VertexAttribPointerWithOffset(a.location, a.size, gl.FLOAT, false, stride, a.offset)
		gl.EnableVertexAttribArray(a.location)
	}

	// The element buffer binding stays with the VAO.
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

func uploadGlobe(m *globe.Mesh) *gpuMesh {
	return uploadMesh(unsafe.Pointer(&m.Vertices[0]), len(m.Vertices)*globe.VertexStride, globe.VertexStride,
		m.Indices, attrib{location: 0, size: 3})
}

func uploadFeatures(m *feature.Mesh) (*gpuMesh, error) {
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("feature mesh has %d indices but no vertices", len(m.Indices))
	}
	// Drop stale errors so the check below is about this upload.
	for gl.GetError() != gl.NO_ERROR {
	}
	g := uploadMesh(unsafe.Pointer(&m.Vertices[0]), len(m.Vertices)*feature.VertexStride, feature.VertexStride,
		m.Indices,
		attrib{location: 0, size: 3},
		attrib{location: 1, size: 3, offset: 3 * 4})
	if code := gl.GetError(); code != gl.NO_ERROR {
		g.delete()
		return nil, fmt.Errorf("upload feature mesh: gl error 0x%x", code)
	}
	return g, nil
}

func (m *gpuMesh) draw() {
	if m == nil || m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
}

func (m *gpuMesh) delete() {
	if m == nil {
		return
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = gpuMesh{}
}
