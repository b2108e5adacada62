package math

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix in column-major order, matching OpenGL uniform layout.
// Element (row r, column c) lives at index c*4+r.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Perspective returns a right-handed perspective projection with clip z in [-1, 1].
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	depth := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * depth
	m[11] = -1
	m[14] = 2 * far * near * depth
	return m
}

// LookAt returns a view matrix for an eye looking at target with the given up vector.
func LookAt(eye, target, up Vec3) Mat4 {
	fwd := target.Sub(eye).Normalize()
	side := fwd.Cross(up).Normalize()
	camUp := side.Cross(fwd)

	return Mat4{
		side.X, camUp.X, -fwd.X, 0,
		side.Y, camUp.Y, -fwd.Y, 0,
		side.Z, camUp.Z, -fwd.Z, 0,
		-side.Dot(eye), -camUp.Dot(eye), fwd.Dot(eye), 1,
	}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float32 { return m[c*4+r] }

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.At(r, k) * o.At(k, c)
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		out[r] = m.At(r, 0)*v[0] + m.At(r, 1)*v[1] + m.At(r, 2)*v[2] + m.At(r, 3)*v[3]
	}
	return out
}

// Inverse returns the inverse of m. ok is false when m is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	a := func(r, c int) float32 { return m.At(r, c) }

	s0 := a(0, 0)*a(1, 1) - a(1, 0)*a(0, 1)
	s1 := a(0, 0)*a(1, 2) - a(1, 0)*a(0, 2)
	s2 := a(0, 0)*a(1, 3) - a(1, 0)*a(0, 3)
	s3 := a(0, 1)*a(1, 2) - a(1, 1)*a(0, 2)
	s4 := a(0, 1)*a(1, 3) - a(1, 1)*a(0, 3)
	s5 := a(0, 2)*a(1, 3) - a(1, 2)*a(0, 3)

	c5 := a(2, 2)*a(3, 3) - a(3, 2)*a(2, 3)
	c4 := a(2, 1)*a(3, 3) - a(3, 1)*a(2, 3)
	c3 := a(2, 1)*a(3, 2) - a(3, 1)*a(2, 2)
	c2 := a(2, 0)*a(3, 3) - a(3, 0)*a(2, 3)
	c1 := a(2, 0)*a(3, 2) - a(3, 0)*a(2, 2)
	c0 := a(2, 0)*a(3, 1) - a(3, 0)*a(2, 1)

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity(), false
	}
	k := 1 / det

	b := [4][4]float32{
		{
			(a(1, 1)*c5 - a(1, 2)*c4 + a(1, 3)*c3) * k,
			(-a(0, 1)*c5 + a(0, 2)*c4 - a(0, 3)*c3) * k,
			(a(3, 1)*s5 - a(3, 2)*s4 + a(3, 3)*s3) * k,
			(-a(2, 1)*s5 + a(2, 2)*s4 - a(2, 3)*s3) * k,
		},
		{
			(-a(1, 0)*c5 + a(1, 2)*c2 - a(1, 3)*c1) * k,
			(a(0, 0)*c5 - a(0, 2)*c2 + a(0, 3)*c1) * k,
			(-a(3, 0)*s5 + a(3, 2)*s2 - a(3, 3)*s1) * k,
			(a(2, 0)*s5 - a(2, 2)*s2 + a(2, 3)*s1) * k,
		},
		{
			(a(1, 0)*c4 - a(1, 1)*c2 + a(1, 3)*c0) * k,
			(-a(0, 0)*c4 + a(0, 1)*c2 - a(0, 3)*c0) * k,
			(a(3, 0)*s4 - a(3, 1)*s2 + a(3, 3)*s0) * k,
			(-a(2, 0)*s4 + a(2, 1)*s2 - a(2, 3)*s0) * k,
		},
		{
			(-a(1, 0)*c3 + a(1, 1)*c1 - a(1, 2)*c0) * k,
			(a(0, 0)*c3 - a(0, 1)*c1 + a(0, 2)*c0) * k,
			(-a(3, 0)*s3 + a(3, 1)*s1 - a(3, 2)*s0) * k,
			(a(2, 0)*s3 - a(2, 1)*s1 + a(2, 2)*s0) * k,
		},
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			inv[c*4+r] = b[r][c]
		}
	}
	return inv, true
}

// Ptr returns a pointer to the first element for gl.UniformMatrix4fv.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
