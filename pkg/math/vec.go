// Package math provides float32 vector and matrix types for globe rendering.
package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector, used for screen and NDC coordinates.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Length returns the magnitude.
func (v Vec2) Length() float32 { return math32.Sqrt(v.X*v.X + v.Y*v.Y) }

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// LengthSq returns the squared magnitude.
func (v Vec3) LengthSq() float32 { return v.Dot(v) }

// Length returns the magnitude.
func (v Vec3) Length() float32 { return math32.Sqrt(v.LengthSq()) }

// Normalize returns a unit vector, or the zero vector if v is zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Array returns v as [3]float32, the layout used by vertex buffers.
func (v Vec3) Array() [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

// Vec4 is a homogeneous 4-component vector.
type Vec4 [4]float32

// Point returns the homogeneous point (v, 1).
func (v Vec3) Point() Vec4 { return Vec4{v.X, v.Y, v.Z, 1} }

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// Divide performs the perspective divide. A zero w leaves xyz untouched.
func (v Vec4) Divide() Vec3 {
	if v[3] == 0 {
		return v.XYZ()
	}
	return v.XYZ().Scale(1 / v[3])
}
