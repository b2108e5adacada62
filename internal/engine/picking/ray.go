// Package picking provides ray casting against the globe and its feature quads.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/chronoglobe/pkg/math"
)

// NearClip is the minimum hit distance. Closer hits are treated as self-intersection.
const NearClip float32 = 0.1

// Miss is returned by the intersection tests when nothing was hit.
const Miss float32 = math32.MaxFloat32

// parallelEpsilon rejects rays lying in the triangle plane.
const parallelEpsilon float32 = 1e-7

// Ray is a half-line from Origin along the normalized direction Dir.
type Ray struct {
	Origin math.Vec3
	Dir    math.Vec3
}

// ScreenRay unprojects an NDC point on the near plane and returns the
// normalized world-space direction from the eye through it.
func ScreenRay(view, proj math.Mat4, ndc math.Vec2) math.Vec3 {
	invProj, _ := proj.Inverse()
	invView, _ := view.Inverse()

	eyeSpace := invProj.MulVec4(math.Vec4{ndc.X, ndc.Y, -1, 1})
	// Direction only: forward along -Z with no translation.
	eyeSpace = math.Vec4{eyeSpace[0], eyeSpace[1], -1, 0}

	return invView.MulVec4(eyeSpace).XYZ().Normalize()
}

// CameraRay is ScreenRay with the eye attached as the origin.
func CameraRay(eye math.Vec3, view, proj math.Mat4, ndc math.Vec2) Ray {
	return Ray{Origin: eye, Dir: ScreenRay(view, proj, ndc)}
}

// WorldToScreen transforms a world point to NDC. inFront is false when the
// point lies behind the eye, in which case ndc is meaningless.
func WorldToScreen(p math.Vec3, view, proj math.Mat4) (ndc math.Vec2, inFront bool) {
	clip := proj.Mul(view).MulVec4(p.Point())
	if clip[3] <= 0 {
		return math.Vec2{}, false
	}
	return math.Vec2{X: clip[0] / clip[3], Y: clip[1] / clip[3]}, true
}

// HemisphereRadiusSq returns |eye|² + radius², the squared hit distance past
// which a surface point is on the far side of the globe.
func HemisphereRadiusSq(eye math.Vec3, radius float32) float32 {
	return eye.LengthSq() + radius*radius
}

// IntersectTriangle runs a two-sided Möller–Trumbore test. Hits closer than
// NearClip or with a squared distance beyond maxDistSq return Miss.
func (r Ray) IntersectTriangle(a, b, c math.Vec3, maxDistSq float32) float32 {
	e1 := b.Sub(a)
	e2 := c.Sub(a)

	h := r.Dir.Cross(e2)
	det := e1.Dot(h)
	if math32.Abs(det) < parallelEpsilon {
		return Miss
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return Miss
	}

	q := s.Cross(e1)
	v := inv * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return Miss
	}

	dist := inv * e2.Dot(q)
	if dist < NearClip || dist*dist > maxDistSq {
		return Miss
	}
	return dist
}

// IntersectQuad tests both halves of the quad (tl, tr, br) and (tl, br, bl)
// and returns the nearer hit.
func (r Ray) IntersectQuad(tl, tr, bl, br math.Vec3, maxDistSq float32) float32 {
	return math32.Min(
		r.IntersectTriangle(tl, tr, br, maxDistSq),
		r.IntersectTriangle(tl, br, bl, maxDistSq),
	)
}

// Hit reports whether a distance returned by the intersection tests is a hit.
func Hit(dist float32) bool {
	return dist < Miss
}
