// Package camera provides the orbit camera used to view the globe.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/chronoglobe/pkg/math"
)

// Proximity band, in multiples of the globe radius. Zoom is confined to it.
const (
	ProximityMin float32 = 1.1
	ProximityMax float32 = 1.666667
)

const (
	// InitialDistanceMult places the camera 1.5 radii from the centre at startup.
	InitialDistanceMult float32 = 1.5
	// NearPlane is the perspective near clip distance.
	NearPlane float32 = 0.1

	scrollScale float32 = 0.01
	dragScale   float32 = 0.0015
	pitchMargin float32 = 1e-3
)

// GlobeCamera orbits the origin at a distance controlled by scroll and an
// orientation controlled by drag.
type GlobeCamera struct {
	Radius   float32
	Distance float32
	Pitch    float32 // radians, clamped just inside ±π/2
	Yaw      float32 // radians

	Eye    math.Vec3
	Target math.Vec3
	Up     math.Vec3

	FovY float32
	Far  float32

	dragging  bool
	scrolling bool
}

// Uniform is the per-frame camera data handed to the renderer and label engine.
type Uniform struct {
	Eye  math.Vec4
	View math.Mat4
	Proj math.Mat4
}

// ViewProj returns Proj * View.
func (u Uniform) ViewProj() math.Mat4 {
	return u.Proj.Mul(u.View)
}

// New creates a camera for a globe of the given radius.
func New(radius float32) *GlobeCamera {
	dist := radius * InitialDistanceMult
	c := &GlobeCamera{
		Radius:   radius,
		Distance: dist,
		Up:       math.Vec3{Y: 1},
		FovY:     math32.Pi / 2,
		Far:      dist * 2,
	}
	c.Update()
	return c
}

// Proximity maps the eye distance onto [0, 1] across the allowed band.
// Values outside [0, 1] mean the camera is outside the band.
func (c *GlobeCamera) Proximity() float32 {
	return (c.Distance/c.Radius - ProximityMin) / (ProximityMax - ProximityMin)
}

// Dragging reports whether the left button is held.
func (c *GlobeCamera) Dragging() bool { return c.dragging }

// Scrolling reports whether a scroll gesture is in progress.
func (c *GlobeCamera) Scrolling() bool { return c.scrolling }

// MovementInProgress is true while dragging or scrolling.
func (c *GlobeCamera) MovementInProgress() bool {
	return c.dragging || c.scrolling
}

// PressLeft starts a drag. It returns whether the state changed.
func (c *GlobeCamera) PressLeft() bool {
	if c.dragging {
		return false
	}
	c.dragging = true
	return true
}

// ReleaseLeft ends a drag. It returns whether the state changed.
func (c *GlobeCamera) ReleaseLeft() bool {
	if !c.dragging {
		return false
	}
	c.dragging = false
	return true
}

// Scroll moves the camera by delta, positive away from the globe. The step
// grows exponentially with proximity, and moves that would leave the band
// are ignored. It returns whether the distance changed.
func (c *GlobeCamera) Scroll(delta float32) bool {
	c.scrolling = true

	p := c.Proximity()
	if !((delta < 0 && p > 0) || (delta > 0 && p < 1)) {
		return false
	}
	c.Distance += delta * math32.Exp(p) * c.Radius * scrollScale
	return true
}

// StopScroll ends a scroll gesture, typically after a quiet period.
func (c *GlobeCamera) StopScroll() bool {
	if !c.scrolling {
		return false
	}
	c.scrolling = false
	return true
}

// Drag rotates the camera by a mouse delta in pixels. Rotation slows down
// near the surface. It returns false when no drag is in progress.
func (c *GlobeCamera) Drag(dx, dy float32) bool {
	if !c.dragging {
		return false
	}
	scale := math32.Abs(math32.Log(c.Proximity()+ProximityMin)) * dragScale

	c.Pitch -= dy * scale
	limit := math32.Pi/2 - pitchMargin
	c.Pitch = math32.Max(-limit, math32.Min(limit, c.Pitch))

	c.Yaw -= dx * scale
	return true
}

// Update recomputes Eye from the spherical coordinates.
func (c *GlobeCamera) Update() {
	sinPitch, cosPitch := math32.Sincos(c.Pitch)
	sinYaw, cosYaw := math32.Sincos(c.Yaw)

	c.Eye = math.Vec3{
		X: c.Distance * sinYaw * cosPitch,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosYaw * cosPitch,
	}
}

// Uniform builds view and projection matrices for a viewport.
func (c *GlobeCamera) Uniform(width, height int) Uniform {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return Uniform{
		Eye:  c.Eye.Point(),
		View: math.LookAt(c.Eye, c.Target, c.Up),
		Proj: math.Perspective(c.FovY, aspect, NearPlane, c.Far),
	}
}
