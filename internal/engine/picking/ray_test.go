package picking

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/chronoglobe/pkg/math"
)

const globeRadius float32 = 10000

func near(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func nearVec(a, b math.Vec3, eps float32) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}

func testCamera(eye math.Vec3) (view, proj math.Mat4) {
	view = math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1})
	proj = math.Perspective(math32.Pi/2, 1, 0.1, 100)
	return view, proj
}

func TestLatLonToVertex(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"origin meridian", 0, 0, math.Vec3{X: 2}},
		{"east 90", 90, 0, math.Vec3{Z: 2}},
		{"north pole", 0, 90, math.Vec3{Y: 2}},
		{"south pole", 45, -90, math.Vec3{Y: -2}},
		{"antimeridian", 180, 0, math.Vec3{X: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LatLonToVertex(tt.lon, tt.lat, 2)
			if !nearVec(got, tt.want, 1e-5) {
				t.Errorf("LatLonToVertex(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
			if !near(got.Length(), 2, 1e-5) {
				t.Errorf("vertex not on sphere: |v| = %v", got.Length())
			}
		})
	}
}

func TestVertexToLatLonRoundTrip(t *testing.T) {
	points := [][2]float32{{0, 0}, {-73.5, 40.7}, {139.7, 35.6}, {-179, -60}}
	for _, p := range points {
		lon, lat := VertexToLatLon(LatLonToVertex(p[0], p[1], globeRadius))
		if !near(lon, p[0], 1e-3) || !near(lat, p[1], 1e-3) {
			t.Errorf("round trip of %v = (%v, %v)", p, lon, lat)
		}
	}
}

func TestScreenRayCenter(t *testing.T) {
	view, proj := testCamera(math.Vec3{Z: 20})
	dir := ScreenRay(view, proj, math.Vec2{})
	if !nearVec(dir, math.Vec3{Z: -1}, 1e-4) {
		t.Errorf("center ray = %v, want (0, 0, -1)", dir)
	}
}

func TestCameraRayHitsFacingTriangle(t *testing.T) {
	eye := math.Vec3{Z: 20}
	view, proj := testCamera(eye)
	ray := CameraRay(eye, view, proj, math.Vec2{})
	if ray.Origin != eye {
		t.Fatalf("origin = %v, want %v", ray.Origin, eye)
	}

	dist := ray.IntersectTriangle(math.Vec3{X: -1, Y: -1}, math.Vec3{X: 1, Y: -1}, math.Vec3{Y: 1}, 1e6)
	if !Hit(dist) || !near(dist, 20, 1e-3) {
		t.Errorf("distance = %v, want 20", dist)
	}
}

func TestScreenRayEdge(t *testing.T) {
	// 90 degree vertical FOV with aspect 1 puts the NDC edge at 45 degrees.
	view, proj := testCamera(math.Vec3{Z: 20})
	dir := ScreenRay(view, proj, math.Vec2{X: 1})
	want := math.Vec3{X: 1, Z: -1}.Normalize()
	if !nearVec(dir, want, 1e-4) {
		t.Errorf("edge ray = %v, want %v", dir, want)
	}
}

func TestWorldToScreen(t *testing.T) {
	eye := math.Vec3{X: 3, Y: 4, Z: 12}
	view, proj := testCamera(eye)

	ndc, ok := WorldToScreen(math.Vec3{}, view, proj)
	if !ok {
		t.Fatal("target should be in front of the eye")
	}
	if !near(ndc.X, 0, 1e-5) || !near(ndc.Y, 0, 1e-5) {
		t.Errorf("target projected to %v, want center", ndc)
	}

	behind := eye.Scale(2)
	if _, ok := WorldToScreen(behind, view, proj); ok {
		t.Error("point behind the eye should not project")
	}
}

func TestScreenRayInvertsWorldToScreen(t *testing.T) {
	eye := math.Vec3{Y: 5, Z: 15}
	view, proj := testCamera(eye)
	target := math.Vec3{X: 2, Y: -1, Z: 1}

	ndc, ok := WorldToScreen(target, view, proj)
	if !ok {
		t.Fatal("target should be visible")
	}
	dir := ScreenRay(view, proj, ndc)
	want := target.Sub(eye).Normalize()
	if !nearVec(dir, want, 1e-3) {
		t.Errorf("ray through projected point = %v, want %v", dir, want)
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := math.Vec3{X: -1, Y: -1}
	b := math.Vec3{X: 1, Y: -1}
	c := math.Vec3{Y: 1}

	tests := []struct {
		name      string
		ray       Ray
		maxDistSq float32
		want      float32
	}{
		{
			name:      "front hit",
			ray:       Ray{Origin: math.Vec3{Z: 5}, Dir: math.Vec3{Z: -1}},
			maxDistSq: Miss,
			want:      5,
		},
		{
			name:      "back face hit",
			ray:       Ray{Origin: math.Vec3{Z: -3}, Dir: math.Vec3{Z: 1}},
			maxDistSq: Miss,
			want:      3,
		},
		{
			name:      "outside",
			ray:       Ray{Origin: math.Vec3{X: 5, Z: 5}, Dir: math.Vec3{Z: -1}},
			maxDistSq: Miss,
			want:      Miss,
		},
		{
			name:      "parallel",
			ray:       Ray{Origin: math.Vec3{Z: 1}, Dir: math.Vec3{X: 1}},
			maxDistSq: Miss,
			want:      Miss,
		},
		{
			name:      "pointing away",
			ray:       Ray{Origin: math.Vec3{Z: 5}, Dir: math.Vec3{Z: 1}},
			maxDistSq: Miss,
			want:      Miss,
		},
		{
			name:      "inside near clip",
			ray:       Ray{Origin: math.Vec3{Z: 0.05}, Dir: math.Vec3{Z: -1}},
			maxDistSq: Miss,
			want:      Miss,
		},
		{
			name:      "beyond max distance",
			ray:       Ray{Origin: math.Vec3{Z: 5}, Dir: math.Vec3{Z: -1}},
			maxDistSq: 24,
			want:      Miss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ray.IntersectTriangle(a, b, c, tt.maxDistSq)
			if !near(got, tt.want, 1e-4) {
				t.Errorf("IntersectTriangle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectQuadTakesNearest(t *testing.T) {
	tl := math.Vec3{X: -1, Y: 1}
	tr := math.Vec3{X: 1, Y: 1}
	bl := math.Vec3{X: -1, Y: -1}
	br := math.Vec3{X: 1, Y: -1}

	// Lower-left region only belongs to the (tl, br, bl) half.
	ray := Ray{Origin: math.Vec3{X: -0.5, Y: -0.5, Z: 2}, Dir: math.Vec3{Z: -1}}
	if got := ray.IntersectQuad(tl, tr, bl, br, Miss); !near(got, 2, 1e-5) {
		t.Errorf("IntersectQuad() = %v, want 2", got)
	}

	ray = Ray{Origin: math.Vec3{X: 3, Z: 2}, Dir: math.Vec3{Z: -1}}
	if got := ray.IntersectQuad(tl, tr, bl, br, Miss); Hit(got) {
		t.Errorf("IntersectQuad() = %v, want miss", got)
	}
}

func TestHemisphereRadiusSq(t *testing.T) {
	eye := math.Vec3{X: 3, Y: 4}
	if got := HemisphereRadiusSq(eye, 12); got != 25+144 {
		t.Errorf("HemisphereRadiusSq() = %v, want 169", got)
	}
}

func TestHemisphereCullsFarSide(t *testing.T) {
	r := globeRadius + 1
	eye := math.Vec3{Y: 2 * globeRadius}
	maxDistSq := HemisphereRadiusSq(eye, globeRadius)

	quad := func(latMin, latMax float32) (tl, tr, bl, br math.Vec3) {
		return LatLonToVertex(-20, latMax, r),
			LatLonToVertex(20, latMax, r),
			LatLonToVertex(-20, latMin, r),
			LatLonToVertex(20, latMin, r)
	}

	// South pole quad: the ray geometrically crosses it but beyond the horizon.
	tl, tr, bl, br := quad(-85, -75)
	inside := tl.Add(tr).Add(br).Scale(1.0 / 3.0)
	ray := Ray{Origin: eye, Dir: inside.Sub(eye).Normalize()}

	if got := ray.IntersectQuad(tl, tr, bl, br, Miss); !Hit(got) {
		t.Fatalf("unbounded test should hit the south quad, got %v", got)
	}
	if got := ray.IntersectQuad(tl, tr, bl, br, maxDistSq); Hit(got) {
		t.Errorf("south pole quad should be culled, got distance %v", got)
	}

	// The same construction on the near hemisphere stays visible.
	tl, tr, bl, br = quad(75, 85)
	inside = tl.Add(tr).Add(br).Scale(1.0 / 3.0)
	ray = Ray{Origin: eye, Dir: inside.Sub(eye).Normalize()}
	if got := ray.IntersectQuad(tl, tr, bl, br, maxDistSq); !Hit(got) {
		t.Errorf("north pole quad should be visible, got %v", got)
	}
}
