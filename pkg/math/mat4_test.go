package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestIdentityMul(t *testing.T) {
	m := Translate(1, 2, 3)
	got := m.Mul(Identity())
	if got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func TestTranslateMulVec4(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.MulVec4(Vec3{1, 2, 3}.Point()).Divide()
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("MulVec4: got %v, want %v", got, want)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math32.Pi/2, 1, 0.1, 100)

	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// fovy of 90 degrees gives a focal length of 1
	if abs(m[5]-1) > 1e-6 {
		t.Errorf("Perspective [5] = %f, want 1", m[5])
	}

	// Near plane maps to z = -1, far plane to z = +1
	near := m.MulVec4(Vec4{0, 0, -0.1, 1}).Divide()
	far := m.MulVec4(Vec4{0, 0, -100, 1}).Divide()
	if abs(near.Z+1) > 1e-4 || abs(far.Z-1) > 1e-4 {
		t.Errorf("depth range: near %f far %f, want -1 and 1", near.Z, far.Z)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})

	got := m.MulVec4(eye.Point()).Divide()
	if got.Length() > 1e-5 {
		t.Errorf("eye in view space = %v, want origin", got)
	}

	// Target sits straight ahead on -Z
	target := m.MulVec4(Vec3{}.Point()).Divide()
	if abs(target.Z+5) > 1e-5 {
		t.Errorf("target in view space = %v, want z=-5", target)
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translate", Translate(3, -4, 5)},
		{"view", LookAt(Vec3{3, 7, -2}, Vec3{}, Vec3{0, 1, 0})},
		{"projection", Perspective(math32.Pi/3, 16.0/9.0, 0.1, 1000)},
		{"view-projection", Perspective(math32.Pi/2, 1.5, 0.1, 100).Mul(LookAt(Vec3{0, 0, 20}, Vec3{}, Vec3{0, 1, 0}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("expected invertible matrix")
			}
			got := tt.m.Mul(inv)
			id := Identity()
			for i := range got {
				if abs(got[i]-id[i]) > 1e-3 {
					t.Errorf("M * M^-1 element %d = %f, want %f", i, got[i], id[i])
				}
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	inv, ok := zero.Inverse()
	if ok {
		t.Error("expected singular matrix to report ok=false")
	}
	if inv != Identity() {
		t.Errorf("singular inverse = %v, want identity", inv)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
