package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want float32
	}{
		{"axis", Vec3{0, 0, 7}, 1},
		{"diagonal", Vec3{3, 4, 12}, 1},
		{"zero", Vec3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.in.Normalize().Length()
			if abs(l-tt.want) > 1e-5 {
				t.Errorf("Normalize().Length() = %v, want %v", l, tt.want)
			}
		})
	}
}

func TestVec3LengthSq(t *testing.T) {
	v := Vec3{1, 2, 2}
	if got := v.LengthSq(); got != 9 {
		t.Errorf("LengthSq() = %v, want 9", got)
	}
	if got := v.Length(); got != 3 {
		t.Errorf("Length() = %v, want 3", got)
	}
}

func TestVec4Divide(t *testing.T) {
	got := Vec4{2, 4, 6, 2}.Divide()
	want := Vec3{1, 2, 3}
	if got != want {
		t.Errorf("Divide() = %v, want %v", got, want)
	}

	// w == 0 must not produce Inf
	got = Vec4{2, 4, 6, 0}.Divide()
	if got != (Vec3{2, 4, 6}) {
		t.Errorf("Divide() with w=0 = %v, want xyz unchanged", got)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
}
