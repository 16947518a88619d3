package hair

import (
	"math"
	"testing"
)

func TestCapsuleClosestPoint(t *testing.T) {
	c := Capsule{PointA: [3]float32{0, 0, 0}, PointB: [3]float32{2, 0, 0}, Radius: 0.5}

	tests := []struct {
		name  string
		point [3]float32
		want  [3]float32
	}{
		{"beside middle", [3]float32{1, 3, 0}, [3]float32{1, 0, 0}},
		{"past end a", [3]float32{-5, 1, 0}, [3]float32{0, 0, 0}},
		{"past end b", [3]float32{7, -2, 0}, [3]float32{2, 0, 0}},
		{"on segment", [3]float32{0.5, 0, 0}, [3]float32{0.5, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClosestPoint(tt.point); got != tt.want {
				t.Errorf("ClosestPoint(%v): got %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestCapsuleClosestPointDegenerate(t *testing.T) {
	c := Capsule{PointA: [3]float32{1, 1, 1}, PointB: [3]float32{1, 1, 1}, Radius: 0.5}
	if got := c.ClosestPoint([3]float32{5, 5, 5}); got != [3]float32{1, 1, 1} {
		t.Errorf("point capsule closest: got %v, want the point itself", got)
	}
}

func TestCapsulePushOut(t *testing.T) {
	c := Capsule{PointA: [3]float32{0, 0, 0}, PointB: [3]float32{0, 2, 0}, Radius: 1}

	// Outside stays put.
	outside := [3]float32{3, 1, 0}
	if got, moved := c.PushOut(outside); moved || got != outside {
		t.Errorf("outside point moved: got %v, moved %v", got, moved)
	}

	// Inside resolves to the surface along the radial direction.
	resolved, moved := c.PushOut([3]float32{0.25, 1, 0})
	if !moved {
		t.Fatal("penetrating point not moved")
	}
	want := [3]float32{1, 1, 0}
	for i := range 3 {
		if math.Abs(float64(resolved[i]-want[i])) > 1e-6 {
			t.Fatalf("resolved: got %v, want %v", resolved, want)
		}
	}

	// Exactly on the core segment still resolves to the surface.
	onCore, moved := c.PushOut([3]float32{0, 1, 0})
	if !moved {
		t.Fatal("core point not moved")
	}
	dx := float64(onCore[0])
	dz := float64(onCore[2])
	dist := math.Sqrt(dx*dx + dz*dz + float64(onCore[1]-1)*float64(onCore[1]-1))
	if math.Abs(dist-1) > 1e-5 {
		t.Errorf("core point resolved to distance %v from axis, want 1", dist)
	}

	// A zero-radius capsule never collides.
	zero := Capsule{}
	if _, moved := zero.PushOut([3]float32{0, 0, 0}); moved {
		t.Error("zero capsule moved a point")
	}
}

func TestCapsuleToGPU(t *testing.T) {
	c := Capsule{PointA: [3]float32{1, 2, 3}, PointB: [3]float32{4, 5, 6}, Radius: 0.75}
	g := c.ToGPU()
	if g.PointA != [4]float32{1, 2, 3, 0.75} {
		t.Errorf("PointA: got %v", g.PointA)
	}
	if g.PointB != [4]float32{4, 5, 6, 0} {
		t.Errorf("PointB: got %v", g.PointB)
	}
	if g.Size() != 32 {
		t.Errorf("size: got %d, want 32", g.Size())
	}
}
