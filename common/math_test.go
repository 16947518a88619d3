package common

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func approxEqual3(a, b [3]float32, tol float32) bool {
	for i := range 3 {
		if float32(math.Abs(float64(a[i]-b[i]))) > tol {
			return false
		}
	}
	return true
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	Identity(m)
	p := TransformPoint(m, [3]float32{1, 2, 3})
	if !approxEqual3(p, [3]float32{1, 2, 3}, epsilon) {
		t.Errorf("identity transform moved point: got %v", p)
	}
}

func TestBuildModelMatrixTranslation(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 1, 2, 3, 0, 0, 0, 1, 1, 1)
	p := TransformPoint(m, [3]float32{0, 0, 0})
	if !approxEqual3(p, [3]float32{1, 2, 3}, epsilon) {
		t.Errorf("translation: got %v, want [1 2 3]", p)
	}
}

func TestMul4WithInverse(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 3, -1, 2, 0.5, 0.25, 0.75, 2, 2, 2)

	inv := make([]float32, 16)
	if !Invert4(inv, m) {
		t.Fatal("matrix reported as singular")
	}

	out := make([]float32, 16)
	Mul4(out, m, inv)

	identity := make([]float32, 16)
	Identity(identity)
	for i := range 16 {
		if float32(math.Abs(float64(out[i]-identity[i]))) > 1e-4 {
			t.Errorf("m * inv(m) element %d: got %v, want %v", i, out[i], identity[i])
		}
	}
}

func TestVectorOps(t *testing.T) {
	a := [3]float32{1, 2, 3}
	b := [3]float32{4, -5, 6}

	if got := Add3(a, b); got != [3]float32{5, -3, 9} {
		t.Errorf("Add3: got %v", got)
	}
	if got := Sub3(a, b); got != [3]float32{-3, 7, -3} {
		t.Errorf("Sub3: got %v", got)
	}
	if got := Dot3(a, b); got != 12 {
		t.Errorf("Dot3: got %v, want 12", got)
	}
	if got := Cross3([3]float32{1, 0, 0}, [3]float32{0, 1, 0}); got != [3]float32{0, 0, 1} {
		t.Errorf("Cross3: got %v, want z axis", got)
	}
}

func TestNormalize3(t *testing.T) {
	n := Normalize3([3]float32{3, 0, 4})
	if !approxEqual3(n, [3]float32{0.6, 0, 0.8}, epsilon) {
		t.Errorf("Normalize3: got %v", n)
	}
	if got := Normalize3([3]float32{}); got != [3]float32{} {
		t.Errorf("Normalize3 of zero vector: got %v, want zero", got)
	}
}

func TestQuatIdentityRotation(t *testing.T) {
	v := [3]float32{1, 2, 3}
	if got := QuatRotate(QuatIdentity(), v); !approxEqual3(got, v, epsilon) {
		t.Errorf("identity rotation moved vector: got %v", got)
	}
}

func TestQuatFromTo(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]float32
	}{
		{"x to y", [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{"x to z", [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{"diagonal", [3]float32{1, 1, 0}, [3]float32{0, 1, 1}},
		{"antiparallel", [3]float32{0, 1, 0}, [3]float32{0, -1, 0}},
		{"parallel", [3]float32{0, 0, 1}, [3]float32{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromTo(tt.a, tt.b)
			if l := QuatLength(q); float32(math.Abs(float64(l-1))) > epsilon {
				t.Errorf("quaternion length %v, want 1", l)
			}
			got := QuatRotate(q, Normalize3(tt.a))
			want := Normalize3(tt.b)
			if !approxEqual3(got, want, 1e-4) {
				t.Errorf("rotated %v to %v, want %v", tt.a, got, want)
			}
		})
	}
}

func TestQuatMulComposition(t *testing.T) {
	// Two quarter turns about z compose to a half turn.
	quarter := QuatFromTo([3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	half := QuatMul(quarter, quarter)
	got := QuatRotate(half, [3]float32{1, 0, 0})
	if !approxEqual3(got, [3]float32{-1, 0, 0}, 1e-4) {
		t.Errorf("composed rotation: got %v, want [-1 0 0]", got)
	}
}

func TestQuatNormalizeDegenerate(t *testing.T) {
	if got := QuatNormalize([4]float32{}); got != QuatIdentity() {
		t.Errorf("zero quaternion normalized to %v, want identity", got)
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2, 3}
	b := SliceToBytes(data)
	if len(b) != 12 {
		t.Fatalf("byte length %d, want 12", len(b))
	}
	if got := math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24); got != 1 {
		t.Errorf("first element: got %v, want 1", got)
	}
}
