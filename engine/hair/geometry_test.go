package hair

import (
	"errors"
	"math"
	"testing"
)

func TestValidateOffsets(t *testing.T) {
	tests := []struct {
		name        string
		offsets     []uint32
		vertexCount int
		wantStride  int
		wantErr     bool
	}{
		{"empty", nil, 0, 0, false},
		{"empty with vertices", nil, 8, 0, true},
		{"single strand", []uint32{0}, 4, 4, false},
		{"uniform strands", []uint32{0, 4, 8}, 12, 4, false},
		{"nonzero first", []uint32{2, 6}, 8, 0, true},
		{"not divisible", []uint32{0, 4}, 9, 0, true},
		{"non-uniform", []uint32{0, 3}, 8, 0, true},
		{"decreasing", []uint32{0, 8, 4}, 12, 0, true},
		{"too short strands", []uint32{0, 1, 2, 3}, 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stride, err := ValidateOffsets(tt.offsets, tt.vertexCount)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidOffsets) {
					t.Errorf("error %v does not wrap ErrInvalidOffsets", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stride != tt.wantStride {
				t.Errorf("stride: got %d, want %d", stride, tt.wantStride)
			}
		})
	}
}

func TestNewGeometrySeedsVerletPair(t *testing.T) {
	initial := [][4]float32{{1, 2, 3, 1}, {4, 5, 6, 1}}
	g := NewGeometry(initial)

	if g.VertexCount() != 2 {
		t.Fatalf("vertex count: got %d, want 2", g.VertexCount())
	}
	for i := range initial {
		if g.Current[i] != initial[i] || g.Previous[i] != initial[i] {
			t.Errorf("vertex %d not seeded at rest: current %v, previous %v", i, g.Current[i], g.Previous[i])
		}
	}

	// The Verlet pair must be independent storage, not aliases of the rest pose.
	g.Current[0][1] = 99
	if initial[0][1] == 99 || g.Previous[0][1] == 99 {
		t.Error("current buffer aliases rest pose or previous buffer")
	}
}

func TestBuildStrandGrid(t *testing.T) {
	geom, restLengths, refVectors, offsets := BuildStrandGrid(3, 2, 5, 0.1, 0.05)

	wantStrands := 6
	wantVertices := 30
	if len(offsets) != wantStrands {
		t.Fatalf("strand count: got %d, want %d", len(offsets), wantStrands)
	}
	if geom.VertexCount() != wantVertices {
		t.Fatalf("vertex count: got %d, want %d", geom.VertexCount(), wantVertices)
	}
	if len(restLengths) != wantVertices || len(refVectors) != wantVertices {
		t.Fatalf("rest data lengths: %d/%d, want %d", len(restLengths), len(refVectors), wantVertices)
	}

	stride, err := ValidateOffsets(offsets, wantVertices)
	if err != nil {
		t.Fatalf("generated offsets invalid: %v", err)
	}
	if stride != 5 {
		t.Errorf("vertices per strand: got %d, want 5", stride)
	}

	// Each strand hangs straight down with edges at the requested rest length.
	for s := range wantStrands {
		base := int(offsets[s])
		for v := range 4 {
			a := geom.Initial[base+v]
			b := geom.Initial[base+v+1]
			dx := float64(b[0] - a[0])
			dy := float64(b[1] - a[1])
			dz := float64(b[2] - a[2])
			length := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if math.Abs(length-0.05) > 1e-6 {
				t.Errorf("strand %d edge %d length: got %v, want 0.05", s, v, length)
			}
			if dy >= 0 {
				t.Errorf("strand %d edge %d does not point down: dy %v", s, v, dy)
			}
		}
	}

	for i, rv := range refVectors {
		if rv != [4]float32{0, -1, 0, 0} {
			t.Errorf("ref vector %d: got %v, want -Y", i, rv)
		}
	}
}
