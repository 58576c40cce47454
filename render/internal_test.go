package render

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestMarchingCubesTable(t *testing.T) {
	max := 0
	for mask, tri := range mcTriangleTable {
		if len(tri)%3 != 0 {
			t.Fatalf("mask %d: triangle list length %d not a multiple of 3", mask, len(tri))
		}
		if len(tri) > max {
			max = len(tri)
		}
		for _, edge := range tri {
			if edge < 0 || edge > 11 {
				t.Fatalf("mask %d: edge index %d out of range", mask, edge)
			}
			// Every listed edge must straddle the surface for its
			// mask: one endpoint inside, one outside.
			a, b := mcPairTable[edge][0], mcPairTable[edge][1]
			if mask>>a&1 == mask>>b&1 {
				t.Fatalf("mask %d lists edge %d whose corners %d,%d have equal classification", mask, edge, a, b)
			}
		}
	}
	if got := max / 3; got != marchingCubesMaxTriangles {
		t.Errorf("mismatch marching cubes max triangles. got %d. want %d", got, marchingCubesMaxTriangles)
	}
	if len(mcTriangleTable[0]) != 0 || len(mcTriangleTable[255]) != 0 {
		t.Error("fully outside/inside cells must yield no triangles")
	}
}

func TestMcIndex(t *testing.T) {
	var v [8]float64
	if got := mcIndex(v, 0); got != 0 {
		// Exact zero classifies as outside.
		t.Errorf("all-zero corners mask = %d, want 0", got)
	}
	for i := range v {
		v[i] = -1
	}
	if got := mcIndex(v, 0); got != 255 {
		t.Errorf("all-negative corners mask = %d, want 255", got)
	}
	v = [8]float64{-1, 1, 1, 1, 1, 1, 1, -1}
	if got := mcIndex(v, 0); got != 1|1<<7 {
		t.Errorf("mask = %08b, want %08b", got, 1|1<<7)
	}
}

func TestMcInterpolate(t *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{X: 3}
	// Equal magnitudes put the crossing at the midpoint.
	got := mcInterpolate(a, b, -1, 1)
	if got.X != 2 || got.Y != 0 || got.Z != 0 {
		t.Errorf("symmetric crossing = %v, want {2 0 0}", got)
	}
	// Crossing position is linear in the field values.
	got = mcInterpolate(a, b, -1, 3)
	if math.Abs(got.X-1.5) > 1e-15 {
		t.Errorf("asymmetric crossing X = %g, want 1.5", got.X)
	}
	// Both endpoints exactly on the surface: documented midpoint fallback.
	got = mcInterpolate(a, b, 0, 0)
	if got.X != 2 {
		t.Errorf("degenerate crossing = %v, want midpoint", got)
	}
}

func TestMcInterpolatePanicsOnSameSign(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for same-sign edge endpoints")
		}
	}()
	mcInterpolate(r3.Vec{}, r3.Vec{X: 1}, 1, 2)
}

type flatField struct{}

func (flatField) Evaluate(r3.Vec) float64 { return 1 }
func (flatField) Bounds() r3.Box          { return r3.Box{} }

func TestGradientNormalDegenerate(t *testing.T) {
	n := gradientNormal(flatField{}, r3.Vec{}, 1e-4)
	if n != (r3.Vec{Z: 1}) {
		t.Errorf("zero-gradient fallback normal = %v, want +Z", n)
	}
}

func TestGridValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		g    Grid
	}{
		{name: "too few steps", g: Grid{Steps: 1, Min: -1, Max: 1}},
		{name: "inverted bounds", g: Grid{Steps: 10, Min: 1, Max: -1}},
		{name: "empty bounds", g: Grid{Steps: 10}},
		{name: "NaN bounds", g: Grid{Steps: 10, Min: math.NaN(), Max: 1}},
		{name: "negative epsilon", g: Grid{Steps: 10, Min: -1, Max: 1, NormalEpsilon: -1e-4}},
		{name: "epsilon exceeds cell", g: Grid{Steps: 10, Min: -1, Max: 1, NormalEpsilon: 0.5}},
		{name: "default epsilon exceeds tiny cell", g: Grid{Steps: 100, Min: 0, Max: 0.01}},
	} {
		if err := tc.g.validate(); err == nil {
			t.Errorf("%s: expected configuration error", tc.name)
		}
	}
	ok := Grid{Steps: 10, Min: -1, Max: 1}
	if err := ok.validate(); err != nil {
		t.Errorf("valid grid rejected: %v", err)
	}
}

func TestGridPosMapsBoundsExactly(t *testing.T) {
	g := Grid{Steps: 100, Min: -4, Max: 4}
	if p := g.pos(0, 0, 0); p != (r3.Vec{X: -4, Y: -4, Z: -4}) {
		t.Errorf("pos(0,0,0) = %v", p)
	}
	if p := g.pos(100, 100, 100); p != (r3.Vec{X: 4, Y: 4, Z: 4}) {
		t.Errorf("pos(Steps...) = %v", p)
	}
	for i := 0; i <= g.Steps; i++ {
		if p := g.pos(i, 0, g.Steps); !g.contains(p) {
			t.Fatalf("lattice point %d maps outside domain: %v", i, p)
		}
	}
}
