package render_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/soypat/metaball"
	"github.com/soypat/metaball/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// constField is everywhere outside the surface.
type constField struct{}

func (constField) Evaluate(r3.Vec) float64 { return 1 }
func (constField) Bounds() r3.Box          { return r3.Box{} }

func singleBall(t testing.TB, radius float64) metaball.Balls {
	f, err := metaball.New([]metaball.Ball{{Radius: radius}})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestSphereScenario(t *testing.T) {
	const radius = 1.0
	g := render.Grid{Steps: 100, Min: -4, Max: 4}
	cell := (g.Max - g.Min) / float64(g.Steps)
	f := singleBall(t, radius)
	mesh, err := render.Rebuild(f, g)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Triangles() == 0 {
		t.Fatal("sphere produced no triangles")
	}
	if len(mesh.Vertices) != len(mesh.Normals) || len(mesh.Vertices) != len(mesh.Indices) {
		t.Fatalf("buffer lengths disagree: %d vertices, %d normals, %d indices",
			len(mesh.Vertices), len(mesh.Normals), len(mesh.Indices))
	}
	for i, idx := range mesh.Indices {
		if idx != uint32(i) {
			t.Fatalf("index %d = %d, want identity sequence", i, idx)
		}
	}
	distTol := cell * math.Sqrt(3)
	for i, v := range mesh.Vertices {
		// Vertices lie on the sphere within a cell's worth of error.
		if d := r3.Norm(v); math.Abs(d-radius) > distTol {
			t.Fatalf("vertex %d at distance %g from origin, want %g±%g", i, d, radius, distTol)
		}
		// Interpolated points sit near the zero level set.
		if fv := math.Abs(f.Evaluate(v)); fv > 0.05 {
			t.Fatalf("vertex %d field magnitude %g, want near zero", i, fv)
		}
		n := mesh.Normals[i]
		if math.Abs(r3.Norm(n)-1) > 1e-9 {
			t.Fatalf("normal %d has length %g, want 1", i, r3.Norm(n))
		}
		// Normals point radially outward on a sphere.
		if dot := r3.Dot(n, r3.Unit(v)); dot < 0.99 {
			t.Fatalf("normal %d deviates from radial direction, dot=%g", i, dot)
		}
	}
}

func TestTriangleWindingOutward(t *testing.T) {
	f := singleBall(t, 1)
	mesh, err := render.Rebuild(f, render.Grid{Steps: 40, Min: -2, Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Triangles() == 0 {
		t.Fatal("sphere produced no triangles")
	}
	for i := 0; i < mesh.Triangles(); i++ {
		tri := mesh.Triangle3(i)
		if tri.Degenerate(1e-12) {
			continue
		}
		// The winding normal must agree with the outward gradient
		// normal stored for the triangle's vertices.
		if dot := r3.Dot(tri.Normal(), mesh.Normals[mesh.Indices[3*i]]); dot <= 0 {
			t.Fatalf("triangle %d wound against its gradient normal, dot=%g", i, dot)
		}
		// On a sphere the winding normal is also radially outward at
		// the centroid.
		centroid := r3.Scale(1./3., r3.Add(tri.V[0], r3.Add(tri.V[1], tri.V[2])))
		if dot := r3.Dot(tri.Normal(), r3.Unit(centroid)); dot <= 0 {
			t.Fatalf("triangle %d wound inward, dot with radial=%g", i, dot)
		}
	}
}

func TestEmptyFieldYieldsEmptyMesh(t *testing.T) {
	mesh, err := render.Rebuild(constField{}, render.Grid{Steps: 16, Min: -1, Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 0 || len(mesh.Normals) != 0 || len(mesh.Indices) != 0 {
		t.Errorf("positive field produced non-empty mesh: %d vertices", len(mesh.Vertices))
	}
}

func TestTwoSeparatedBalls(t *testing.T) {
	centers := [2]r3.Vec{{X: -2}, {X: 2}}
	f, err := metaball.New([]metaball.Ball{
		{Center: centers[0], Radius: 0.5},
		{Center: centers[1], Radius: 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := render.Rebuild(f, render.Grid{Steps: 80, Min: -4, Max: 4})
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Triangles() == 0 {
		t.Fatal("no triangles produced")
	}
	nearest := func(v r3.Vec) int {
		if r3.Norm(r3.Sub(v, centers[0])) < r3.Norm(r3.Sub(v, centers[1])) {
			return 0
		}
		return 1
	}
	counts := [2]int{}
	for i := 0; i < mesh.Triangles(); i++ {
		tri := mesh.Triangle3(i)
		home := nearest(tri.V[0])
		for _, v := range tri.V {
			if nearest(v) != home {
				t.Fatalf("triangle %d connects both ball surfaces: %+v", i, tri)
			}
			if d := r3.Norm(r3.Sub(v, centers[home])); d > 1 {
				t.Fatalf("triangle %d vertex %v far from ball %d surface", i, v, home)
			}
		}
		counts[home]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		t.Errorf("expected two mesh components, got triangle counts %v", counts)
	}
}

func TestRebuildIdempotent(t *testing.T) {
	f := singleBall(t, 0.8)
	g := render.Grid{Steps: 32, Min: -2, Max: 2}
	first, err := render.Rebuild(f, g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := render.Rebuild(f, g)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two rebuilds of an unchanged field differ")
	}
}

func TestConcurrentSweepMatchesSerial(t *testing.T) {
	f, err := metaball.New([]metaball.Ball{
		{Center: r3.Vec{X: 0.4, Y: -0.2}, Radius: 0.5},
		{Center: r3.Vec{X: -0.5, Z: 0.3}, Radius: 0.4},
	})
	if err != nil {
		t.Fatal(err)
	}
	serial, err := render.Rebuild(f, render.Grid{Steps: 33, Min: -2, Max: 2})
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 4, 7, 64} {
		parallel, err := render.Rebuild(f, render.Grid{Steps: 33, Min: -2, Max: 2, Concurrency: workers})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(serial, parallel) {
			t.Errorf("concurrency=%d sweep differs from serial output", workers)
		}
	}
}

func TestRendererMatchesRebuild(t *testing.T) {
	f := singleBall(t, 0.8)
	g := render.Grid{Steps: 24, Min: -2, Max: 2}
	mesh, err := render.Rebuild(f, g)
	if err != nil {
		t.Fatal(err)
	}
	r, err := render.NewGridRenderer(f, g)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.RenderAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(model) != mesh.Triangles() {
		t.Fatalf("streamed %d triangles, batch rebuild produced %d", len(model), mesh.Triangles())
	}
	for i := range model {
		if model[i] != mesh.Triangle3(i) {
			t.Fatalf("triangle %d differs between streaming and batch output", i)
		}
	}
}

func TestRendererSmallBuffer(t *testing.T) {
	f := singleBall(t, 0.8)
	g := render.Grid{Steps: 16, Min: -2, Max: 2}
	want, err := render.RenderAll(must(render.NewGridRenderer(f, g)))
	if err != nil {
		t.Fatal(err)
	}
	// Reading through a buffer smaller than a cell's worst case must
	// deliver the same triangles via the unwritten spill buffer.
	r := must(render.NewGridRenderer(f, g))
	var got []render.Triangle3
	buf := make([]render.Triangle3, 3)
	for {
		n, err := r.ReadTriangles(buf)
		got = append(got, buf[:n]...)
		if err != nil {
			break
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("small-buffer read returned %d triangles, want %d matching", len(got), len(want))
	}
}

func TestRebuildRejectsBadConfig(t *testing.T) {
	if _, err := render.Rebuild(constField{}, render.Grid{Steps: 1, Min: -1, Max: 1}); err == nil {
		t.Error("expected configuration error from Rebuild")
	}
	if _, err := render.NewGridRenderer(constField{}, render.Grid{Steps: 10, Min: 1, Max: -1}); err == nil {
		t.Error("expected configuration error from NewGridRenderer")
	}
}

func must(r render.Renderer, err error) render.Renderer {
	if err != nil {
		panic(err)
	}
	return r
}
