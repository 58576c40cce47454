package render_test

import (
	"os"
	"path/filepath"
	"testing"

	sdfxrender "github.com/deadsy/sdfx/render"
	sdfxsdf "github.com/deadsy/sdfx/sdf"
	"github.com/soypat/metaball/render"
)

const benchQuality = 100

// Benchmarks against the sdfx uniform marching cubes renderer meshing
// the same unit sphere surface.

func BenchmarkSDFXSphere(b *testing.B) {
	stdout := os.Stdout
	defer func() {
		os.Stdout = stdout // pesky sdfx prints out stuff
	}()
	os.Stdout, _ = os.Open(os.DevNull)
	output := filepath.Join(b.TempDir(), "sdfx_sphere.stl")
	object, _ := sdfxsdf.Sphere3D(1)
	for i := 0; i < b.N; i++ {
		sdfxrender.ToSTL(object, benchQuality, output, &sdfxrender.MarchingCubesUniform{})
	}
}

func BenchmarkSphere(b *testing.B) {
	output := filepath.Join(b.TempDir(), "sphere.stl")
	f := singleBall(b, 1)
	g := render.Grid{Steps: benchQuality, Min: -1.25, Max: 1.25}
	for i := 0; i < b.N; i++ {
		r, err := render.NewGridRenderer(f, g)
		if err != nil {
			b.Fatal(err)
		}
		if err := render.CreateSTL(output, r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRebuild(b *testing.B) {
	f := singleBall(b, 1)
	for _, workers := range []int{1, 4} {
		name := "serial"
		if workers > 1 {
			name = "concurrent"
		}
		b.Run(name, func(b *testing.B) {
			g := render.Grid{Steps: benchQuality, Min: -1.25, Max: 1.25, Concurrency: workers}
			for i := 0; i < b.N; i++ {
				if _, err := render.Rebuild(f, g); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
