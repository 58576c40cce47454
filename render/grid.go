package render

import (
	"errors"
	"io"
	"sync"

	"github.com/soypat/metaball"
	"gonum.org/v1/gonum/spatial/r3"
)

// defaultNormalEpsilon is the central-difference step for normal
// estimation, in domain units. Small against any practical cell size
// yet large enough to avoid catastrophic cancellation when summing
// ball potentials.
const defaultNormalEpsilon = 5e-4

// Grid configures a uniform marching cubes sweep over the cubic
// domain [Min,Max]³ sampled at Steps cells per axis.
type Grid struct {
	// Steps is the grid resolution in cells per axis. The sweep
	// visits Steps³ cells.
	Steps int
	// Min and Max are the domain extents, shared by all three axes.
	Min, Max float64
	// NormalEpsilon is the gradient estimation step. Zero selects
	// defaultNormalEpsilon.
	NormalEpsilon float64
	// Concurrency is the number of goroutines Rebuild may sweep
	// with. Values below 2 select the serial sweep. Output is
	// identical regardless of concurrency.
	Concurrency int
}

func (g Grid) validate() error {
	if g.Steps < 2 {
		return errors.New("grid steps must be 2 or larger")
	}
	if !(g.Min < g.Max) {
		return errors.New("grid domain must have positive extent")
	}
	if g.NormalEpsilon < 0 {
		return errors.New("negative normal estimation epsilon")
	}
	// Bound the effective value so the default is rejected too when
	// the cells are smaller than it.
	if g.normalEpsilon() >= g.cellSize() {
		return errors.New("normal estimation epsilon exceeds grid cell size")
	}
	return nil
}

func (g Grid) cellSize() float64 {
	return (g.Max - g.Min) / float64(g.Steps)
}

func (g Grid) normalEpsilon() float64 {
	if g.NormalEpsilon == 0 {
		return defaultNormalEpsilon
	}
	return g.NormalEpsilon
}

// pos maps integer lattice coordinates in [0,Steps] to world space.
// Index 0 maps exactly to Min and index Steps exactly to Max.
func (g Grid) pos(a, b, c int) r3.Vec {
	span := g.Max - g.Min
	n := float64(g.Steps)
	return r3.Vec{
		X: g.Min + span*(float64(a)/n),
		Y: g.Min + span*(float64(b)/n),
		Z: g.Min + span*(float64(c)/n),
	}
}

func (g Grid) contains(p r3.Vec) bool {
	return g.Min <= p.X && p.X <= g.Max &&
		g.Min <= p.Y && p.Y <= g.Max &&
		g.Min <= p.Z && p.Z <= g.Max
}

// marchCell classifies cell (a,b,c) against f and writes the cell's
// triangles to dst, returning the amount written. dst must have room
// for marchingCubesMaxTriangles.
func (g Grid) marchCell(f metaball.Field, a, b, c int, dst []Triangle3) int {
	var p [8]r3.Vec
	var v [8]float64
	for i, o := range mcCornerTable {
		p[i] = g.pos(a+o[0], b+o[1], c+o[2])
		if !g.contains(p[i]) {
			panic("sampled grid corner outside declared domain")
		}
		v[i] = f.Evaluate(p[i])
	}
	return mcToTriangles(dst, p, v, 0)
}

// Mesh holds the buffers of one full rebuild: vertex positions,
// per-vertex outward normals and the triangle index list. Vertices
// and Normals have equal length; Indices is the identity sequence
// over the vertex count, three consecutive indices per triangle.
// Vertices are not shared between triangles.
type Mesh struct {
	Vertices []r3.Vec
	Normals  []r3.Vec
	Indices  []uint32
}

// Triangles returns the number of triangles in the mesh.
func (m Mesh) Triangles() int { return len(m.Indices) / 3 }

// Triangle3 returns the ith mesh triangle via index lookup.
func (m Mesh) Triangle3(i int) Triangle3 {
	var t Triangle3
	for j := 0; j < 3; j++ {
		t.V[j] = m.Vertices[m.Indices[3*i+j]]
	}
	return t
}

// Rebuild runs a full sweep of the grid against the field snapshot f
// and returns freshly allocated mesh buffers. A rebuild is a complete
// stateless recomputation; on error the zero Mesh is returned and any
// previously obtained buffers are unaffected.
func Rebuild(f metaball.Field, g Grid) (Mesh, error) {
	if err := g.validate(); err != nil {
		return Mesh{}, err
	}
	nw := g.Concurrency
	if nw > g.Steps {
		nw = g.Steps
	}
	var m Mesh
	if nw < 2 {
		g.sweepSlab(f, 0, g.Steps, &m)
	} else {
		// Each worker sweeps a private slab of the x axis into a
		// private buffer. Concatenation in slab order keeps the
		// output identical to the serial sweep.
		parts := make([]Mesh, nw)
		var wg sync.WaitGroup
		for w := 0; w < nw; w++ {
			lo := w * g.Steps / nw
			hi := (w + 1) * g.Steps / nw
			wg.Add(1)
			go func(part *Mesh) {
				defer wg.Done()
				g.sweepSlab(f, lo, hi, part)
			}(&parts[w])
		}
		wg.Wait()
		for i := range parts {
			m.Vertices = append(m.Vertices, parts[i].Vertices...)
			m.Normals = append(m.Normals, parts[i].Normals...)
		}
	}
	m.Indices = make([]uint32, len(m.Vertices))
	for i := range m.Indices {
		m.Indices[i] = uint32(i)
	}
	return m, nil
}

// sweepSlab sweeps cells with x index in [lo,hi) in deterministic
// x-outer, z-inner order, appending vertices and normals to out.
func (g Grid) sweepSlab(f metaball.Field, lo, hi int, out *Mesh) {
	eps := g.normalEpsilon()
	var tri [marchingCubesMaxTriangles]Triangle3
	for a := lo; a < hi; a++ {
		for b := 0; b < g.Steps; b++ {
			for c := 0; c < g.Steps; c++ {
				nt := g.marchCell(f, a, b, c, tri[:])
				for _, t := range tri[:nt] {
					for _, vert := range t.V {
						out.Vertices = append(out.Vertices, vert)
						out.Normals = append(out.Normals, gradientNormal(f, vert, eps))
					}
				}
			}
		}
	}
}

// grid is the streaming renderer counterpart of Rebuild.
type grid struct {
	f    metaball.Field
	g    Grid
	next int // next cell in row-major sweep order
	// triangles found but not yet returned by ReadTriangles.
	unwritten triangle3Buffer
}

// NewGridRenderer returns a marching cubes Renderer sweeping the
// uniform grid g over field f. Triangles stream in deterministic cell
// order; the full model need never reside in memory at once.
func NewGridRenderer(f metaball.Field, g Grid) (Renderer, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	return &grid{
		f:         f,
		g:         g,
		unwritten: triangle3Buffer{buf: make([]Triangle3, 0, 64)},
	}, nil
}

// ReadTriangles writes triangles rendered from the model into the
// argument buffer. Returns the number of triangles written and io.EOF
// once the sweep is complete.
func (gr *grid) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if gr.unwritten.Len() > 0 {
		n += gr.unwritten.Read(dst[n:])
		if n == len(dst) {
			return n, nil
		}
	}
	cells := gr.g.Steps * gr.g.Steps * gr.g.Steps
	if gr.next == cells && gr.unwritten.Len() == 0 {
		if n > 0 {
			return n, nil
		}
		return 0, io.EOF
	}
	steps := gr.g.Steps
	for gr.next < cells {
		a := gr.next / (steps * steps)
		b := gr.next / steps % steps
		c := gr.next % steps
		if n+marchingCubesMaxTriangles > len(dst) {
			// Not enough room to guarantee writing a whole cell;
			// buffer the cell's triangles for the next call.
			var tmp [marchingCubesMaxTriangles]Triangle3
			nt := gr.g.marchCell(gr.f, a, b, c, tmp[:])
			gr.unwritten.Write(tmp[:nt])
			gr.next++
			break
		}
		n += gr.g.marchCell(gr.f, a, b, c, dst[n:])
		gr.next++
	}
	return n, nil
}
