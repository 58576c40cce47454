// Package render extracts triangle meshes from metaball potential
// fields with the Marching Cubes algorithm on a dense uniform grid.
package render

import (
	"github.com/soypat/metaball/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer is a streaming source of model triangles.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Triangle3 is a triangle in 3D space defined by its vertices.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the triangle's normal from the winding of its
// vertices (counterclockwise order seen from outside).
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if the triangle has two vertices within tol
// of one another.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}
