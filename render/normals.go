package render

import (
	"github.com/soypat/metaball"
	"gonum.org/v1/gonum/spatial/r3"
)

// gradientNormal approximates the outward surface normal at p as the
// normalized central-difference gradient of f with step eps per axis.
// The field is negative inside the surface so its gradient points
// outward at the zero level set. A zero gradient (flat field region)
// falls back to the +Z unit vector.
func gradientNormal(f metaball.Field, p r3.Vec, eps float64) r3.Vec {
	grad := r3.Vec{
		X: f.Evaluate(r3.Add(p, r3.Vec{X: eps})) - f.Evaluate(r3.Sub(p, r3.Vec{X: eps})),
		Y: f.Evaluate(r3.Add(p, r3.Vec{Y: eps})) - f.Evaluate(r3.Sub(p, r3.Vec{Y: eps})),
		Z: f.Evaluate(r3.Add(p, r3.Vec{Z: eps})) - f.Evaluate(r3.Sub(p, r3.Vec{Z: eps})),
	}
	norm := r3.Norm(grad)
	if norm == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Scale(1/norm, grad)
}
