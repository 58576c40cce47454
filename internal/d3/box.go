package d3

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Extend returns a box enclosing two 3d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// RandomVec returns a point uniformly distributed within a bounding box.
func RandomVec(b Box, rng *rand.Rand) r3.Vec {
	return r3.Vec{
		X: randomRange(b.Min.X, b.Max.X, rng),
		Y: randomRange(b.Min.Y, b.Max.Y, rng),
		Z: randomRange(b.Min.Z, b.Max.Z, rng),
	}
}

// randomRange returns a random float64 in [a, b).
func randomRange(a, b float64, rng *rand.Rand) float64 {
	return a + (b-a)*rng.Float64()
}
