// Package metaball implements implicit scalar potential fields built
// from point influence sources ("metaballs"). A field evaluates to a
// negative value inside the blended surface and a non-negative value
// outside of it, which is the sign convention expected by the
// isosurface extractor in the render package.
package metaball

import (
	"errors"
	"math"
	"math/rand"

	"github.com/soypat/metaball/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field is the interface to a scalar potential field object.
type Field interface {
	// Evaluate takes a point in 3D space as input and returns the
	// field potential at the point. The potential is negative if the
	// point is contained within the blended surface.
	Evaluate(p r3.Vec) float64
	// Bounds returns a bounding box that completely contains
	// the zero level set of the field.
	Bounds() r3.Box
}

// Ball is a point influence source. In isolation a Ball contributes a
// spherical zero level set of radius Radius centered at Center.
type Ball struct {
	Center r3.Vec
	Radius float64
}

// Balls is an ordered collection of balls evaluating to the blended
// inverse-square potential
//
//	F(p) = 1 - sum( Ri² / |p-Ci|² )
//
// F is continuous away from ball centers. A ball center evaluates
// to -Inf, which still classifies as inside the surface.
type Balls []Ball

var _ Field = Balls{}

// New returns the field formed by balls. It returns an error if any
// ball has a non-positive radius.
func New(balls []Ball) (Balls, error) {
	if len(balls) == 0 {
		return nil, errors.New("empty ball collection")
	}
	for _, ball := range balls {
		if ball.Radius <= 0 {
			return nil, errors.New("ball radius must be positive")
		}
	}
	b := make(Balls, len(balls))
	copy(b, balls)
	return b, nil
}

// Evaluate returns the blended potential at p. It is a pure function
// of p and the ball configuration.
func (b Balls) Evaluate(p r3.Vec) float64 {
	sum := 0.0
	for i := range b {
		d2 := r3.Norm2(r3.Sub(p, b[i].Center))
		sum += b[i].Radius * b[i].Radius / d2
	}
	return 1 - sum
}

// Bounds returns a box containing the zero level set.
// A surface point p satisfies sum(Ri²/di²) = 1 so at least one ball
// has di <= Ri*sqrt(n), which bounds the surface by the union of the
// per-ball cubes of half-side Ri*sqrt(n).
func (b Balls) Bounds() r3.Box {
	if len(b) == 0 {
		return r3.Box{}
	}
	margin := math.Sqrt(float64(len(b)))
	box := ballBox(b[0], margin)
	for _, ball := range b[1:] {
		box = box.Extend(ballBox(ball, margin))
	}
	return r3.Box(box)
}

func ballBox(ball Ball, margin float64) d3.Box {
	return d3.NewBox(ball.Center, d3.Elem(2*margin*ball.Radius))
}

// Randomize returns a fresh ball configuration of n balls of the given
// radius with centers uniformly distributed within the box. It never
// mutates an existing field: a sweep reading the previous snapshot is
// unaffected by concurrent randomization.
func Randomize(n int, radius float64, within r3.Box, rng *rand.Rand) Balls {
	b := make(Balls, n)
	for i := range b {
		b[i] = Ball{
			Center: d3.RandomVec(d3.Box(within), rng),
			Radius: radius,
		}
	}
	return b
}
