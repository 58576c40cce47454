package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/soypat/metaball"
	"github.com/soypat/metaball/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Scene is the YAML scene description. Values resolve with priority
// defaults < file < flags.
type Scene struct {
	// Steps is the grid resolution in cells per axis.
	Steps int `yaml:"steps"`
	// Bounds is the domain half-extent; the grid spans [-bounds,bounds]³.
	Bounds float64 `yaml:"bounds"`
	// Epsilon is the normal estimation gradient step.
	Epsilon float64 `yaml:"epsilon"`
	// Concurrency is the number of sweep goroutines.
	Concurrency int `yaml:"concurrency"`
	// Balls lists explicit field sources. When empty, RandomBalls
	// sources of radius BallRadius are generated from Seed.
	Balls       []BallSpec `yaml:"balls"`
	RandomBalls int        `yaml:"random_balls"`
	BallRadius  float64    `yaml:"ball_radius"`
	Seed        int64      `yaml:"seed"`
	Logging     LogSpec    `yaml:"logging"`
}

type BallSpec struct {
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
}

type LogSpec struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultScene returns a scene with sensible default values.
func DefaultScene() *Scene {
	return &Scene{
		Steps:       100,
		Bounds:      4,
		RandomBalls: 5,
		BallRadius:  0.8,
		Seed:        1,
		Logging:     LogSpec{Level: "info"},
	}
}

// LoadScene loads the scene from a YAML file, merging over defaults.
func LoadScene(path string) (*Scene, error) {
	s := DefaultScene()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	return s, nil
}

// Grid returns the render grid configuration for the scene.
func (s *Scene) Grid() render.Grid {
	return render.Grid{
		Steps:         s.Steps,
		Min:           -s.Bounds,
		Max:           s.Bounds,
		NormalEpsilon: s.Epsilon,
		Concurrency:   s.Concurrency,
	}
}

// Field returns the scene's ball field snapshot.
func (s *Scene) Field(rng *rand.Rand) (metaball.Balls, error) {
	if len(s.Balls) > 0 {
		balls := make([]metaball.Ball, len(s.Balls))
		for i, b := range s.Balls {
			balls[i] = metaball.Ball{
				Center: r3.Vec{X: b.Center[0], Y: b.Center[1], Z: b.Center[2]},
				Radius: b.Radius,
			}
		}
		return metaball.New(balls)
	}
	if s.RandomBalls <= 0 {
		return nil, fmt.Errorf("scene has no balls and random_balls=%d", s.RandomBalls)
	}
	// Keep random centers away from the domain faces so the surface
	// stays inside the sampled volume.
	half := s.Bounds / 2
	within := r3.Box{
		Min: r3.Vec{X: -half, Y: -half, Z: -half},
		Max: r3.Vec{X: half, Y: half, Z: half},
	}
	return metaball.Randomize(s.RandomBalls, s.BallRadius, within, rng), nil
}
