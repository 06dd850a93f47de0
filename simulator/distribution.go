package simulator

import (
	"fmt"
	"math"
	"math/rand"
)

// VariateGenerator draws exponentially distributed intervals. One generator
// (and its single random source) is owned by a run for its whole lifetime, so
// a fixed seed reproduces the run exactly.
type VariateGenerator struct {
	rng  *rand.Rand
	seed int64
}

// NewVariateGenerator creates a generator seeded with seed. A zero seed picks a
// random one; Seed() reports the value actually used.
func NewVariateGenerator(seed int64) *VariateGenerator {
	if seed == 0 {
		seed = rand.Int63()
		if seed == 0 {
			seed = 1
		}
	}
	return &VariateGenerator{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the generator was created with
func (g *VariateGenerator) Seed() int64 {
	return g.seed
}

// Next returns -ln(1-U)/rate with U uniform on [0,1).
func (g *VariateGenerator) Next(rate float64) (float64, error) {
	if !(rate > 0) || math.IsInf(rate, 1) {
		return 0, fmt.Errorf("exponential variate with rate %v: %w", rate, ErrInvalidRate)
	}
	u := g.rng.Float64()
	return -math.Log(1.0-u) / rate, nil
}

// mustNext is Next for rates already validated by SimConfig.Validate.
func (g *VariateGenerator) mustNext(rate float64) float64 {
	v, err := g.Next(rate)
	if err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}
	return v
}
