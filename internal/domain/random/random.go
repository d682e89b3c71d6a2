// Package random builds locally owned, seeded generators for the samplers.
package random

import (
	"math/rand/v2"
)

// pcgStream is the fixed PCG increment. Only the seed varies between runs.
const pcgStream = 0x9e3779b97f4a7c15

// New returns a generator seeded deterministically from seed. Each call
// returns an independent generator; nothing process-wide is touched.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream)) //nolint:gosec // deterministic seed for reproducible datasets
}
