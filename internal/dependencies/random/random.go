package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// SourceRandom implements Random on top of a PCG generator.
// It is safe for concurrent use.
type SourceRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a SourceRandom seeded from the current time
func New() *SourceRandom {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// NewSeeded creates a SourceRandom whose sequence is fully determined by seed
func NewSeeded(seed uint64) *SourceRandom {
	return &SourceRandom{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// FromSeed returns NewSeeded(seed), or a time seeded source when seed is 0
func FromSeed(seed uint64) *SourceRandom {
	if seed == 0 {
		return New()
	}
	return NewSeeded(seed)
}

// Intn returns a uniformly distributed int in [0, n), or 0 if n <= 0
func (r *SourceRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}
