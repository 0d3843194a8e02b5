// Package entropy provides the random source shared by every per-tick system.
// A fixed seed gives reproducible runs; seed 0 draws a seed from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// Rand is a seeded pseudo-random source. It is not safe for concurrent use;
// the simulation only touches it from the tick goroutine.
type Rand struct {
	seed int64
	r    *mrand.Rand
}

// New creates a source from seed. Seed 0 picks a random seed.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return &Rand{seed: seed, r: mrand.New(mrand.NewSource(seed))}
}

// Seed returns the seed the source was created with.
func (r *Rand) Seed() int64 {
	return r.seed
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Chance returns true with probability p.
func (r *Rand) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return r.r.Float64() < p
}

// Range returns a value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.r.Float64()*(hi-lo)
}

// Angle returns a heading in [0, 2π).
func (r *Rand) Angle() float64 {
	return r.r.Float64() * 2 * math.Pi
}

// Intn returns a value in [0, n). n <= 0 returns 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.Intn(n)
}

// Shuffle pseudo-randomizes the order of n elements.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.r.Shuffle(n, swap)
}

// Weighted picks an index with probability proportional to its weight.
// Returns -1 if all weights are zero.
func (r *Rand) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := r.r.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// CryptoSeed draws a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
