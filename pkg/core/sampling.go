package core

import (
	"errors"
	"math"
	"math/bits"
)

// ErrZeroSeed is returned for a seed that would make the generator emit zeros forever
var ErrZeroSeed = errors.New("sampler seed must not be all zero")

// Sampler is a deterministic xoroshiro128+ generator with a Box-Muller normal
// transform. A Sampler is sequential state: give each worker its own.
type Sampler struct {
	seed  [2]uint64
	state [2]uint64
}

// NewSampler seeds a sampler once
func NewSampler(seed [2]uint64) (*Sampler, error) {
	if seed[0] == 0 && seed[1] == 0 {
		return nil, ErrZeroSeed
	}
	return &Sampler{seed: seed, state: seed}, nil
}

// Uint64 advances the generator and returns the next raw value
func (s *Sampler) Uint64() uint64 {
	s0 := s.state[0]
	s1 := s.state[1]
	result := s0 + s1

	s1 ^= s0
	s.state[0] = bits.RotateLeft64(s0, 55) ^ s1 ^ (s1 << 14)
	s.state[1] = bits.RotateLeft64(s1, 36)

	return result
}

// Float64 returns a uniform value in [0, 1]. The upper bound is inclusive.
func (s *Sampler) Float64() float64 {
	return float64(s.Uint64()) / math.MaxUint64
}

// Normal returns a standard normal sample from two uniform draws.
// Only the cosine branch of Box-Muller is used; the sine sample is discarded.
func (s *Sampler) Normal() float64 {
	u0 := s.Float64()
	u1 := s.Float64()
	if u0 == 0 {
		u0 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u0)) * math.Cos(2*math.Pi*u1)
}

// GaussianVec3 draws three independent normal samples in X, Y, Z order
func (s *Sampler) GaussianVec3() Vec3 {
	x := s.Normal()
	y := s.Normal()
	z := s.Normal()
	return Vec3{X: x, Y: y, Z: z}
}

// Derive returns an independent sampler for the given stream index.
// The result depends only on the original seed and the stream, not on how
// far this sampler has advanced.
func (s *Sampler) Derive(stream uint64) *Sampler {
	x := s.seed[0] ^ bits.RotateLeft64(s.seed[1], 32) ^ stream*0x9e3779b97f4a7c15
	a := splitMix64(&x)
	b := splitMix64(&x)
	if a == 0 && b == 0 {
		b = 1
	}
	seed := [2]uint64{a, b}
	return &Sampler{seed: seed, state: seed}
}

func splitMix64(x *uint64) uint64 {
	*x += 0x9e3779b97f4a7c15
	z := *x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
