package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PCGHash is a single round of the PCG-RXS-M-XS permutation used as a stateless hash.
func PCGHash(input uint32) uint32 {
	state := input*747796495 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// PCGSampler is a Sampler that advances its state by rehashing it.
// Two samplers with the same seed produce the same sequence.
type PCGSampler struct {
	state uint32
}

// NewPCGSampler creates a sampler starting from seed
func NewPCGSampler(seed uint32) *PCGSampler {
	return &PCGSampler{state: seed}
}

// Reset restarts the sequence from seed without allocating
func (s *PCGSampler) Reset(seed uint32) {
	s.state = seed
}

// Get1D returns a float32 in [0, 1]
func (s *PCGSampler) Get1D() float32 {
	s.state = PCGHash(s.state)
	return float32(s.state) / float32(math.MaxUint32)
}

// Get3D returns three values in [-1, 1]
func (s *PCGSampler) Get3D() mgl32.Vec3 {
	return mgl32.Vec3{
		s.Get1D()*2 - 1,
		s.Get1D()*2 - 1,
		s.Get1D()*2 - 1,
	}
}

// PixelSeed mixes a pixel index, frame index and user seed into a sampler seed.
func PixelSeed(pixel, frame int, seed uint32) uint32 {
	return PCGHash(uint32(pixel) ^ PCGHash(uint32(frame)+PCGHash(seed)))
}

// RandomInUnitSphere returns a random unit-length direction.
// The cube sample is normalized rather than rejected, so the distribution
// is biased toward the cube's corners.
func RandomInUnitSphere(sampler Sampler) mgl32.Vec3 {
	v := sampler.Get3D()
	if v.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}
