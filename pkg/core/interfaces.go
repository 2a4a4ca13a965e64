package core

import "github.com/go-gl/mathgl/mgl32"

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Sampler provides random numbers for the integrator.
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float32
	Get3D() mgl32.Vec3
}
