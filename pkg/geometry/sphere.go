package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   mgl32.Vec3
	Radius   float32
	Material *material.Material
}

// NewSphere creates a new sphere
func NewSphere(center mgl32.Vec3, radius float32, mat *material.Material) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Intersect returns the distance to the nearer root of the ray-sphere quadratic.
// Only the near root is considered, so a ray starting inside the sphere reports
// a negative distance and the caller rejects it.
func (s Sphere) Intersect(ray core.Ray) (float32, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Sub(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4.0*a*c
	if discriminant < 0 {
		return 0, false
	}

	t := (-b - float32(math.Sqrt(float64(discriminant)))) / (2.0 * a)
	return t, true
}
