package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/geometry"
	"github.com/lindskogen/progressive-pathtracer/pkg/material"
)

// DefaultSkyColor is the radiance of escaped rays when global illumination is on
var DefaultSkyColor = mgl32.Vec3{0.6, 0.7, 0.9}

// BackgroundFunc returns the radiance seen along a ray that escapes the scene
type BackgroundFunc func(ray core.Ray) mgl32.Vec3

// Scene contains all the elements needed for rendering
type Scene struct {
	Spheres            []geometry.Sphere // Ordered; earlier spheres win distance ties
	GlobalIllumination bool              // Escaped rays pick up SkyColor
	SkyColor           mgl32.Vec3
	Background         BackgroundFunc // Overrides the sky policy when set
}

// New creates an empty scene with the default sky color and global illumination off
func New() *Scene {
	return &Scene{
		Spheres:  make([]geometry.Sphere, 0),
		SkyColor: DefaultSkyColor,
	}
}

// AddSphere appends a sphere to the scene
func (s *Scene) AddSphere(center mgl32.Vec3, radius float32, mat *material.Material) {
	s.Spheres = append(s.Spheres, geometry.NewSphere(center, radius, mat))
}

// BackgroundRadiance returns the radiance of a ray that hit nothing
func (s *Scene) BackgroundRadiance(ray core.Ray) mgl32.Vec3 {
	if s.Background != nil {
		return s.Background(ray)
	}
	if s.GlobalIllumination {
		return s.SkyColor
	}
	return mgl32.Vec3{}
}

// GradientBackground returns a vertical blend from horizon to zenith color
func GradientBackground(horizon, zenith mgl32.Vec3) BackgroundFunc {
	return func(ray core.Ray) mgl32.Vec3 {
		dir := ray.Direction
		if dir.Len() > 0 {
			dir = dir.Normalize()
		}
		t := 0.5 * (dir.Y() + 1.0)
		return horizon.Mul(1.0 - t).Add(zenith.Mul(t))
	}
}
