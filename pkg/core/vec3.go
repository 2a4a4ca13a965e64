package core

import "github.com/go-gl/mathgl/mgl32"

// Ray is a half-line starting at Origin
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// MulElem multiplies two vectors component-wise
func MulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Reflect mirrors incident about normal
func Reflect(incident, normal mgl32.Vec3) mgl32.Vec3 {
	return incident.Sub(normal.Mul(2 * normal.Dot(incident)))
}

// Clamp01 clamps every component to [0, 1]
func Clamp01(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(v[0], 0, 1),
		mgl32.Clamp(v[1], 0, 1),
		mgl32.Clamp(v[2], 0, 1),
	}
}

// Luminance returns the Rec. 709 luminance of a linear color
func Luminance(c mgl32.Vec3) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}
