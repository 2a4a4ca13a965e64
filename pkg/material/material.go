package material

import "github.com/go-gl/mathgl/mgl32"

// Material describes how a surface reflects and emits light.
// Materials are immutable once built and are shared by pointer between spheres.
type Material struct {
	Albedo        mgl32.Vec3 // Base reflectance
	Roughness     float32    // Surface roughness, 0 = mirror
	Metallic      float32    // Metalness, carried but not used by the integrator
	EmissionColor mgl32.Vec3 // Color of emitted light
	EmissionPower float32    // Emission strength, >= 0
}

// Emission returns the radiance emitted by the material
func (m *Material) Emission() mgl32.Vec3 {
	return m.EmissionColor.Mul(m.EmissionPower)
}

// IsEmissive reports whether the material emits any light
func (m *Material) IsEmissive() bool {
	return m.EmissionPower > 0 && m.EmissionColor != (mgl32.Vec3{})
}

// NewDiffuse creates a rough non-emissive material
func NewDiffuse(albedo mgl32.Vec3) *Material {
	return &Material{Albedo: albedo, Roughness: 1.0}
}

// NewMetal creates a metallic material with the given roughness
func NewMetal(albedo mgl32.Vec3, roughness float32) *Material {
	return &Material{Albedo: albedo, Roughness: roughness, Metallic: 1.0}
}

// NewEmissive creates a material that emits color scaled by power.
// Albedo is set to the emission color so bounced paths pick up its tint.
func NewEmissive(color mgl32.Vec3, power float32) *Material {
	return &Material{
		Albedo:        color,
		Roughness:     1.0,
		EmissionColor: color,
		EmissionPower: power,
	}
}
