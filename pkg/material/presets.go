package material

import "github.com/go-gl/mathgl/mgl32"

// Preset materials used by the built-in scenes. They are values, callers
// that want to share one between spheres should take the address of a copy.
var (
	Pink = Material{
		Albedo:    mgl32.Vec3{1.0, 0.0, 1.0},
		Roughness: 0.0,
	}

	Blue = Material{
		Albedo:    mgl32.Vec3{0.2, 0.3, 1.0},
		Roughness: 0.1,
	}

	White = Material{
		Albedo:    mgl32.Vec3{0.8, 0.8, 0.8},
		Roughness: 1.0,
	}

	Chrome = Material{
		Albedo:    mgl32.Vec3{0.8, 0.8, 0.8},
		Roughness: 0.05,
		Metallic:  1.0,
	}

	Orange = Material{
		Albedo:        mgl32.Vec3{0.8, 0.5, 0.2},
		Roughness:     0.1,
		EmissionColor: mgl32.Vec3{0.8, 0.5, 0.2},
		EmissionPower: 2.0,
	}
)

// Presets maps preset names to their materials
func Presets() map[string]Material {
	return map[string]Material{
		"pink":   Pink,
		"blue":   Blue,
		"white":  White,
		"chrome": Chrome,
		"orange": Orange,
	}
}

// Lookup returns a fresh copy of the named preset
func Lookup(name string) (*Material, bool) {
	m, ok := Presets()[name]
	if !ok {
		return nil, false
	}
	return &m, true
}
