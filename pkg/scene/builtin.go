package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/material"
)

// builtin describes a scene that is constructed in code
type builtin struct {
	info   SceneInfo
	create func() *Scene
}

var builtins = []builtin{
	{
		info: SceneInfo{ID: "default", Name: "Default Scene",
			Description: "Pink sphere on a blue ground with an orange light"},
		create: NewDefaultScene,
	},
	{
		info: SceneInfo{ID: "sky", Name: "Sky",
			Description: "Default scene lit by a uniform sky"},
		create: NewSkyScene,
	},
	{
		info: SceneInfo{ID: "gradient", Name: "Gradient Sky",
			Description: "Default scene under a horizon to zenith gradient"},
		create: NewGradientScene,
	},
	{
		info: SceneInfo{ID: "single", Name: "Single Sphere",
			Description: "One diffuse sphere with no light"},
		create: NewSingleSphereScene,
	},
	{
		info: SceneInfo{ID: "glowing", Name: "Glowing Sphere",
			Description: "One sphere emitting white light"},
		create: NewGlowingSphereScene,
	},
}

// NewDefaultScene creates the pink sphere resting on a large blue sphere,
// with a small orange emitter to the side.
func NewDefaultScene() *Scene {
	s := New()

	pink := material.Pink
	blue := material.Blue
	orange := material.Orange

	s.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, &pink)
	s.AddSphere(mgl32.Vec3{0, -101, 0}, 100, &blue)
	s.AddSphere(mgl32.Vec3{2, 0, 0}, 1.0, &orange)
	return s
}

// NewSkyScene is the default scene with global illumination enabled
func NewSkyScene() *Scene {
	s := NewDefaultScene()
	s.GlobalIllumination = true
	return s
}

// NewGradientScene is the default scene under a gradient background
func NewGradientScene() *Scene {
	s := NewDefaultScene()
	s.Background = GradientBackground(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0.5, 0.7, 1.0})
	return s
}

// NewSingleSphereScene has one diffuse sphere and nothing that emits light
func NewSingleSphereScene() *Scene {
	s := New()
	s.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, material.NewDiffuse(mgl32.Vec3{0.8, 0.8, 0.8}))
	return s
}

// NewGlowingSphereScene has one sphere emitting white light with power 20
func NewGlowingSphereScene() *Scene {
	s := New()
	s.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, material.NewEmissive(mgl32.Vec3{1, 1, 1}, 20))
	return s
}

// Names returns the ids of all built-in scenes, sorted
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, b := range builtins {
		names = append(names, b.info.ID)
	}
	sort.Strings(names)
	return names
}

// Create builds the named built-in scene
func Create(name string) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == name {
			return b.create(), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(Names(), ", "))
}
