package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/material"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// ErrInvalidScene is returned for scene files that decode but describe an unusable scene
var ErrInvalidScene = errors.New("invalid scene")

// Vec3 is a point or direction in a scene file
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Color is a linear RGB color in a scene file
type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
}

// MaterialFile describes a material. Preset names a built-in material to start from.
type MaterialFile struct {
	ID        string   `json:"id"`
	Preset    string   `json:"preset,omitempty"`
	Albedo    *Color   `json:"albedo,omitempty"`
	Roughness *float32 `json:"roughness,omitempty"`
	Metallic  *float32 `json:"metallic,omitempty"`
	Emit      *Color   `json:"emit,omitempty"`
	Power     *float32 `json:"power,omitempty"`
}

// SphereFile describes a sphere referencing a material by id
type SphereFile struct {
	Center   Vec3    `json:"center"`
	Radius   float32 `json:"radius"`
	Material string  `json:"material"`
}

// EnvironmentFile points at an equirectangular background image
type EnvironmentFile struct {
	Path      string  `json:"path"`
	Intensity float32 `json:"intensity,omitempty"`
}

// SceneFile is the JSON representation of a scene
type SceneFile struct {
	Name               string           `json:"name,omitempty"`
	Description        string           `json:"description,omitempty"`
	Group              string           `json:"group,omitempty"`
	GlobalIllumination bool             `json:"globalIllumination"`
	SkyColor           *Color           `json:"skyColor,omitempty"`
	Environment        *EnvironmentFile `json:"environment,omitempty"`
	Materials          []MaterialFile   `json:"materials"`
	Spheres            []SphereFile     `json:"spheres"`
}

// LoadSceneFile reads a SceneFile from a JSON file
func LoadSceneFile(path string) (*SceneFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	var sf SceneFile
	if err := json.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &sf, nil
}

// SaveSceneFile writes a SceneFile to a JSON file
func SaveSceneFile(path string, sf *SceneFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sf); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// LoadScene reads a JSON scene file and builds the scene it describes.
// Relative environment paths are resolved against the scene file's directory.
func LoadScene(path string) (*scene.Scene, error) {
	sf, err := LoadSceneFile(path)
	if err != nil {
		return nil, err
	}
	return sf.Build(filepath.Dir(path))
}

// Build converts the file description into a scene. Spheres that reference the
// same material id share one *material.Material.
func (sf *SceneFile) Build(baseDir string) (*scene.Scene, error) {
	materials := make(map[string]*material.Material, len(sf.Materials))
	for _, mf := range sf.Materials {
		if mf.ID == "" {
			return nil, fmt.Errorf("%w: material without id", ErrInvalidScene)
		}
		if _, dup := materials[mf.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidScene, mf.ID)
		}
		m, err := mf.build()
		if err != nil {
			return nil, err
		}
		materials[mf.ID] = m
	}

	s := scene.New()
	s.GlobalIllumination = sf.GlobalIllumination
	if sf.SkyColor != nil {
		s.SkyColor = sf.SkyColor.vec()
	}

	for i, sph := range sf.Spheres {
		if sph.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere %d has radius %g", ErrInvalidScene, i, sph.Radius)
		}
		m, ok := materials[sph.Material]
		if !ok {
			return nil, fmt.Errorf("%w: sphere %d references unknown material %q", ErrInvalidScene, i, sph.Material)
		}
		s.AddSphere(mgl32.Vec3{sph.Center.X, sph.Center.Y, sph.Center.Z}, sph.Radius, m)
	}

	if sf.Environment != nil && sf.Environment.Path != "" {
		envPath := sf.Environment.Path
		if !filepath.IsAbs(envPath) {
			envPath = filepath.Join(baseDir, envPath)
		}
		img, err := LoadImage(envPath)
		if err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		intensity := sf.Environment.Intensity
		if intensity == 0 {
			intensity = 1
		}
		s.Background = img.Environment(intensity)
	}

	return s, nil
}

func (mf MaterialFile) build() (*material.Material, error) {
	m := &material.Material{Roughness: 1.0}
	if mf.Preset != "" {
		preset, ok := material.Lookup(mf.Preset)
		if !ok {
			return nil, fmt.Errorf("%w: material %q uses unknown preset %q", ErrInvalidScene, mf.ID, mf.Preset)
		}
		m = preset
	}

	if mf.Albedo != nil {
		m.Albedo = mf.Albedo.vec()
	}
	if mf.Roughness != nil {
		m.Roughness = *mf.Roughness
	}
	if mf.Metallic != nil {
		m.Metallic = *mf.Metallic
	}
	if mf.Emit != nil {
		m.EmissionColor = mf.Emit.vec()
	}
	if mf.Power != nil {
		if *mf.Power < 0 {
			return nil, fmt.Errorf("%w: material %q has negative emission power", ErrInvalidScene, mf.ID)
		}
		m.EmissionPower = *mf.Power
	}
	return m, nil
}

func (c Color) vec() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Resolve returns a built-in scene by id, or loads a scene file for ids with
// the "file:" prefix or a .json suffix.
func Resolve(id string) (*scene.Scene, error) {
	switch {
	case strings.HasPrefix(id, scene.FilePrefix):
		name := strings.TrimPrefix(id, scene.FilePrefix)
		dir := scene.ScenesDir()
		if dir == "" {
			return nil, fmt.Errorf("scene %q: no scenes directory", id)
		}
		return LoadScene(filepath.Join(dir, filepath.Base(name)+".json"))
	case strings.HasSuffix(id, ".json"):
		return LoadScene(id)
	default:
		return scene.Create(id)
	}
}
