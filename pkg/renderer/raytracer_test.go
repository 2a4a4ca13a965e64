package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/material"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// MockSampler returns a fixed direction for every 3D sample
type MockSampler struct {
	value mgl32.Vec3
}

func (m *MockSampler) Get1D() float32    { return 0.5 }
func (m *MockSampler) Get3D() mgl32.Vec3 { return m.value }

func newTestRenderer() *Renderer {
	config := DefaultConfig()
	config.NumWorkers = 2
	config.TileSize = 8
	return NewRenderer(config, &testLogger{})
}

// testLogger discards renderer output
type testLogger struct {
	messages []string
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.messages = append(l.messages, format)
}

func TestTraceRay_HitDistance(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, material.NewDiffuse(mgl32.Vec3{1, 1, 1}))

	ray := core.NewRay(mgl32.Vec3{0, 0, 6}, mgl32.Vec3{0, 0, -1})
	payload := r.traceRay(sc, ray)

	// Distance equals |origin - center| - radius
	if math.Abs(float64(payload.HitDistance-5.5)) > 1e-5 {
		t.Errorf("Expected hit distance 5.5, got %f", payload.HitDistance)
	}
	if payload.ObjectIndex != 0 {
		t.Errorf("Expected object 0, got %d", payload.ObjectIndex)
	}
	if !payload.WorldPosition.ApproxEqualThreshold(mgl32.Vec3{0, 0, 0.5}, 1e-5) {
		t.Errorf("Expected world position (0,0,0.5), got %v", payload.WorldPosition)
	}
	if !payload.WorldNormal.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5) {
		t.Errorf("Expected normal (0,0,1), got %v", payload.WorldNormal)
	}
}

func TestTraceRay_Miss(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, material.NewDiffuse(mgl32.Vec3{1, 1, 1}))

	payload := r.traceRay(sc, core.NewRay(mgl32.Vec3{0, 0, 6}, mgl32.Vec3{0, 1, 0}))
	if payload.HitDistance >= 0 {
		t.Errorf("Expected miss, got distance %f", payload.HitDistance)
	}

	empty := r.traceRay(scene.New(), core.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))
	if empty.HitDistance >= 0 {
		t.Error("Empty scene should always miss")
	}
}

func TestTraceRay_NearestAndTies(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.AddSphere(mgl32.Vec3{0, 0, -10}, 1, material.NewDiffuse(mgl32.Vec3{1, 0, 0}))
	sc.AddSphere(mgl32.Vec3{0, 0, -5}, 1, material.NewDiffuse(mgl32.Vec3{0, 1, 0}))
	sc.AddSphere(mgl32.Vec3{0, 0, -5}, 1, material.NewDiffuse(mgl32.Vec3{0, 0, 1}))

	payload := r.traceRay(sc, core.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))
	if payload.ObjectIndex != 1 {
		t.Errorf("Expected nearest sphere (first of the tied pair), got %d", payload.ObjectIndex)
	}
}

func TestTraceRay_OriginInsideSphereIgnoresIt(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 2, material.NewDiffuse(mgl32.Vec3{1, 1, 1}))

	payload := r.traceRay(sc, core.NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	if payload.HitDistance >= 0 {
		t.Errorf("Near root is behind the origin, expected miss, got %f", payload.HitDistance)
	}
}

func TestClosestHit_OffCenterNormal(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.AddSphere(mgl32.Vec3{3, 0, 0}, 1, material.NewDiffuse(mgl32.Vec3{1, 1, 1}))

	ray := core.NewRay(mgl32.Vec3{3, 0, 5}, mgl32.Vec3{0, 0, -1})
	payload := r.traceRay(sc, ray)

	// Unit surface normal (0,0,1) plus the sphere center
	expected := mgl32.Vec3{3, 0, 1}
	if !payload.WorldNormal.ApproxEqualThreshold(expected, 1e-5) {
		t.Errorf("Expected normal %v, got %v", expected, payload.WorldNormal)
	}
	if !payload.WorldPosition.ApproxEqualThreshold(mgl32.Vec3{3, 0, 1}, 1e-5) {
		t.Errorf("Expected world position (3,0,1), got %v", payload.WorldPosition)
	}
}

func singlePixelFrame(sc *scene.Scene, origin, dir mgl32.Vec3) *frameContext {
	return &frameContext{
		scene:      sc,
		origin:     origin,
		directions: []mgl32.Vec3{dir},
		width:      1,
		height:     1,
		frameIndex: 1,
		samples:    make([]mgl32.Vec4, 1),
	}
}

func TestPerPixel_MissReturnsBackground(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.Background = func(ray core.Ray) mgl32.Vec3 { return mgl32.Vec3{0.25, 0.5, 0.75} }

	frame := singlePixelFrame(sc, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})
	got := r.perPixel(frame, 0, 0, core.NewPCGSampler(1))

	if got != (mgl32.Vec4{0.25, 0.5, 0.75, 1}) {
		t.Errorf("Expected exactly the background, got %v", got)
	}
}

func TestPerPixel_EmissionNotScaledByContribution(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	// Albedo zero would kill any contribution-weighted term
	lamp := &material.Material{EmissionColor: mgl32.Vec3{1, 1, 1}, EmissionPower: 3}
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, lamp)

	frame := singlePixelFrame(sc, mgl32.Vec3{0, 0, 6}, mgl32.Vec3{0, 0, -1})
	// Bounce straight back toward +Z so the path escapes after one hit
	got := r.perPixel(frame, 0, 0, &MockSampler{value: mgl32.Vec3{0, 0, 1}})

	if !got.Vec3().ApproxEqualThreshold(mgl32.Vec3{3, 3, 3}, 1e-5) {
		t.Errorf("Expected emission (3,3,3), got %v", got)
	}
	if got.W() != 1 {
		t.Errorf("Expected alpha 1, got %f", got.W())
	}
}

func TestPerPixel_SkyWeightedByAlbedo(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.GlobalIllumination = true
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, material.NewDiffuse(mgl32.Vec3{0.5, 0.5, 0.5}))

	frame := singlePixelFrame(sc, mgl32.Vec3{0, 0, 6}, mgl32.Vec3{0, 0, -1})
	got := r.perPixel(frame, 0, 0, &MockSampler{value: mgl32.Vec3{0, 0, 1}})

	expected := scene.DefaultSkyColor.Mul(0.5)
	if !got.Vec3().ApproxEqualThreshold(expected, 1e-5) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestPerPixel_BounceLimit(t *testing.T) {
	r := newTestRenderer()
	r.config.Bounces = 3

	sc := scene.New()
	lamp := &material.Material{Albedo: mgl32.Vec3{1, 1, 1}, EmissionColor: mgl32.Vec3{1, 0, 0}, EmissionPower: 1}
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, lamp)

	frame := singlePixelFrame(sc, mgl32.Vec3{0, 0, 6}, mgl32.Vec3{0, 0, -1})
	// normal (0,0,1) + (0,0,-2) sends every bounce straight back into the
	// surface it just left, so each segment hits the lamp again
	got := r.perPixel(frame, 0, 0, &MockSampler{value: mgl32.Vec3{0, 0, -2}})

	// One emission term per bounce, never more than the limit
	if got.X() < 1 || got.X() > 3 {
		t.Errorf("Expected between 1 and 3 emission terms, got %f", got.X())
	}
}

func TestPackARGB(t *testing.T) {
	tests := []struct {
		name     string
		color    mgl32.Vec3
		expected uint32
	}{
		{"black", mgl32.Vec3{0, 0, 0}, 0xFF000000},
		{"white", mgl32.Vec3{1, 1, 1}, 0xFFFFFFFF},
		{"clamped", mgl32.Vec3{-1, 2, 0.5}, 0xFF00FF7F},
		{"truncated", mgl32.Vec3{0.999, 0, 0}, 0xFFFE0000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackARGB(tt.color); got != tt.expected {
				t.Errorf("PackARGB(%v) = %#08x, want %#08x", tt.color, got, tt.expected)
			}
		})
	}
}

func TestBufferToRGBA(t *testing.T) {
	buffer := []uint32{0xFF102030, 0x80FFFFFF}
	img := BufferToRGBA(buffer, 2, 1)

	c := img.RGBAAt(0, 0)
	if c.R != 0x10 || c.G != 0x20 || c.B != 0x30 || c.A != 0xFF {
		t.Errorf("Unexpected first pixel %v", c)
	}
	if a := img.RGBAAt(1, 0).A; a != 0x80 {
		t.Errorf("Expected alpha 0x80, got %#x", a)
	}
}

func TestInspect(t *testing.T) {
	r := newTestRenderer()
	sc := scene.New()
	sc.AddSphere(mgl32.Vec3{0, 0, 0}, 0.5, material.NewDiffuse(mgl32.Vec3{1, 1, 1}))

	camera := NewCamera(DefaultCameraConfig())
	camera.Resize(64, 64)

	payload, hit := r.Inspect(sc, camera, 32, 31)
	if !hit {
		t.Fatal("Expected the center pixel to hit the sphere")
	}
	if payload.ObjectIndex != 0 {
		t.Errorf("Expected object 0, got %d", payload.ObjectIndex)
	}
	if math.Abs(float64(payload.HitDistance-5.5)) > 1e-3 {
		t.Errorf("Expected distance near 5.5, got %f", payload.HitDistance)
	}

	if _, hit := r.Inspect(sc, camera, 0, 0); hit {
		t.Error("Expected the corner pixel to miss")
	}
	if _, hit := r.Inspect(sc, camera, 64, 0); hit {
		t.Error("Out of range pixels should report a miss")
	}
}
