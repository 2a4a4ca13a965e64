package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Bounces != 5 {
		t.Errorf("Expected default bounces 5, got %d", config.Bounces)
	}
	if config.NormalOffset != 0.0001 {
		t.Errorf("Expected default normal offset 1e-4, got %g", config.NormalOffset)
	}
	if config.TileSize != 64 {
		t.Errorf("Expected default tile size 64, got %d", config.TileSize)
	}
}

func TestNewTileGrid(t *testing.T) {
	// 400x225 with 64x64 tiles is 7 x 4 tiles
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize)

	expectedTilesX := (width + tileSize - 1) / tileSize
	expectedTilesY := (height + tileSize - 1) / tileSize
	if len(tiles) != expectedTilesX*expectedTilesY {
		t.Errorf("Expected %d tiles, got %d", expectedTilesX*expectedTilesY, len(tiles))
	}

	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}

	for _, tile := range tiles {
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				if x >= width || y >= height {
					t.Errorf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
					continue
				}
				if covered[y][x] {
					t.Errorf("Pixel (%d,%d) is covered by multiple tiles", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Errorf("Pixel (%d,%d) is not covered by any tile", x, y)
			}
		}
	}

	if len(NewTileGrid(0, 10, 8)) != 0 {
		t.Error("Zero-width image should have no tiles")
	}
}

// renderFrames renders n frames of sc into a fresh buffer and returns it
func renderFrames(r *Renderer, sc *scene.Scene, camera *Camera, n int) []uint32 {
	buffer := make([]uint32, camera.ViewportWidth()*camera.ViewportHeight())
	for i := 0; i < n; i++ {
		r.Render(sc, camera, buffer)
	}
	return buffer
}

func TestRender_FrameIndex(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(16, 16)

	if r.FrameIndex() != 1 || r.SampleCount() != 0 {
		t.Fatalf("Expected fresh renderer at frame 1, got %d", r.FrameIndex())
	}

	renderFrames(r, scene.NewDefaultScene(), camera, 3)
	if r.FrameIndex() != 4 || r.SampleCount() != 3 {
		t.Errorf("Expected frame index 4 after 3 frames, got %d", r.FrameIndex())
	}

	r.ResetFrameIndex()
	if r.FrameIndex() != 1 {
		t.Errorf("Expected frame index 1 after reset, got %d", r.FrameIndex())
	}
}

func TestRender_DarkSceneIsBlack(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(24, 16)

	buffer := renderFrames(r, scene.NewSingleSphereScene(), camera, 4)
	for i, p := range buffer {
		if p != 0xFF000000 {
			t.Fatalf("Pixel %d = %#08x, expected opaque black", i, p)
		}
	}
}

func TestRender_EmissiveSphereConverges(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(32, 32)

	buffer := renderFrames(r, scene.NewGlowingSphereScene(), camera, 8)

	center := r.Average(16, 16)
	if !center.ApproxEqualThreshold(mgl32.Vec3{20, 20, 20}, 1e-3) {
		t.Errorf("Center pixel should converge to the emission, got %v", center)
	}
	if corner := r.Average(0, 0); corner != (mgl32.Vec3{}) {
		t.Errorf("Corner pixel should stay at the background, got %v", corner)
	}

	// Displayed values are clamped
	if p := buffer[16+(32-16-1)*32]; p != 0xFFFFFFFF {
		t.Errorf("Center pixel should display white, got %#08x", p)
	}
	if p := buffer[0]; p != 0xFF000000 {
		t.Errorf("Corner pixel should display black, got %#08x", p)
	}
}

func TestRender_ResetMatchesFreshRenderer(t *testing.T) {
	sc := scene.NewSkyScene()

	used := newTestRenderer()
	defer used.Close()
	camera := newTestCamera(16, 12)
	renderFrames(used, sc, camera, 5)
	used.ResetFrameIndex()
	afterReset := renderFrames(used, sc, camera, 2)

	fresh := newTestRenderer()
	defer fresh.Close()
	expected := renderFrames(fresh, sc, newTestCamera(16, 12), 2)

	for i := range expected {
		if afterReset[i] != expected[i] {
			t.Fatalf("Pixel %d differs after reset: %#08x vs %#08x", i, afterReset[i], expected[i])
		}
	}
}

func TestRender_AverageIsMeanOfSamples(t *testing.T) {
	sc := scene.NewSkyScene()
	camera := newTestCamera(8, 8)
	r := newTestRenderer()
	defer r.Close()

	const frames = 6
	renderFrames(r, sc, camera, frames)

	// Recompute the same samples directly
	sampler := core.NewPCGSampler(0)
	for _, p := range [][2]int{{0, 0}, {4, 4}, {7, 2}} {
		x, y := p[0], p[1]
		sum := mgl32.Vec3{}
		for f := 1; f <= frames; f++ {
			frame := &frameContext{
				scene:      sc,
				origin:     camera.Position(),
				directions: camera.RayDirections(),
				width:      8,
				height:     8,
				frameIndex: f,
			}
			sampler.Reset(core.PixelSeed(x+y*8, f, r.config.Seed))
			sum = sum.Add(r.perPixel(frame, x, y, sampler).Vec3())
		}
		expected := sum.Mul(1.0 / frames)
		if got := r.Average(x, y); !got.ApproxEqualThreshold(expected, 1e-5) {
			t.Errorf("Pixel (%d,%d): expected average %v, got %v", x, y, expected, got)
		}
	}
}

func TestRender_RowsAreFlipped(t *testing.T) {
	sc := scene.New()
	sc.Background = scene.GradientBackground(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})

	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(4, 8)
	buffer := renderFrames(r, sc, camera, 1)

	// Ray-field row h-1 looks up and is the brightest, it lands on buffer row 0
	if buffer[0] != PackARGB(r.Average(0, 7)) {
		t.Errorf("Top buffer row should hold the last ray-field row")
	}
	if buffer[7*4] != PackARGB(r.Average(0, 0)) {
		t.Errorf("Bottom buffer row should hold the first ray-field row")
	}
	_, top, _, _ := UnpackARGB(buffer[0])
	_, bottom, _, _ := UnpackARGB(buffer[7*4])
	if top <= bottom {
		t.Errorf("Expected brighter top row, got top=%d bottom=%d", top, bottom)
	}
}

func TestRender_ConvergenceReducesVariance(t *testing.T) {
	sc := scene.NewSkyScene()
	const width, height = 12, 12
	seeds := []uint32{1, 2, 3, 4, 5, 6}

	variance := func(frames int) float64 {
		values := make([][]float64, len(seeds))
		for s, seed := range seeds {
			config := DefaultConfig()
			config.Seed = seed
			config.NumWorkers = 2
			r := NewRenderer(config, &testLogger{})
			renderFrames(r, sc, newTestCamera(width, height), frames)
			r.Close()

			values[s] = make([]float64, width*height)
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					values[s][x+y*width] = float64(core.Luminance(r.Average(x, y)))
				}
			}
		}

		// Sum over pixels of the variance across seeds
		var total float64
		for p := 0; p < width*height; p++ {
			var mean float64
			for s := range seeds {
				mean += values[s][p]
			}
			mean /= float64(len(seeds))
			for s := range seeds {
				d := values[s][p] - mean
				total += d * d
			}
		}
		return total
	}

	early := variance(2)
	late := variance(32)
	if !(late < early) {
		t.Errorf("Expected variance to shrink with more frames: 2 frames %f, 32 frames %f", early, late)
	}
	if math.IsNaN(late) {
		t.Error("Variance is NaN")
	}
}

func TestRender_ZeroViewport(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(0, 0)

	stats := r.Render(scene.NewDefaultScene(), camera, nil)
	if stats.TotalPixels != 0 || r.FrameIndex() != 1 {
		t.Errorf("Zero viewport should render nothing, got %+v at frame %d", stats, r.FrameIndex())
	}
}

func TestRender_ShortBuffer(t *testing.T) {
	logger := &testLogger{}
	r := NewRenderer(DefaultConfig(), logger)
	defer r.Close()
	camera := newTestCamera(8, 8)

	r.Render(scene.NewDefaultScene(), camera, make([]uint32, 10))
	if r.FrameIndex() != 1 {
		t.Error("Render into a short buffer should be skipped")
	}
	if len(logger.messages) == 0 {
		t.Error("Expected the skipped render to be logged")
	}
}

func TestRender_ResizeClearsAccumulation(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(8, 8)
	renderFrames(r, scene.NewGlowingSphereScene(), camera, 2)

	r.OnResize(8, 8)
	for _, v := range r.accumulation {
		if v != (mgl32.Vec4{}) {
			t.Fatal("OnResize should zero the accumulation buffer")
		}
	}
	if r.FrameIndex() != 1 || r.SampleCount() != 0 {
		t.Errorf("OnResize should restart accumulation, got frame %d with %d samples", r.FrameIndex(), r.SampleCount())
	}
}

func TestRender_StatsAndRestartAfterClose(t *testing.T) {
	r := newTestRenderer()
	camera := newTestCamera(20, 10)
	buffer := make([]uint32, 200)

	stats := r.Render(scene.NewDefaultScene(), camera, buffer)
	if stats.FrameIndex != 1 || stats.TotalPixels != 200 || stats.Workers != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.Tiles != 3*2 {
		t.Errorf("Expected 6 tiles of size 8, got %d", stats.Tiles)
	}

	r.Close()
	stats = r.Render(scene.NewDefaultScene(), camera, buffer)
	if stats.FrameIndex != 2 {
		t.Errorf("Expected rendering to continue after Close, got frame %d", stats.FrameIndex)
	}
	r.Close()
}

func TestRenderProgressive(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()
	camera := newTestCamera(8, 8)

	frameChan, errChan := r.RenderProgressive(context.Background(), scene.NewSkyScene(), camera, 5, 2)

	var results []FrameResult
	for result := range frameChan {
		results = append(results, result)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Frames 2, 4 and the final frame 5
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if !results[2].IsLast || results[0].IsLast {
		t.Error("Only the final result should be marked last")
	}
	if results[2].Stats.FrameIndex != 5 {
		t.Errorf("Expected last frame index 5, got %d", results[2].Stats.FrameIndex)
	}
	if b := results[0].Image.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("Unexpected image bounds %v", b)
	}
}

func TestRenderProgressive_Cancelled(t *testing.T) {
	r := newTestRenderer()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frameChan, errChan := r.RenderProgressive(ctx, scene.NewDefaultScene(), newTestCamera(8, 8), 10, 1)
	for range frameChan {
	}
	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
