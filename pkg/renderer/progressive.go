package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains configuration for progressive rendering
type Config struct {
	Bounces      int     // Maximum path segments per sample
	NormalOffset float32 // Distance bounced rays are pushed off the surface
	TileSize     int     // Size of each tile (64x64 recommended)
	NumWorkers   int     // Number of parallel workers (0 = use CPU count)
	Seed         uint32  // Mixed into every pixel's random sequence
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Bounces:      5,
		NormalOffset: 0.0001,
		TileSize:     64,
		NumWorkers:   0, // Auto-detect CPU count
		Seed:         0,
	}
}

// Renderer accumulates one path-traced sample per pixel per frame and
// displays the running average. Moving the camera must be followed by
// ResetFrameIndex to discard the stale accumulation.
type Renderer struct {
	config        Config
	width, height int
	frameIndex    int
	accumulation  []mgl32.Vec4 // Sum of samples since the last reset
	samples       []mgl32.Vec4 // Per-frame scratch, one slot per pixel
	tiles         []*Tile
	workerPool    *WorkerPool
	logger        core.Logger
}

// NewRenderer creates a renderer with an empty viewport
func NewRenderer(config Config, logger core.Logger) *Renderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Renderer{
		config:     config,
		frameIndex: 1,
		logger:     logger,
	}
}

// OnResize reallocates the accumulation buffer and clears it. Accumulation
// restarts at frame 1 since the buffer no longer holds any samples.
func (r *Renderer) OnResize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	r.width = width
	r.height = height
	n := width * height

	if cap(r.accumulation) < n {
		r.accumulation = make([]mgl32.Vec4, n)
		r.samples = make([]mgl32.Vec4, n)
	} else {
		r.accumulation = r.accumulation[:n]
		r.samples = r.samples[:n]
		clear(r.accumulation)
	}

	r.frameIndex = 1
	r.tiles = NewTileGrid(width, height, r.config.TileSize)
	r.logger.Printf("Resized accumulation buffer to %dx%d (%d tiles)\n", width, height, len(r.tiles))
}

// ResetFrameIndex restarts accumulation on the next Render
func (r *Renderer) ResetFrameIndex() {
	r.frameIndex = 1
}

// FrameIndex returns the index of the next frame to be rendered, starting at 1
func (r *Renderer) FrameIndex() int {
	return r.frameIndex
}

// SampleCount returns how many samples each pixel has accumulated
func (r *Renderer) SampleCount() int {
	return r.frameIndex - 1
}

// Average returns the mean radiance accumulated at pixel (x, y), where y = 0
// is the bottom row. It returns zero before any frame has been rendered.
func (r *Renderer) Average(x, y int) mgl32.Vec3 {
	n := r.SampleCount()
	if n <= 0 || x < 0 || y < 0 || x >= r.width || y >= r.height {
		return mgl32.Vec3{}
	}
	return r.accumulation[x+y*r.width].Vec3().Mul(1.0 / float32(n))
}

// Render adds one sample per pixel to the accumulation buffer and writes the
// averaged image into buffer as packed ARGB. Row y of the ray field lands on
// row height-y-1 of the buffer so the image is upright.
func (r *Renderer) Render(sc *scene.Scene, camera *Camera, buffer []uint32) FrameStats {
	start := time.Now()
	width, height := camera.ViewportWidth(), camera.ViewportHeight()

	if width <= 0 || height <= 0 {
		return FrameStats{}
	}
	if width != r.width || height != r.height {
		r.OnResize(width, height)
	}
	if len(buffer) < width*height {
		r.logger.Printf("Render skipped: buffer holds %d pixels, viewport needs %d\n", len(buffer), width*height)
		return FrameStats{}
	}

	if r.frameIndex == 1 {
		clear(r.accumulation)
	}

	frame := &frameContext{
		scene:      sc,
		origin:     camera.Position(),
		directions: camera.RayDirections(),
		width:      width,
		height:     height,
		frameIndex: r.frameIndex,
		samples:    r.samples,
	}
	r.renderTiles(frame)

	inv := 1.0 / float32(r.frameIndex)
	var luminance float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := x + y*width
			r.accumulation[i] = r.accumulation[i].Add(r.samples[i])

			color := r.accumulation[i].Mul(inv).Vec3()
			luminance += float64(core.Luminance(color))
			buffer[x+(height-y-1)*width] = PackARGB(color)
		}
	}

	stats := FrameStats{
		FrameIndex:    r.frameIndex,
		TotalPixels:   width * height,
		Tiles:         len(r.tiles),
		Workers:       r.workerPool.Size(),
		MeanLuminance: luminance / float64(width*height),
		Duration:      time.Since(start),
	}

	r.frameIndex++
	return stats
}

// renderTiles fans the frame out over the worker pool and waits for every tile
func (r *Renderer) renderTiles(frame *frameContext) {
	if r.workerPool == nil {
		r.workerPool = NewWorkerPool(r, r.config.NumWorkers)
	}

	if n := r.workerPool.RenderFrame(frame, r.tiles); n != frame.width*frame.height {
		r.logger.Printf("Warning: frame %d covered %d of %d pixels\n", frame.frameIndex, n, frame.width*frame.height)
	}
}

// Close stops the worker goroutines. The renderer can still be used
// afterwards; a new pool is started on the next Render.
func (r *Renderer) Close() {
	if r.workerPool != nil {
		r.workerPool.Stop()
		r.workerPool = nil
	}
}

// FrameResult contains the result of a single progressive frame
type FrameResult struct {
	Image  *image.RGBA
	Stats  FrameStats
	IsLast bool
}

// RenderProgressive renders frames accumulating into the same image and
// delivers every frame whose number is a multiple of every (and the last one)
// on the returned channel. The error channel receives ctx.Err() on cancellation.
func (r *Renderer) RenderProgressive(ctx context.Context, sc *scene.Scene, camera *Camera, frames, every int) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)
	if every <= 0 {
		every = 1
	}

	go func() {
		defer close(frameChan)
		defer close(errChan)

		width, height := camera.ViewportWidth(), camera.ViewportHeight()
		buffer := make([]uint32, width*height)

		r.logger.Printf("Starting progressive rendering of %d frames...\n", frames)

		for frame := 1; frame <= frames; frame++ {
			select {
			case <-ctx.Done():
				r.logger.Printf("Rendering cancelled before frame %d\n", frame)
				errChan <- ctx.Err()
				return
			default:
			}

			stats := r.Render(sc, camera, buffer)
			isLast := frame == frames
			if frame%every != 0 && !isLast {
				continue
			}

			r.logger.Printf("Frame %d completed in %v\n", stats.FrameIndex, stats.Duration)

			result := FrameResult{
				Image:  BufferToRGBA(buffer, width, height),
				Stats:  stats,
				IsLast: isLast,
			}
			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return frameChan, errChan
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1) in ray-field coordinates
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return tiles
	}

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}

	return tiles
}
