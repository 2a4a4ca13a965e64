package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// frameContext is everything a worker needs to render one frame
type frameContext struct {
	scene         *scene.Scene
	origin        mgl32.Vec3
	directions    []mgl32.Vec3
	width, height int
	frameIndex    int
	samples       []mgl32.Vec4
}

// TileRenderer renders the pixels of a tile into the frame's sample buffer.
// Each worker owns one, so the sampler is never shared.
type TileRenderer struct {
	renderer *Renderer
	sampler  *core.PCGSampler
}

// NewTileRenderer creates a tile renderer bound to r's integrator settings
func NewTileRenderer(r *Renderer) *TileRenderer {
	return &TileRenderer{
		renderer: r,
		sampler:  core.NewPCGSampler(0),
	}
}

// RenderTileBounds takes one sample for every pixel within bounds and
// returns the number of pixels rendered.
func (tr *TileRenderer) RenderTileBounds(frame *frameContext, bounds image.Rectangle) int {
	seed := tr.renderer.config.Seed
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := x + y*frame.width
			tr.sampler.Reset(core.PixelSeed(i, frame.frameIndex, seed))
			frame.samples[i] = tr.renderer.perPixel(frame, x, y, tr.sampler)
		}
	}
	return bounds.Dx() * bounds.Dy()
}
