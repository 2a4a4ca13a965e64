package renderer

import (
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
)

// FrameStats contains statistics about a single rendered frame
type FrameStats struct {
	FrameIndex    int           // Samples per pixel after this frame
	TotalPixels   int           // Total number of pixels rendered
	Tiles         int           // Tiles the frame was split into
	Workers       int           // Parallel workers used
	MeanLuminance float64       // Mean luminance of the displayed image
	Duration      time.Duration // Wall time spent in Render
}

// SamplesPerSecond returns the sample throughput of the frame
func (fs FrameStats) SamplesPerSecond() float64 {
	if fs.Duration <= 0 {
		return 0
	}
	return float64(fs.TotalPixels) / fs.Duration.Seconds()
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			c := mgl32.Vec3{float32(r) / 65535.0, float32(g) / 65535.0, float32(b) / 65535.0}
			total += float64(core.Luminance(c))
		}
	}
	return total / float64(pixels)
}
