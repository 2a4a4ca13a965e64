package loaders

import (
	"fmt"
	"math"

	"github.com/disintegration/imaging"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// ImageData contains loaded image data as a linear color array
type ImageData struct {
	Width  int
	Height int
	Pixels []mgl32.Vec3
}

// LoadImage loads a PNG, JPEG or any other format imaging understands
func LoadImage(filename string) (*ImageData, error) {
	img, err := imaging.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	// Normalize to NRGBA so pixel access is uniform
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]mgl32.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := nrgba.NRGBAAt(x, y)
			pixels[y*width+x] = mgl32.Vec3{
				float32(c.R) / 255.0,
				float32(c.G) / 255.0,
				float32(c.B) / 255.0,
			}
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// At returns the pixel at (x, y) with coordinates clamped to the image
func (img *ImageData) At(x, y int) mgl32.Vec3 {
	x = max(0, min(x, img.Width-1))
	y = max(0, min(y, img.Height-1))
	return img.Pixels[y*img.Width+x]
}

// Environment returns a background that looks up escaped rays in an
// equirectangular (latitude-longitude) image, scaled by intensity.
func (img *ImageData) Environment(intensity float32) scene.BackgroundFunc {
	return func(ray core.Ray) mgl32.Vec3 {
		if img.Width == 0 || img.Height == 0 {
			return mgl32.Vec3{}
		}
		dir := ray.Direction
		if dir.Len() == 0 {
			return mgl32.Vec3{}
		}
		dir = dir.Normalize()

		u := 0.5 + math.Atan2(float64(dir.X()), float64(-dir.Z()))/(2*math.Pi)
		v := math.Acos(float64(mgl32.Clamp(dir.Y(), -1, 1))) / math.Pi

		x := int(u * float64(img.Width))
		y := int(v * float64(img.Height))
		return img.At(x, y).Mul(intensity)
	}
}
