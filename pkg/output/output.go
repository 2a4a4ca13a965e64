// Package output publishes finished renders: upscaling, PNG encoding and
// the file and S3 sinks used by the headless binary.
package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/nfnt/resize"
)

// Sink stores an encoded render under name and returns where it ended up
type Sink interface {
	Save(ctx context.Context, name string, img image.Image) (string, error)
}

// Upscale enlarges img by an integer factor with nearest-neighbour sampling,
// which keeps individual path traced pixels sharp. Factors below 2 return img.
func Upscale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	return resize.Resize(uint(b.Dx()*factor), uint(b.Dy()*factor), img, resize.NearestNeighbor)
}

// EncodePNG encodes img into a PNG byte slice
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderName returns the timestamped file name of a render of sceneName
func RenderName(sceneName string, at time.Time) string {
	return fmt.Sprintf("%s/render_%s.png", sceneName, at.Format("20060102_150405"))
}
