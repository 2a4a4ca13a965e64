package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lindskogen/progressive-pathtracer/pkg/core"
)

// PackARGB clamps a linear color to [0, 1] and packs it as 0xAARRGGBB with
// opaque alpha. Channels are truncated, not rounded.
func PackARGB(c mgl32.Vec3) uint32 {
	c = core.Clamp01(c)
	r := uint32(uint8(c[0] * 255.0))
	g := uint32(uint8(c[1] * 255.0))
	b := uint32(uint8(c[2] * 255.0))
	return 0xFF000000 | r<<16 | g<<8 | b
}

// UnpackARGB splits a packed pixel into its channels
func UnpackARGB(p uint32) (a, r, g, b uint8) {
	return uint8(p >> 24), uint8(p >> 16), uint8(p >> 8), uint8(p)
}

// BufferToRGBA copies a packed ARGB buffer into a new RGBA image
func BufferToRGBA(buffer []uint32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	CopyToRGBA(img, buffer)
	return img
}

// CopyToRGBA unpacks buffer into dst in row order. Pixels beyond either
// length are left untouched.
func CopyToRGBA(dst *image.RGBA, buffer []uint32) {
	b := dst.Bounds()
	width := b.Dx()
	n := width * b.Dy()
	if len(buffer) < n {
		n = len(buffer)
	}

	for i := 0; i < n; i++ {
		a, r, g, bl := UnpackARGB(buffer[i])
		o := dst.PixOffset(b.Min.X+i%width, b.Min.Y+i/width)
		dst.Pix[o+0] = r
		dst.Pix[o+1] = g
		dst.Pix[o+2] = bl
		dst.Pix[o+3] = a
	}
}
