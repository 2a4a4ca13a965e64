package display

import (
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	overlayPadding = 4.0
	overlayHeight  = 18.0
)

// FormatStatus renders the overlay text: render time in milliseconds and
// the number of samples accumulated so far.
func FormatStatus(renderTime time.Duration, samples int) string {
	ms := float64(renderTime.Microseconds()) / 1000.0
	return fmt.Sprintf("%.2fms  %d spp", ms, samples)
}

// DrawOverlay draws the status text in the top-left corner of img
func DrawOverlay(img *image.RGBA, renderTime time.Duration, samples int) {
	text := FormatStatus(renderTime, samples)

	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(basicfont.Face7x13)

	textWidth, _ := dc.MeasureString(text)
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, textWidth+2*overlayPadding, overlayHeight)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawString(text, overlayPadding, overlayHeight-overlayPadding-1)
}
