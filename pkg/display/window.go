// Package display runs the interactive window: it feeds window input to the
// app, renders a frame per tick and presents it with a status overlay.
package display

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/lindskogen/progressive-pathtracer/pkg/app"
	"github.com/lindskogen/progressive-pathtracer/pkg/renderer"
)

// DefaultFrameInterval caps the window at roughly 60 frames per second
const DefaultFrameInterval = 16600 * time.Microsecond

// Options configures the window
type Options struct {
	Title         string
	Width         int
	Height        int
	FrameInterval time.Duration
	ShowOverlay   bool
}

// DefaultOptions returns a 712x400 window with the status overlay
func DefaultOptions() Options {
	return Options{
		Title:         "Progressive Path Tracer - ESC to exit",
		Width:         712,
		Height:        400,
		FrameInterval: DefaultFrameInterval,
		ShowOverlay:   true,
	}
}

// tick asks the event loop to render the next frame
type tick struct{}

// sender is the part of screen.Window the ticker posts to
type sender interface {
	Send(event interface{})
}

// ticker posts delayed tick events. After stop returns no goroutine of it
// touches the window again, so the window can be released.
type ticker struct {
	done chan struct{}
	wg   sync.WaitGroup
}

func newTicker() *ticker {
	return &ticker{done: make(chan struct{})}
}

// schedule sends a tick to w once wait has passed, unless stopped first
func (t *ticker) schedule(w sender, wait time.Duration) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-t.done:
				return
			}
		}
		select {
		case <-t.done:
		default:
			w.Send(tick{})
		}
	}()
}

// stop cancels pending ticks and waits for their goroutines to exit
func (t *ticker) stop() {
	close(t.done)
	t.wg.Wait()
}

// surface is the window-sized pixel storage: the packed frame the renderer
// writes and the shiny buffer it is uploaded from.
type surface struct {
	buffer screen.Buffer
	frame  []uint32
	width  int
	height int
}

func (v *surface) resize(s screen.Screen, width, height int) error {
	v.release()
	v.width, v.height = width, height
	if width <= 0 || height <= 0 {
		v.frame = nil
		return nil
	}

	buffer, err := s.NewBuffer(image.Point{width, height})
	if err != nil {
		return fmt.Errorf("couldn't create %dx%d buffer: %w", width, height, err)
	}
	v.buffer = buffer
	v.frame = make([]uint32, width*height)
	return nil
}

func (v *surface) release() {
	if v.buffer != nil {
		v.buffer.Release()
		v.buffer = nil
	}
}

// Run opens the window and drives a until the window closes or Escape is
// pressed. It must be called from the main goroutine.
func Run(a *app.App, opts Options) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		runErr = run(s, a, opts)
	})
	return runErr
}

func run(s screen.Screen, a *app.App, opts Options) error {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}

	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer w.Release()

	v := &surface{}
	if err := v.resize(s, opts.Width, opts.Height); err != nil {
		return err
	}
	defer v.release()
	a.Resize(opts.Width, opts.Height)

	// Registered after w.Release, so pending ticks are gone before the release
	ticks := newTicker()
	defer ticks.stop()

	input := NewInputTracker()
	last := time.Now()
	w.Send(tick{})

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			if e.WidthPx == v.width && e.HeightPx == v.height {
				continue
			}
			if err := v.resize(s, e.WidthPx, e.HeightPx); err != nil {
				return err
			}
			a.Resize(e.WidthPx, e.HeightPx)

		case key.Event:
			if input.HandleKey(e) {
				return nil
			}

		case mouse.Event:
			input.HandleMouse(e)

		case tick:
			start := time.Now()
			elapsed := start.Sub(last)
			last = start

			if v.buffer != nil {
				a.Frame(elapsed, input.Input(), v.frame)
				pixels := v.buffer.RGBA()
				renderer.CopyToRGBA(pixels, v.frame)
				if opts.ShowOverlay {
					DrawOverlay(pixels, a.LastRenderTime(), a.Renderer().SampleCount())
				}
				present(w, v)
			}

			ticks.schedule(w, opts.FrameInterval-time.Since(start))

		case paint.Event:
			present(w, v)

		case error:
			log.Printf("window error: %v", e)
		}
	}
}

func present(w screen.Window, v *surface) {
	if v.buffer == nil {
		return
	}
	w.Upload(image.Point{}, v.buffer, v.buffer.Bounds())
	w.Publish()
}
