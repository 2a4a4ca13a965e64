// Package app drives the per-frame sequence of the interactive renderer:
// apply input to the camera, invalidate accumulation on movement, render.
package app

import (
	"time"

	"github.com/lindskogen/progressive-pathtracer/pkg/core"
	"github.com/lindskogen/progressive-pathtracer/pkg/renderer"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// Config contains the camera and renderer settings of an App
type Config struct {
	Camera   renderer.CameraConfig
	Renderer renderer.Config
}

// DefaultConfig returns the default camera and renderer settings
func DefaultConfig() Config {
	return Config{
		Camera:   renderer.DefaultCameraConfig(),
		Renderer: renderer.DefaultConfig(),
	}
}

// App owns the scene, camera and renderer of one viewport
type App struct {
	scene          *scene.Scene
	camera         *renderer.Camera
	renderer       *renderer.Renderer
	width, height  int
	lastRenderTime time.Duration
	lastStats      renderer.FrameStats
	logger         core.Logger
}

// NewApp creates an App rendering sc into a width x height viewport
func NewApp(sc *scene.Scene, width, height int, config Config, logger core.Logger) *App {
	if logger == nil {
		logger = renderer.NewDefaultLogger()
	}

	r := renderer.NewRenderer(config.Renderer, logger)
	r.OnResize(width, height)

	return &App{
		scene:    sc,
		camera:   renderer.NewCamera(config.Camera),
		renderer: r,
		width:    width,
		height:   height,
		logger:   logger,
	}
}

// Resize changes the viewport. The camera picks up the new size on the next Render.
func (a *App) Resize(width, height int) {
	if width == a.width && height == a.height {
		return
	}
	a.width = width
	a.height = height
	a.renderer.OnResize(width, height)
}

// OnUpdate applies input to the camera and restarts accumulation if it moved.
// It reports whether the camera moved.
func (a *App) OnUpdate(elapsed time.Duration, input renderer.Input) bool {
	if a.camera.Update(elapsed, input) {
		a.renderer.ResetFrameIndex()
		return true
	}
	return false
}

// Render draws one frame into buffer, which must hold width*height pixels
func (a *App) Render(buffer []uint32) renderer.FrameStats {
	start := time.Now()

	a.camera.Resize(a.width, a.height)
	a.lastStats = a.renderer.Render(a.scene, a.camera, buffer)

	a.lastRenderTime = time.Since(start)
	return a.lastStats
}

// Frame runs one full update-then-render step
func (a *App) Frame(elapsed time.Duration, input renderer.Input, buffer []uint32) renderer.FrameStats {
	a.OnUpdate(elapsed, input)
	return a.Render(buffer)
}

// LastRenderTime returns the wall time of the most recent Render
func (a *App) LastRenderTime() time.Duration {
	return a.lastRenderTime
}

// LastStats returns the statistics of the most recent Render
func (a *App) LastStats() renderer.FrameStats {
	return a.lastStats
}

// Size returns the viewport size
func (a *App) Size() (width, height int) {
	return a.width, a.height
}

// Camera returns the app's camera
func (a *App) Camera() *renderer.Camera {
	return a.camera
}

// Renderer returns the app's renderer
func (a *App) Renderer() *renderer.Renderer {
	return a.renderer
}

// Close releases the renderer's workers
func (a *App) Close() {
	a.renderer.Close()
}
