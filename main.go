package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/lindskogen/progressive-pathtracer/pkg/app"
	"github.com/lindskogen/progressive-pathtracer/pkg/config"
	"github.com/lindskogen/progressive-pathtracer/pkg/display"
	"github.com/lindskogen/progressive-pathtracer/pkg/loaders"
	"github.com/lindskogen/progressive-pathtracer/pkg/output"
	"github.com/lindskogen/progressive-pathtracer/pkg/renderer"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}

	// Command line flags override the environment
	sceneName := flag.String("scene", cfg.Scene, "Scene: a built-in name, file:<name> or a path to a .json scene")
	width := flag.Int("width", cfg.Width, "Viewport width in pixels")
	height := flag.Int("height", cfg.Height, "Viewport height in pixels")
	frames := flag.Int("frames", cfg.Frames, "Frames to accumulate in headless mode")
	headless := flag.Bool("headless", cfg.Headless, "Render without a window and save the result")
	outDir := flag.String("out", cfg.OutputDir, "Output directory for headless renders")
	upscale := flag.Int("upscale", cfg.Upscale, "Integer upscale factor for saved renders")
	workers := flag.Int("workers", cfg.Workers, "Render workers (0 = one per CPU)")
	bounces := flag.Int("bounces", cfg.Bounces, "Maximum path length")
	seed := flag.Uint("seed", uint(cfg.Seed), "Sampler seed")
	upload := flag.Bool("upload", false, "Upload the headless render to S3")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	cfg.Scene = *sceneName
	cfg.Width = *width
	cfg.Height = *height
	cfg.Frames = *frames
	cfg.Headless = *headless
	cfg.OutputDir = *outDir
	cfg.Upscale = *upscale
	cfg.Workers = *workers
	cfg.Bounces = *bounces
	if *seed > math.MaxUint32 {
		log.Printf("Invalid options: seed %d does not fit in 32 bits", *seed)
		os.Exit(1)
	}
	cfg.Seed = uint32(*seed)

	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid options: %v", err)
		os.Exit(1)
	}

	if err := run(cfg, *upload); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Progressive Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, name := range scene.Names() {
		fmt.Printf("  %s\n", name)
	}
	if files, err := scene.ListFileScenes(scene.ScenesDir()); err == nil {
		for _, info := range files {
			fmt.Printf("  %s - %s\n", info.ID, info.Name)
		}
	}
	fmt.Println()
	fmt.Println("Window controls: hold the right mouse button to look around,")
	fmt.Println("W/S/A/D to move, Q/E to go down/up, ESC to exit.")
	fmt.Println()
	fmt.Println("Headless output is saved to <out>/<scene>/render_<timestamp>.png")
}

func run(cfg config.Config, upload bool) error {
	sc, err := createScene(cfg.Scene)
	if err != nil {
		return err
	}

	a := app.NewApp(sc, cfg.Width, cfg.Height, appConfig(cfg), renderer.NewDefaultLogger())
	defer a.Close()

	if !cfg.Headless {
		opts := display.DefaultOptions()
		opts.Width = cfg.Width
		opts.Height = cfg.Height
		return display.Run(a, opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := renderHeadless(ctx, a, cfg.Frames)
	if err != nil {
		return err
	}
	img = output.Upscale(img, cfg.Upscale)

	name := output.RenderName(sceneDirName(cfg.Scene), time.Now())
	sinks := []output.Sink{output.NewFileSink(cfg.OutputDir)}
	if upload {
		s3Sink, err := output.NewS3Sink(cfg.S3, "renders")
		if err != nil {
			return err
		}
		sinks = append(sinks, s3Sink)
	}

	for _, sink := range sinks {
		location, err := sink.Save(ctx, name, img)
		if err != nil {
			return err
		}
		log.Printf("Render saved as %s", location)
	}
	return nil
}

// createScene resolves a scene name from the command line
func createScene(name string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("no scene given")
	}
	sc, err := loaders.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	return sc, nil
}

// appConfig maps the shared settings onto the camera and renderer
func appConfig(cfg config.Config) app.Config {
	c := app.DefaultConfig()
	c.Renderer.NumWorkers = cfg.Workers
	c.Renderer.Bounces = cfg.Bounces
	c.Renderer.Seed = cfg.Seed
	return c
}

// renderHeadless accumulates frames without a window and returns the final image
func renderHeadless(ctx context.Context, a *app.App, frames int) (image.Image, error) {
	width, height := a.Size()
	buffer := make([]uint32, width*height)

	log.Printf("Rendering %d frames at %dx%d...", frames, width, height)
	start := time.Now()

	for frame := 1; frame <= frames; frame++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render interrupted after %d frames: %w", frame-1, err)
		}

		stats := a.Render(buffer)
		if frame%10 == 0 || frame == frames {
			log.Printf("Frame %d: %v (%.0f samples/s, mean luminance %.3f)",
				stats.FrameIndex, a.LastRenderTime(), stats.SamplesPerSecond(), stats.MeanLuminance)
		}
	}

	img := renderer.BufferToRGBA(buffer, width, height)
	log.Printf("Render completed in %v (mean luminance %.3f)", time.Since(start), renderer.CalculateAverageLuminance(img))
	return img, nil
}

// sceneDirName turns a scene id into a directory name for output
func sceneDirName(name string) string {
	sc := []rune(name)
	for i, r := range sc {
		switch r {
		case ':', '/', '\\', '.':
			sc[i] = '_'
		}
	}
	return string(sc)
}
