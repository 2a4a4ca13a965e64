package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/lindskogen/progressive-pathtracer/pkg/loaders"
	"github.com/lindskogen/progressive-pathtracer/pkg/output"
	"github.com/lindskogen/progressive-pathtracer/pkg/renderer"
	"github.com/lindskogen/progressive-pathtracer/pkg/scene"
)

// FrameUpdate represents a single progressive frame sent via SSE
type FrameUpdate struct {
	FrameNumber      int     `json:"frameNumber"`
	TotalFrames      int     `json:"totalFrames"`
	ImageData        string  `json:"imageData"` // Base64 encoded PNG
	ElapsedMs        int64   `json:"elapsedMs"`
	FrameMs          float64 `json:"frameMs"`
	MeanLuminance    float64 `json:"meanLuminance"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	IsComplete       bool    `json:"isComplete"`
}

// SSEEvent is one queued server-sent event
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"`
}

// RenderingPipeline contains the configured scene, camera and renderer
type RenderingPipeline struct {
	Scene    *scene.Scene
	Camera   *renderer.Camera
	Renderer *renderer.Renderer
}

// eventStream serializes writes to an SSE response. Only the goroutine started
// by newEventStream touches the ResponseWriter.
type eventStream struct {
	ctx    context.Context
	events chan SSEEvent
	done   chan struct{}
}

func newEventStream(ctx context.Context, w http.ResponseWriter) *eventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")

	es := &eventStream{
		ctx:    ctx,
		events: make(chan SSEEvent, 100),
		done:   make(chan struct{}),
	}
	go es.write(w)
	return es
}

// send queues an event, giving up if the client has gone away
func (es *eventStream) send(eventType, data string) {
	select {
	case es.events <- SSEEvent{Type: eventType, Data: data}:
	case <-es.ctx.Done():
	}
}

// trySend queues an event only if there is room for it
func (es *eventStream) trySend(eventType, data string) {
	select {
	case es.events <- SSEEvent{Type: eventType, Data: data}:
	default:
	}
}

// close flushes the queued events and waits for the writer to exit
func (es *eventStream) close() {
	close(es.events)
	<-es.done
}

func (es *eventStream) write(w http.ResponseWriter) {
	defer close(es.done)
	flusher, _ := w.(http.Flusher)

	// Keep draining after a failed write so senders never block on a dead client
	broken := false
	for event := range es.events {
		if broken || es.ctx.Err() != nil {
			broken = true
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			broken = true
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleRender streams a progressive render as frame, console, error and
// complete events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream := newEventStream(ctx, w)
	defer stream.close()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		stream.send("error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	console := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		forwardConsole(console, stream)
	}()
	defer func() {
		close(console)
		<-consoleDone
	}()

	pipeline, err := s.setupRenderingPipeline(req, NewWebLogger(renderID, console))
	if err != nil {
		stream.send("error", err.Error())
		return
	}
	defer pipeline.Renderer.Close()

	started := time.Now()
	frames, errs := pipeline.Renderer.RenderProgressive(ctx, pipeline.Scene, pipeline.Camera, req.Frames, req.Every)

	// Drain until the render goroutine exits so nothing logs after teardown
	for result := range frames {
		if ctx.Err() != nil {
			continue
		}
		update, err := newFrameUpdate(result, req.Frames, started)
		if err != nil {
			log.Printf("Error encoding frame %d: %v", result.Stats.FrameIndex, err)
			continue
		}
		data, err := json.Marshal(update)
		if err != nil {
			log.Printf("Error marshaling frame update: %v", err)
			continue
		}
		stream.send("frame", string(data))
	}

	if err := <-errs; err != nil {
		stream.send("error", fmt.Sprintf("Rendering failed: %v", err))
		return
	}
	stream.send("complete", "Rendering completed")
}

// forwardConsole turns logger output into console events. Messages are
// dropped while the event queue is full.
func forwardConsole(console <-chan ConsoleMessage, stream *eventStream) {
	for msg := range console {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}
		stream.trySend("console", string(data))
	}
}

// newFrameUpdate encodes a delivered frame for the browser
func newFrameUpdate(result renderer.FrameResult, totalFrames int, started time.Time) (FrameUpdate, error) {
	png, err := output.EncodePNG(result.Image)
	if err != nil {
		return FrameUpdate{}, err
	}

	return FrameUpdate{
		FrameNumber:      result.Stats.FrameIndex,
		TotalFrames:      totalFrames,
		ImageData:        base64.StdEncoding.EncodeToString(png),
		ElapsedMs:        time.Since(started).Milliseconds(),
		FrameMs:          float64(result.Stats.Duration.Microseconds()) / 1000.0,
		MeanLuminance:    result.Stats.MeanLuminance,
		SamplesPerSecond: result.Stats.SamplesPerSecond(),
		IsComplete:       result.IsLast,
	}, nil
}

// setupRenderingPipeline resolves the scene and builds a camera and renderer for it
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger *WebLogger) (*RenderingPipeline, error) {
	sc, err := loaders.Resolve(req.Scene)
	if err != nil {
		return nil, fmt.Errorf("Unknown scene: %s: %w", req.Scene, err)
	}

	camera := renderer.NewCamera(renderer.DefaultCameraConfig())
	camera.Resize(req.Width, req.Height)

	config := renderer.DefaultConfig()
	config.Bounces = req.Bounces
	config.Seed = req.Seed
	config.TileSize = DefaultTileSize

	r := renderer.NewRenderer(config, logger)
	r.OnResize(req.Width, req.Height)

	return &RenderingPipeline{Scene: sc, Camera: camera, Renderer: r}, nil
}

// parseRenderRequest reads the scene, size and sampling parameters of a render
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.Frames, err = parseIntParam(query, "frames", 50, 1, 10000); err != nil {
		return nil, err
	}
	if req.Every, err = parseIntParam(query, "every", 5, 1, 10000); err != nil {
		return nil, err
	}
	if req.Bounces, err = parseIntParam(query, "bounces", renderer.DefaultConfig().Bounces, 1, 64); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", 0, 0, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	req.Seed = uint32(seed)

	if req.Width*req.Height > 800*600 && req.Frames > 500 {
		log.Printf("Render warning: %dx%d with %d frames may render slowly", req.Width, req.Height, req.Frames)
	}
	return req, nil
}
