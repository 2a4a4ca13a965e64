package renderer

import (
	"runtime"
	"sync"
)

// tileJob is one tile of one frame handed to a worker
type tileJob struct {
	tile  *Tile
	frame *frameContext
}

// tileDone reports a finished tile back to the frame that owns it
type tileDone struct {
	worker int
	pixels int
}

// WorkerPool renders the tiles of a frame in parallel. Each worker owns a
// TileRenderer for the lifetime of the pool; the pool is reused across frames.
type WorkerPool struct {
	jobs    chan tileJob
	done    chan tileDone
	workers []*TileRenderer
	load    []int // tiles finished per worker during the last frame
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWorkerPool starts size workers for r. A size of zero or less means one
// worker per CPU.
func NewWorkerPool(r *Renderer, size int) *WorkerPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	wp := &WorkerPool{
		jobs:    make(chan tileJob, size*4),
		done:    make(chan tileDone, size*4),
		workers: make([]*TileRenderer, size),
		load:    make([]int, size),
	}
	for id := range wp.workers {
		wp.workers[id] = NewTileRenderer(r)
		wp.wg.Add(1)
		go wp.work(id)
	}
	return wp
}

// Size returns the number of workers
func (wp *WorkerPool) Size() int {
	return len(wp.workers)
}

// RenderFrame renders every tile of frame and blocks until all of them are
// done. It returns the number of pixels written.
func (wp *WorkerPool) RenderFrame(frame *frameContext, tiles []*Tile) int {
	clear(wp.load)

	// Feed from another goroutine so a full job queue never stalls collection
	go func() {
		for _, tile := range tiles {
			wp.jobs <- tileJob{tile: tile, frame: frame}
		}
	}()

	pixels := 0
	for range tiles {
		d := <-wp.done
		wp.load[d.worker]++
		pixels += d.pixels
	}
	return pixels
}

// Load returns how many tiles each worker finished in the last frame
func (wp *WorkerPool) Load() []int {
	return append([]int(nil), wp.load...)
}

// Stop shuts the workers down. It must not overlap a RenderFrame call.
func (wp *WorkerPool) Stop() {
	wp.once.Do(func() {
		close(wp.jobs)
		wp.wg.Wait()
	})
}

func (wp *WorkerPool) work(id int) {
	defer wp.wg.Done()

	tr := wp.workers[id]
	for job := range wp.jobs {
		// Tile bounds never overlap, so each worker writes its own sample slots
		n := tr.RenderTileBounds(job.frame, job.tile.Bounds)
		wp.done <- tileDone{worker: id, pixels: n}
	}
}
