package display

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/lindskogen/progressive-pathtracer/pkg/renderer"
)

// InputTracker folds window key and mouse events into the per-frame camera input
type InputTracker struct {
	held    map[key.Code]bool
	rotate  bool
	pointer mgl32.Vec2
}

// NewInputTracker creates a tracker with nothing held
func NewInputTracker() *InputTracker {
	return &InputTracker{held: make(map[key.Code]bool)}
}

// HandleKey records a key press or release. It returns true when the
// event asks the window to close.
func (t *InputTracker) HandleKey(e key.Event) bool {
	switch e.Direction {
	case key.DirPress:
		if e.Code == key.CodeEscape {
			return true
		}
		t.held[e.Code] = true
	case key.DirRelease:
		delete(t.held, e.Code)
	}
	return false
}

// HandleMouse tracks the pointer and the right button, which enables camera control
func (t *InputTracker) HandleMouse(e mouse.Event) {
	t.pointer = mgl32.Vec2{e.X, e.Y}

	if e.Button != mouse.ButtonRight {
		return
	}
	switch e.Direction {
	case mouse.DirPress:
		t.rotate = true
	case mouse.DirRelease:
		t.rotate = false
	}
}

// Input returns the current snapshot for the camera
func (t *InputTracker) Input() renderer.Input {
	return renderer.Input{
		RotateEnabled: t.rotate,
		Pointer:       t.pointer,
		Forward:       t.held[key.CodeW],
		Back:          t.held[key.CodeS],
		Left:          t.held[key.CodeA],
		Right:         t.held[key.CodeD],
		Down:          t.held[key.CodeQ],
		Up:            t.held[key.CodeE],
	}
}
