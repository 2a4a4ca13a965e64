package renderer

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// upDirection is the fixed world up axis used for strafing and yaw
var upDirection = mgl32.Vec3{0, 1, 0}

// CameraConfig contains the parameters of the interactive camera
type CameraConfig struct {
	VerticalFOV        float32    // Vertical field of view in degrees
	NearClip           float32    // Near clipping distance
	FarClip            float32    // Far clipping distance
	Position           mgl32.Vec3 // Initial eye position
	Forward            mgl32.Vec3 // Initial forward direction (unit length)
	MoveSpeed          float32    // Translation per 10ms of held key
	RotationSpeed      float32    // Radians per unit of scaled pointer delta
	PointerSensitivity float32    // Scale applied to raw pointer deltas
}

// DefaultCameraConfig returns the standard camera placement: six units back
// on +Z with a 45 degree field of view.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		VerticalFOV:        45.0,
		NearClip:           0.1,
		FarClip:            100.0,
		Position:           mgl32.Vec3{0, 0, 6},
		Forward:            mgl32.Vec3{0, 0, 1},
		MoveSpeed:          0.05,
		RotationSpeed:      0.3,
		PointerSensitivity: 0.02,
	}
}

// Cursor is the pointer affordance the camera asks the window to show
type Cursor int

const (
	CursorArrow Cursor = iota
	CursorCrosshair
)

// Camera holds the view and projection state and a cached primary ray
// direction for every pixel of the viewport.
type Camera struct {
	config CameraConfig

	projection        mgl32.Mat4
	view              mgl32.Mat4
	inverseProjection mgl32.Mat4
	inverseView       mgl32.Mat4

	position mgl32.Vec3
	forward  mgl32.Vec3

	rayDirections []mgl32.Vec3
	lastPointer   mgl32.Vec2
	cursor        Cursor

	viewportWidth  int
	viewportHeight int
}

// NewCamera creates a camera with an empty viewport. The view matrix is
// computed immediately; the projection waits for the first Resize.
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{
		config:            config,
		projection:        mgl32.Ident4(),
		inverseProjection: mgl32.Ident4(),
		position:          config.Position,
		forward:           config.Forward,
		cursor:            CursorArrow,
	}
	c.recalculateView()
	return c
}

// Resize updates the viewport. It is a no-op when the size is unchanged.
// A zero-sized viewport clears the ray field and skips the projection.
func (c *Camera) Resize(width, height int) {
	if width == c.viewportWidth && height == c.viewportHeight {
		return
	}

	c.viewportWidth = width
	c.viewportHeight = height

	if width <= 0 || height <= 0 {
		c.rayDirections = c.rayDirections[:0]
		return
	}

	c.recalculateProjection()
	c.recalculateRayDirections()
}

// Update applies one frame of user input. It returns true when the camera
// moved or turned, which invalidates any accumulated image.
func (c *Camera) Update(elapsed time.Duration, input Input) bool {
	delta := input.Pointer.Sub(c.lastPointer).Mul(c.config.PointerSensitivity)
	c.lastPointer = input.Pointer

	if !input.RotateEnabled {
		c.cursor = CursorArrow
		return false
	}
	c.cursor = CursorCrosshair

	moved := false
	right := c.forward.Cross(upDirection)
	step := c.config.MoveSpeed * float32(elapsed.Seconds()) * 100.0

	if input.Forward {
		c.position = c.position.Sub(c.forward.Mul(step))
		moved = true
	}
	if input.Back {
		c.position = c.position.Add(c.forward.Mul(step))
		moved = true
	}
	if input.Left {
		c.position = c.position.Add(right.Mul(step))
		moved = true
	}
	if input.Right {
		c.position = c.position.Sub(right.Mul(step))
		moved = true
	}
	if input.Down {
		c.position = c.position.Sub(upDirection.Mul(step))
		moved = true
	}
	if input.Up {
		c.position = c.position.Add(upDirection.Mul(step))
		moved = true
	}

	if delta.X() != 0 || delta.Y() != 0 {
		pitch := delta.Y() * c.config.RotationSpeed
		yaw := -delta.X() * c.config.RotationSpeed

		q := mgl32.QuatRotate(yaw, upDirection).Mul(mgl32.QuatRotate(pitch, right)).Normalize()
		c.forward = q.Rotate(c.forward)
		moved = true
	}

	if moved {
		c.recalculateView()
		c.recalculateRayDirections()
	}

	return moved
}

// RayDirections returns the world-space primary ray direction of each pixel,
// indexed x + y*width. The slice is owned by the camera.
func (c *Camera) RayDirections() []mgl32.Vec3 {
	return c.rayDirections
}

// Position returns the eye position
func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

// Forward returns the current forward direction
func (c *Camera) Forward() mgl32.Vec3 {
	return c.forward
}

// Cursor returns the cursor affordance chosen by the last Update
func (c *Camera) Cursor() Cursor {
	return c.cursor
}

// ViewportWidth returns the viewport width in pixels
func (c *Camera) ViewportWidth() int {
	return c.viewportWidth
}

// ViewportHeight returns the viewport height in pixels
func (c *Camera) ViewportHeight() int {
	return c.viewportHeight
}

func (c *Camera) recalculateProjection() {
	aspect := float32(c.viewportWidth) / float32(c.viewportHeight)
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.config.VerticalFOV), aspect, c.config.NearClip, c.config.FarClip)
	c.inverseProjection = c.projection.Inv()
}

// recalculateView builds a left-handed look-to matrix, which is the
// right-handed look-at toward position - forward.
func (c *Camera) recalculateView() {
	c.view = mgl32.LookAtV(c.position, c.position.Sub(c.forward), upDirection)
	c.inverseView = c.view.Inv()
}

func (c *Camera) recalculateRayDirections() {
	w, h := c.viewportWidth, c.viewportHeight
	if w <= 0 || h <= 0 {
		c.rayDirections = c.rayDirections[:0]
		return
	}

	n := w * h
	if cap(c.rayDirections) < n {
		c.rayDirections = make([]mgl32.Vec3, n)
	}
	c.rayDirections = c.rayDirections[:n]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			coordX := float32(x)/float32(w)*2.0 - 1.0
			coordY := float32(y)/float32(h)*2.0 - 1.0

			target := c.inverseProjection.Mul4x1(mgl32.Vec4{coordX, coordY, 1, 1})
			dir := target.Vec3().Mul(1.0 / target.W()).Normalize()
			c.rayDirections[x+y*w] = c.inverseView.Mul4x1(dir.Vec4(0)).Vec3()
		}
	}
}
