package renderer

import "github.com/go-gl/mathgl/mgl32"

// Input is a snapshot of the user input relevant to the camera for one frame
type Input struct {
	RotateEnabled bool       // Rotate button held; movement is ignored otherwise
	Pointer       mgl32.Vec2 // Pointer position in window pixels
	Forward       bool
	Back          bool
	Left          bool
	Right         bool
	Down          bool
	Up            bool
}
