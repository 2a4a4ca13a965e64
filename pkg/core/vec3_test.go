package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRay_At(t *testing.T) {
	ray := NewRay(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, -1})
	got := ray.At(2)
	expected := mgl32.Vec3{1, 2, 1}
	if !got.ApproxEqual(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestMulElem(t *testing.T) {
	got := MulElem(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.5, 0, -1})
	expected := mgl32.Vec3{0.5, 0, -3}
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestReflect(t *testing.T) {
	incident := mgl32.Vec3{1, -1, 0}
	normal := mgl32.Vec3{0, 1, 0}
	got := Reflect(incident, normal)
	expected := mgl32.Vec3{1, 1, 0}
	if !got.ApproxEqual(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestClamp01(t *testing.T) {
	got := Clamp01(mgl32.Vec3{-0.5, 0.25, 3})
	expected := mgl32.Vec3{0, 0.25, 1}
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestLuminance(t *testing.T) {
	if l := Luminance(mgl32.Vec3{1, 1, 1}); l < 0.9999 || l > 1.0001 {
		t.Errorf("White luminance should be 1, got %f", l)
	}
	if l := Luminance(mgl32.Vec3{}); l != 0 {
		t.Errorf("Black luminance should be 0, got %f", l)
	}
}
