package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestSmoother(t *testing.T) {
	s := NewSmoother(5)

	if _, ok := s.Push(detector.Landmark{X: 100, Y: 100}); ok {
		t.Error("one sample should produce no output")
	}
	if _, ok := s.Push(detector.Landmark{X: 200, Y: 100}); ok {
		t.Error("two samples should produce no output")
	}

	p, ok := s.Push(detector.Landmark{X: 300, Y: 400})
	if !ok {
		t.Fatal("three samples should produce output")
	}
	if p.X != 200 || p.Y != 200 {
		t.Errorf("mean = %+v, want (200,200)", p)
	}
}

func TestSmoother_WindowBounds(t *testing.T) {
	s := NewSmoother(3)
	for _, x := range []int{0, 0, 0, 90} {
		s.Push(detector.Landmark{X: x})
	}

	p, _ := s.Push(detector.Landmark{X: 90})
	if p.X != 60 {
		t.Errorf("mean over last 3 = %v, want 60", p.X)
	}
}

func TestSmoother_SmallWindowNeverOutputs(t *testing.T) {
	for _, window := range []int{1, 2} {
		s := NewSmoother(window)
		for i := 0; i < 10; i++ {
			if _, ok := s.Push(detector.Landmark{X: i, Y: i}); ok {
				t.Fatalf("window %d produced output", window)
			}
		}
	}
}

func TestSmoother_SetWindow(t *testing.T) {
	s := NewSmoother(10)
	for _, x := range []int{10, 20, 30, 40, 50} {
		s.Push(detector.Landmark{X: x})
	}

	s.SetWindow(3)
	if s.Window() != 3 {
		t.Fatalf("Window() = %d, want 3", s.Window())
	}

	// Window now holds 40, 50 and the new sample
	p, ok := s.Push(detector.Landmark{X: 60})
	if !ok || p.X != 50 {
		t.Errorf("Push() = %v, %v; want 50, true", p.X, ok)
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(5)
	for i := 0; i < 4; i++ {
		s.Push(detector.Landmark{X: 500, Y: 500})
	}

	s.Reset()

	if _, ok := s.Push(detector.Landmark{X: 1, Y: 1}); ok {
		t.Error("expected no output right after Reset")
	}
}
