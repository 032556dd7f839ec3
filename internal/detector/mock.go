package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger extension flags for FingersLandmarks, in counting order.
const (
	FingerIndex = 1 << iota
	FingerMiddle
	FingerRing
	FingerPinky
	FingerThumb
)

// FingersLandmarks returns a right hand, palm facing the camera in a mirrored
// frame, with the fingers named in mask extended and the rest curled.
// Extended fingers have their tip well above the PIP joint; an extended thumb
// reaches sideways far beyond its IP joint.
func FingersLandmarks(mask int) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.85}

	// Thumb: IP joint is fixed, the tip either reaches out or tucks in
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.80}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.75}
	landmarks.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.70}
	if mask&FingerThumb != 0 {
		landmarks.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.66}
	} else {
		landmarks.Points[ThumbTip] = Point3D{X: 0.56, Y: 0.68}
	}

	fingers := []struct {
		flag               int
		mcp, pip, dip, tip int
		x                  float64
	}{
		{FingerIndex, IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.55},
		{FingerMiddle, MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.50},
		{FingerRing, RingMCP, RingPIP, RingDIP, RingTip, 0.45},
		{FingerPinky, PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.40},
	}

	for _, f := range fingers {
		landmarks.Points[f.mcp] = Point3D{X: f.x, Y: 0.65}
		landmarks.Points[f.pip] = Point3D{X: f.x, Y: 0.55}
		if f.flag&mask != 0 {
			landmarks.Points[f.dip] = Point3D{X: f.x, Y: 0.45}
			landmarks.Points[f.tip] = Point3D{X: f.x, Y: 0.35}
		} else {
			// Curled back toward the palm, tip below the PIP joint
			landmarks.Points[f.dip] = Point3D{X: f.x - 0.02, Y: 0.60}
			landmarks.Points[f.tip] = Point3D{X: f.x - 0.03, Y: 0.66}
		}
	}

	return landmarks
}

// CountLandmarks returns a hand showing n extended fingers (0-5), adding
// index, middle, ring, pinky and finally the thumb.
func CountLandmarks(n int) HandLandmarks {
	order := []int{FingerIndex, FingerMiddle, FingerRing, FingerPinky, FingerThumb}
	mask := 0
	for i := 0; i < n && i < len(order); i++ {
		mask |= order[i]
	}
	return FingersLandmarks(mask)
}

// OpenPalmLandmarks returns a hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return CountLandmarks(5)
}

// FistLandmarks returns a hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return CountLandmarks(0)
}
