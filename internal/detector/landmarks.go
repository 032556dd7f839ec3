// Package detector provides hand detection interfaces and types for gesture control.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a normalized landmark as reported by MediaPipe.
// X and Y are fractions of the frame width and height, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
	Incomplete bool                  `json:"incomplete,omitempty"`
}

// Landmark is a 2D point in camera pixel space with a top-left origin.
type Landmark struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Hand is an ordered sequence of landmarks indexed by the constants above.
// A well-formed hand has exactly NumLandmarks entries.
type Hand []Landmark

// Valid reports whether the hand carries a full landmark set.
func (h Hand) Valid() bool {
	return len(h) >= NumLandmarks
}

// ToPixels converts the normalized landmarks to pixel coordinates for a
// frame of the given size. Coordinates are truncated toward zero.
// An incomplete detection yields an empty, non-nil Hand.
func (h *HandLandmarks) ToPixels(width, height int) Hand {
	if h == nil {
		return nil
	}
	if h.Incomplete {
		return Hand{}
	}

	hand := make(Hand, NumLandmarks)
	for i := 0; i < NumLandmarks; i++ {
		hand[i] = Landmark{
			X: int(h.Points[i].X * float64(width)),
			Y: int(h.Points[i].Y * float64(height)),
		}
	}
	return hand
}
