package gesture

// CameraMargin is the inset, in camera pixels, of the active region on every side.
const CameraMargin = 120

// Mapper maps camera pixel coordinates to screen coordinates. The camera
// rectangle inset by Margin maps linearly onto the whole screen; points
// outside the inset extrapolate past the screen edges.
type Mapper struct {
	CamWidth     int
	CamHeight    int
	ScreenWidth  int
	ScreenHeight int
	Margin       float64
}

// NewMapper creates a Mapper with the default CameraMargin.
func NewMapper(camWidth, camHeight, screenWidth, screenHeight int) Mapper {
	return Mapper{
		CamWidth:     camWidth,
		CamHeight:    camHeight,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		Margin:       CameraMargin,
	}
}

// Map converts a camera point to screen coordinates.
func (m Mapper) Map(p PointF) PointF {
	return PointF{
		X: interp(p.X, m.Margin, float64(m.CamWidth)-m.Margin, float64(m.ScreenWidth)),
		Y: interp(p.Y, m.Margin, float64(m.CamHeight)-m.Margin, float64(m.ScreenHeight)),
	}
}

// interp maps v from [lo, hi] onto [0, out] without clamping.
func interp(v, lo, hi, out float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo) * out
}
