package gesture

import "github.com/ayusman/mudra/internal/detector"

// MinSmoothedSamples is the number of samples needed before the smoother
// produces output.
const MinSmoothedSamples = 3

// PointF is a point with fractional coordinates.
type PointF struct {
	X, Y float64
}

// Smoother is a moving average over the last S raw pointer positions.
type Smoother struct {
	history *Ring[detector.Landmark]
}

// NewSmoother creates a Smoother averaging over window samples.
func NewSmoother(window int) *Smoother {
	return &Smoother{history: NewRing[detector.Landmark](window)}
}

// Window returns the current window size.
func (s *Smoother) Window() int {
	return s.history.Cap()
}

// SetWindow changes the window size, keeping the most recent samples.
func (s *Smoother) SetWindow(window int) {
	s.history.Resize(window)
}

// Push adds a raw sample and returns the mean of the buffered samples. The
// second result is false until MinSmoothedSamples samples are buffered;
// with a window smaller than that it stays false.
func (s *Smoother) Push(p detector.Landmark) (PointF, bool) {
	s.history.Push(p)
	if s.history.Len() < MinSmoothedSamples {
		return PointF{}, false
	}

	var sumX, sumY int
	vals := s.history.Values()
	for _, v := range vals {
		sumX += v.X
		sumY += v.Y
	}
	n := float64(len(vals))
	return PointF{X: float64(sumX) / n, Y: float64(sumY) / n}, true
}

// Reset discards the history, giving the next pointer a fresh reference.
func (s *Smoother) Reset() {
	s.history.Reset()
}
