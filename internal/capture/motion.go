package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur on the downscaled frame.
	GaussianBlurSize = 7
	// DiffThreshold is the binary threshold for difference detection.
	DiffThreshold = 25
	// probeWidth and probeHeight are the dimensions frames are reduced to before differencing.
	probeWidth  = 160
	probeHeight = 120
)

// MotionDetector reports whether consecutive frames differ by more than a
// percentage of pixels. Frames are reduced to a small grayscale probe first,
// which keeps the check well under a millisecond.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of
// probe pixels that must change, e.g. 1.0 means 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = 1.0
	}
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion was
// seen along with the changed-pixel percentage. The first frame only primes
// the detector.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, image.Point{X: probeWidth, Y: probeHeight}, 0, 0, gocv.InterpolationArea)

	probe := gocv.NewMat()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &probe, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&probe)
	}
	gocv.GaussianBlur(probe, &probe, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		m.prev.Close()
		m.prev = probe
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(probe, m.prev, &diff)
	gocv.Threshold(diff, &diff, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0

	m.prev.Close()
	m.prev = probe

	return changed > m.threshold, changed
}

// Close releases the stored probe frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prev.Close()
	m.prev = gocv.NewMat()
	m.hasPrev = false
}

// FramePacer chooses the capture rate. It runs at the active rate while a
// hand is visible or motion was seen recently and drops to the idle rate once
// the scene has been still and empty for the idle timeout.
type FramePacer struct {
	idleFPS      int
	activeFPS    int
	idleAfter    time.Duration
	lastActivity time.Time
	active       bool
}

// NewFramePacer returns a pacer that starts in active mode at now.
func NewFramePacer(idleFPS, activeFPS int, idleAfter time.Duration, now time.Time) *FramePacer {
	return &FramePacer{
		idleFPS:      idleFPS,
		activeFPS:    activeFPS,
		idleAfter:    idleAfter,
		lastActivity: now,
		active:       true,
	}
}

// FPS returns the rate for the current mode.
func (p *FramePacer) FPS() int {
	if p.active {
		return p.activeFPS
	}
	return p.idleFPS
}

// Observe records one frame's activity and reports the rate to use next and
// whether it differs from the previous rate.
func (p *FramePacer) Observe(now time.Time, motion, handPresent bool) (int, bool) {
	wasActive := p.active

	if motion || handPresent {
		p.lastActivity = now
		p.active = true
	} else if p.active && now.Sub(p.lastActivity) > p.idleAfter {
		p.active = false
	}

	return p.FPS(), p.active != wasActive
}
