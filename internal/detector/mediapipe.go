package detector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ayusman/mudra/internal/sidecar"
	"gocv.io/x/gocv"
)

// MediaPipeScript is the helper script that runs the MediaPipe hand landmarker.
//
// Protocol: each request is a 4-byte big-endian length followed by a JPEG
// frame; each response is one JSON line {"hands":[{"points":[...],...}]}.
const MediaPipeScript = "mediapipe_service.py"

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
type MediaPipeDetector struct {
	config Config
	proc   *sidecar.Process
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	args := []string{
		"--max-hands", strconv.Itoa(config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(config.MinConfidence, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(config.MinTrackingConf, 'f', 2, 64),
	}

	proc, err := sidecar.New(MediaPipeScript, args, sidecar.DefaultIdleTimeout)
	if err != nil {
		return nil, err
	}

	return &MediaPipeDetector{
		config: config,
		proc:   proc,
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	line, err := d.proc.Exchange(func(w io.Writer) error {
		length := make([]byte, 4)
		binary.BigEndian.PutUint32(length, uint32(len(data)))
		if _, err := w.Write(length); err != nil {
			return err
		}
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}

	return parseHandsResponse(line, d.config.MaxHands)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	return d.proc.Close()
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// parseHandsResponse decodes one response line, keeping at most maxHands
// hands. Hands reporting fewer than NumLandmarks points are kept but marked
// incomplete.
func parseHandsResponse(line []byte, maxHands int) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error,omitempty"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", response.Error)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if maxHands > 0 && len(result) >= maxHands {
			break
		}
		result = append(result, h.toHandLandmarks())
	}

	return result, nil
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
		Incomplete: len(h.Points) < NumLandmarks,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}

	return lm
}
