package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/sidecar"
)

// SpeechScript is the helper script wrapping the microphone and the speech
// recognition backend.
//
// Protocol: each request is one JSON line {"op":...}; each response is one
// JSON line. Audio travels base64 encoded. Failures are reported as
// {"error":code,"message":...} where code is "timeout", "unknown_value" or
// "request_error".
const SpeechScript = "speech_service.py"

// Error codes reported by the speech helper.
const (
	codeTimeout      = "timeout"
	codeUnknownValue = "unknown_value"
	codeRequestError = "request_error"
)

// SpeechService implements Listener and Recognizer with a helper process.
// Requests are serialized; a Listen call holds the helper for at most the
// listen timeout plus the phrase limit.
type SpeechService struct {
	proc *sidecar.Process
}

// NewSpeechService locates script (SpeechScript if empty). The helper is
// started on first use.
func NewSpeechService(script string) (*SpeechService, error) {
	if script == "" {
		script = SpeechScript
	}
	proc, err := sidecar.New(script, nil, 5*time.Minute)
	if err != nil {
		return nil, err
	}
	return &SpeechService{proc: proc}, nil
}

type speechRequest struct {
	Op          string  `json:"op"`
	Duration    float64 `json:"duration,omitempty"`
	Timeout     float64 `json:"timeout,omitempty"`
	PhraseLimit float64 `json:"phrase_limit,omitempty"`
	Audio       []byte  `json:"audio,omitempty"`
}

type speechResponse struct {
	Audio   []byte `json:"audio,omitempty"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Calibrate implements Listener.
func (s *SpeechService) Calibrate(ctx context.Context, d time.Duration) error {
	_, err := s.call(ctx, speechRequest{Op: "calibrate", Duration: d.Seconds()})
	return err
}

// Listen implements Listener.
func (s *SpeechService) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Audio, error) {
	resp, err := s.call(ctx, speechRequest{
		Op:          "listen",
		Timeout:     timeout.Seconds(),
		PhraseLimit: phraseLimit.Seconds(),
	})
	if err != nil {
		return nil, err
	}
	return Audio(resp.Audio), nil
}

// Recognize implements Recognizer. The transcript is lower-cased.
func (s *SpeechService) Recognize(ctx context.Context, audio Audio) (string, error) {
	resp, err := s.call(ctx, speechRequest{Op: "recognize", Audio: audio})
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(resp.Text)), nil
}

// Close stops the helper process.
func (s *SpeechService) Close() error {
	return s.proc.Close()
}

func (s *SpeechService) call(ctx context.Context, req speechRequest) (*speechResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	line, err := s.proc.Exchange(func(w io.Writer) error {
		return json.NewEncoder(w).Encode(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Op, err)
	}

	return decodeSpeechResponse(line)
}

func decodeSpeechResponse(line []byte) (*speechResponse, error) {
	var resp speechResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse speech response: %w", err)
	}

	switch resp.Error {
	case "":
		return &resp, nil
	case codeTimeout:
		return nil, ErrListenTimeout
	case codeUnknownValue:
		return nil, ErrNoSpeech
	case codeRequestError:
		return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, resp.Message)
	default:
		return nil, fmt.Errorf("speech service: %s %s", resp.Error, resp.Message)
	}
}
