package voice

import (
	"context"
	"errors"
	"time"
)

// Errors reported by speech collaborators.
var (
	// ErrListenTimeout means nobody started speaking before the listen timeout.
	ErrListenTimeout = errors.New("no speech before timeout")
	// ErrNoSpeech means audio was captured but could not be understood.
	ErrNoSpeech = errors.New("speech not recognized")
	// ErrServiceUnavailable means the recognition backend could not be reached.
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// Audio is an opaque captured utterance.
type Audio []byte

// Listener captures utterances from a microphone.
type Listener interface {
	// Calibrate samples ambient noise for d to set the energy threshold.
	Calibrate(ctx context.Context, d time.Duration) error
	// Listen blocks until a phrase is captured. It gives up with
	// ErrListenTimeout if no phrase starts within timeout and cuts the
	// phrase off after phraseLimit.
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Audio, error)
}

// Recognizer converts captured audio to a transcript.
type Recognizer interface {
	Recognize(ctx context.Context, audio Audio) (string, error)
}

// Speaker speaks text aloud. Say must not block for the length of the speech.
type Speaker interface {
	Say(text string) error
}
