package voice

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/input"
)

// Status describes what the voice worker is doing.
type Status string

const (
	StatusInactive   Status = "inactive"
	StatusActive     Status = "active"
	StatusListening  Status = "listening"
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
)

// WorkerConfig tunes the listen loop.
type WorkerConfig struct {
	ListenTimeout     time.Duration
	PhraseLimit       time.Duration
	ErrorPause        time.Duration
	CalibrateDuration time.Duration
	Greeting          string
}

// DefaultWorkerConfig returns the standard listen loop timings.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		ListenTimeout:     5 * time.Second,
		PhraseLimit:       5 * time.Second,
		ErrorPause:        2 * time.Second,
		CalibrateDuration: 500 * time.Millisecond,
		Greeting:          "Hello, I'm listening to your commands",
	}
}

// Worker listens for utterances, parses them and performs the resulting
// actions. It never touches gesture state; everything it observes is
// published on the bus.
type Worker struct {
	listener   Listener
	recognizer Recognizer
	injector   input.Injector
	speaker    Speaker
	bus        *events.Bus
	cfg        WorkerConfig
	status     Status
	now        func() time.Time
}

// NewWorker creates a Worker. speaker may be nil, in which case greetings
// are only logged.
func NewWorker(l Listener, r Recognizer, inj input.Injector, sp Speaker, bus *events.Bus, cfg WorkerConfig) *Worker {
	def := DefaultWorkerConfig()
	if cfg.ListenTimeout <= 0 {
		cfg.ListenTimeout = def.ListenTimeout
	}
	if cfg.PhraseLimit <= 0 {
		cfg.PhraseLimit = def.PhraseLimit
	}
	if cfg.ErrorPause <= 0 {
		cfg.ErrorPause = def.ErrorPause
	}
	if cfg.Greeting == "" {
		cfg.Greeting = def.Greeting
	}

	return &Worker{
		listener:   l,
		recognizer: r,
		injector:   inj,
		speaker:    sp,
		bus:        bus,
		cfg:        cfg,
		status:     StatusInactive,
		now:        time.Now,
	}
}

// Run calibrates the microphone and then loops until ctx is cancelled.
// Missing or unintelligible speech is skipped; a failing recognition
// service is reported and retried after a pause.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("Voice control started")
	defer func() {
		w.setStatus(StatusInactive)
		log.Printf("Voice control stopped")
	}()

	if w.cfg.CalibrateDuration > 0 {
		if err := w.listener.Calibrate(ctx, w.cfg.CalibrateDuration); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Microphone calibration failed: %v", err)
		}
	}
	w.setStatus(StatusActive)

	for ctx.Err() == nil {
		if err := w.step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.fail(err)
			if !sleepCtx(ctx, w.cfg.ErrorPause) {
				return nil
			}
			w.setStatus(StatusActive)
		}
	}
	return nil
}

// step runs one listen/recognize/dispatch cycle. Only errors that should
// pause the loop are returned.
func (w *Worker) step(ctx context.Context) error {
	w.setStatus(StatusListening)
	audio, err := w.listener.Listen(ctx, w.cfg.ListenTimeout, w.cfg.PhraseLimit)
	if err != nil {
		return w.recover(err)
	}

	w.setStatus(StatusProcessing)
	text, err := w.recognizer.Recognize(ctx, audio)
	if err != nil {
		return w.recover(err)
	}

	w.Handle(text)
	w.setStatus(StatusActive)
	return nil
}

func (w *Worker) recover(err error) error {
	if errors.Is(err, ErrListenTimeout) || errors.Is(err, ErrNoSpeech) {
		w.setStatus(StatusActive)
		return nil
	}
	return err
}

func (w *Worker) fail(err error) {
	kind := "error"
	if errors.Is(err, ErrServiceUnavailable) {
		kind = "service-unavailable"
		log.Printf("Could not request results from speech service: %v", err)
	} else {
		log.Printf("Voice error: %v", err)
	}
	w.setStatus(StatusError)
	w.publish(events.VoiceError, kind, err.Error())
}

// Handle parses a transcript and performs its action.
func (w *Worker) Handle(transcript string) Command {
	cmd := Parse(transcript)
	w.publish(events.VoiceCommand, transcript, "Voice command: "+transcript)

	if cmd.Kind == KindGreeting {
		if w.speaker == nil {
			log.Printf("Greeting: %s", w.cfg.Greeting)
			return cmd
		}
		if err := w.speaker.Say(w.cfg.Greeting); err != nil {
			log.Printf("Speech output failed: %v", err)
		}
		return cmd
	}

	action, ok := cmd.Action()
	if !ok {
		return cmd
	}
	if err := input.Apply(w.injector, action); err != nil {
		log.Printf("Voice action failed: %v", err)
		return cmd
	}
	log.Printf("%s", cmd.Describe())
	return cmd
}

// Status returns the most recently published status. It must only be
// called from the goroutine running Run, or after Run returns.
func (w *Worker) Status() Status {
	return w.status
}

func (w *Worker) setStatus(s Status) {
	if s == w.status {
		return
	}
	w.status = s
	w.publish(events.VoiceStatus, string(s), "Voice "+string(s))
}

func (w *Worker) publish(t events.Type, value, msg string) {
	if w.bus == nil {
		return
	}
	w.bus.Publish(events.New(t, value, msg, w.now()))
}

// sleepCtx waits for d and reports whether ctx is still live.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
