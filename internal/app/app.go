// Package app runs the gesture and voice tasks and wires them to the rest
// of Mudra.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/voice"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeout is how long the scene must be still before switching back to idle mode.
	IdleTimeout = 2 * time.Second
	// ReadyMessage is spoken once both tasks have been started.
	ReadyMessage = "Gesture control is ready"
)

// ErrVoiceUnavailable is returned by StartVoice when no speech backend is configured.
var ErrVoiceUnavailable = errors.New("voice control unavailable")

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Bus      *events.Bus
	Camera   capture.Camera
	Detector detector.Detector
	Injector input.Injector
	Preview  *capture.Preview
	Tuning   *config.Tuning

	ScreenWidth  int
	ScreenHeight int
	MotionThresh float64

	// Voice collaborators. Voice control is unavailable without a Listener
	// and a Recognizer.
	Listener   voice.Listener
	Recognizer voice.Recognizer
	Speaker    voice.Speaker
	Voice      voice.WorkerConfig

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// App owns the gesture task and the voice task. The two never share state;
// both report what they do on the event bus.
type App struct {
	config Config
	now    func() time.Time

	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	interp   *gesture.Interpreter

	// trackMu and voiceMu serialize starting and stopping each task, so a
	// task is never started while its previous run is still shutting down.
	trackMu sync.Mutex
	voiceMu sync.Mutex

	mu          sync.RWMutex
	stopCh      chan struct{}
	trackDone   chan struct{}
	voiceCancel context.CancelFunc
	voiceDone   chan struct{}
	voiceStatus string
	snap        gesture.Snapshot
	fps         int

	activity   *activityRecorder
	statusSub  *events.Subscription
	statusDone chan struct{}
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	if cfg.Bus == nil {
		cfg.Bus = events.NewBus()
	}
	if cfg.Tuning == nil {
		cfg.Tuning = config.NewTuning(config.DefaultSmoothing)
	}
	if cfg.Camera == nil {
		cfg.Camera = capture.NewCamera(capture.DefaultOptions())
	}
	if cfg.Injector == nil {
		cfg.Injector = input.NewRecorder()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	motionThreshold := cfg.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:      cfg,
		now:         cfg.Clock,
		camera:      cfg.Camera,
		motion:      capture.NewMotionDetector(motionThreshold),
		detector:    cfg.Detector,
		voiceStatus: string(voice.StatusInactive),
		fps:         ActiveFPS,
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	width, height := a.camera.Size()
	a.interp = gesture.NewInterpreter(gesture.Config{
		CamWidth:     width,
		CamHeight:    height,
		ScreenWidth:  cfg.ScreenWidth,
		ScreenHeight: cfg.ScreenHeight,
		Smoothing:    cfg.Tuning,
	}, a.now())
	a.snap = a.interp.Snapshot()

	if cfg.Store != nil {
		a.activity = newActivityRecorder(cfg.Store.Activity(), cfg.Bus)
	}

	a.statusSub = cfg.Bus.Subscribe(16)
	a.statusDone = make(chan struct{})
	go a.trackVoiceStatus()

	return a
}

// Bus returns the event bus.
func (a *App) Bus() *events.Bus {
	return a.config.Bus
}

// Tuning returns the runtime settings.
func (a *App) Tuning() *config.Tuning {
	return a.config.Tuning
}

// Start starts hand tracking and, when available, voice control.
func (a *App) Start() error {
	if err := a.StartTracking(); err != nil {
		return err
	}
	if err := a.StartVoice(); err != nil && !errors.Is(err, ErrVoiceUnavailable) {
		log.Printf("Voice control not started: %v", err)
	}
	a.say(ReadyMessage)
	return nil
}

// StartTracking opens the camera and starts the gesture task.
func (a *App) StartTracking() error {
	a.trackMu.Lock()
	defer a.trackMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		a.publish(events.TrackingError, "camera", fmt.Sprintf("Camera error: %v", err))
		return fmt.Errorf("open camera: %w", err)
	}

	width, height := a.camera.Size()
	a.interp.SetFrameSize(width, height)
	a.camera.SetFPS(ActiveFPS)

	a.stopCh = make(chan struct{})
	a.trackDone = make(chan struct{})
	go a.runPipeline(a.stopCh, a.trackDone)

	a.publish(events.TrackingStatus, "started", "Hand tracking started")
	log.Println("Hand tracking started")
	return nil
}

// StopTracking stops the gesture task, ending any drag, and releases the camera.
func (a *App) StopTracking() {
	a.trackMu.Lock()
	defer a.trackMu.Unlock()

	a.mu.Lock()
	stopCh, done := a.stopCh, a.trackDone
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	a.publish(events.TrackingStatus, "stopped", "Hand tracking stopped")
	log.Println("Hand tracking stopped")
}

// Tracking reports whether the gesture task is running.
func (a *App) Tracking() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// StartVoice starts the voice task.
func (a *App) StartVoice() error {
	if a.config.Listener == nil || a.config.Recognizer == nil {
		return ErrVoiceUnavailable
	}

	a.voiceMu.Lock()
	defer a.voiceMu.Unlock()

	a.mu.RLock()
	running, prev := a.voiceCancel != nil, a.voiceDone
	a.mu.RUnlock()

	if running {
		return nil
	}
	// A stopped worker may still be finishing a listen
	if prev != nil {
		<-prev
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	a.mu.Lock()
	a.voiceCancel = cancel
	a.voiceDone = done
	a.mu.Unlock()

	w := voice.NewWorker(a.config.Listener, a.config.Recognizer, a.config.Injector,
		a.config.Speaker, a.config.Bus, a.config.Voice)
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			log.Printf("Voice worker exited: %v", err)
		}
	}()

	return nil
}

// StopVoice cancels the voice task. A listen already in progress finishes
// within its timeout; the next StartVoice and Close wait for it.
func (a *App) StopVoice() {
	a.voiceMu.Lock()
	defer a.voiceMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.voiceCancel != nil {
		a.voiceCancel()
		a.voiceCancel = nil
	}
}

// Voice reports whether the voice task is running.
func (a *App) Voice() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.voiceCancel != nil
}

// SetTracking implements api.Controller.
func (a *App) SetTracking(enabled bool) error {
	if enabled {
		return a.StartTracking()
	}
	a.StopTracking()
	return nil
}

// SetVoice implements api.Controller.
func (a *App) SetVoice(enabled bool) error {
	if enabled {
		return a.StartVoice()
	}
	a.StopVoice()
	return nil
}

// SetSmoothing implements api.Controller. The gesture task picks the new
// window up on its next frame.
func (a *App) SetSmoothing(n int) int {
	applied := a.config.Tuning.SetSmoothing(n)
	log.Printf("Smoothing set to %d", applied)
	return applied
}

// Status implements api.Controller.
func (a *App) Status() api.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return api.Status{
		Tracking:    a.stopCh != nil,
		Voice:       a.voiceCancel != nil,
		VoiceStatus: a.voiceStatus,
		Mode:        a.snap.Mode,
		HandPresent: a.snap.HandPresent,
		Dragging:    a.snap.Dragging,
		Smoothing:   a.config.Tuning.Smoothing(),
		FPS:         a.fps,
	}
}

// Close stops both tasks, releases the detector and flushes the activity log.
func (a *App) Close() error {
	a.StopTracking()
	a.StopVoice()

	a.mu.RLock()
	voiceDone := a.voiceDone
	a.mu.RUnlock()
	if voiceDone != nil {
		<-voiceDone
	}

	a.motion.Close()

	var err error
	if a.detector != nil {
		if cerr := a.detector.Close(); cerr != nil {
			log.Printf("Error closing detector: %v", cerr)
			err = cerr
		}
	}

	a.config.Bus.Unsubscribe(a.statusSub)
	<-a.statusDone

	if a.activity != nil {
		a.activity.Close()
	}
	return err
}

// trackVoiceStatus mirrors voice-status events into the status snapshot.
func (a *App) trackVoiceStatus() {
	defer close(a.statusDone)
	for e := range a.statusSub.C {
		if e.Type != events.VoiceStatus {
			continue
		}
		a.mu.Lock()
		a.voiceStatus = e.Value
		a.mu.Unlock()
	}
}

func (a *App) say(text string) {
	if a.config.Speaker == nil {
		return
	}
	if err := a.config.Speaker.Say(text); err != nil {
		log.Printf("Speech output failed: %v", err)
	}
}

func (a *App) publish(t events.Type, value, msg string) {
	a.config.Bus.Publish(events.New(t, value, msg, a.now()))
}
