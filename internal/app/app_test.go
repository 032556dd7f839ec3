package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/voice"
)

// fakeClock advances by step on every reading.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type fixture struct {
	app    *App
	camera *capture.MockCamera
	det    *detector.MockDetector
	rec    *input.Recorder
	sub    *events.Subscription
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	f := &fixture{
		camera: capture.NewMockCamera(nil, true),
		det:    detector.NewMockDetector(),
		rec:    input.NewRecorder(),
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewBus()
	}
	f.sub = cfg.Bus.Subscribe(1024)

	if cfg.Camera == nil {
		cfg.Camera = f.camera
	}
	cfg.Detector = f.det
	cfg.Injector = f.rec
	cfg.ScreenWidth = 1920
	cfg.ScreenHeight = 1080
	if cfg.Clock == nil {
		clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), step: 10 * time.Millisecond}
		cfg.Clock = clock.Now
	}

	f.app = New(cfg)
	t.Cleanup(func() { f.app.Close() })
	return f
}

// drain returns the events received so far.
func (f *fixture) drain() []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-f.sub.C:
			out = append(out, e)
		default:
			return out
		}
	}
}

func countType(evs []events.Event, typ events.Type) int {
	n := 0
	for _, e := range evs {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestApp_ProcessHands_Navigation(t *testing.T) {
	f := newFixture(t, Config{})
	hands := []detector.HandLandmarks{detector.CountLandmarks(1)}

	for i := 0; i < 3; i++ {
		f.app.processHands(f.app.now(), hands)
	}

	if got := f.rec.Count(input.KindMove); got != 1 {
		t.Errorf("expected 1 move once three samples are smoothed, got %d", got)
	}

	evs := f.drain()
	if countType(evs, events.HandPresenceChanged) != 1 {
		t.Error("expected one hand-presence event")
	}
	if countType(evs, events.ModeChanged) != 1 {
		t.Error("expected one mode-changed event")
	}

	status := f.app.Status()
	if status.Mode != gesture.ModeNavigation.String() || !status.HandPresent {
		t.Errorf("status = %+v", status)
	}
}

func TestApp_ProcessHands_NoHand(t *testing.T) {
	f := newFixture(t, Config{})

	res := f.app.processHands(f.app.now(), nil)
	if res.HandPresent {
		t.Error("expected no hand")
	}
	if len(f.rec.Actions()) != 0 {
		t.Errorf("unexpected actions %v", f.rec.Actions())
	}
}

func TestApp_ShutdownEndsDrag(t *testing.T) {
	f := newFixture(t, Config{})
	hands := []detector.HandLandmarks{detector.OpenPalmLandmarks()}

	for i := 0; i < 5; i++ {
		f.app.processHands(f.app.now(), hands)
	}
	if f.rec.Count(input.KindMouseDown) != 1 {
		t.Fatalf("expected drag to start, actions = %v", f.rec.Actions())
	}
	if !f.app.Status().Dragging {
		t.Fatal("status should report dragging")
	}

	f.app.shutdownPipeline()

	if f.rec.Count(input.KindMouseUp) != 1 {
		t.Errorf("expected a forced mouse-up, actions = %v", f.rec.Actions())
	}

	var ended *events.Event
	for _, e := range f.drain() {
		if e.Type == events.DragEnded {
			ended = &e
		}
	}
	if ended == nil || ended.Value != gesture.DragEndStopped {
		t.Errorf("drag-ended event = %+v, want reason %q", ended, gesture.DragEndStopped)
	}
}

func TestApp_InjectorFailureDoesNotStopFrame(t *testing.T) {
	f := newFixture(t, Config{})
	f.rec.SetError(errors.New("no display"))

	hands := []detector.HandLandmarks{detector.OpenPalmLandmarks()}
	for i := 0; i < 3; i++ {
		f.app.processHands(f.app.now(), hands)
	}

	// Both the mouse-down and the move were attempted
	if f.rec.Count(input.KindMouseDown) != 1 || f.rec.Count(input.KindMove) != 1 {
		t.Errorf("actions = %v", f.rec.Actions())
	}
	if countType(f.drain(), events.DragStarted) != 1 {
		t.Error("drag-started should still be published")
	}
}

func TestApp_StartTracking_CameraError(t *testing.T) {
	camera := capture.NewMockCamera(nil, true)
	camera.SetOpenError(errors.New("device busy"))
	f := newFixture(t, Config{Camera: camera})

	if err := f.app.StartTracking(); err == nil {
		t.Fatal("expected error")
	}
	if f.app.Tracking() {
		t.Error("tracking should not be running")
	}
	if countType(f.drain(), events.TrackingError) != 1 {
		t.Error("expected a tracking-error event")
	}
}

func TestApp_SetSmoothing(t *testing.T) {
	f := newFixture(t, Config{Tuning: config.NewTuning(5)})

	if got := f.app.SetSmoothing(0); got != config.MinSmoothing {
		t.Errorf("SetSmoothing(0) = %d, want %d", got, config.MinSmoothing)
	}
	if got := f.app.SetSmoothing(7); got != 7 {
		t.Errorf("SetSmoothing(7) = %d", got)
	}
	if got := f.app.Status().Smoothing; got != 7 {
		t.Errorf("Status().Smoothing = %d, want 7", got)
	}
}

func TestApp_Voice(t *testing.T) {
	speech := voice.Transcripts("click", "press enter")
	f := newFixture(t, Config{Listener: speech, Recognizer: speech})

	if err := f.app.SetVoice(true); err != nil {
		t.Fatalf("SetVoice(true) error = %v", err)
	}
	if !f.app.Status().Voice {
		t.Error("status should report voice running")
	}

	select {
	case <-speech.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("voice worker did not finish the script")
	}

	if f.rec.Count(input.KindClick) != 1 || f.rec.Count(input.KindPressKey) != 1 {
		t.Errorf("actions = %v", f.rec.Actions())
	}

	f.app.SetVoice(false)
	if f.app.Voice() {
		t.Error("voice should be stopped")
	}
}

func TestApp_StartVoice_Unavailable(t *testing.T) {
	f := newFixture(t, Config{})

	if err := f.app.StartVoice(); !errors.Is(err, ErrVoiceUnavailable) {
		t.Errorf("StartVoice() error = %v, want ErrVoiceUnavailable", err)
	}
}

func TestApp_RecordsActivity(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	bus := events.NewBus()
	a := New(Config{
		Store:    s,
		Bus:      bus,
		Camera:   capture.NewMockCamera(nil, true),
		Detector: detector.NewMockDetector(),
		Injector: input.NewRecorder(),
	})

	bus.Publish(events.New(events.VoiceCommand, "click", "Voice command: click", time.Now()))
	bus.Publish(events.New(events.ClickPerformed, "", "Click performed", time.Now()))

	// Close flushes buffered events
	a.Close()

	list, err := s.Activity().List("", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 activity entries, got %d", len(list))
	}
}

// slowListener holds every Listen until released, ignoring cancellation,
// like a microphone read that only returns at its timeout.
type slowListener struct {
	mu      sync.Mutex
	active  int
	peak    int
	entered chan struct{}
	release chan struct{}
}

func newSlowListener() *slowListener {
	return &slowListener{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (l *slowListener) Calibrate(ctx context.Context, d time.Duration) error { return nil }

func (l *slowListener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (voice.Audio, error) {
	l.mu.Lock()
	l.active++
	l.peak = max(l.peak, l.active)
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	}()

	select {
	case l.entered <- struct{}{}:
	default:
	}
	<-l.release

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil, voice.ErrListenTimeout
	}
}

func (l *slowListener) Recognize(ctx context.Context, audio voice.Audio) (string, error) {
	return "", voice.ErrNoSpeech
}

func (l *slowListener) Peak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

func TestApp_VoiceRestartWaitsForPreviousWorker(t *testing.T) {
	l := newSlowListener()
	f := newFixture(t, Config{Listener: l, Recognizer: l})

	if err := f.app.StartVoice(); err != nil {
		t.Fatalf("StartVoice() error = %v", err)
	}
	<-l.entered

	f.app.StopVoice()

	started := make(chan error, 1)
	go func() { started <- f.app.StartVoice() }()

	select {
	case <-started:
		t.Fatal("StartVoice returned while the previous worker was still listening")
	case <-time.After(50 * time.Millisecond):
	}

	close(l.release)
	select {
	case err := <-started:
		if err != nil {
			t.Fatalf("StartVoice() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("StartVoice did not return after the previous worker exited")
	}

	if !f.app.Voice() {
		t.Error("voice should be running after the restart")
	}
	if p := l.Peak(); p != 1 {
		t.Errorf("listens in flight at once = %d, want 1", p)
	}
}
