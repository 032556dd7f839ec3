package tray

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/events"
)

func TestToggleTitle(t *testing.T) {
	if got := toggleTitle(ToggleTracking, true); got != "● Hand Tracking" {
		t.Errorf("toggleTitle = %q", got)
	}
	if got := toggleTitle(ToggleVoice, false); got != "○ Voice Control" {
		t.Errorf("toggleTitle = %q", got)
	}
}

func TestTray_HandleToggle(t *testing.T) {
	tr := New()

	var calls []Toggle
	tr.OnToggle(func(which Toggle, enabled bool) error {
		calls = append(calls, which)
		if which == ToggleVoice {
			return errors.New("no microphone")
		}
		return nil
	})

	tr.handleToggle(ToggleTracking)
	if tr.IsEnabled(ToggleTracking) {
		t.Error("tracking should be off after toggling")
	}

	tr.handleToggle(ToggleVoice)
	if !tr.IsEnabled(ToggleVoice) {
		t.Error("a failed toggle must keep the previous state")
	}
	if tr.labels.activity != "Last: Voice Control failed: no microphone" {
		t.Errorf("activity = %q", tr.labels.activity)
	}

	if len(calls) != 2 {
		t.Errorf("expected 2 callback calls, got %d", len(calls))
	}
}

func TestTray_Apply(t *testing.T) {
	tr := New()
	now := time.Now()

	tr.Apply(events.New(events.ModeChanged, "Click", "Mode: Click", now))
	tr.Apply(events.New(events.VoiceStatus, "listening", "Voice listening", now))

	if tr.labels.mode != "Mode: Click" {
		t.Errorf("mode label = %q", tr.labels.mode)
	}
	if tr.labels.voice != "Voice: listening" {
		t.Errorf("voice label = %q", tr.labels.voice)
	}
	// Status chatter does not replace the last activity
	if tr.labels.activity != "Last: Mode: Click" {
		t.Errorf("activity label = %q", tr.labels.activity)
	}

	tr.Apply(events.New(events.TrackingError, "camera", "Camera error: gone", now))
	if tr.IsEnabled(ToggleTracking) {
		t.Error("a tracking error should switch the toggle off")
	}

	tr.Apply(events.New(events.TrackingStatus, "started", "Hand tracking started", now))
	if !tr.IsEnabled(ToggleTracking) {
		t.Error("tracking-status started should switch the toggle on")
	}
}

func TestTray_Follow(t *testing.T) {
	bus := events.NewBus()
	tr := New()
	sub := bus.Subscribe(4)

	done := make(chan struct{})
	go func() {
		tr.Follow(sub)
		close(done)
	}()

	bus.Publish(events.New(events.DragStarted, "", "Drag started", time.Now()))
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after the bus closed")
	}

	tr.mu.RLock()
	defer tr.mu.RUnlock()
	if tr.labels.activity != "Last: Drag started" {
		t.Errorf("activity label = %q", tr.labels.activity)
	}
}
