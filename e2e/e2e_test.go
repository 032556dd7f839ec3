package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/voice"
	"gocv.io/x/gocv"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "mudra.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	bus := events.NewBus()
	det := detector.NewMockDetector()
	rec := input.NewRecorder()
	speech := voice.Transcripts("click", "type hello", "hello")
	speaker := &voice.SpeakerRecorder{}
	preview := capture.NewPreview()
	defer preview.Close()

	application := app.New(app.Config{
		Store:        s,
		Bus:          bus,
		Camera:       capture.NewMockCamera([]*gocv.Mat{nil}, true),
		Detector:     det,
		Injector:     rec,
		Preview:      preview,
		Tuning:       config.NewTuning(config.DefaultSmoothing),
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Listener:     speech,
		Recognizer:   speech,
		Speaker:      speaker,
	})
	defer application.Close()

	srv := server.New(server.Config{
		Store:      s,
		Controller: application,
		Bus:        bus,
		Preview:    preview,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	getJSON := func(t *testing.T, path string, v any) {
		t.Helper()
		resp, err := client.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("GET %s decode error = %v", path, err)
		}
	}

	send := func(t *testing.T, method, path, body string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("%s %s error = %v", method, path, err)
		}
		return resp
	}

	t.Run("StartBothTasks", func(t *testing.T) {
		det.SetHands([]detector.HandLandmarks{detector.CountLandmarks(1)})

		if err := application.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		var status api.Status
		getJSON(t, "/api/status", &status)
		if !status.Tracking || !status.Voice {
			t.Errorf("status = %+v, want both tasks running", status)
		}
	})

	t.Run("GesturesMoveThePointer", func(t *testing.T) {
		waitFor(t, "pointer movement", func() bool { return rec.Count(input.KindMove) > 0 })

		var status api.Status
		getJSON(t, "/api/status", &status)
		if status.Mode != "Navigation" || !status.HandPresent {
			t.Errorf("status = %+v, want a present hand in Navigation", status)
		}
	})

	t.Run("VoiceCommandsRun", func(t *testing.T) {
		select {
		case <-speech.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("voice script did not finish")
		}

		waitFor(t, "typed text", func() bool { return rec.Count(input.KindTypeText) == 1 })
		waitFor(t, "greeting", func() bool {
			for _, text := range speaker.Spoken() {
				if text == "Hello, I'm listening to your commands" {
					return true
				}
			}
			return false
		})
		if rec.Count(input.KindClick) != 1 {
			t.Errorf("expected 1 voice click, got %d", rec.Count(input.KindClick))
		}
	})

	t.Run("ActivityIsRecorded", func(t *testing.T) {
		var listed struct {
			Activity []store.Activity `json:"activity"`
		}
		waitFor(t, "voice activity", func() bool {
			listed.Activity = nil
			getJSON(t, "/api/activity?type=voice-command", &listed)
			return len(listed.Activity) == 3
		})

		if listed.Activity[0].Message != "Voice command: hello" {
			t.Errorf("newest voice command = %q", listed.Activity[0].Message)
		}
	})

	t.Run("SettingsApplyToSession", func(t *testing.T) {
		resp := send(t, http.MethodPut, "/api/settings", `{"smoothing": 99}`)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT settings status = %d", resp.StatusCode)
		}

		var got struct {
			Smoothing int `json:"smoothing"`
		}
		json.NewDecoder(resp.Body).Decode(&got)
		if got.Smoothing != config.MaxSmoothing {
			t.Errorf("smoothing = %d, want clamped to %d", got.Smoothing, config.MaxSmoothing)
		}
		var status api.Status
		getJSON(t, "/api/status", &status)
		if status.Smoothing != config.MaxSmoothing {
			t.Errorf("status smoothing = %d, want %d", status.Smoothing, config.MaxSmoothing)
		}
	})

	t.Run("StopBothTasks", func(t *testing.T) {
		for _, path := range []string{"/api/tracking", "/api/voice"} {
			resp := send(t, http.MethodPost, path, `{"enabled": false}`)
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("POST %s status = %d", path, resp.StatusCode)
			}
		}

		var status api.Status
		getJSON(t, "/api/status", &status)
		if status.Tracking || status.Voice {
			t.Errorf("status = %+v, want both tasks stopped", status)
		}
		if status.HandPresent || status.Dragging {
			t.Errorf("gesture state should reset on stop, got %+v", status)
		}
	})
}
