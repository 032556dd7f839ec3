package app

import (
	"fmt"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
)

// runPipeline is the gesture task. It reads frames at the pacer's rate and
// feeds the first detected hand through the interpreter.
//
// Pipeline logic:
// 1. Read a frame; a read failure ends the task with a tracking error
// 2. Offer the frame to preview clients
// 3. Motion detection decides between idle and active frame rates
// 4. In active mode, detect hands and run the interpreter
// 5. Perform the resulting input actions and publish its events
//
// On exit any open drag is force-ended and the camera is released.
// A camera read failure is fatal to this task only.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	pacer := capture.NewFramePacer(IdleFPS, ActiveFPS, IdleTimeout, a.now())
	ticker := time.NewTicker(time.Second / time.Duration(pacer.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			a.shutdownPipeline()
			return
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			log.Printf("Error reading frame: %v", err)
			a.publish(events.TrackingError, "camera", fmt.Sprintf("Camera error: %v", err))
			a.shutdownPipeline()
			a.detach(stopCh)
			return
		}

		if a.config.Preview != nil {
			if err := a.config.Preview.Offer(frame); err != nil {
				log.Printf("Preview: %v", err)
			}
		}

		now := a.now()
		motion, _ := a.motion.Detect(frame)

		var hands []detector.HandLandmarks
		var detectErr error
		active := pacer.FPS() == ActiveFPS || motion || a.interp.HandPresent()
		if active {
			hands, detectErr = a.detector.Detect(frame)
		}
		frame.Close()

		if detectErr != nil {
			log.Printf("Error detecting hands: %v", detectErr)
			continue
		}

		present := false
		if active {
			res := a.processHands(now, hands)
			present = res.HandPresent
		}

		if fps, changed := pacer.Observe(now, motion, present); changed {
			a.camera.SetFPS(fps)
			ticker.Reset(time.Second / time.Duration(fps))
			a.mu.Lock()
			a.fps = fps
			a.mu.Unlock()
			if fps == ActiveFPS {
				log.Println("Switched to active mode")
			} else {
				log.Println("Switched to idle mode")
			}
		}
	}
}

// processHands runs one frame of detections through the interpreter. Only
// the first hand is used.
func (a *App) processHands(now time.Time, hands []detector.HandLandmarks) gesture.Result {
	var hand detector.Hand
	if len(hands) > 0 {
		width, height := a.camera.Size()
		hand = hands[0].ToPixels(width, height)
	}

	res := a.interp.Process(now, hand)
	a.perform(res)
	return res
}

// perform injects the result's actions and publishes its events. Injection
// failures are logged and do not stop the frame.
func (a *App) perform(res gesture.Result) {
	for _, action := range res.Actions {
		if err := input.Apply(a.config.Injector, action); err != nil {
			log.Printf("Input failed: %v", err)
		}
	}
	for _, e := range res.Events {
		a.config.Bus.Publish(e)
	}

	snap := a.interp.Snapshot()
	a.mu.Lock()
	a.snap = snap
	a.mu.Unlock()
}

// detach marks the task stopped after a fatal error so StartTracking can
// run it again.
func (a *App) detach(stopCh <-chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCh == stopCh {
		a.stopCh = nil
	}
}

func (a *App) shutdownPipeline() {
	a.perform(a.interp.Stop(a.now(), gesture.DragEndStopped))

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
}
