package voice

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Step is one scripted utterance. ListenErr fails the listen phase;
// otherwise Text or RecognizeErr is the recognition result.
type Step struct {
	ListenErr    error
	Text         string
	RecognizeErr error
}

// ScriptedSpeech implements Listener and Recognizer from a fixed script,
// for tests and the offline demo mode. Once the script is exhausted Listen
// blocks until its context is cancelled.
type ScriptedSpeech struct {
	mu         sync.Mutex
	steps      []Step
	next       int
	calibrated bool
	done       chan struct{}
}

// NewScriptedSpeech creates a ScriptedSpeech playing steps in order.
func NewScriptedSpeech(steps ...Step) *ScriptedSpeech {
	return &ScriptedSpeech{steps: steps, done: make(chan struct{})}
}

// Transcripts is a shorthand for a script of recognized phrases.
func Transcripts(texts ...string) *ScriptedSpeech {
	steps := make([]Step, len(texts))
	for i, t := range texts {
		steps[i] = Step{Text: t}
	}
	return NewScriptedSpeech(steps...)
}

// Calibrate implements Listener.
func (s *ScriptedSpeech) Calibrate(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calibrated = true
	s.mu.Unlock()
	return ctx.Err()
}

// Calibrated reports whether Calibrate was called.
func (s *ScriptedSpeech) Calibrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibrated
}

// Listen implements Listener. The returned audio is the step index.
func (s *ScriptedSpeech) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (Audio, error) {
	s.mu.Lock()
	if s.next >= len(s.steps) {
		if s.next == len(s.steps) {
			close(s.done)
			s.next++
		}
		s.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	i := s.next
	s.next++
	step := s.steps[i]
	s.mu.Unlock()

	if step.ListenErr != nil {
		return nil, step.ListenErr
	}
	return Audio(strconv.Itoa(i)), nil
}

// Recognize implements Recognizer.
func (s *ScriptedSpeech) Recognize(ctx context.Context, audio Audio) (string, error) {
	i, err := strconv.Atoi(string(audio))
	if err != nil {
		return "", ErrNoSpeech
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.steps) {
		return "", ErrNoSpeech
	}
	step := s.steps[i]
	if step.RecognizeErr != nil {
		return "", step.RecognizeErr
	}
	return step.Text, nil
}

// Done is closed once every step has been consumed and Listen is waiting.
func (s *ScriptedSpeech) Done() <-chan struct{} {
	return s.done
}

// SpeakerRecorder records spoken text.
type SpeakerRecorder struct {
	mu     sync.Mutex
	spoken []string
}

// Say implements Speaker.
func (r *SpeakerRecorder) Say(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
	return nil
}

// Spoken returns everything said so far.
func (r *SpeakerRecorder) Spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spoken...)
}
