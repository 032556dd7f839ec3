package input

import "sync"

// Recorder is an Injector that records every operation instead of
// performing it. It is used in tests and in headless runs.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
	err     error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetError makes every following operation fail with err after recording it.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Count returns how many recorded actions have kind k.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.Kind == k {
			n++
		}
	}
	return n
}

// Reset clears the recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}

func (r *Recorder) record(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return r.err
}

func (r *Recorder) MoveCursorTo(x, y int) error { return r.record(Move(x, y)) }
func (r *Recorder) Click() error                { return r.record(Click()) }
func (r *Recorder) RightClick() error           { return r.record(RightClick()) }
func (r *Recorder) DoubleClick() error          { return r.record(DoubleClick()) }
func (r *Recorder) Scroll(delta int) error      { return r.record(Scroll(delta)) }
func (r *Recorder) MouseDown() error            { return r.record(MouseDown()) }
func (r *Recorder) MouseUp() error              { return r.record(MouseUp()) }
func (r *Recorder) PressKey(name string) error  { return r.record(PressKey(name)) }
func (r *Recorder) TypeText(text string) error  { return r.record(TypeText(text)) }
