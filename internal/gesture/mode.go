package gesture

import "time"

// ModeCooldown is the minimum time between two committed mode transitions.
const ModeCooldown = 500 * time.Millisecond

// Mode is the active interaction mode.
type Mode int

const (
	ModeNavigation Mode = iota + 1
	ModeScrollUp
	ModeScrollDown
	ModeClick
	ModeDrag
)

func (m Mode) String() string {
	switch m {
	case ModeNavigation:
		return "Navigation"
	case ModeScrollUp:
		return "Scroll Up"
	case ModeScrollDown:
		return "Scroll Down"
	case ModeClick:
		return "Click"
	case ModeDrag:
		return "Drag"
	default:
		return "Unknown"
	}
}

// ModeForCount returns the mode selected by a stabilized finger count.
// Counts outside 1-5 select no mode.
func ModeForCount(count int) (Mode, bool) {
	switch count {
	case 1:
		return ModeNavigation, true
	case 2:
		return ModeScrollUp, true
	case 3:
		return ModeScrollDown, true
	case 4:
		return ModeClick, true
	case 5:
		return ModeDrag, true
	default:
		return 0, false
	}
}

// Transition describes a committed change of the stabilized count.
type Transition struct {
	From  Mode
	To    Mode
	Count int
	At    time.Time
}

// Selects reports whether the committed count picked a mode. A count of 0
// commits without selecting one, so To equals From.
func (t Transition) Selects() bool {
	_, ok := ModeForCount(t.Count)
	return ok
}

// ModeMachine holds the current mode and gates changes with a cooldown.
type ModeMachine struct {
	mode           Mode
	lastCount      int
	lastTransition time.Time
	cooldown       time.Duration
}

// NewModeMachine starts in Navigation with the cooldown already elapsed.
func NewModeMachine(now time.Time) *ModeMachine {
	return &ModeMachine{
		mode:           ModeNavigation,
		lastTransition: now.Add(-time.Second),
		cooldown:       ModeCooldown,
	}
}

// Mode returns the current mode.
func (m *ModeMachine) Mode() Mode {
	return m.mode
}

// LastCount returns the last committed stabilized count.
func (m *ModeMachine) LastCount() int {
	return m.lastCount
}

// Update evaluates one stabilized count. It commits when the count differs
// from the last committed one and at least the cooldown has passed since the
// previous commit.
func (m *ModeMachine) Update(now time.Time, count int) (Transition, bool) {
	if count == m.lastCount || now.Sub(m.lastTransition) < m.cooldown {
		return Transition{}, false
	}

	t := Transition{From: m.mode, To: m.mode, Count: count, At: now}
	if mode, ok := ModeForCount(count); ok {
		t.To = mode
		m.mode = mode
	}
	m.lastCount = count
	m.lastTransition = now
	return t, true
}
