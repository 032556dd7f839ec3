package tui

import (
	"time"

	"github.com/ayusman/mudra/internal/events"
)

// TickMsg triggers a status refresh.
type TickMsg time.Time

// EventMsg carries one bus event into the program.
type EventMsg events.Event

// ErrorMsg reports a failed control action.
type ErrorMsg struct {
	Err error
}
