// Package events carries observable activity from the gesture and voice
// tasks to the presentation layers (tray, TUI, WebSocket, MQTT, activity log).
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of an Event.
type Type string

const (
	ModeChanged         Type = "mode-changed"
	HandPresenceChanged Type = "hand-presence-changed"
	ClickPerformed      Type = "click-performed"
	DragStarted         Type = "drag-started"
	DragEnded           Type = "drag-ended"
	VoiceCommand        Type = "voice-command"
	VoiceError          Type = "voice-error"
	VoiceStatus         Type = "voice-status"
	TrackingStatus      Type = "tracking-status"
	TrackingError       Type = "tracking-error"
)

// Event is a single observable occurrence.
//
// Value holds the event's payload in string form: the mode name for
// ModeChanged, "true"/"false" for HandPresenceChanged, the end reason for
// DragEnded, the transcript for VoiceCommand, the error kind for VoiceError
// and the status name for VoiceStatus and TrackingStatus.
type Event struct {
	ID      string    `json:"id"`
	Type    Type      `json:"type"`
	Value   string    `json:"value,omitempty"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// New creates an Event with a fresh ID.
func New(t Type, value, message string, at time.Time) Event {
	return Event{
		ID:      uuid.New().String(),
		Type:    t,
		Value:   value,
		Message: message,
		Time:    at,
	}
}

// Subscription receives events published on a Bus.
type Subscription struct {
	C <-chan Event

	ch chan Event
}

// Bus fans published events out to every subscriber. Publishing never
// blocks; a subscriber whose buffer is full misses the event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[*Subscription]bool
	dropped int
	closed  bool
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[*Subscription]bool),
	}
}

// Subscribe registers a subscriber with the given channel buffer size.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub] = true
	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.subs[sub] {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish delivers e to all current subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			b.dropped++
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close closes every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.ch)
		delete(b.subs, sub)
	}
}
