package app

import (
	"log"

	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/store"
)

// activityRecorder persists every published event to the activity log.
type activityRecorder struct {
	repo *store.ActivityRepository
	bus  *events.Bus
	sub  *events.Subscription
	done chan struct{}
}

func newActivityRecorder(repo *store.ActivityRepository, bus *events.Bus) *activityRecorder {
	r := &activityRecorder{
		repo: repo,
		bus:  bus,
		sub:  bus.Subscribe(256),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *activityRecorder) run() {
	defer close(r.done)
	for e := range r.sub.C {
		err := r.repo.Create(&store.Activity{
			ID:        e.ID,
			Type:      string(e.Type),
			Value:     e.Value,
			Message:   e.Message,
			CreatedAt: e.Time,
		})
		if err != nil {
			log.Printf("Failed to record activity: %v", err)
		}
	}
}

// Close stops recording after the already buffered events are written.
func (r *activityRecorder) Close() {
	r.bus.Unsubscribe(r.sub)
	<-r.done
}
