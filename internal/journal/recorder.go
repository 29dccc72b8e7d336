package journal

import (
	"context"
	"log"
	"time"

	"github.com/plundell/stabelo-elevator/internal/bank"
	"github.com/plundell/stabelo-elevator/internal/model"
)

// Recorder drains journal writes onto a single background goroutine so that
// event listeners never block on the database. A full queue drops the write
// and logs; the journal is observability output, not state.
type Recorder struct {
	store  Store
	jobs   chan func(context.Context)
	logger *log.Logger
}

// NewRecorder creates a recorder writing through store.
func NewRecorder(store Store, logger *log.Logger) *Recorder {
	return &Recorder{
		store:  store,
		jobs:   make(chan func(context.Context), 256),
		logger: logger,
	}
}

// Start launches the drain goroutine; it stops when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case job := <-r.jobs:
				job(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Attach subscribes the recorder to the bank's aggregated transition stream.
// The returned handle detaches it.
func (r *Recorder) Attach(b *bank.Bank) (detach func()) {
	return b.OnState(func(ev bank.StateEvent) {
		t := model.Transition{
			Elevator:   ev.Elevator,
			FromState:  ev.From.Kind.String(),
			ToState:    ev.To.Kind.String(),
			FromFloor:  int(ev.From.CurrentFloor()),
			ToFloor:    int(ev.To.CurrentFloor()),
			ObservedAt: time.Now().UTC(),
		}
		r.enqueue(func(ctx context.Context) {
			if err := r.store.RecordTransition(ctx, t); err != nil {
				r.logger.Printf("journal: %v", err)
			}
		})
	})
}

// RecordRide queues a ride record.
func (r *Recorder) RecordRide(elevator string, pickup int, dropoff *int) {
	at := time.Now().UTC()
	r.enqueue(func(ctx context.Context) {
		if err := r.store.RecordRide(ctx, elevator, pickup, dropoff, at); err != nil {
			r.logger.Printf("journal: %v", err)
		}
	})
}

func (r *Recorder) enqueue(job func(context.Context)) {
	select {
	case r.jobs <- job:
	default:
		r.logger.Printf("journal: queue full, dropping write")
	}
}
