// Package notification pushes "your elevator has arrived" web push messages
// to subscriptions registered for a floor, whenever doors open there.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/plundell/stabelo-elevator/internal/bank"
	"github.com/plundell/stabelo-elevator/internal/journal"
	"github.com/plundell/stabelo-elevator/internal/model"
)

// ArrivalSender defines the interface for sending a web push notification.
type ArrivalSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of ArrivalSender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Arrival is one notification job: an elevator opening its doors at a floor.
type Arrival struct {
	Elevator string
	Floor    int
}

// WorkerPool manages a pool of workers for sending arrival notifications.
type WorkerPool struct {
	size    int
	jobs    chan Arrival
	store   journal.Store
	webpush *webpush.Options
	sender  ArrivalSender
	logger  *log.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, store journal.Store, webpushOptions *webpush.Options, logger *log.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Arrival, size),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// Attach subscribes the pool to the bank's button stream: a button going
// inactive means the car is opening its doors at that floor.
func (wp *WorkerPool) Attach(b *bank.Bank) (detach func()) {
	return b.OnButtons(func(ev bank.ButtonEvent) {
		if ev.Active {
			return
		}
		wp.Dispatch(Arrival{Elevator: ev.Elevator, Floor: int(ev.Floor)})
	})
}

// Dispatch queues a job; a full queue drops it rather than stalling the
// event stream.
func (wp *WorkerPool) Dispatch(a Arrival) {
	select {
	case wp.jobs <- a:
	default:
		wp.logger.Printf("notification: queue full, dropping arrival at floor %d", a.Floor)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Printf("Notification worker %d started", id)
	for {
		select {
		case a := <-wp.jobs:
			wp.sendNotificationsForArrival(ctx, a)
		case <-ctx.Done():
			wp.logger.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// sendNotificationsForArrival fetches the floor's subscriptions and pushes to
// each of them.
func (wp *WorkerPool) sendNotificationsForArrival(ctx context.Context, a Arrival) {
	subscriptions, err := wp.store.SubscriptionsForFloor(ctx, a.Floor)
	if err != nil {
		wp.logger.Printf("Error fetching subscriptions for floor %d: %v", a.Floor, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.logger.Printf("Sending %d notifications for floor %d", len(subscriptions), a.Floor)
	message := fmt.Sprintf("Elevator %s has arrived at floor %d", a.Elevator, a.Floor)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.logger.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
