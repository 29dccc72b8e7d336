package notification

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/plundell/stabelo-elevator/internal/journal"
	"github.com/plundell/stabelo-elevator/internal/model"
)

// mockSender is a mock implementation of the ArrivalSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// fakeStore serves canned subscriptions and records deletions.
type fakeStore struct {
	mu      sync.Mutex
	byFloor map[int][]model.PushSubscription
	deleted []string
}

func (f *fakeStore) SubscriptionsForFloor(_ context.Context, fl int) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byFloor[fl], nil
}

func (f *fakeStore) DeleteSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeStore) RecordRide(context.Context, string, int, *int, time.Time) error { return nil }
func (f *fakeStore) RecordTransition(context.Context, model.Transition) error       { return nil }
func (f *fakeStore) UpsertSubscription(context.Context, model.PushSubscription, []int) error {
	return nil
}
func (f *fakeStore) GetSubscription(context.Context, string) (model.PushSubscription, error) {
	return model.PushSubscription{}, nil
}
func (f *fakeStore) DB() *gorm.DB { return nil }

var _ journal.Store = (*fakeStore)(nil)

func newTestPool(store journal.Store) *WorkerPool {
	return NewWorkerPool(1, store, &webpush.Options{}, log.New(io.Discard, "", 0))
}

func okResponse(code int) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestWorkerSendsArrivalNotification(t *testing.T) {
	store := &fakeStore{byFloor: map[int][]model.PushSubscription{
		5: {{Endpoint: "https://example.com/push", P256DH: "p", Auth: "a"}},
	}}
	wp := newTestPool(store)

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "Elevator elevator-1 has arrived at floor 5", string(payload))
			wg.Done()
			return okResponse(http.StatusCreated), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(Arrival{Elevator: "elevator-1", Floor: 5})
	wg.Wait()
}

func TestWorkerDeletesExpiredSubscription(t *testing.T) {
	store := &fakeStore{byFloor: map[int][]model.PushSubscription{
		2: {{Endpoint: "https://example.com/expired", P256DH: "p", Auth: "a"}},
	}}
	wp := newTestPool(store)

	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return okResponse(http.StatusGone), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(Arrival{Elevator: "elevator-1", Floor: 2})

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.deleted) == 1 && store.deleted[0] == "https://example.com/expired"
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerSkipsFloorsWithoutSubscriptions(t *testing.T) {
	store := &fakeStore{byFloor: map[int][]model.PushSubscription{}}
	wp := newTestPool(store)

	sent := 0
	wp.sender = &mockSender{
		SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
			sent++
			return okResponse(http.StatusCreated), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(Arrival{Elevator: "elevator-1", Floor: 9})
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, sent)
}
