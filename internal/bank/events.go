package bank

import (
	"github.com/plundell/stabelo-elevator/internal/elevio"
	"github.com/plundell/stabelo-elevator/internal/floor"
)

// StateEvent is one elevator's IO transition, re-emitted by the bank. The
// aggregated stream preserves order within each elevator.
type StateEvent struct {
	Elevator string
	From     elevio.State
	To       elevio.State
}

// AvailabilityType tags availability events.
type AvailabilityType string

const (
	AvailabilityAdded   AvailabilityType = "added"
	AvailabilityRemoved AvailabilityType = "removed"
)

// AvailabilityEvent announces an elevator joining or leaving the bank. State
// is the elevator's IO state at the time it was added; nil on removal.
type AvailabilityEvent struct {
	Type     AvailabilityType
	Elevator string
	State    *elevio.State
}

// ButtonEvent is a floor button turning on or off on one elevator.
type ButtonEvent struct {
	Elevator string
	Floor    floor.Floor
	Active   bool
}

// OnState subscribes to the aggregated transition stream.
func (b *Bank) OnState(fn func(StateEvent)) (unsubscribe func()) {
	return b.state.Subscribe(fn)
}

// OnAvailability subscribes to elevator add/remove announcements.
func (b *Bank) OnAvailability(fn func(AvailabilityEvent)) (unsubscribe func()) {
	return b.availability.Subscribe(fn)
}

// OnButtons subscribes to the aggregated button stream.
func (b *Bank) OnButtons(fn func(ButtonEvent)) (unsubscribe func()) {
	return b.buttons.Subscribe(fn)
}

// OnElevator subscribes to a single elevator's transition stream. The stream
// exists independently of the elevator: subscribing before the elevator is
// added, or keeping the subscription after it is removed, is fine — the
// stream is simply quiet.
func (b *Bank) OnElevator(id string, fn func(StateEvent)) (unsubscribe func()) {
	b.mu.Lock()
	per := b.perIDLocked(id)
	b.mu.Unlock()
	return per.Subscribe(fn)
}
