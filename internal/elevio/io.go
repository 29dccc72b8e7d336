package elevio

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/plundell/stabelo-elevator/internal/event"
	"github.com/plundell/stabelo-elevator/internal/floor"
)

// ErrInvalidTransition is returned when a command is issued in a state that
// does not accept it.
var ErrInvalidTransition = errors.New("invalid state transition")

// Timings hold the scheduled delays of the two timed transitions.
type Timings struct {
	TravelPerFloor time.Duration
	DoorOpen       time.Duration
}

// IO is the per-elevator state machine. Commands are Move and OpenDoors; the
// exit from every timed state is a single one-shot timer.
type IO struct {
	id      string
	timings Timings
	logger  *log.Logger

	mu       sync.Mutex
	state    State
	timer    *time.Timer
	shutdown bool

	change  event.Emitter[Transition]
	byState map[Kind]*event.Emitter[Transition]
}

// New returns an idle machine at the initial floor.
func New(id string, initial floor.Floor, timings Timings, logger *log.Logger) *IO {
	io := &IO{
		id:      id,
		timings: timings,
		logger:  logger,
		state:   State{Kind: KindIdle, At: initial, Start: time.Now()},
		byState: map[Kind]*event.Emitter[Transition]{
			KindIdle:       {},
			KindMovingUp:   {},
			KindMovingDown: {},
			KindDoorsOpen:  {},
		},
	}
	return io
}

// State returns a snapshot of the current state.
func (io *IO) State() State {
	io.mu.Lock()
	defer io.mu.Unlock()
	return io.state
}

// OnChange subscribes to every transition.
func (io *IO) OnChange(fn func(Transition)) (unsubscribe func()) {
	return io.change.Subscribe(fn)
}

// OnState subscribes to transitions into one state kind.
func (io *IO) OnState(k Kind, fn func(Transition)) (unsubscribe func()) {
	return io.byState[k].Subscribe(fn)
}

// Move starts travel of n floors (n != 0). Only valid while idle. The car
// arrives, and returns to idle, after |n| * TravelPerFloor.
func (io *IO) Move(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: move(0)", ErrInvalidTransition)
	}

	io.mu.Lock()
	if io.shutdown {
		io.mu.Unlock()
		return fmt.Errorf("%w: %s is shut down", ErrInvalidTransition, io.id)
	}
	if io.state.Kind != KindIdle {
		defer io.mu.Unlock()
		return fmt.Errorf("%w: move while %s", ErrInvalidTransition, io.state.Kind)
	}

	abs := n
	if abs < 0 {
		abs = -abs
	}
	kind := KindMovingUp
	if n < 0 {
		kind = KindMovingDown
	}

	now := time.Now()
	from := io.state.At
	prev := io.state
	next := State{
		Kind:  kind,
		From:  from,
		To:    from + floor.Floor(n),
		Start: now,
		Due:   now.Add(time.Duration(abs) * io.timings.TravelPerFloor),
	}
	io.state = next
	io.schedule(next.Due.Sub(now), false)
	io.mu.Unlock()

	io.emit(prev, next)
	return nil
}

// OpenDoors opens the doors (from idle) or extends the hold (while already
// open, replacing the pending close). The doors close, returning to idle,
// after DoorOpen.
func (io *IO) OpenDoors() error {
	io.mu.Lock()
	if io.shutdown {
		io.mu.Unlock()
		return fmt.Errorf("%w: %s is shut down", ErrInvalidTransition, io.id)
	}
	if io.state.Kind != KindIdle && io.state.Kind != KindDoorsOpen {
		defer io.mu.Unlock()
		return fmt.Errorf("%w: openDoors while %s", ErrInvalidTransition, io.state.Kind)
	}
	extend := io.state.Kind == KindDoorsOpen

	now := time.Now()
	prev := io.state
	next := State{
		Kind:  KindDoorsOpen,
		At:    prev.At,
		Start: now,
		Due:   now.Add(io.timings.DoorOpen),
	}
	io.state = next
	io.schedule(io.timings.DoorOpen, extend)
	io.mu.Unlock()

	io.emit(prev, next)
	return nil
}

// Shutdown cancels any pending transition and makes the machine inert. Queued
// timer callbacks become no-ops.
func (io *IO) Shutdown() {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.shutdown = true
	if io.timer != nil {
		io.timer.Stop()
		io.timer = nil
	}
}

// schedule installs the single pending transition. Installing over a pending
// timer is refused unless replace is set; the refusal is logged rather than
// raised, since raising from here would strand the new state.
func (io *IO) schedule(d time.Duration, replace bool) {
	if io.timer != nil {
		if !replace {
			io.logger.Printf("%s: refusing to schedule over a pending transition", io.id)
			return
		}
		io.timer.Stop()
		io.timer = nil
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() { io.fire(t) })
	io.timer = t
}

// fire is the timer callback: the sole exit from a timed state. The handle is
// cleared before the transition so reentrant commands find the machine in the
// new state with no pending timer.
func (io *IO) fire(t *time.Timer) {
	io.mu.Lock()
	if io.shutdown || io.timer != t {
		// Shut down, or replaced while this callback was in flight.
		io.mu.Unlock()
		return
	}
	io.timer = nil

	prev := io.state
	var at floor.Floor
	switch prev.Kind {
	case KindMovingUp, KindMovingDown:
		at = prev.To
	case KindDoorsOpen:
		at = prev.At
	default:
		io.mu.Unlock()
		io.logger.Printf("%s: timer fired in %s state, ignoring", io.id, prev.Kind)
		return
	}
	next := State{Kind: KindIdle, At: at, Start: time.Now()}
	io.state = next
	io.mu.Unlock()

	io.emit(prev, next)
}

// emit delivers the change event first, then the per-state event. Per-state
// listeners may issue the next command reentrantly; delivering change first
// keeps the change stream in transition order.
func (io *IO) emit(from, to State) {
	tr := Transition{From: from, To: to}
	io.change.Emit(tr)
	io.byState[to.Kind].Emit(tr)
}
