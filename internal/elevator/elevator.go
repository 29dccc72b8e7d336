// Package elevator ties a route, an IO state machine and a travel strategy
// together for one shaft. Each idle tick it decides: open doors here, move
// toward the next stop, or rest.
package elevator

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/plundell/stabelo-elevator/internal/elevio"
	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
	"github.com/plundell/stabelo-elevator/internal/strategy"
)

// Config carries the per-elevator parameters.
type Config struct {
	TravelPerFloor  time.Duration
	DoorOpen        time.Duration
	EstimationLimit time.Duration
	Floors          floor.Range
	InitialFloor    floor.Floor
	Debug           bool
}

// Elevator owns its route and IO exclusively. All route access and the
// decision step are serialized by mu.
type Elevator struct {
	id     string
	cfg    Config
	strat  strategy.Strategy
	logger *log.Logger

	mu        sync.Mutex
	route     *route.Route
	io        *elevio.IO
	unsubIdle func()
}

// New builds an elevator resting idle at the configured initial floor. It
// does not process rides until Start is called.
func New(id string, strat strategy.Strategy, cfg Config, logger *log.Logger) *Elevator {
	return &Elevator{
		id:     id,
		cfg:    cfg,
		strat:  strat,
		logger: logger,
		route:  route.New(),
		io: elevio.New(id, cfg.InitialFloor, elevio.Timings{
			TravelPerFloor: cfg.TravelPerFloor,
			DoorOpen:       cfg.DoorOpen,
		}, logger),
	}
}

// ID returns the elevator's identifier.
func (e *Elevator) ID() string { return e.id }

// IO exposes the state machine for event subscription.
func (e *Elevator) IO() *elevio.IO { return e.io }

// State returns the IO's current state.
func (e *Elevator) State() elevio.State { return e.io.State() }

// OnButton subscribes to this elevator's button events.
func (e *Elevator) OnButton(fn func(route.Button)) (unsubscribe func()) {
	return e.route.OnButton(fn)
}

// Start registers the idle listener that drives the decision loop, and runs
// one decision step for anything already queued. Starting a running elevator
// is a no-op when soft, an error otherwise.
func (e *Elevator) Start(soft bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unsubIdle != nil {
		if soft {
			return nil
		}
		return fmt.Errorf("elevator %s is already running", e.id)
	}
	e.unsubIdle = e.io.OnState(elevio.KindIdle, e.onIdle)
	e.step()
	return nil
}

// IsRunning reports whether the idle listener is registered.
func (e *Elevator) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unsubIdle != nil
}

// Shutdown detaches the decision loop, then cancels any pending IO timer.
func (e *Elevator) Shutdown() {
	e.mu.Lock()
	if e.unsubIdle != nil {
		e.unsubIdle()
		e.unsubIdle = nil
	}
	e.mu.Unlock()
	e.io.Shutdown()
}

// AddRide validates the floors, consults the strategy's veto if it has one,
// queues the ride, and nudges the decision loop when the car is idle.
func (e *Elevator) AddRide(pickup floor.Floor, dropoff *floor.Floor) error {
	if err := e.cfg.Floors.Validate(pickup); err != nil {
		return err
	}
	if err := e.cfg.Floors.ValidatePtr(dropoff); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.strat.(strategy.Vetoer); ok {
		if v.VetoRide(e.route, e.io.State().CurrentFloor(), pickup, dropoff) {
			e.logger.Printf("%s: strategy vetoed ride %d -> %v", e.id, pickup, dropoff)
			return nil
		}
	}

	e.route.AddRide(pickup, dropoff)
	if e.io.State().Kind == elevio.KindIdle {
		e.step()
	}
	return nil
}

// CheckVeto reports whether the strategy would refuse the ride. Strategies
// without the capability never veto.
func (e *Elevator) CheckVeto(pickup floor.Floor, dropoff *floor.Floor) bool {
	v, ok := e.strat.(strategy.Vetoer)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return v.VetoRide(e.route, e.io.State().CurrentFloor(), pickup, dropoff)
}

// EstimatePickupDropoff estimates the ride on a copy of the route; the live
// route is never altered. The estimation runs without holding the elevator
// lock, since the planner yields cooperatively.
func (e *Elevator) EstimatePickupDropoff(pickup floor.Floor, dropoff *floor.Floor) (time.Duration, error) {
	if err := e.cfg.Floors.Validate(pickup); err != nil {
		return 0, err
	}
	if err := e.cfg.Floors.ValidatePtr(dropoff); err != nil {
		return 0, err
	}

	e.mu.Lock()
	cp := e.route.Copy()
	current := e.io.State().CurrentFloor()
	e.mu.Unlock()

	return strategy.EstimatePickupDropoff(e.strat, cp, current, pickup, dropoff, strategy.Timings{
		TravelPerFloor: e.cfg.TravelPerFloor,
		DoorOpen:       e.cfg.DoorOpen,
		Limit:          e.cfg.EstimationLimit,
	})
}

// IsFree reports an empty route and an idle car.
func (e *Elevator) IsFree() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.route.Len() == 0 && e.io.State().Kind == elevio.KindIdle
}

// RouteLength returns the number of queued keys.
func (e *Elevator) RouteLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.route.Len()
}

// PushedButtons returns the floors currently requested.
func (e *Elevator) PushedButtons() []floor.Floor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.route.PushedButtons()
}

// onIdle re-enters the decision loop whenever the IO comes to rest. Errors
// stay here: a panic escaping into the state machine's callback would kill
// the event stream.
func (e *Elevator) onIdle(elevio.Transition) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("%s: decision step panicked: %v", e.id, r)
		}
	}()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step()
}

// step is one decision: visit the current floor if requested, else move one
// floor toward the next stop, else stay idle. Callers hold e.mu.
func (e *Elevator) step() {
	st := e.io.State()
	if st.Kind != elevio.KindIdle {
		return
	}
	current := st.CurrentFloor()

	if e.route.ShouldVisit(current) {
		e.route.VisitNow(current)
		if err := e.io.OpenDoors(); err != nil {
			e.logger.Printf("%s: openDoors at %d: %v", e.id, current, err)
		}
		return
	}

	if e.route.Len() > 0 {
		n := e.strat.FloorsToMove(e.route, current)
		if e.cfg.Debug {
			e.logger.Printf("%s: at %d, route %v, moving %+d", e.id, current, e.route.Floors(), n)
		}
		if n == 0 {
			return
		}
		if err := e.io.Move(n); err != nil {
			e.logger.Printf("%s: move(%d) from %d: %v", e.id, n, current, err)
		}
	}
}
