// Package bank coordinates a pool of elevators: it picks an elevator for each
// incoming ride and fans the per-elevator event streams into aggregated ones.
package bank

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/plundell/stabelo-elevator/internal/elevator"
	"github.com/plundell/stabelo-elevator/internal/elevio"
	"github.com/plundell/stabelo-elevator/internal/event"
	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
	"github.com/plundell/stabelo-elevator/internal/strategy"
)

// ErrDomain covers dispatch-level failures: unknown elevator ids, duplicate
// registrations, rides every elevator refuses.
var ErrDomain = errors.New("domain error")

// Config carries the bank-wide parameters.
type Config struct {
	TravelPerFloor  time.Duration
	DoorOpen        time.Duration
	EstimationLimit time.Duration
	UseFreeFirst    bool
	Floors          floor.Range
	Elevators       int
	InitialFloor    floor.Floor
	Debug           bool
}

// Bank is the dispatcher. The elevator set preserves insertion order; ties in
// every selection tier break toward the earlier-added elevator.
type Bank struct {
	cfg    Config
	logger *log.Logger

	mu      sync.RWMutex
	order   []*elevator.Elevator
	byID    map[string]*elevator.Elevator
	unsubs  map[string][]func()
	perID   map[string]*event.Emitter[StateEvent]
	running bool

	state        event.Emitter[StateEvent]
	availability event.Emitter[AvailabilityEvent]
	buttons      event.Emitter[ButtonEvent]
}

// NewEmpty builds a bank with no elevators; the caller adds its own.
func NewEmpty(cfg Config, logger *log.Logger) *Bank {
	return &Bank{
		cfg:    cfg,
		logger: logger,
		byID:   make(map[string]*elevator.Elevator),
		unsubs: make(map[string][]func()),
		perID:  make(map[string]*event.Emitter[StateEvent]),
	}
}

// New builds a bank with cfg.Elevators elevators, all idle at the initial
// floor, sharing one strategy.
func New(cfg Config, strat strategy.Strategy, logger *log.Logger) (*Bank, error) {
	if cfg.Elevators < 1 {
		return nil, fmt.Errorf("%w: need at least one elevator, got %d", ErrDomain, cfg.Elevators)
	}
	if err := cfg.Floors.Validate(cfg.InitialFloor); err != nil {
		return nil, fmt.Errorf("initial floor: %w", err)
	}

	b := NewEmpty(cfg, logger)
	for i := 1; i <= cfg.Elevators; i++ {
		e := elevator.New(fmt.Sprintf("elevator-%d", i), strat, elevator.Config{
			TravelPerFloor:  cfg.TravelPerFloor,
			DoorOpen:        cfg.DoorOpen,
			EstimationLimit: cfg.EstimationLimit,
			Floors:          cfg.Floors,
			InitialFloor:    cfg.InitialFloor,
			Debug:           cfg.Debug,
		}, logger)
		if err := b.AddElevator(e); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// AddElevator registers e. Re-adding the same instance warns and no-ops; a
// different instance under the same id is refused. The bank re-emits the
// elevator's IO changes on its per-id and aggregated state streams, and its
// availability event precedes any of its state events.
func (b *Bank) AddElevator(e *elevator.Elevator) error {
	id := e.ID()

	b.mu.Lock()
	if existing, ok := b.byID[id]; ok {
		b.mu.Unlock()
		if existing == e {
			b.logger.Printf("bank: elevator %s already added, ignoring", id)
			return nil
		}
		return fmt.Errorf("%w: elevator id %q already registered to a different instance", ErrDomain, id)
	}
	b.byID[id] = e
	b.order = append(b.order, e)
	per := b.perIDLocked(id)
	unsubChange := e.IO().OnChange(func(tr elevio.Transition) {
		ev := StateEvent{Elevator: id, From: tr.From, To: tr.To}
		per.Emit(ev)
		b.state.Emit(ev)
	})
	unsubButton := e.OnButton(func(btn route.Button) {
		b.buttons.Emit(ButtonEvent{Elevator: id, Floor: btn.Floor, Active: btn.Active})
	})
	b.unsubs[id] = []func(){unsubChange, unsubButton}
	running := b.running
	b.mu.Unlock()

	st := e.State()
	b.availability.Emit(AvailabilityEvent{Type: AvailabilityAdded, Elevator: id, State: &st})

	if running {
		if err := e.Start(true); err != nil {
			b.logger.Printf("bank: starting %s: %v", id, err)
		}
	}
	return nil
}

// RemoveElevator shuts the elevator down, detaches the bank's re-emitters and
// announces the removal. Unknown ids warn and no-op.
func (b *Bank) RemoveElevator(id string) {
	b.mu.Lock()
	e, ok := b.byID[id]
	if !ok {
		b.mu.Unlock()
		b.logger.Printf("bank: cannot remove unknown elevator %q", id)
		return
	}
	delete(b.byID, id)
	for i, o := range b.order {
		if o == e {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	unsubs := b.unsubs[id]
	delete(b.unsubs, id)
	b.mu.Unlock()

	e.Shutdown()
	for _, unsub := range unsubs {
		unsub()
	}
	b.availability.Emit(AvailabilityEvent{Type: AvailabilityRemoved, Elevator: id})
}

// ListElevators returns the ids in insertion order.
func (b *Bank) ListElevators() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, len(b.order))
	for i, e := range b.order {
		ids[i] = e.ID()
	}
	return ids
}

// ElevatorState returns one elevator's IO state.
func (b *Bank) ElevatorState(id string) (elevio.State, error) {
	e, err := b.lookup(id)
	if err != nil {
		return elevio.State{}, err
	}
	return e.State(), nil
}

// AllElevatorStates returns every elevator's IO state keyed by id.
func (b *Bank) AllElevatorStates() map[string]elevio.State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]elevio.State, len(b.order))
	for _, e := range b.order {
		out[e.ID()] = e.State()
	}
	return out
}

// PushedButtons returns one elevator's requested floors.
func (b *Bank) PushedButtons(id string) ([]floor.Floor, error) {
	e, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.PushedButtons(), nil
}

// AllPushedButtons returns every elevator's requested floors keyed by id.
func (b *Bank) AllPushedButtons() map[string][]floor.Floor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string][]floor.Floor, len(b.order))
	for _, e := range b.order {
		out[e.ID()] = e.PushedButtons()
	}
	return out
}

// AddRide dispatches a ride and returns the chosen elevator's id. Selection
// runs in three tiers over the non-vetoing candidates: the first free
// elevator (when enabled), the smallest concurrent estimate, and finally the
// shortest pending route.
func (b *Bank) AddRide(pickup floor.Floor, dropoff *floor.Floor) (string, error) {
	if err := b.cfg.Floors.Validate(pickup); err != nil {
		return "", err
	}
	if err := b.cfg.Floors.ValidatePtr(dropoff); err != nil {
		return "", err
	}

	b.mu.RLock()
	all := make([]*elevator.Elevator, len(b.order))
	copy(all, b.order)
	b.mu.RUnlock()

	var candidates []*elevator.Elevator
	for _, e := range all {
		if !e.CheckVeto(pickup, dropoff) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: all elevators vetoed ride %d -> %v", ErrDomain, pickup, dropoff)
	}

	if b.cfg.UseFreeFirst {
		for _, e := range candidates {
			if e.IsFree() {
				return b.assign(e, pickup, dropoff)
			}
		}
	}

	// Fork-join: every candidate estimates concurrently; a failed
	// estimation just means "cannot estimate".
	estimates := make([]time.Duration, len(candidates))
	var wg sync.WaitGroup
	for i, e := range candidates {
		wg.Add(1)
		go func(i int, e *elevator.Elevator) {
			defer wg.Done()
			d, err := e.EstimatePickupDropoff(pickup, dropoff)
			if err != nil {
				b.logger.Printf("bank: estimation on %s failed: %v", e.ID(), err)
				d = strategy.EstimateOverLimit
			}
			estimates[i] = d
		}(i, e)
	}
	wg.Wait()

	best := -1
	for i := range candidates {
		if estimates[i] < 0 {
			continue
		}
		if best < 0 || estimates[i] < estimates[best] {
			best = i
		}
	}
	if best >= 0 {
		return b.assign(candidates[best], pickup, dropoff)
	}

	// Every candidate blew the estimation limit; fall back to the
	// shortest pending route.
	shortest := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].RouteLength() < candidates[shortest].RouteLength() {
			shortest = i
		}
	}
	return b.assign(candidates[shortest], pickup, dropoff)
}

func (b *Bank) assign(e *elevator.Elevator, pickup floor.Floor, dropoff *floor.Floor) (string, error) {
	if err := e.AddRide(pickup, dropoff); err != nil {
		return "", err
	}
	return e.ID(), nil
}

// Start starts every elevator; elevators added later start automatically.
func (b *Bank) Start() error {
	b.mu.Lock()
	b.running = true
	elevators := append([]*elevator.Elevator(nil), b.order...)
	b.mu.Unlock()

	for _, e := range elevators {
		if err := e.Start(true); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown shuts down every elevator.
func (b *Bank) Shutdown() {
	b.mu.Lock()
	b.running = false
	elevators := append([]*elevator.Elevator(nil), b.order...)
	b.mu.Unlock()

	for _, e := range elevators {
		e.Shutdown()
	}
}

// IsRunning reports whether every elevator is running.
func (b *Bank) IsRunning() bool {
	b.mu.RLock()
	elevators := append([]*elevator.Elevator(nil), b.order...)
	b.mu.RUnlock()

	for _, e := range elevators {
		if !e.IsRunning() {
			return false
		}
	}
	return len(elevators) > 0
}

func (b *Bank) lookup(id string) (*elevator.Elevator, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown elevator %q", ErrDomain, id)
	}
	return e, nil
}

func (b *Bank) perIDLocked(id string) *event.Emitter[StateEvent] {
	per, ok := b.perID[id]
	if !ok {
		per = &event.Emitter[StateEvent]{}
		b.perID[id] = per
	}
	return per
}
