// Package route implements the ordered stop queue for a single elevator.
//
// The queue holds two kinds of keys: regular floors, which map to an Item and
// are visitable, and conditional floors, identity-unique placeholders that
// reserve a slot for a dropoff until its pickup has been visited.
package route

import (
	"github.com/plundell/stabelo-elevator/internal/event"
	"github.com/plundell/stabelo-elevator/internal/floor"
)

// ConditionalFloor is a per-occurrence tag wrapping a floor. Two tags for the
// same floor never compare equal; identity is the pointer.
type ConditionalFloor struct {
	floor floor.Floor
}

// NewConditional mints a fresh tag for f.
func NewConditional(f floor.Floor) *ConditionalFloor {
	return &ConditionalFloor{floor: f}
}

// Floor returns the floor the tag wraps.
func (c *ConditionalFloor) Floor() floor.Floor {
	return c.floor
}

// Item is the value held for a visitable floor key.
type Item struct {
	Floor floor.Floor
	// VisitAfter lists tags whose floors become regular stops once this
	// floor is visited.
	VisitAfter []*ConditionalFloor
	// DeleteOnVisit lists tags removed from the queue when this floor is
	// visited.
	DeleteOnVisit []*ConditionalFloor
	// RequestCount counts AddRide calls for this floor.
	RequestCount int
}

// Button reports a floor button turning on (first request) or off (visited).
type Button struct {
	Floor  floor.Floor
	Active bool
}

// key is one queue entry: a regular floor when cond is nil, otherwise a
// conditional placeholder.
type key struct {
	floor floor.Floor
	cond  *ConditionalFloor
}

func (k key) value() floor.Floor {
	if k.cond != nil {
		return k.cond.Floor()
	}
	return k.floor
}

// Route is an insertion-ordered queue of floor keys with a side map for the
// visitable ones. The zero value is not usable; call New.
type Route struct {
	queue   []key
	items   map[floor.Floor]*Item
	buttons event.Emitter[Button]
}

// New returns an empty route.
func New() *Route {
	return &Route{items: make(map[floor.Floor]*Item)}
}

// OnButton subscribes to button events. Copies emit nothing.
func (r *Route) OnButton(fn func(Button)) (unsubscribe func()) {
	return r.buttons.Subscribe(fn)
}

// AddRide queues pickup if absent (emitting an active button event) or bumps
// its request count. A dropoff mints a fresh conditional tag on the pickup's
// item and reserves a queue slot for it.
func (r *Route) AddRide(pickup floor.Floor, dropoff *floor.Floor) *Item {
	it, ok := r.items[pickup]
	if !ok {
		it = &Item{Floor: pickup, RequestCount: 1}
		r.items[pickup] = it
		r.queue = append(r.queue, key{floor: pickup})
		r.buttons.Emit(Button{Floor: pickup, Active: true})
	} else {
		it.RequestCount++
	}

	if dropoff != nil {
		cf := NewConditional(*dropoff)
		it.VisitAfter = append(it.VisitAfter, cf)
		r.queue = append(r.queue, key{cond: cf})
	}
	return it
}

// ShouldVisit reports whether f is a visitable stop. Conditional placeholders
// never count.
func (r *Route) ShouldVisit(f floor.Floor) bool {
	_, ok := r.items[f]
	return ok
}

// VisitNow marks f visited: each visit-after tag becomes a regular stop for
// its floor (keeping the tag's reserved slot), each delete-on-visit tag is
// dropped from the queue, and f's own key is removed. Returns false when f is
// not a visitable stop.
func (r *Route) VisitNow(f floor.Floor) bool {
	it, ok := r.items[f]
	if !ok {
		return false
	}

	for _, cf := range it.VisitAfter {
		dest := r.AddRide(cf.Floor(), nil)
		dest.DeleteOnVisit = append(dest.DeleteOnVisit, cf)
	}
	for _, cf := range it.DeleteOnVisit {
		r.removeConditional(cf)
	}
	r.removeFloorKey(f)
	delete(r.items, f)
	r.buttons.Emit(Button{Floor: f, Active: false})
	return true
}

// First returns the numeric value of the first queue key. Conditional
// placeholders are returned here; strategies use them as ordering hints.
func (r *Route) First() (floor.Floor, bool) {
	if len(r.queue) == 0 {
		return 0, false
	}
	return r.queue[0].value(), true
}

// Len returns the number of queue keys, placeholders included.
func (r *Route) Len() int {
	return len(r.queue)
}

// Floors returns each key's numeric value in insertion order.
func (r *Route) Floors() []floor.Floor {
	out := make([]floor.Floor, len(r.queue))
	for i, k := range r.queue {
		out[i] = k.value()
	}
	return out
}

// Item returns the item held for a visitable floor key.
func (r *Route) Item(f floor.Floor) (*Item, bool) {
	it, ok := r.items[f]
	return it, ok
}

// PushedButtons returns the floors of visitable stops. Order is unspecified.
func (r *Route) PushedButtons() []floor.Floor {
	out := make([]floor.Floor, 0, len(r.items))
	for f := range r.items {
		out = append(out, f)
	}
	return out
}

// Copy returns an independent clone. Items and their tag lists are copied;
// the tags themselves are shared, so placeholder identity is preserved across
// the clone's own queue. The clone emits no button events.
func (r *Route) Copy() *Route {
	c := &Route{
		queue: make([]key, len(r.queue)),
		items: make(map[floor.Floor]*Item, len(r.items)),
	}
	copy(c.queue, r.queue)
	for f, it := range r.items {
		c.items[f] = &Item{
			Floor:         it.Floor,
			VisitAfter:    append([]*ConditionalFloor(nil), it.VisitAfter...),
			DeleteOnVisit: append([]*ConditionalFloor(nil), it.DeleteOnVisit...),
			RequestCount:  it.RequestCount,
		}
	}
	return c
}

func (r *Route) removeConditional(cf *ConditionalFloor) {
	for i, k := range r.queue {
		if k.cond == cf {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return
		}
	}
}

func (r *Route) removeFloorKey(f floor.Floor) {
	for i, k := range r.queue {
		if k.cond == nil && k.floor == f {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return
		}
	}
}
