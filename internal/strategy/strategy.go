// Package strategy holds the travel planners. A strategy is pure: it consumes
// a route (normally a copy) to produce an ordered list of stops, and derives
// the next unit step for a live route.
package strategy

import (
	"fmt"

	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
)

// StopEarly is consulted after each stop is appended. Returning true halts
// the traversal immediately. It runs before any target-reached check.
type StopEarly func(last floor.Floor, stops []floor.Floor) bool

// Strategy plans the order in which a route's stops are visited.
type Strategy interface {
	// Name identifies the strategy in config and logs.
	Name() string

	// OrderedStops consumes r, appending stops in visit order. When target
	// is non-nil it is first inserted into the route and traversal halts
	// once it has been visited and appended. stopEarly may be nil.
	OrderedStops(r *route.Route, current floor.Floor, target *floor.Floor, stopEarly StopEarly) []floor.Floor

	// FloorsToMove returns +1 or -1 for the next unit step toward the
	// route's first key, or 0 when the route is empty or already there.
	FloorsToMove(r *route.Route, current floor.Floor) int
}

// Vetoer is an optional capability: a strategy may refuse a ride before it is
// ever estimated. Strategies without it never veto.
type Vetoer interface {
	VetoRide(r *route.Route, current floor.Floor, pickup floor.Floor, dropoff *floor.Floor) bool
}

// ForName returns the strategy registered under name.
func ForName(name string) (Strategy, error) {
	switch name {
	case InsertOrder{}.Name():
		return InsertOrder{}, nil
	case StopEnRoute{}.Name():
		return StopEnRoute{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

// stepToward is the shared FloorsToMove behavior: the sign of the distance to
// the route's first key.
func stepToward(r *route.Route, current floor.Floor) int {
	f, ok := r.First()
	if !ok || f == current {
		return 0
	}
	if f > current {
		return 1
	}
	return -1
}
