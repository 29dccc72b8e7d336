package strategy

import (
	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
)

// StopEnRoute visits floors in request order but detours for any pending stop
// on the way to the next one.
type StopEnRoute struct{}

func (StopEnRoute) Name() string { return "stopEnRoute" }

func (StopEnRoute) OrderedStops(r *route.Route, current floor.Floor, target *floor.Floor, stopEarly StopEarly) []floor.Floor {
	if target != nil {
		r.AddRide(*target, nil)
	}

	var stops []floor.Floor
	for r.Len() > 0 {
		next, _ := r.First()

		step := floor.Floor(0)
		if next > current {
			step = 1
		} else if next < current {
			step = -1
		}

		// Sweep every floor between here and the next stop, inclusive,
		// picking up whatever is pending along the way.
		visited := 0
		for f := current; ; f += step {
			if r.ShouldVisit(f) {
				stops = append(stops, f)
				r.VisitNow(f)
				visited++
				if stopEarly != nil && stopEarly(f, stops) {
					return stops
				}
				if target != nil && f == *target {
					return stops
				}
			}
			if step == 0 || f == next {
				break
			}
		}
		current = next
		if visited == 0 {
			// The leading key was not consumable; bail instead of
			// sweeping the same span forever.
			break
		}
	}
	return stops
}

func (StopEnRoute) FloorsToMove(r *route.Route, current floor.Floor) int {
	return stepToward(r, current)
}
