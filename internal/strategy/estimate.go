package strategy

import (
	"time"

	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
)

// Timings are the durations estimation charges per stop.
type Timings struct {
	TravelPerFloor time.Duration
	DoorOpen       time.Duration
	Limit          time.Duration
}

// EstimateOverLimit is the sentinel for "would take longer than the limit".
// It is a reported value, not an error.
const EstimateOverLimit = time.Duration(-1)

// EstimatePickupDropoff estimates how long it takes to reach pickup (and then
// dropoff, when given) from current, by traversing the route the way s would
// drive it. The route passed in is consumed; callers hand in a copy.
//
// The result is EstimateOverLimit as soon as the accumulated time exceeds
// t.Limit. An error is only returned for planner defects.
func EstimatePickupDropoff(s Strategy, r *route.Route, current floor.Floor, pickup floor.Floor, dropoff *floor.Floor, t Timings) (time.Duration, error) {
	var estimated time.Duration
	last := current

	advance := func(curr floor.Floor, _ []floor.Floor) bool {
		estimated += t.DoorOpen + time.Duration(floor.Abs(curr, last))*t.TravelPerFloor
		last = curr
		return estimated > t.Limit
	}

	if current == pickup {
		// Already there; only the door cycle counts.
		estimated += t.DoorOpen
		last = pickup
	} else {
		if _, err := BatchedOrderedStops(s, r, current, &pickup, advance); err != nil {
			return 0, err
		}
	}

	if dropoff != nil && estimated <= t.Limit {
		if _, err := BatchedOrderedStops(s, r, pickup, dropoff, advance); err != nil {
			return 0, err
		}
	}

	if estimated > t.Limit {
		return EstimateOverLimit, nil
	}
	return estimated, nil
}
