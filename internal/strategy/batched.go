package strategy

import (
	"fmt"
	"runtime"

	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
)

const (
	// plannerBatchSize is how many stops a traversal processes between
	// yields, so concurrent planners interleave fairly.
	plannerBatchSize = 10

	// maxPlannerIterations bounds the outer traversal loop. A strategy
	// that fails to consume its route would otherwise spin forever.
	maxPlannerIterations = 1000
)

// InternalError reports a planner defect, with enough context to debug it.
type InternalError struct {
	Current     floor.Floor
	Iterations  int
	RecentStops []floor.Floor
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("planner did not converge: %d iterations at floor %d, recent stops %v",
		e.Iterations, e.Current, e.RecentStops)
}

// BatchedOrderedStops runs s.OrderedStops in cooperative slices of
// plannerBatchSize stops, yielding the scheduler between slices. The caller's
// stopEarly is still honored: once it returns true the traversal is done for
// good, not just for the slice.
func BatchedOrderedStops(s Strategy, r *route.Route, current floor.Floor, target *floor.Floor, stopEarly StopEarly) ([]floor.Floor, error) {
	// Queue the target before consulting the loop guard: on an empty route
	// the guard would otherwise end the traversal before any slice could
	// insert it. The insertion is idempotent, so the strategies' own insert
	// stays a no-op.
	if target != nil {
		r.AddRide(*target, nil)
	}

	var all []floor.Floor
	done := false
	count := 0

	sliced := func(last floor.Floor, stops []floor.Floor) bool {
		count++
		if stopEarly != nil && stopEarly(last, stops) {
			done = true
			return true
		}
		return count%plannerBatchSize == 0
	}

	for iter := 0; !done && r.Len() > 0 && (target == nil || current != *target); iter++ {
		if iter >= maxPlannerIterations {
			recent := all
			if len(recent) > plannerBatchSize {
				recent = recent[len(recent)-plannerBatchSize:]
			}
			return all, &InternalError{Current: current, Iterations: iter, RecentStops: recent}
		}
		runtime.Gosched()

		stops := s.OrderedStops(r, current, target, sliced)
		all = append(all, stops...)
		if len(stops) > 0 {
			current = stops[len(stops)-1]
		}
	}
	return all, nil
}
