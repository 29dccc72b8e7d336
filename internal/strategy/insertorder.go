package strategy

import (
	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
)

// InsertOrder visits floors strictly in the order they were requested.
type InsertOrder struct{}

func (InsertOrder) Name() string { return "insertOrder" }

func (InsertOrder) OrderedStops(r *route.Route, current floor.Floor, target *floor.Floor, stopEarly StopEarly) []floor.Floor {
	if target != nil {
		r.AddRide(*target, nil)
	}

	var stops []floor.Floor
	for r.Len() > 0 {
		f, _ := r.First()
		if !r.ShouldVisit(f) {
			// A placeholder whose stop is not pending yet cannot be
			// consumed; a well-formed route never leads with one.
			break
		}
		stops = append(stops, f)
		r.VisitNow(f)
		if stopEarly != nil && stopEarly(f, stops) {
			return stops
		}
		if target != nil && f == *target {
			return stops
		}
	}
	return stops
}

func (InsertOrder) FloorsToMove(r *route.Route, current floor.Floor) int {
	return stepToward(r, current)
}
