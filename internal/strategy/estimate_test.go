package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plundell/stabelo-elevator/internal/floor"
)

var testTimings = Timings{
	TravelPerFloor: 2 * time.Second,
	DoorOpen:       5 * time.Second,
	Limit:          20 * time.Second,
}

func TestEstimateEmptyRoute(t *testing.T) {
	// 3 -> 7: four floors of travel plus one door cycle.
	got, err := EstimatePickupDropoff(InsertOrder{}, rideRoute(), 3, 7, nil, testTimings)
	require.NoError(t, err)
	assert.Equal(t, 13*time.Second, got)
}

func TestEstimateAtPickupFloor(t *testing.T) {
	got, err := EstimatePickupDropoff(StopEnRoute{}, rideRoute(), 5, 5, nil, testTimings)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)
}

func TestEstimateWithDropoff(t *testing.T) {
	// 3 -> 3 (door) then 3 -> 5 (two floors + door).
	got, err := EstimatePickupDropoff(InsertOrder{}, rideRoute(), 3, 3, ptr(5), testTimings)
	require.NoError(t, err)
	assert.Equal(t, 14*time.Second, got)
}

func TestEstimateChargesPendingStopsFirst(t *testing.T) {
	// InsertOrder must clear 20 before coming back for 5:
	// door@20 + 20 floors, already over a 20s limit.
	got, err := EstimatePickupDropoff(InsertOrder{}, rideRoute(20), 0, 5, nil, testTimings)
	require.NoError(t, err)
	assert.Equal(t, EstimateOverLimit, got)

	// StopEnRoute grabs 5 on the way up: door@5 + 5 floors = 15s.
	got, err = EstimatePickupDropoff(StopEnRoute{}, rideRoute(20), 0, 5, nil, testTimings)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, got)
}

func TestEstimateIsBounded(t *testing.T) {
	// Whatever the route, the result is within [0, limit] or the sentinel.
	routes := [][]floor.Floor{
		nil,
		{5},
		{20},
		{2, 19, 3, 18, 4, 17},
	}
	for _, floors := range routes {
		for _, s := range []Strategy{InsertOrder{}, StopEnRoute{}} {
			got, err := EstimatePickupDropoff(s, rideRoute(floors...), 0, 10, ptr(1), testTimings)
			require.NoError(t, err)
			if got != EstimateOverLimit {
				assert.GreaterOrEqual(t, got, time.Duration(0))
				assert.LessOrEqual(t, got, testTimings.Limit)
			}
		}
	}
}

func TestEstimateDoesNotRunDropoffPhaseWhenOverLimit(t *testing.T) {
	tight := Timings{TravelPerFloor: 2 * time.Second, DoorOpen: 5 * time.Second, Limit: 6 * time.Second}

	got, err := EstimatePickupDropoff(InsertOrder{}, rideRoute(), 0, 5, ptr(10), tight)
	require.NoError(t, err)
	assert.Equal(t, EstimateOverLimit, got)
}
