package elevator

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plundell/stabelo-elevator/internal/elevio"
	"github.com/plundell/stabelo-elevator/internal/floor"
	"github.com/plundell/stabelo-elevator/internal/route"
	"github.com/plundell/stabelo-elevator/internal/strategy"
)

func ptr(f floor.Floor) *floor.Floor { return &f }

func testConfig() Config {
	return Config{
		TravelPerFloor:  10 * time.Millisecond,
		DoorOpen:        20 * time.Millisecond,
		EstimationLimit: 10 * time.Second,
		Floors:          floor.Range{Min: 0, Max: 10},
		InitialFloor:    3,
	}
}

func newTestElevator(t *testing.T, strat strategy.Strategy) *Elevator {
	t.Helper()
	e := New("test", strat, testConfig(), log.New(io.Discard, "", 0))
	t.Cleanup(e.Shutdown)
	return e
}

func TestLifecycle(t *testing.T) {
	e := newTestElevator(t, strategy.StopEnRoute{})

	assert.False(t, e.IsRunning())
	require.NoError(t, e.Start(false))
	assert.True(t, e.IsRunning())

	assert.Error(t, e.Start(false))
	assert.NoError(t, e.Start(true)) // soft restart is a no-op

	e.Shutdown()
	assert.False(t, e.IsRunning())
}

func TestServesSingleRide(t *testing.T) {
	e := newTestElevator(t, strategy.StopEnRoute{})
	require.NoError(t, e.Start(false))

	require.NoError(t, e.AddRide(6, nil))
	assert.False(t, e.IsFree())

	assert.Eventually(t, e.IsFree, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, floor.Floor(6), e.State().CurrentFloor())
}

func TestServesPickupThenDropoff(t *testing.T) {
	e := newTestElevator(t, strategy.StopEnRoute{})
	require.NoError(t, e.Start(false))

	var mu sync.Mutex
	var buttons []route.Button
	e.OnButton(func(b route.Button) {
		mu.Lock()
		buttons = append(buttons, b)
		mu.Unlock()
	})

	require.NoError(t, e.AddRide(1, ptr(5)))

	assert.Eventually(t, e.IsFree, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, floor.Floor(5), e.State().CurrentFloor())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []route.Button{
		{Floor: 1, Active: true},
		{Floor: 5, Active: true},
		{Floor: 1, Active: false},
		{Floor: 5, Active: false},
	}, buttons)
}

func TestOpensDoorsWhenRideIsHere(t *testing.T) {
	e := newTestElevator(t, strategy.StopEnRoute{})
	require.NoError(t, e.Start(false))

	var doorsOpened bool
	var mu sync.Mutex
	e.IO().OnState(elevio.KindDoorsOpen, func(elevio.Transition) {
		mu.Lock()
		doorsOpened = true
		mu.Unlock()
	})

	// Ride at the current floor: no travel, just a door cycle.
	require.NoError(t, e.AddRide(3, nil))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return doorsOpened
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, e.IsFree, time.Second, 5*time.Millisecond)
}

func TestRejectsOutOfBoundsFloors(t *testing.T) {
	e := newTestElevator(t, strategy.StopEnRoute{})

	assert.ErrorIs(t, e.AddRide(11, nil), floor.ErrInvalidFloor)
	assert.ErrorIs(t, e.AddRide(-1, nil), floor.ErrInvalidFloor)
	assert.ErrorIs(t, e.AddRide(2, ptr(99)), floor.ErrInvalidFloor)

	_, err := e.EstimatePickupDropoff(42, nil)
	assert.ErrorIs(t, err, floor.ErrInvalidFloor)

	assert.Equal(t, 0, e.RouteLength())
}

// vetoAll refuses every ride.
type vetoAll struct{ strategy.StopEnRoute }

func (vetoAll) VetoRide(*route.Route, floor.Floor, floor.Floor, *floor.Floor) bool { return true }

func TestVetoedRideIsDroppedSilently(t *testing.T) {
	e := newTestElevator(t, vetoAll{})

	assert.True(t, e.CheckVeto(5, nil))
	require.NoError(t, e.AddRide(5, nil))
	assert.Equal(t, 0, e.RouteLength())
}

func TestDefaultStrategiesNeverVeto(t *testing.T) {
	assert.False(t, newTestElevator(t, strategy.StopEnRoute{}).CheckVeto(5, nil))
	assert.False(t, newTestElevator(t, strategy.InsertOrder{}).CheckVeto(5, ptr(2)))
}

func TestEstimateLeavesRouteUntouched(t *testing.T) {
	e := newTestElevator(t, strategy.InsertOrder{})
	// Not started: the queued ride stays put after the initial move begins.
	require.NoError(t, e.AddRide(9, nil))

	before := e.RouteLength()
	got, err := e.EstimatePickupDropoff(1, ptr(7))
	require.NoError(t, err)
	assert.Greater(t, got, time.Duration(0))
	assert.Equal(t, before, e.RouteLength())
}

func TestStartPicksUpQueuedRides(t *testing.T) {
	e := newTestElevator(t, strategy.StopEnRoute{})

	// Queued while stopped: the nudge moves the car once, then it stalls
	// with no idle listener.
	require.NoError(t, e.AddRide(5, nil))
	require.NoError(t, e.Start(false))

	assert.Eventually(t, e.IsFree, 2*time.Second, 5*time.Millisecond)
}
