package elevio

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTimings = Timings{
	TravelPerFloor: 40 * time.Millisecond,
	DoorOpen:       120 * time.Millisecond,
}

func newTestIO(t *testing.T) *IO {
	t.Helper()
	machine := New("test", 3, testTimings, log.New(io.Discard, "", 0))
	t.Cleanup(machine.Shutdown)
	return machine
}

func stateKind(machine *IO) func() Kind {
	return func() Kind { return machine.State().Kind }
}

func TestInitialState(t *testing.T) {
	machine := newTestIO(t)

	st := machine.State()
	assert.Equal(t, KindIdle, st.Kind)
	f, ok := st.AtFloor()
	require.True(t, ok)
	assert.Equal(t, 3, int(f))
	assert.True(t, st.Due.IsZero())
}

func TestMoveTransitionsAndArrives(t *testing.T) {
	machine := newTestIO(t)

	start := time.Now()
	require.NoError(t, machine.Move(2))

	st := machine.State()
	assert.Equal(t, KindMovingUp, st.Kind)
	assert.Equal(t, 3, int(st.From))
	assert.Equal(t, 5, int(st.To))
	assert.WithinDuration(t, start.Add(2*testTimings.TravelPerFloor), st.Due, 30*time.Millisecond)

	assert.Eventually(t, func() bool {
		st := machine.State()
		return st.Kind == KindIdle && st.At == 5
	}, time.Second, 5*time.Millisecond)
}

func TestMoveDown(t *testing.T) {
	machine := newTestIO(t)

	require.NoError(t, machine.Move(-3))
	assert.Equal(t, KindMovingDown, machine.State().Kind)

	assert.Eventually(t, func() bool {
		st := machine.State()
		return st.Kind == KindIdle && st.At == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCommandPreconditions(t *testing.T) {
	machine := newTestIO(t)

	assert.ErrorIs(t, machine.Move(0), ErrInvalidTransition)

	require.NoError(t, machine.Move(1))
	assert.ErrorIs(t, machine.Move(1), ErrInvalidTransition)
	assert.ErrorIs(t, machine.OpenDoors(), ErrInvalidTransition)

	assert.Eventually(t, func() bool { return stateKind(machine)() == KindIdle },
		time.Second, 5*time.Millisecond)

	require.NoError(t, machine.OpenDoors())
	assert.ErrorIs(t, machine.Move(1), ErrInvalidTransition)
}

func TestDoorsOpenAndClose(t *testing.T) {
	machine := newTestIO(t)

	require.NoError(t, machine.OpenDoors())
	st := machine.State()
	assert.Equal(t, KindDoorsOpen, st.Kind)
	f, ok := st.AtFloor()
	require.True(t, ok)
	assert.Equal(t, 3, int(f))

	assert.Eventually(t, func() bool { return stateKind(machine)() == KindIdle },
		time.Second, 5*time.Millisecond)
}

func TestOpenDoorsExtendsHold(t *testing.T) {
	machine := newTestIO(t)

	require.NoError(t, machine.OpenDoors())
	time.Sleep(testTimings.DoorOpen / 2)
	require.NoError(t, machine.OpenDoors())
	extendedAt := time.Now()

	// Past the first deadline the doors are still open: the second call
	// replaced the pending close.
	time.Sleep(testTimings.DoorOpen * 3 / 4)
	assert.Equal(t, KindDoorsOpen, machine.State().Kind)

	assert.Eventually(t, func() bool { return stateKind(machine)() == KindIdle },
		time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(extendedAt), testTimings.DoorOpen)
}

func TestEventsAreEmittedInTransitionOrder(t *testing.T) {
	machine := newTestIO(t)

	var mu sync.Mutex
	var kinds []Kind
	machine.OnChange(func(tr Transition) {
		mu.Lock()
		kinds = append(kinds, tr.To.Kind)
		mu.Unlock()
	})

	var idleSeen bool
	machine.OnState(KindIdle, func(Transition) {
		mu.Lock()
		idleSeen = true
		mu.Unlock()
	})

	require.NoError(t, machine.Move(1))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return idleSeen
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Kind{KindMovingUp, KindIdle}, kinds)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	machine := newTestIO(t)

	calls := 0
	unsubscribe := machine.OnChange(func(Transition) { calls++ })
	unsubscribe()

	require.NoError(t, machine.OpenDoors())
	assert.Equal(t, 0, calls)
}

func TestStateSnapshotsAreDefensive(t *testing.T) {
	machine := newTestIO(t)

	st := machine.State()
	st.At = 99
	st.Kind = KindDoorsOpen

	fresh := machine.State()
	assert.Equal(t, KindIdle, fresh.Kind)
	assert.Equal(t, 3, int(fresh.At))
}

func TestShutdownCancelsPendingTransition(t *testing.T) {
	machine := New("test", 0, testTimings, log.New(io.Discard, "", 0))

	require.NoError(t, machine.Move(1))
	machine.Shutdown()

	time.Sleep(2 * testTimings.TravelPerFloor)
	// The scheduled arrival never ran.
	assert.Equal(t, KindMovingUp, machine.State().Kind)
	assert.ErrorIs(t, machine.Move(1), ErrInvalidTransition)
}
