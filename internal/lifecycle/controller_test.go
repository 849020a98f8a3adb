// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	return NewController(append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
}

// driveTo walks the cycle from the current phase until target is reached.
func driveTo(t *testing.T, c *Controller, target Phase) {
	t.Helper()
	for i := 0; c.CurrentPhase() != target; i++ {
		require.Less(t, i, len(cycleOrder), "target %s not reachable", target)
		_, err := c.RequestTransition(context.Background(), string(c.Next().To))
		require.NoError(t, err)
	}
}

func TestNewController_StartsInactive(t *testing.T) {
	c := quietController(t)
	assert.Equal(t, PhaseInactive, c.CurrentPhase())
}

func TestRequestTransition_SamePhaseIsNoop(t *testing.T) {
	for _, p := range Phases() {
		t.Run(string(p), func(t *testing.T) {
			var notified int
			c := quietController(t, WithObserver(func(context.Context, string, Transition) { notified++ }))
			driveTo(t, c, p)
			before := notified

			out, err := c.Apply(context.Background(), string(p))
			require.NoError(t, err)
			assert.False(t, out.Changed)
			assert.Equal(t, p, out.To)
			assert.Equal(t, p, c.CurrentPhase())
			assert.Equal(t, before, notified, "no-op must not notify observers")
		})
	}
}

func TestRequestTransition_NonSuccessorIsIllegal(t *testing.T) {
	for _, from := range Phases() {
		succ, ok := Successor(from)
		require.True(t, ok)
		for _, target := range Phases() {
			if target == from || target == succ.To {
				continue
			}
			t.Run(string(from)+"->"+string(target), func(t *testing.T) {
				c := quietController(t)
				driveTo(t, c, from)

				got, err := c.RequestTransition(context.Background(), string(target))
				require.ErrorIs(t, err, ErrIllegalTransition)
				assert.Equal(t, from, got)
				assert.Equal(t, from, c.CurrentPhase())

				var terr *TransitionError
				require.True(t, errors.As(err, &terr))
				assert.Equal(t, from, terr.From)
				assert.Equal(t, string(target), terr.Target)
			})
		}
	}
}

func TestRequestTransition_UnknownTargetIsInvalid(t *testing.T) {
	for _, from := range Phases() {
		c := quietController(t)
		driveTo(t, c, from)

		for _, bogus := range []string{"bogus", "", "ACTIVE!", "running"} {
			_, err := c.RequestTransition(context.Background(), bogus)
			require.ErrorIs(t, err, ErrInvalidPhase, "target %q", bogus)
			assert.NotErrorIs(t, err, ErrIllegalTransition)
			assert.Equal(t, from, c.CurrentPhase())
		}
	}
}

func TestRequestTransition_AcceptsCaseAndWhitespace(t *testing.T) {
	c := quietController(t)
	got, err := c.RequestTransition(context.Background(), "  INIT_STARTUP ")
	require.NoError(t, err)
	assert.Equal(t, PhaseInitStartup, got)
}

func TestRequestTransition_CycleClosure(t *testing.T) {
	var seen []Transition
	c := quietController(t, WithName("1"), WithObserver(func(_ context.Context, scenario string, tr Transition) {
		assert.Equal(t, "1", scenario)
		seen = append(seen, tr)
	}))

	want := []Phase{
		PhaseInitStartup,
		PhaseInStartupProcessing,
		PhaseActive,
		PhaseInitShutdown,
		PhaseInShutdownProcessing,
		PhaseInactive,
	}
	for round := 0; round < 2; round++ {
		for _, target := range want {
			got, err := c.RequestTransition(context.Background(), string(target))
			require.NoError(t, err)
			assert.Equal(t, target, got)
		}
		assert.Equal(t, PhaseInactive, c.CurrentPhase())
	}

	require.Len(t, seen, 12)
	assert.Equal(t, seen[:6], seen[6:], "second cycle must repeat the first exactly")
	assert.Equal(t, TriggerStartup, seen[0].Trigger)
	assert.Equal(t, TriggerDeactivate, seen[5].Trigger)
}

func TestRequestTransition_ConcurrentRequestsSerialize(t *testing.T) {
	c := quietController(t)

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			out, err := c.Apply(context.Background(), string(PhaseInitStartup))
			if err == nil && out.Changed {
				mu.Lock()
				successes++
				mu.Unlock()
			}
			p := c.CurrentPhase()
			assert.True(t, p == PhaseInactive || p == PhaseInitStartup, "observed %s", p)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one request may apply the transition")
	assert.Equal(t, PhaseInitStartup, c.CurrentPhase())
}

func TestPhaseGate(t *testing.T) {
	c := quietController(t)
	gate := PhaseGate{Controller: c}
	for _, p := range Phases() {
		driveTo(t, c, p)
		assert.Equal(t, p == PhaseActive, gate.Allow(), "phase %s", p)
	}
	assert.False(t, PhaseGate{}.Allow())
}

func TestObservers_NotifiedInTransitionOrder(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		seen []Phase
	)
	slowFirst := func(_ context.Context, _ string, tr Transition) {
		if tr.To == PhaseInitStartup {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, tr.To)
		mu.Unlock()
	}
	c := quietController(t, WithObserver(slowFirst))
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(ctx, string(PhaseInitStartup))
		first <- err
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(ctx, string(PhaseInStartupProcessing))
		second <- err
	}()
	// Give the second transition time to overtake the stalled notification.
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-first)
	require.NoError(t, <-second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseInitStartup, PhaseInStartupProcessing}, seen)
	assert.Equal(t, c.CurrentPhase(), seen[len(seen)-1])
}

func TestInbound_NamesTriggerForEveryPhase(t *testing.T) {
	for _, p := range Phases() {
		tr, ok := inbound(p)
		require.True(t, ok, p)
		assert.Equal(t, p, tr.To)
		succ, ok := Successor(tr.From)
		require.True(t, ok)
		assert.Equal(t, tr, succ)
	}
	_, ok := inbound(Phase("bogus"))
	assert.False(t, ok)
}
