// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package fsm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state string
type event string

func ring() []Transition[state, event] {
	return []Transition[state, event]{
		{From: "a", Event: "go", To: "b"},
		{From: "b", Event: "go", To: "c"},
		{From: "c", Event: "reset", To: "a"},
	}
}

func TestNew_RejectsDuplicateEdges(t *testing.T) {
	_, err := New[state, event]("a", []Transition[state, event]{
		{From: "a", Event: "go", To: "b"},
		{From: "a", Event: "go", To: "c"},
	})
	require.ErrorContains(t, err, "duplicate transition a --go--> c")
}

func TestFire(t *testing.T) {
	m, err := New("a", ring())
	require.NoError(t, err)

	to, err := m.Fire("go")
	require.NoError(t, err)
	assert.Equal(t, state("b"), to)

	cur, err := m.Fire("reset")
	require.ErrorIs(t, err, ErrUnknownTransition)
	assert.Equal(t, state("b"), cur)
	assert.Equal(t, state("b"), m.State())
}

func TestFire_ConcurrentEventsApplyOnce(t *testing.T) {
	m, err := New("a", ring())
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Fire("reset"); err == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	_, err = m.Fire("go")
	require.NoError(t, err)
	_, err = m.Fire("go")
	require.NoError(t, err)
	wg.Wait()

	// reset only exists from c; at most one goroutine can have taken it.
	assert.LessOrEqual(t, applied, 1)
	if applied == 1 {
		assert.Equal(t, state("a"), m.State())
	} else {
		assert.Equal(t, state("c"), m.State())
	}
}
