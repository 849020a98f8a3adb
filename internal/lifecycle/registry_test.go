// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_IndependentControllers(t *testing.T) {
	r, err := NewRegistry([]string{"2", "1"}, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, r.IDs())

	one, err := r.Get("1")
	require.NoError(t, err)
	two, err := r.Get("2")
	require.NoError(t, err)

	_, err = one.RequestTransition(context.Background(), string(PhaseInitStartup))
	require.NoError(t, err)
	assert.Equal(t, PhaseInitStartup, one.CurrentPhase())
	assert.Equal(t, PhaseInactive, two.CurrentPhase())
	assert.Equal(t, "1", one.Name())
}

func TestRegistry_UnknownScenario(t *testing.T) {
	r, err := NewRegistry([]string{"1"})
	require.NoError(t, err)
	_, err = r.Get("9")
	require.ErrorIs(t, err, ErrScenarioNotFound)
}

func TestRegistry_RejectsBadIDs(t *testing.T) {
	_, err := NewRegistry([]string{"1", "1"})
	require.Error(t, err)
	_, err = NewRegistry([]string{""})
	require.Error(t, err)
}
