// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/scenariod/internal/dispatch"
	"github.com/ManuGH/scenariod/internal/lifecycle"
	"github.com/ManuGH/scenariod/internal/supervisor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioChecker(t *testing.T) {
	reg, err := lifecycle.NewRegistry([]string{"lab", "dock"}, lifecycle.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	ctrl, err := reg.Get("lab")
	require.NoError(t, err)
	_, err = ctrl.RequestTransition(context.Background(), "init_startup")
	require.NoError(t, err)

	res := NewScenarioChecker(reg).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "dock=inactive,lab=init_startup", res.Message)
}

func TestDispatchChecker(t *testing.T) {
	unavailable := errors.Join(dispatch.ErrSourceUnavailable, errors.New("no camera"))
	tests := []struct {
		name   string
		status supervisor.Status
		want   Status
	}{
		{name: "idle", status: supervisor.Status{}, want: StatusHealthy},
		{name: "running", status: supervisor.Status{Running: true, Runs: 1, Stats: dispatch.Stats{Frames: 3, Succeeded: 3}}, want: StatusHealthy},
		{name: "source unavailable", status: supervisor.Status{Runs: 1, LastErr: unavailable}, want: StatusUnhealthy},
		{name: "few failures", status: supervisor.Status{Runs: 1, Stats: dispatch.Stats{ConsecutiveFailures: 2}}, want: StatusHealthy},
		{name: "failure streak", status: supervisor.Status{Runs: 1, Stats: dispatch.Stats{ConsecutiveFailures: 3, LastError: "boom"}}, want: StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.status
			c := NewDispatchChecker(func() supervisor.Status { return st }, 3)
			assert.Equal(t, "dispatch", c.Name())
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
		})
	}
}

func TestDispatchChecker_DefaultThreshold(t *testing.T) {
	c := NewDispatchChecker(func() supervisor.Status { return supervisor.Status{} }, 0)
	assert.Equal(t, uint64(DefaultDegradeAfter), c.degradeAfter)
}

func TestScorerChecker(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	ctx := context.Background()
	assert.Equal(t, StatusHealthy, NewScorerChecker(ok.URL, nil, time.Second).Check(ctx).Status)
	assert.Equal(t, StatusDegraded, NewScorerChecker(failing.URL, nil, time.Second).Check(ctx).Status)
	assert.Equal(t, StatusHealthy, NewScorerChecker("", nil, 0).Check(ctx).Status)

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	res := NewScorerChecker(url, nil, time.Second).Check(ctx)
	assert.Equal(t, StatusDegraded, res.Status)
	assert.NotEmpty(t, res.Error)
}
