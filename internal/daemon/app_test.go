// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestApp_RequiresManager(t *testing.T) {
	require.ErrorIs(t, NewApp(testLogger(), nil).Run(context.Background()), ErrMissingManager)
}

func TestApp_WorkersStopWithDaemon(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	addr := reserveListenAddr(t)
	mgr, err := NewManager(ServerConfig{ListenAddr: addr, ShutdownTimeout: time.Second},
		Deps{Logger: testLogger(), APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)

	var stopped, failed, finished atomic.Bool
	app := NewApp(testLogger(), mgr,
		Worker{Name: "blocking", Run: func(ctx context.Context) error {
			<-ctx.Done()
			stopped.Store(true)
			return ctx.Err()
		}},
		Worker{Name: "failing", Run: func(context.Context) error {
			failed.Store(true)
			return errors.New("source gone")
		}},
		Worker{Name: "short", Run: func(context.Context) error {
			finished.Store(true)
			return nil
		}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.NoError(t, waitForListen(addr, 2*time.Second))
	assert.Eventually(t, func() bool { return failed.Load() && finished.Load() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusNotFound, get(t, "http://"+addr+"/"), "a failed worker leaves the API up")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, stopped.Load())
}
