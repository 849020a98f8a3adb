// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ManuGH/scenariod/internal/config"
	"github.com/ManuGH/scenariod/internal/frames"
	"github.com/ManuGH/scenariod/internal/frames/capture"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()

	op, kind, err := resolveSource("testpattern://?count=3&w=8&h=6")
	require.NoError(t, err)
	assert.Equal(t, "pattern", kind)
	assert.Equal(t, frames.PatternOpener{Count: 3, Width: 8, Height: 6}, op)

	op, kind, err = resolveSource(dir)
	require.NoError(t, err)
	assert.Equal(t, "dir", kind)
	assert.Equal(t, frames.DirOpener{Path: dir}, op)

	op, kind, err = resolveSource("dir:///srv/frames")
	require.NoError(t, err)
	assert.Equal(t, "dir", kind)
	assert.Equal(t, frames.DirOpener{Path: "/srv/frames"}, op)

	op, kind, err = resolveSource("rtsp://camera/stream")
	require.NoError(t, err)
	assert.Equal(t, "capture", kind)
	assert.Equal(t, capture.Opener{URI: "rtsp://camera/stream"}, op)

	_, _, err = resolveSource("  ")
	require.Error(t, err)
	_, _, err = resolveSource("testpattern://?w=abc")
	require.Error(t, err)
}

func TestWarnCaptureMissing(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	assert.False(t, warnCaptureMissing(logger, "testpattern://", "pattern"))
	assert.False(t, warnCaptureMissing(logger, "/srv/frames", "dir"))
	assert.Empty(t, buf.String())

	warned := warnCaptureMissing(logger, "/srv/framez", "capture")
	assert.Equal(t, !capture.Available, warned)
	if warned {
		assert.Contains(t, buf.String(), "pipeline.capture_unavailable")
		assert.Contains(t, buf.String(), "/srv/framez")
	}
}

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.Scenarios = []string{"lab"}
	cfg.Pipeline.Enabled = true
	cfg.Pipeline.Scenario = "lab"
	cfg.Pipeline.Source = "testpattern://?count=2"
	return cfg
}

func TestBuildRuntime(t *testing.T) {
	rt, err := buildRuntime(testConfig())
	require.NoError(t, err)
	require.Len(t, rt.workers, 1)
	assert.Equal(t, "dispatch", rt.workers[0].Name)
	assert.NotNil(t, rt.metricsHandler)
	assert.Equal(t, "lab", rt.pipelineScenario)
	assert.Equal(t, "pattern", rt.sourceKind)

	w := httptest.NewRecorder()
	rt.apiHandler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dispatch"`)
	assert.Contains(t, w.Body.String(), `"scenarios"`)
}

func TestBuildRuntime_PipelineDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.Enabled = false
	cfg.Metrics.Enabled = false
	rt, err := buildRuntime(cfg)
	require.NoError(t, err)
	assert.Empty(t, rt.workers)
	assert.Nil(t, rt.metricsHandler)
	assert.Empty(t, rt.sourceKind)
}

func TestBuildRuntime_UnknownPipelineScenario(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.Scenario = "ghost"
	_, err := buildRuntime(cfg)
	require.Error(t, err)
}

func TestHealthcheckAndTransitionCLI(t *testing.T) {
	rt, err := buildRuntime(testConfig())
	require.NoError(t, err)
	ts := httptest.NewServer(rt.apiHandler)
	defer ts.Close()

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, healthcheck([]string{"-addr", ts.URL}, &out, &errOut), errOut.String())

	out.Reset()
	assert.Equal(t, 0, transition([]string{"-addr", ts.URL, "-scenario", "lab", "-target", "init_startup"}, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), `"phase":"init_startup"`)

	errOut.Reset()
	assert.Equal(t, 1, transition([]string{"-addr", ts.URL, "-scenario", "lab", "-target", "inactive"}, &out, &errOut))
	assert.True(t, strings.Contains(errOut.String(), "ILLEGAL_TRANSITION"))

	assert.Equal(t, 2, transition([]string{"-addr", ts.URL}, &out, &errOut))
}
