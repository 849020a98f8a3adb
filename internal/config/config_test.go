// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("", "v1.0.0").Load()
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", cfg.Version)
	assert.Equal(t, 100*time.Millisecond, cfg.Pipeline.PaceInterval)
	assert.Equal(t, "http://inference:8003/inference", cfg.Pipeline.ScorerURL)
	assert.Equal(t, []string{"default"}, cfg.Scenarios)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
scenarios: [lab, dock]
api:
  listenAddr: ":8181"
pipeline:
  enabled: true
  scenario: lab
  source: testpattern://?count=10
  paceInterval: 250ms
  workers: 2
`)
	t.Setenv("SCENARIOD_WORKERS", "4")
	t.Setenv("SCENARIOD_PACE_INTERVAL", "")

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "file overrides default")
	assert.Equal(t, []string{"lab", "dock"}, cfg.Scenarios)
	assert.Equal(t, ":8181", cfg.API.ListenAddr)
	assert.Equal(t, 4, cfg.Pipeline.Workers, "env overrides file")
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.PaceInterval, "empty env keeps the file value")
	assert.Equal(t, 5*time.Second, cfg.Pipeline.DispatchTimeout, "untouched keys keep defaults")
}

func TestLoad_EnvList(t *testing.T) {
	t.Setenv("SCENARIOD_SCENARIOS", " a, b ,,c")
	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Scenarios)
}

func TestLoad_StrictYAML(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  pace: 1s
`)
	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().API, cfg.API)
}

func TestLoad_RejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SCENARIOD_WORKERS", "many")
	t.Setenv("SCENARIOD_PIPELINE_REPEAT", "maybe")
	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
	assert.False(t, cfg.Pipeline.Repeat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"no scenarios", func(c *AppConfig) { c.Scenarios = nil }},
		{"duplicate scenarios", func(c *AppConfig) { c.Scenarios = []string{"a", "a"} }},
		{"slash in scenario", func(c *AppConfig) { c.Scenarios = []string{"a/b"} }},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }},
		{"bad scorer url", func(c *AppConfig) { c.Pipeline.ScorerURL = "not a url" }},
		{"zero workers", func(c *AppConfig) { c.Pipeline.Workers = 0 }},
		{"jpeg quality", func(c *AppConfig) { c.Pipeline.JPEGQuality = 101 }},
		{"negative pace", func(c *AppConfig) { c.Pipeline.PaceInterval = -time.Second }},
		{"backoff order", func(c *AppConfig) { c.Pipeline.Retry.MaxBackoff = time.Millisecond }},
		{"sampling rate", func(c *AppConfig) { c.Telemetry.SamplingRate = 2 }},
		{"exporter", func(c *AppConfig) { c.Telemetry.Exporter = "zipkin" }},
		{"listen addr", func(c *AppConfig) { c.API.ListenAddr = "localhost" }},
		{"pipeline without source", func(c *AppConfig) { c.Pipeline.Enabled = true }},
		{"pipeline scenario unknown", func(c *AppConfig) {
			c.Pipeline.Enabled = true
			c.Pipeline.Source = "/frames"
			c.Pipeline.Scenario = "ghost"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestUnknownEnvKeys(t *testing.T) {
	l := NewLoader("", "test")
	l.mergeEnv(&AppConfig{})
	got := l.UnknownEnvKeys([]string{
		"SCENARIOD_WORKERS=2",
		"SCENARIOD_WORKRES=2",
		"PATH=/usr/bin",
	})
	assert.Equal(t, []string{"SCENARIOD_WORKRES"}, got)
}

func TestParseEnv_SensitiveValuesAreNotLogged(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	lookup := func(string) (string, bool) { return "hunter2", true }

	v := parseEnv(logger, lookup, "SCENARIOD_API_TOKEN", "", "string", parseString)
	assert.Equal(t, "hunter2", v)
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), `"sensitive":true`)
}
