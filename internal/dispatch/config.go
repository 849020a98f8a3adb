// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"fmt"
	"time"
)

// Config tunes a Loop.
type Config struct {
	// PaceInterval is the fixed wait after every frame. Zero disables pacing.
	PaceInterval time.Duration
	// DispatchTimeout bounds a single scorer call.
	DispatchTimeout time.Duration
	// GatePollInterval is how long the loop waits before re-reading a closed gate.
	GatePollInterval time.Duration
	// Workers > 1 dispatches frames concurrently; result order is then best-effort.
	Workers int
	// JPEGQuality is used by the default encoder.
	JPEGQuality int
}

const (
	DefaultPaceInterval     = 100 * time.Millisecond
	DefaultDispatchTimeout  = 5 * time.Second
	DefaultGatePollInterval = 250 * time.Millisecond
)

// DefaultConfig returns the settings of the reference pipeline.
func DefaultConfig() Config {
	return Config{
		PaceInterval:     DefaultPaceInterval,
		DispatchTimeout:  DefaultDispatchTimeout,
		GatePollInterval: DefaultGatePollInterval,
		Workers:          1,
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.PaceInterval < 0 {
		return c, fmt.Errorf("pace interval must not be negative, got %s", c.PaceInterval)
	}
	if c.DispatchTimeout < 0 {
		return c, fmt.Errorf("dispatch timeout must not be negative, got %s", c.DispatchTimeout)
	}
	if c.DispatchTimeout == 0 {
		c.DispatchTimeout = DefaultDispatchTimeout
	}
	if c.GatePollInterval <= 0 {
		c.GatePollInterval = DefaultGatePollInterval
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c, nil
}
