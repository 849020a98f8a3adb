// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the scenariod configuration with precedence
// ENV > file > defaults and validates the result.
package config

import "time"

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version  string `yaml:"-"`
	LogLevel string `yaml:"logLevel" validate:"oneof=trace debug info warn error"`

	// Scenarios lists the scenario ids served by the lifecycle registry.
	Scenarios []string `yaml:"scenarios" validate:"min=1,unique,dive,required,max=64,excludesall=/?#"`

	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`

	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gt=0"`
}

// APIConfig configures the lifecycle HTTP API.
type APIConfig struct {
	ListenAddr        string        `yaml:"listenAddr" validate:"required,hostname_port"`
	ReadTimeout       time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout      time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	RateLimitRequests int           `yaml:"rateLimitRequests" validate:"gte=0"`
	RateLimitWindow   time.Duration `yaml:"rateLimitWindow" validate:"gte=0"`

	// HealthCheckTimeout bounds each component check behind /healthz and /readyz.
	HealthCheckTimeout time.Duration `yaml:"healthCheckTimeout" validate:"gte=0"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listenAddr" validate:"required_if=Enabled true"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName" validate:"required_if=Enabled true"`
	Environment  string  `yaml:"environment"`
	Exporter     string  `yaml:"exporter" validate:"oneof=grpc http"`
	Endpoint     string  `yaml:"endpoint" validate:"required_if=Enabled true"`
	SamplingRate float64 `yaml:"samplingRate" validate:"gte=0,lte=1"`
}

// PipelineConfig configures the frame dispatch loop and its supervisor.
type PipelineConfig struct {
	// Enabled starts the dispatch loop. The API runs either way.
	Enabled bool `yaml:"enabled"`
	// Scenario gates the loop: frames flow only while it is active.
	Scenario string `yaml:"scenario" validate:"required_if=Enabled true"`
	// Source is a directory of images, testpattern://..., or a capture URI.
	Source           string        `yaml:"source" validate:"required_if=Enabled true"`
	ScorerURL        string        `yaml:"scorerUrl" validate:"required,url"`
	ScorerHealthURL  string        `yaml:"scorerHealthUrl" validate:"omitempty,url"`
	DispatchTimeout  time.Duration `yaml:"dispatchTimeout" validate:"gt=0"`
	PaceInterval     time.Duration `yaml:"paceInterval" validate:"gte=0"`
	GatePollInterval time.Duration `yaml:"gatePollInterval" validate:"gt=0"`
	Workers          int           `yaml:"workers" validate:"gte=1,lte=64"`
	JPEGQuality      int           `yaml:"jpegQuality" validate:"gte=1,lte=100"`
	Repeat           bool          `yaml:"repeat"`
	DegradeAfter     int           `yaml:"degradeAfter" validate:"gte=1"`
	Retry            RetryConfig   `yaml:"retry"`
}

// RetryConfig is the backoff policy for an unavailable frame source.
type RetryConfig struct {
	InitialBackoff time.Duration `yaml:"initialBackoff" validate:"gt=0"`
	MaxBackoff     time.Duration `yaml:"maxBackoff" validate:"gtefield=InitialBackoff"`
	MaxElapsed     time.Duration `yaml:"maxElapsed" validate:"gte=0"`
	MaxRetries     int           `yaml:"maxRetries" validate:"gte=0"`
}
