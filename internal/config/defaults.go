// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// Defaults returns the configuration used when neither file nor env set a value.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:  "info",
		Scenarios: []string{"default"},
		API: APIConfig{
			ListenAddr:         ":8080",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			RateLimitRequests:  600,
			RateLimitWindow:    time.Minute,
			HealthCheckTimeout: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "scenariod",
			Environment:  "development",
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		Pipeline: PipelineConfig{
			Scenario:         "default",
			ScorerURL:        "http://inference:8003/inference",
			DispatchTimeout:  5 * time.Second,
			PaceInterval:     100 * time.Millisecond,
			GatePollInterval: 250 * time.Millisecond,
			Workers:          1,
			JPEGQuality:      90,
			DegradeAfter:     5,
			Retry: RetryConfig{
				InitialBackoff: 500 * time.Millisecond,
				MaxBackoff:     30 * time.Second,
			},
		},
		ShutdownTimeout: 10 * time.Second,
	}
}
