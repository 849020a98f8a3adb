// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ManuGH/scenariod/internal/log"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every environment key the loader read.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips the file stage.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
		// SCENARIOD_CONFIG selects the file and is read by main.
		ConsumedEnvKeys: map[string]struct{}{EnvPrefix + "CONFIG": {}},
	}
}

func (l *Loader) key(name string) string {
	k := EnvPrefix + name
	l.ConsumedEnvKeys[k] = struct{}{}
	return k
}

func (l *Loader) envString(name, def string) string { return ParseString(l.key(name), def) }
func (l *Loader) envBool(name string, def bool) bool { return ParseBool(l.key(name), def) }
func (l *Loader) envInt(name string, def int) int    { return ParseInt(l.key(name), def) }
func (l *Loader) envFloat(name string, def float64) float64 {
	return ParseFloat(l.key(name), def)
}
func (l *Loader) envDuration(name string, def time.Duration) time.Duration {
	return ParseDuration(l.key(name), def)
}
func (l *Loader) envList(name string, def []string) []string { return ParseList(l.key(name), def) }

// Load resolves the configuration: defaults, then the YAML file (strict),
// then SCENARIOD_* environment variables, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	l.warnUnknownEnv()
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path onto cfg. Unknown keys are an error.
func loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Scenarios = l.envList("SCENARIOS", cfg.Scenarios)
	cfg.ShutdownTimeout = l.envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.API.ListenAddr = l.envString("API_LISTEN_ADDR", cfg.API.ListenAddr)
	cfg.API.ReadTimeout = l.envDuration("API_READ_TIMEOUT", cfg.API.ReadTimeout)
	cfg.API.WriteTimeout = l.envDuration("API_WRITE_TIMEOUT", cfg.API.WriteTimeout)
	cfg.API.RateLimitRequests = l.envInt("API_RATE_LIMIT_REQUESTS", cfg.API.RateLimitRequests)
	cfg.API.RateLimitWindow = l.envDuration("API_RATE_LIMIT_WINDOW", cfg.API.RateLimitWindow)
	cfg.API.HealthCheckTimeout = l.envDuration("API_HEALTH_CHECK_TIMEOUT", cfg.API.HealthCheckTimeout)

	cfg.Metrics.Enabled = l.envBool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString("METRICS_LISTEN_ADDR", cfg.Metrics.ListenAddr)

	cfg.Telemetry.Enabled = l.envBool("TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.ServiceName = l.envString("TELEMETRY_SERVICE_NAME", cfg.Telemetry.ServiceName)
	cfg.Telemetry.Environment = l.envString("TELEMETRY_ENVIRONMENT", cfg.Telemetry.Environment)
	cfg.Telemetry.Exporter = l.envString("TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	p := &cfg.Pipeline
	p.Enabled = l.envBool("PIPELINE_ENABLED", p.Enabled)
	p.Scenario = l.envString("PIPELINE_SCENARIO", p.Scenario)
	p.Source = l.envString("PIPELINE_SOURCE", p.Source)
	p.ScorerURL = l.envString("SCORER_URL", p.ScorerURL)
	p.ScorerHealthURL = l.envString("SCORER_HEALTH_URL", p.ScorerHealthURL)
	p.DispatchTimeout = l.envDuration("DISPATCH_TIMEOUT", p.DispatchTimeout)
	p.PaceInterval = l.envDuration("PACE_INTERVAL", p.PaceInterval)
	p.GatePollInterval = l.envDuration("GATE_POLL_INTERVAL", p.GatePollInterval)
	p.Workers = l.envInt("WORKERS", p.Workers)
	p.JPEGQuality = l.envInt("JPEG_QUALITY", p.JPEGQuality)
	p.Repeat = l.envBool("PIPELINE_REPEAT", p.Repeat)
	p.DegradeAfter = l.envInt("DEGRADE_AFTER", p.DegradeAfter)
	p.Retry.InitialBackoff = l.envDuration("RETRY_INITIAL_BACKOFF", p.Retry.InitialBackoff)
	p.Retry.MaxBackoff = l.envDuration("RETRY_MAX_BACKOFF", p.Retry.MaxBackoff)
	p.Retry.MaxElapsed = l.envDuration("RETRY_MAX_ELAPSED", p.Retry.MaxElapsed)
	p.Retry.MaxRetries = l.envInt("RETRY_MAX_RETRIES", p.Retry.MaxRetries)
}

// UnknownEnvKeys returns SCENARIOD_* variables present in env that the loader never read.
func (l *Loader) UnknownEnvKeys(env []string) []string {
	var out []string
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (l *Loader) warnUnknownEnv() {
	unknown := l.UnknownEnvKeys(os.Environ())
	if len(unknown) == 0 {
		return
	}
	logger := log.WithComponent("config")
	logger.Warn().
		Str(log.FieldEvent, "config.unknown_env").
		Strs("keys", unknown).
		Msg("ignoring unknown environment variables (typo?)")
}
