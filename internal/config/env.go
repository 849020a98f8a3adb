// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/scenariod/internal/log"
	"github.com/rs/zerolog"
)

// EnvPrefix is prepended to every environment key read by the loader.
const EnvPrefix = "SCENARIOD_"

// lookupFunc abstracts os.LookupEnv for tests.
type lookupFunc func(string) (string, bool)

// parseEnv reads key through lookup and parses it. Empty or unparsable values
// fall back to def; every decision is logged with its source.
func parseEnv[T any](logger zerolog.Logger, lookup lookupFunc, key string, def T, kind string, parse func(string) (T, error)) T {
	raw, ok := lookup(key)
	if !ok {
		logger.Debug().Str("key", key).Interface("default", def).Str("source", "default").Msg("using default value")
		return def
	}
	if raw == "" {
		logger.Debug().Str("key", key).Interface("default", def).Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", raw).Interface("default", def).
			Msgf("invalid %s in environment variable, using default", kind)
		return def
	}
	evt := logger.Debug().Str("key", key).Str("source", "environment")
	if sensitive(key) {
		evt = evt.Bool("sensitive", true)
	} else {
		evt = evt.Interface("value", v)
	}
	evt.Msg("using environment variable")
	return v
}

func sensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password") || strings.Contains(k, "secret")
}

func parseString(s string) (string, error) { return s, nil }

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// ParseString reads a string from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return parseEnv(log.WithComponent("config"), os.LookupEnv, key, defaultValue, "string", parseString)
}

// ParseInt reads an integer from the environment or returns defaultValue.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(log.WithComponent("config"), os.LookupEnv, key, defaultValue, "integer", strconv.Atoi)
}

// ParseDuration reads a Go duration ("5s") from the environment or returns defaultValue.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(log.WithComponent("config"), os.LookupEnv, key, defaultValue, "duration", time.ParseDuration)
}

// ParseBool reads a boolean from the environment or returns defaultValue.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(log.WithComponent("config"), os.LookupEnv, key, defaultValue, "boolean", parseBool)
}

// ParseFloat reads a float64 from the environment or returns defaultValue.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(log.WithComponent("config"), os.LookupEnv, key, defaultValue, "float", parseFloat)
}

// ParseList reads a comma separated list; blank entries are dropped.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(log.WithComponent("config"), os.LookupEnv, key, defaultValue, "list", func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("empty list: %q", s)
		}
		return out, nil
	})
}
