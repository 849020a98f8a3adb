// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ManuGH/scenariod/internal/lifecycle"
	"github.com/ManuGH/scenariod/internal/supervisor"
)

// ScenarioChecker reports the phase of every registered scenario. Phases are
// informational; the check never fails.
type ScenarioChecker struct {
	registry *lifecycle.Registry
}

func NewScenarioChecker(r *lifecycle.Registry) *ScenarioChecker {
	return &ScenarioChecker{registry: r}
}

func (c *ScenarioChecker) Name() string { return "scenarios" }

func (c *ScenarioChecker) Check(_ context.Context) CheckResult {
	ids := c.registry.IDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		ctrl, err := c.registry.Get(id)
		if err != nil {
			continue
		}
		parts = append(parts, id+"="+string(ctrl.CurrentPhase()))
	}
	sort.Strings(parts)
	return CheckResult{Status: StatusHealthy, Message: strings.Join(parts, ",")}
}

// DispatchChecker turns the supervisor status into a health result.
// An unopenable source is unhealthy; a run of consecutive per-frame failures
// at or above DegradeAfter is degraded.
type DispatchChecker struct {
	status       func() supervisor.Status
	degradeAfter uint64
}

// DefaultDegradeAfter is the consecutive failure count that marks dispatch degraded.
const DefaultDegradeAfter = 5

func NewDispatchChecker(status func() supervisor.Status, degradeAfter uint64) *DispatchChecker {
	if degradeAfter == 0 {
		degradeAfter = DefaultDegradeAfter
	}
	return &DispatchChecker{status: status, degradeAfter: degradeAfter}
}

func (c *DispatchChecker) Name() string { return "dispatch" }

func (c *DispatchChecker) Check(_ context.Context) CheckResult {
	st := c.status()
	if st.SourceUnavailable() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "frame source unavailable",
			Error:   st.LastErr.Error(),
		}
	}
	if st.Stats.ConsecutiveFailures >= c.degradeAfter {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d consecutive frame failures", st.Stats.ConsecutiveFailures),
			Error:   st.Stats.LastError,
		}
	}
	if st.Runs == 0 {
		return CheckResult{Status: StatusHealthy, Message: "waiting for active scenario"}
	}
	msg := fmt.Sprintf("frames=%d succeeded=%d failed=%d", st.Stats.Frames, st.Stats.Succeeded, st.Stats.Failures())
	if st.Running {
		msg = "running, " + msg
	}
	return CheckResult{Status: StatusHealthy, Message: msg}
}

// ScorerChecker probes the scorer's health endpoint. An unreachable scorer is
// degraded rather than unhealthy since the loop tolerates failed dispatches.
type ScorerChecker struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewScorerChecker(url string, client *http.Client, timeout time.Duration) *ScorerChecker {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ScorerChecker{url: url, client: client, timeout: timeout}
}

func (c *ScorerChecker) Name() string { return "scorer" }

func (c *ScorerChecker) Check(ctx context.Context) CheckResult {
	if c.url == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return CheckResult{Status: StatusDegraded, Message: "scorer unreachable", Error: err.Error()}
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 400 {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("scorer returned HTTP %d", resp.StatusCode)}
	}
	return CheckResult{Status: StatusHealthy, Message: "scorer reachable"}
}
