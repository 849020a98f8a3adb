// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ManuGH/scenariod/internal/api/problem"
	"github.com/ManuGH/scenariod/internal/lifecycle"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/ManuGH/scenariod/internal/metrics"
	"github.com/ManuGH/scenariod/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxBodyBytes = 4 << 10

// ScenarioSummary is one entry of the scenario list.
type ScenarioSummary struct {
	ID    string `json:"id"`
	Phase string `json:"phase"`
}

// ScenarioList is the body of GET /api/v1/scenarios.
type ScenarioList struct {
	Scenarios []ScenarioSummary `json:"scenarios"`
}

// ScenarioDetail is the body of GET /api/v1/scenarios/{id}.
type ScenarioDetail struct {
	ID    string `json:"id"`
	Phase string `json:"phase"`
	Next  string `json:"next"`
}

// TransitionRequest is the body of POST /api/v1/scenarios/{id}/transition.
// NewState is accepted as an alias of Target.
type TransitionRequest struct {
	Target   string `json:"target" validate:"required_without=NewState,max=64"`
	NewState string `json:"new_state" validate:"max=64"`
}

func (t TransitionRequest) target() string {
	if t.Target != "" {
		return t.Target
	}
	return t.NewState
}

// TransitionResponse reports the phase after a transition request.
type TransitionResponse struct {
	ID       string `json:"id"`
	Phase    string `json:"phase"`
	Previous string `json:"previous"`
	Changed  bool   `json:"changed"`
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	out := ScenarioList{Scenarios: make([]ScenarioSummary, 0)}
	for _, id := range s.registry.IDs() {
		ctrl, err := s.registry.Get(id)
		if err != nil {
			continue
		}
		out.Scenarios = append(out.Scenarios, ScenarioSummary{ID: id, Phase: ctrl.CurrentPhase().String()})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctrl, err := s.registry.Get(id)
	if err != nil {
		writeLifecycleError(w, r, id, err)
		return
	}
	phase := ctrl.CurrentPhase()
	next := ctrl.Next()
	writeJSON(w, r, http.StatusOK, ScenarioDetail{ID: id, Phase: phase.String(), Next: next.To.String()})
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctrl, err := s.registry.Get(id)
	if err != nil {
		writeLifecycleError(w, r, id, err)
		return
	}

	var req TransitionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		detail := "request body must be a JSON object with a target field"
		if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		metrics.RecordRejection(id, "invalid_input")
		problem.Write(w, r, http.StatusBadRequest, problem.CodeInvalidInput, detail, nil)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		metrics.RecordRejection(id, "invalid_input")
		problem.Write(w, r, http.StatusBadRequest, problem.CodeInvalidInput, "request body failed validation",
			map[string]any{"errors": validationErrors(err)})
		return
	}
	if req.Target != "" && req.NewState != "" && !strings.EqualFold(strings.TrimSpace(req.Target), strings.TrimSpace(req.NewState)) {
		metrics.RecordRejection(id, "invalid_input")
		problem.Write(w, r, http.StatusBadRequest, problem.CodeInvalidInput, "target and new_state disagree", nil)
		return
	}

	out, err := ctrl.Apply(r.Context(), req.target())
	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String(telemetry.ScenarioIDKey, id),
		attribute.String(telemetry.PhaseKey, ctrl.CurrentPhase().String()),
	)
	if err != nil {
		writeLifecycleError(w, r, id, err)
		return
	}
	writeJSON(w, r, http.StatusOK, TransitionResponse{
		ID:       id,
		Phase:    out.To.String(),
		Previous: out.From.String(),
		Changed:  out.Changed,
	})
}

// writeLifecycleError maps lifecycle error kinds to HTTP statuses.
func writeLifecycleError(w http.ResponseWriter, r *http.Request, id string, err error) {
	var extra map[string]any
	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		extra = map[string]any{"phase": te.From.String(), "target": te.Target}
		if tr, ok := lifecycle.Successor(te.From); ok {
			extra["next"] = tr.To.String()
		}
	}

	switch {
	case errors.Is(err, lifecycle.ErrScenarioNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.CodeScenarioNotFound, fmt.Sprintf("scenario %q is not configured", id), nil)
	case errors.Is(err, lifecycle.ErrInvalidPhase):
		metrics.RecordRejection(id, "invalid_phase")
		problem.Write(w, r, http.StatusBadRequest, problem.CodeInvalidPhase, err.Error(), extra)
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		metrics.RecordRejection(id, "illegal_transition")
		problem.Write(w, r, http.StatusConflict, problem.CodeIllegalTransition, err.Error(), extra)
	default:
		logger := sdlog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).
			Str(sdlog.FieldEvent, "api.unexpected_error").
			Msg("unexpected lifecycle error")
		problem.Write(w, r, http.StatusInternalServerError, problem.CodeInternal, "internal server error", nil)
	}
}

func validationErrors(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []map[string]string{{"error": err.Error()}}
	}
	out := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, map[string]string{"field": fe.Field(), "rule": fe.Tag()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := sdlog.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).
			Str(sdlog.FieldEvent, "api.encode_error").
			Msg("failed to encode response")
	}
}
