// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ManuGH/scenariod/internal/log"
)

const (
	// HeaderRequestID carries the correlation id on every response.
	HeaderRequestID = "X-Request-ID"
	// JSONKeyRequestID is the problem extension holding the correlation id.
	JSONKeyRequestID = "requestId"
	// ContentType is the media type of problem responses.
	ContentType = "application/problem+json"
)

// Stable machine-readable codes.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidPhase      = "INVALID_PHASE"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeScenarioNotFound  = "SCENARIO_NOT_FOUND"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL"
	CodeNotFound          = "NOT_FOUND"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
)

// Write writes a problem details response.
//
//   - type: "scenarios/" plus the lower-cased code.
//   - title: the HTTP status text.
//   - code: stable short code (e.g. "ILLEGAL_TRANSITION").
//   - detail: explanation of this occurrence.
//
// Keys in extra that collide with reserved members are dropped.
func Write(w http.ResponseWriter, r *http.Request, status int, code, detail string, extra map[string]any) {
	instance := ""
	reqID := ""
	if r != nil {
		instance = r.URL.EscapedPath()
		reqID = log.RequestIDFromContext(r.Context())
	}
	if reqID == "" {
		reqID = w.Header().Get(HeaderRequestID)
	}

	res := map[string]any{
		"type":   "scenarios/" + strings.ToLower(code),
		"title":  http.StatusText(status),
		"status": status,
		"code":   code,
	}
	if reqID != "" {
		res[JSONKeyRequestID] = reqID
	}
	if detail != "" {
		res["detail"] = detail
	}
	if instance != "" {
		res["instance"] = instance
	}
	for k, v := range extra {
		switch k {
		case "type", "title", "status", "detail", "instance", "code", JSONKeyRequestID:
			log.L().Warn().Str("key", k).Str("code", code).Msg("ignoring reserved key in problem extras")
			continue
		}
		res[k] = v
	}

	if reqID != "" {
		w.Header().Set(HeaderRequestID, reqID)
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().
			Err(err).
			Str("code", code).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}
