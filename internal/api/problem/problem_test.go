// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ManuGH/scenariod/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scenarios/lab/transition", nil)
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-1"))
	w := httptest.NewRecorder()

	Write(w, req, http.StatusConflict, CodeIllegalTransition, "inactive cannot move to active",
		map[string]any{"phase": "inactive", "code": "OVERRIDE"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "scenarios/illegal_transition", body["type"])
	assert.Equal(t, "Conflict", body["title"])
	assert.Equal(t, float64(409), body["status"])
	assert.Equal(t, CodeIllegalTransition, body["code"], "reserved keys are not overridable")
	assert.Equal(t, "inactive", body["phase"])
	assert.Equal(t, "req-1", body[JSONKeyRequestID])
	assert.Equal(t, "/api/v1/scenarios/lab/transition", body["instance"])
}

func TestWrite_RequestIDFromHeader(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(HeaderRequestID, "hdr-7")
	Write(w, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusNotFound, CodeNotFound, "", nil)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "hdr-7", body[JSONKeyRequestID])
	assert.NotContains(t, body, "detail")
}
