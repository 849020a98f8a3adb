// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"
	"regexp"

	"github.com/ManuGH/scenariod/internal/api/problem"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/google/uuid"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestID propagates a client supplied X-Request-ID or generates a UUID.
// Ids that are too long or contain unexpected characters are replaced.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(problem.HeaderRequestID)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(problem.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(sdlog.ContextWithRequestID(r.Context(), id)))
	})
}
