// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/ManuGH/scenariod/internal/api/problem"
	sdlog "github.com/ManuGH/scenariod/internal/log"
)

// Recoverer turns a handler panic into a 500 problem response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger := sdlog.WithComponentFromContext(r.Context(), "http")
			logger.Error().
				Str(sdlog.FieldEvent, "request.panic").
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("recovered from handler panic")
			problem.Write(w, r, http.StatusInternalServerError, problem.CodeInternal, "internal server error", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
