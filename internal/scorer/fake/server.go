// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fake provides an in-process scorer that answers like the real
// inference service. It backs tests and the development scorer binary.
package fake

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/scenariod/internal/scorer"
	"github.com/go-chi/chi/v5"
)

// DefaultLabels mirror the labels of the reference inference service.
var DefaultLabels = []string{"object_A", "object_B", "object_C"}

// Option configures a Server.
type Option func(*Server)

// WithFailures makes the listed 1-based request numbers answer 503.
func WithFailures(calls ...int) Option {
	return func(s *Server) {
		for _, n := range calls {
			s.failOn[n] = struct{}{}
		}
	}
}

// WithDelay holds every answer for d, or until the client gives up.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithLabels sets the label pool answers are drawn from. Blank entries are
// dropped; if nothing remains the pool is left unchanged.
func WithLabels(labels ...string) Option {
	return func(s *Server) {
		var pool []string
		for _, l := range labels {
			if l = strings.TrimSpace(l); l != "" {
				pool = append(pool, l)
			}
		}
		if len(pool) > 0 {
			s.labels = pool
		}
	}
}

// WithSeed makes label selection deterministic.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithPredictionOnly answers {"prediction": label} instead of a detection list.
func WithPredictionOnly() Option {
	return func(s *Server) { s.predictionOnly = true }
}

// WithOnRequest registers a hook called with the request number once the image is read.
func WithOnRequest(fn func(n int)) Option {
	return func(s *Server) { s.onRequest = fn }
}

// Server is an http.Handler serving POST /inference and GET /healthz.
type Server struct {
	mu             sync.Mutex
	calls          int
	bytes          int64
	rng            *rand.Rand
	failOn         map[int]struct{}
	delay          time.Duration
	labels         []string
	predictionOnly bool
	onRequest      func(n int)
	router         chi.Router
}

// NewServer builds a fake scorer.
func NewServer(opts ...Option) *Server {
	s := &Server{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		failOn: map[int]struct{}{},
		labels: DefaultLabels,
	}
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	r.Post("/inference", s.handleInference)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Calls returns the number of inference requests received.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// BytesReceived returns the total size of all uploaded images.
func (s *Server) BytesReceived() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

func (s *Server) handleInference(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "missing file field"})
		return
	}
	n, _ := io.Copy(io.Discard, file)
	_ = file.Close()

	s.mu.Lock()
	s.calls++
	call := s.calls
	s.bytes += n
	_, fail := s.failOn[call]
	label := s.labels[s.rng.Intn(len(s.labels))]
	s.mu.Unlock()

	if s.onRequest != nil {
		s.onRequest(call)
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	if fail {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "scorer unavailable"})
		return
	}
	if s.predictionOnly {
		writeJSON(w, http.StatusOK, scorer.Response{Prediction: label})
		return
	}
	writeJSON(w, http.StatusOK, scorer.Response{Detections: []scorer.Detection{{
		Label:      label,
		Confidence: 0.5 + s.confidenceJitter(),
		Box:        scorer.Box{X: 10, Y: 10, W: 64, H: 64},
	}}})
}

func (s *Server) confidenceJitter() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() / 2
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
