// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package scorer talks to the remote inference endpoint: one encoded frame in,
// a list of detections out.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/ManuGH/scenariod/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrScoring wraps every failed Score call: transport errors, timeouts,
// non-2xx statuses and undecodable bodies alike.
var ErrScoring = errors.New("scoring failed")

// StatusError reports a non-2xx answer from the scorer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scorer returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("scorer returned status %d: %s", e.StatusCode, e.Body)
}

const (
	defaultTimeout   = 5 * time.Second
	defaultFieldName = "file"
	maxResponseBytes = 1 << 20
	maxErrorBody     = 256
)

// Config configures a Client.
type Config struct {
	URL       string
	Timeout   time.Duration     // bound for a whole request, including the body read
	FieldName string            // multipart field carrying the image, "file" by default
	Transport http.RoundTripper // base transport, wrapped with otelhttp
}

// Client submits frames to the scorer over HTTP.
type Client struct {
	endpoint string
	field    string
	http     *http.Client
}

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse scorer url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scorer url must be http or https, got %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FieldName == "" {
		cfg.FieldName = defaultFieldName
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		endpoint: u.String(),
		field:    cfg.FieldName,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
	}, nil
}

// Endpoint returns the scorer URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Score posts one JPEG image and returns the scorer's detections.
func (c *Client) Score(ctx context.Context, image []byte) ([]Detection, error) {
	body, contentType, err := c.multipartBody(image)
	if err != nil {
		return nil, fmt.Errorf("%w: build request body: %w", ErrScoring, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrScoring, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(telemetry.ScorerEndpointKey, c.endpoint))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %w", ErrScoring, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))})
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrScoring, err)
	}
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrScoring, maxResponseBytes)
	}
	detections, err := DecodeResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	return detections, nil
}

func (c *Client) multipartBody(image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="frame.jpg"`, c.field))
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// DecodeResponse accepts {"detections":[...]}, a bare detection array, or
// {"prediction":"label"}.
func DecodeResponse(raw []byte) ([]Detection, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	if trimmed[0] == '[' {
		var ds []Detection
		if err := json.Unmarshal(trimmed, &ds); err != nil {
			return nil, fmt.Errorf("decode detection list: %w", err)
		}
		if err := validate(ds); err != nil {
			return nil, err
		}
		return ds, nil
	}

	var r Response
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if r.Detections == nil && r.Prediction != "" {
		return []Detection{{Label: r.Prediction}}, nil
	}
	if r.Detections == nil {
		// An object without either field is not a scorer answer.
		var keys map[string]json.RawMessage
		_ = json.Unmarshal(trimmed, &keys)
		if _, ok := keys["detections"]; !ok {
			return nil, errors.New("response has neither detections nor prediction")
		}
		return []Detection{}, nil
	}
	if err := validate(r.Detections); err != nil {
		return nil, err
	}
	return r.Detections, nil
}

func validate(ds []Detection) error {
	for i, d := range ds {
		if d.Label == "" {
			return fmt.Errorf("detection %d has no label", i)
		}
	}
	return nil
}
