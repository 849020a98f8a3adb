// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package scorer_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/scenariod/internal/scorer"
	"github.com/ManuGH/scenariod/internal/scorer/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, url string, timeout time.Duration) *scorer.Client {
	t.Helper()
	c, err := scorer.New(scorer.Config{URL: url, Timeout: timeout})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host/x", "://bad"} {
		_, err := scorer.New(scorer.Config{URL: raw})
		assert.Error(t, err, raw)
	}
}

func TestScore_Detections(t *testing.T) {
	srv := fake.NewServer(fake.WithSeed(1), fake.WithLabels("person"))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := newClient(t, ts.URL+"/inference", time.Second)
	ds, err := c.Score(context.Background(), []byte{0xff, 0xd8, 0xff, 0xd9})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "person", ds[0].Label)
	assert.False(t, ds[0].Box.Empty())
	assert.Equal(t, 1, srv.Calls())
	assert.Equal(t, int64(4), srv.BytesReceived())
}

func TestScore_PredictionOnly(t *testing.T) {
	ts := httptest.NewServer(fake.NewServer(fake.WithPredictionOnly(), fake.WithLabels("object_B")))
	defer ts.Close()

	ds, err := newClient(t, ts.URL+"/inference", time.Second).Score(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, []string{"object_B"}, scorer.Labels(ds))
	assert.True(t, ds[0].Box.Empty())
}

func TestScore_Non2xxIsFailure(t *testing.T) {
	ts := httptest.NewServer(fake.NewServer(fake.WithFailures(1)))
	defer ts.Close()

	_, err := newClient(t, ts.URL+"/inference", time.Second).Score(context.Background(), []byte("img"))
	require.ErrorIs(t, err, scorer.ErrScoring)

	var se *scorer.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Contains(t, se.Body, "scorer unavailable")
}

func TestScore_TimeoutIsFailure(t *testing.T) {
	ts := httptest.NewServer(fake.NewServer(fake.WithDelay(2 * time.Second)))
	defer ts.Close()

	start := time.Now()
	_, err := newClient(t, ts.URL+"/inference", 50*time.Millisecond).Score(context.Background(), []byte("img"))
	require.ErrorIs(t, err, scorer.ErrScoring)
	assert.Less(t, time.Since(start), time.Second)
}

func TestScore_UnreachableIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := newClient(t, url, time.Second).Score(context.Background(), []byte("img"))
	require.ErrorIs(t, err, scorer.ErrScoring)
}

func TestScore_MalformedBodyIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL, time.Second).Score(context.Background(), []byte("img"))
	require.ErrorIs(t, err, scorer.ErrScoring)
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr bool
	}{
		{name: "detections", body: `{"detections":[{"label":"a","confidence":0.9,"box":{"x":1,"y":2,"w":3,"h":4}}]}`, want: []string{"a"}},
		{name: "bare list", body: `[{"label":"a"},{"label":"b"}]`, want: []string{"a", "b"}},
		{name: "prediction", body: `{"prediction":"object_C"}`, want: []string{"object_C"}},
		{name: "empty detections", body: `{"detections":[]}`, want: []string{}},
		{name: "null detections", body: `{"detections":null}`, want: []string{}},
		{name: "unrelated object", body: `{"status":"ok"}`, wantErr: true},
		{name: "missing label", body: `[{"confidence":1}]`, wantErr: true},
		{name: "empty", body: "  ", wantErr: true},
		{name: "garbage", body: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := scorer.DecodeResponse([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, scorer.Labels(ds))
		})
	}
}
