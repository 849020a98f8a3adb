// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetPhase_OneHot(t *testing.T) {
	all := []string{"inactive", "active"}
	SetPhase("t1", "active", all)
	assert.Equal(t, 1.0, testutil.ToFloat64(lifecyclePhase.WithLabelValues("t1", "active")))
	assert.Equal(t, 0.0, testutil.ToFloat64(lifecyclePhase.WithLabelValues("t1", "inactive")))

	SetPhase("t1", "inactive", all)
	assert.Equal(t, 0.0, testutil.ToFloat64(lifecyclePhase.WithLabelValues("t1", "active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(lifecyclePhase.WithLabelValues("t1", "inactive")))
}

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(lifecycleTransitions.WithLabelValues("t2", "startup", "init_startup"))
	RecordTransition("t2", "startup", "init_startup")
	assert.Equal(t, before+1, testutil.ToFloat64(lifecycleTransitions.WithLabelValues("t2", "startup", "init_startup")))
}

func TestObserveFrame(t *testing.T) {
	before := testutil.ToFloat64(dispatchFrames.WithLabelValues(ResultDecodeFailure))
	ObserveFrame(ResultDecodeFailure)
	assert.Equal(t, before+1, testutil.ToFloat64(dispatchFrames.WithLabelValues(ResultDecodeFailure)))
}
