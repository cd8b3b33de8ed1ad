package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/model"
)

func TestRecordDrift(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewDriftRecorder(reg)
	require.NoError(t, err)

	r.RecordDrift(model.DriftMetric{
		MetricName:   "feature_baseline_drift_total_amount",
		FeatureName:  "total_amount",
		PipelineName: "churn-build",
		Value:        0.39,
		Threshold:    0.1,
	})

	got := testutil.ToFloat64(r.drift.WithLabelValues("churn-build", "total_amount"))
	assert.Equal(t, 0.39, got)

	// A second recording for the same feature overwrites the gauge.
	r.RecordDrift(model.DriftMetric{
		FeatureName: "total_amount", PipelineName: "churn-build", Value: 0.12,
	})
	assert.Equal(t, 0.12, testutil.ToFloat64(r.drift.WithLabelValues("churn-build", "total_amount")))
}

func TestRecordAlarmState(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewDriftRecorder(reg)
	require.NoError(t, err)

	alarm := "churn-prod-threshold"

	r.RecordAlarmState(alarm, model.AlarmStateOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.alarmState.WithLabelValues(alarm)))

	r.RecordAlarmState(alarm, model.AlarmStateAlarm)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.alarmState.WithLabelValues(alarm)))

	r.RecordAlarmState(alarm, model.AlarmStateInsufficientData)
	assert.Equal(t, -1.0, testutil.ToFloat64(r.alarmState.WithLabelValues(alarm)))
}

func TestNewDriftRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewDriftRecorder(reg)
	require.NoError(t, err)

	_, err = NewDriftRecorder(reg)
	assert.Error(t, err)
}
