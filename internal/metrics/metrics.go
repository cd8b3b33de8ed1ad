package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"driftwatch/internal/model"
)

// Recorder publishes drift measurements and alarm states. Services depend on
// this interface so tests can assert on published values.
type Recorder interface {
	RecordDrift(m model.DriftMetric)
	RecordAlarmState(alarmName string, state model.AlarmState)
}

// DriftRecorder exposes drift metrics and alarm states as Prometheus gauges.
type DriftRecorder struct {
	drift      *prometheus.GaugeVec
	alarmState *prometheus.GaugeVec
}

// NewDriftRecorder creates a DriftRecorder and registers its collectors.
func NewDriftRecorder(reg prometheus.Registerer) (*DriftRecorder, error) {
	r := &DriftRecorder{
		drift: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "feature_baseline_drift",
				Help: "Baseline drift distance per monitored feature.",
			},
			[]string{"pipeline", "feature"},
		),
		alarmState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drift_alarm_state",
				Help: "Alarm state per drift alarm (0=OK, 1=ALARM, -1=INSUFFICIENT_DATA).",
			},
			[]string{"alarm"},
		),
	}

	if err := reg.Register(r.drift); err != nil {
		return nil, err
	}
	if err := reg.Register(r.alarmState); err != nil {
		return nil, err
	}

	return r, nil
}

var _ Recorder = (*DriftRecorder)(nil)

// RecordDrift sets the drift gauge for the metric's pipeline and feature.
func (r *DriftRecorder) RecordDrift(m model.DriftMetric) {
	r.drift.WithLabelValues(m.PipelineName, m.FeatureName).Set(m.Value)
}

// RecordAlarmState sets the state gauge for the named alarm.
func (r *DriftRecorder) RecordAlarmState(alarmName string, state model.AlarmState) {
	var v float64
	switch state {
	case model.AlarmStateAlarm:
		v = 1
	case model.AlarmStateInsufficientData:
		v = -1
	}
	r.alarmState.WithLabelValues(alarmName).Set(v)
}
