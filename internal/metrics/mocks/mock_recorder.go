package mocks

import (
	"driftwatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordDrift(dm model.DriftMetric) {
	m.Called(dm)
}

func (m *MockRecorder) RecordAlarmState(alarmName string, state model.AlarmState) {
	m.Called(alarmName, state)
}
