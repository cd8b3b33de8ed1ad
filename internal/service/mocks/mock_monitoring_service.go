package mocks

import (
	"context"

	"driftwatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockMonitoringService struct {
	mock.Mock
}

func (m *MockMonitoringService) EvaluateResult(ctx context.Context, jobName, pipelineName, resultsPath string) (*model.MonitoringResult, error) {
	args := m.Called(ctx, jobName, pipelineName, resultsPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MonitoringResult), args.Error(1)
}
