package deploy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pitapat/pkg/constants"
)

// MockAdapter testify mock, 实现 Adapter
type MockAdapter struct {
	mock.Mock
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

func (m *MockAdapter) Deploy(ctx context.Context, param *DeployParam) error {
	args := m.Called(ctx, param)
	return args.Error(0)
}

func (m *MockAdapter) GetStatus(ctx context.Context, releaseName string) (constants.RolloutHealth, error) {
	args := m.Called(ctx, releaseName)
	return args.Get(0).(constants.RolloutHealth), args.Error(1)
}

func (m *MockAdapter) Provision(ctx context.Context, param *ProvisionParam) (*ProvisionResult, error) {
	args := m.Called(ctx, param)
	if res, ok := args.Get(0).(*ProvisionResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdapter) Deprovision(ctx context.Context, releaseName string) error {
	args := m.Called(ctx, releaseName)
	return args.Error(0)
}
