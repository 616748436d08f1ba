package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pitapat/internal/core/lifecycle"
	"pitapat/internal/model"
	"pitapat/pkg/constants"
)

type fakeSource struct {
	projects []*model.Project
	err      error
}

func (f *fakeSource) ListDeploying() ([]*model.Project, error) {
	return f.projects, f.err
}

type mockPoller struct {
	mock.Mock
}

func (m *mockPoller) OnRolloutStatus(ctx context.Context, projectID, buildID int64) (*lifecycle.RolloutResult, error) {
	args := m.Called(projectID, buildID)
	result, _ := args.Get(0).(*lifecycle.RolloutResult)
	return result, args.Error(1)
}

func applied(health constants.RolloutHealth, status constants.ProjectStatus) *lifecycle.RolloutResult {
	return &lifecycle.RolloutResult{Health: health, Applied: true, Status: status}
}

func project(id int64, buildID *int64) *model.Project {
	p := &model.Project{Status: constants.ProjectStatusDeploying, DeployingBuildID: buildID}
	p.ID = id
	return p
}

func ptr(v int64) *int64 { return &v }

func TestReconcileRollouts(t *testing.T) {
	poller := &mockPoller{}
	poller.On("OnRolloutStatus", int64(1), int64(10)).Return(applied(constants.RolloutHealthy, constants.ProjectStatusDeploySucceeded), nil)
	poller.On("OnRolloutStatus", int64(2), int64(20)).Return(&lifecycle.RolloutResult{Health: constants.RolloutProgressing, Status: constants.ProjectStatusDeploying}, nil)
	poller.On("OnRolloutStatus", int64(3), int64(30)).Return(nil, errors.New("timeout"))
	poller.On("OnRolloutStatus", int64(4), int64(40)).Return(applied(constants.RolloutDegraded, constants.ProjectStatusDeployFailed), nil)
	// 终态但构建已不是部署目标, 不计入
	poller.On("OnRolloutStatus", int64(6), int64(60)).Return(&lifecycle.RolloutResult{Health: constants.RolloutHealthy, Status: constants.ProjectStatusDeploying}, nil)

	s := NewScheduler(&fakeSource{projects: []*model.Project{
		project(1, ptr(10)),
		project(2, ptr(20)),
		project(3, ptr(30)),
		project(4, ptr(40)),
		project(5, nil),
		project(6, ptr(60)),
	}}, poller, zap.NewNop())

	settled := s.ReconcileRollouts(context.Background())
	assert.Equal(t, 2, settled)
	poller.AssertNumberOfCalls(t, "OnRolloutStatus", 5)
}

func TestReconcileRolloutsListFailure(t *testing.T) {
	poller := &mockPoller{}
	s := NewScheduler(&fakeSource{err: errors.New("db down")}, poller, zap.NewNop())

	assert.Equal(t, 0, s.ReconcileRollouts(context.Background()))
	poller.AssertNotCalled(t, "OnRolloutStatus", mock.Anything, mock.Anything)
}

func TestStart(t *testing.T) {
	s := NewScheduler(&fakeSource{}, &mockPoller{}, zap.NewNop())
	require.NoError(t, s.Start(""))
	assert.Empty(t, s.cronSchedules)

	assert.Error(t, s.Start("not a cron"))

	require.NoError(t, s.Start("*/30 * * * * *"))
	assert.Contains(t, s.cronSchedules, rolloutJobName)
	s.Stop()
}
