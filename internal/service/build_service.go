package service

import (
	"context"

	"pitapat/internal/core/lifecycle"
	"pitapat/internal/dto"
	"pitapat/pkg/constants"
)

type BuildService interface {
	Build(ctx context.Context, projectID int64, token string) error
	OnBuildEvent(ctx context.Context, req *dto.BuildEventRequest, callbackToken string) error
}

type buildService struct {
	ctrl *lifecycle.Controller
}

func NewBuildService(ctrl *lifecycle.Controller) BuildService {
	return &buildService{ctrl: ctrl}
}

func (s *buildService) Build(ctx context.Context, projectID int64, token string) error {
	_, err := s.ctrl.RequestBuild(ctx, projectID, token)
	return err
}

func (s *buildService) OnBuildEvent(ctx context.Context, req *dto.BuildEventRequest, callbackToken string) error {
	_, err := s.ctrl.OnBuildEvent(ctx, &lifecycle.BuildEvent{
		ProjectID:     req.ProjectID,
		Status:        req.Status,
		CommitMsg:     req.CommitMsg,
		ImageName:     req.ImageName,
		ImageTag:      req.ImageTag,
		CallbackToken: callbackToken,
	})
	return err
}

type DeployService interface {
	Deploy(ctx context.Context, buildID int64, token string) error
	Status(ctx context.Context, buildID int64, token string) (*dto.DeployStatusResponse, error)
	OnDeployEvent(ctx context.Context, req *dto.DeployEventRequest) error
}

type deployService struct {
	ctrl *lifecycle.Controller
}

func NewDeployService(ctrl *lifecycle.Controller) DeployService {
	return &deployService{ctrl: ctrl}
}

func (s *deployService) Deploy(ctx context.Context, buildID int64, token string) error {
	_, err := s.ctrl.RequestDeploy(ctx, buildID, token)
	return err
}

func (s *deployService) Status(ctx context.Context, buildID int64, token string) (*dto.DeployStatusResponse, error) {
	result, err := s.ctrl.CheckRollout(ctx, buildID, token)
	if err != nil {
		return nil, err
	}
	return &dto.DeployStatusResponse{
		BuildID: buildID,
		Health:  string(result.Health),
		Applied: result.Applied,
		Status:  result.Status,
	}, nil
}

// OnDeployEvent 外部推送的发布状态, 非终态直接确认
func (s *deployService) OnDeployEvent(ctx context.Context, req *dto.DeployEventRequest) error {
	_, err := s.ctrl.ApplyRolloutHealth(ctx, req.BuildID, constants.ParseRolloutHealth(req.Status))
	return err
}
