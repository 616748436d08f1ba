package service

import (
	"context"

	"github.com/samber/lo"

	"pitapat/internal/core/lifecycle"
	"pitapat/internal/dto"
	"pitapat/internal/model"
	"pitapat/internal/repository"
	pkgErrors "pitapat/pkg/errors"
)

const projectLogLimit = 50

type ProjectService interface {
	List(ctx context.Context, token string) ([]*dto.ProjectItem, error)
	Detail(ctx context.Context, projectID int64, token string) (*dto.ProjectDetail, error)
	Create(ctx context.Context, token string, req *dto.CreateProjectRequest) (*dto.CreatedResponse, error)
	CheckSubdomain(ctx context.Context, name string) error
	Delete(ctx context.Context, projectID int64, token string) error
}

type projectService struct {
	store *repository.Store
	auth  AuthorizationService
	ctrl  *lifecycle.Controller
}

func NewProjectService(store *repository.Store, auth AuthorizationService, ctrl *lifecycle.Controller) ProjectService {
	return &projectService{store: store, auth: auth, ctrl: ctrl}
}

func (s *projectService) List(ctx context.Context, token string) ([]*dto.ProjectItem, error) {
	userID, err := s.auth.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.Projects.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(projects, func(p *model.Project, _ int) *dto.ProjectItem {
		return &dto.ProjectItem{ID: p.ID, Name: p.Name, Status: p.Status, Framework: p.Framework}
	}), nil
}

func (s *projectService) Detail(ctx context.Context, projectID int64, token string) (*dto.ProjectDetail, error) {
	userID, err := s.auth.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Projects.FindByID(projectID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(userID) {
		return nil, pkgErrors.ErrNotProjectOwner
	}

	builds, err := s.store.Builds.ListByProject(p.ID)
	if err != nil {
		return nil, err
	}
	deploys, err := s.store.Deploys.ListByBuilds(lo.Map(builds, func(b *model.Build, _ int) int64 { return b.ID }))
	if err != nil {
		return nil, err
	}
	byBuild := lo.GroupBy(lo.Filter(deploys, func(d *model.Deploy, _ int) bool { return d.BuildID != nil }),
		func(d *model.Deploy) int64 { return *d.BuildID })

	secrets, err := s.store.Secrets.ListByProject(p.ID)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.Logs.ListByProject(p.ID, projectLogLimit)
	if err != nil {
		return nil, err
	}

	return &dto.ProjectDetail{
		ID:               p.ID,
		Name:             p.Name,
		Framework:        p.Framework,
		Port:             p.Port,
		Status:           p.Status,
		Subdomain:        p.Subdomain,
		DomainURL:        p.DomainURL,
		WebhookURL:       p.WebhookURL,
		AutoScaling:      p.AutoScaling,
		MinReplicas:      p.MinReplicas,
		MaxReplicas:      p.MaxReplicas,
		CPUThreshold:     p.CPUThreshold,
		CurrentBuildID:   p.CurrentBuildID,
		CurrentDeployID:  p.CurrentDeployID,
		DeployingBuildID: p.DeployingBuildID,
		CreatedAt:        p.CreatedAt,
		Builds: lo.Map(builds, func(b *model.Build, _ int) *dto.BuildItem {
			return &dto.BuildItem{
				ID:        b.ID,
				BuildDate: b.BuildDate,
				CommitMsg: b.CommitMsg,
				ImageName: b.ImageName,
				ImageTag:  b.ImageTag,
				Deploys: lo.Map(byBuild[b.ID], func(d *model.Deploy, _ int) *dto.DeployItem {
					return &dto.DeployItem{ID: d.ID, DeployDate: d.DeployDate}
				}),
			}
		}),
		SecretKeys: lo.Map(secrets, func(sec *model.Secret, _ int) string { return sec.Key }),
		Logs: lo.Map(logs, func(l *model.ProjectLog, _ int) *dto.LogItem {
			return &dto.LogItem{Event: l.Event, FromStatus: l.FromStatus, ToStatus: l.ToStatus, CreatedAt: l.CreatedAt}
		}),
	}, nil
}

func (s *projectService) Create(ctx context.Context, token string, req *dto.CreateProjectRequest) (*dto.CreatedResponse, error) {
	p, err := s.ctrl.CreateProject(ctx, token, &lifecycle.CreateProjectInput{
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		Framework:    req.Framework,
		Port:         req.Port,
		AutoScaling:  req.AutoScaling,
		MinReplicas:  req.MinReplicas,
		MaxReplicas:  req.MaxReplicas,
		CPUThreshold: req.CPUThreshold,
		Secrets: lo.Map(req.Secrets, func(item dto.SecretItem, _ int) lifecycle.SecretInput {
			return lifecycle.SecretInput{Key: item.Key, Value: item.Value}
		}),
	})
	if err != nil {
		return nil, err
	}
	return &dto.CreatedResponse{ProjectID: p.ID}, nil
}

func (s *projectService) CheckSubdomain(ctx context.Context, name string) error {
	return s.ctrl.CheckSubdomain(ctx, name)
}

func (s *projectService) Delete(ctx context.Context, projectID int64, token string) error {
	return s.ctrl.Delete(ctx, projectID, token)
}
