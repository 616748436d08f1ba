package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pitapat/internal/adapter/deploy"
	"pitapat/internal/model"
	"pitapat/internal/repository"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

// RequestDeploy 发布指定构建, 成功后进入 Deploying 并记录目标构建
func (c *Controller) RequestDeploy(ctx context.Context, buildID int64, token string) (*model.Project, error) {
	userID, err := c.auth.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	build, err := c.store.Builds.FindByID(buildID)
	if err != nil {
		return nil, err
	}
	project, err := c.store.Projects.FindByID(build.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwnedBy(userID) {
		return nil, pkgErrors.ErrNotProjectOwner
	}
	if _, ok := canTransition(EventDeployRequested, project.Status, SourceUser); !ok {
		return nil, pkgErrors.ErrInvalidState
	}

	latest, err := c.store.Deploys.FindLatestByBuild(build.ID)
	switch {
	case err == nil:
		if project.CurrentDeployID != nil && *project.CurrentDeployID == latest.ID {
			return nil, pkgErrors.ErrDeployExists
		}
	case !errors.Is(err, pkgErrors.ErrRecordNotFound):
		return nil, err
	}

	log := c.logger.With(zap.Int64("project_id", project.ID), zap.Int64("build_id", build.ID))
	pre := project.Status

	err = c.deployer.Deploy(ctx, &deploy.DeployParam{
		ReleaseName: project.Subdomain,
		ImageName:   build.ImageName,
		ImageTag:    build.ImageTag,
		Port:        project.Port,
	})
	if err != nil {
		log.Error("触发部署失败", zap.Error(err))
		c.recoverStatus(ctx, project.ID, pre, EventDeployStartFailed, err)
		return nil, pkgErrors.ErrDeploy.WithCause(err)
	}

	updated, _, err := c.changeStatus(ctx, project.ID, EventDeployRequested, SourceUser,
		WithExpectedStatus(pre),
		WithSideEffect(func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error {
			fields["deploying_build_id"] = build.ID
			return nil
		}),
		WithPayload(map[string]interface{}{"build_id": build.ID, "image_tag": build.ImageTag}))
	if err != nil {
		if !errors.Is(err, pkgErrors.ErrStatusConflict) {
			c.recoverStatus(ctx, project.ID, pre, EventDeployStartFailed, err)
		}
		return nil, err
	}

	c.notify(ctx, updated)
	return updated, nil
}

// RolloutResult 一次发布状态查询的结果, Applied 表示本次查询推进了项目状态
type RolloutResult struct {
	Health  constants.RolloutHealth
	Applied bool
	Status  constants.ProjectStatus
}

// CheckRollout 用户查询发布状态, 校验归属后轮询一次
func (c *Controller) CheckRollout(ctx context.Context, buildID int64, token string) (*RolloutResult, error) {
	userID, err := c.auth.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	build, err := c.store.Builds.FindByID(buildID)
	if err != nil {
		return nil, err
	}
	project, err := c.store.Projects.FindByID(build.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwnedBy(userID) {
		return nil, pkgErrors.ErrNotProjectOwner
	}
	return c.OnRolloutStatus(ctx, project.ID, buildID)
}

// OnRolloutStatus 查询一次发布健康状态, Progressing 不做任何变更.
// 终态只在构建仍是本次部署目标时生效, 否则 Applied 为 false
func (c *Controller) OnRolloutStatus(ctx context.Context, projectID, buildID int64) (*RolloutResult, error) {
	project, err := c.store.Projects.FindByID(projectID)
	if err != nil {
		return nil, err
	}

	health, err := c.deployer.GetStatus(ctx, project.Subdomain)
	if err != nil {
		return nil, pkgErrors.ErrRollout.WithCause(err)
	}
	result := &RolloutResult{Health: health, Status: project.Status}
	if !health.IsTerminal() {
		return result, nil
	}

	applied, err := c.ApplyRolloutHealth(ctx, buildID, health)
	if err != nil {
		return nil, err
	}
	result.Applied = applied
	if current, err := c.store.Projects.FindByID(projectID); err == nil {
		result.Status = current.Status
	}
	return result, nil
}

// ApplyRolloutHealth 应用终态: Healthy 记录部署并更新当前指针, 其余终态为 DeployFailed.
// 项目不在部署中, 或构建不是本次部署目标时只确认不变更, 重放不会产生重复部署记录
func (c *Controller) ApplyRolloutHealth(ctx context.Context, buildID int64, health constants.RolloutHealth) (bool, error) {
	build, err := c.store.Builds.FindByID(buildID)
	if err != nil {
		return false, err
	}
	if !health.IsTerminal() {
		return false, nil
	}

	event := EventRolloutFailed
	if health == constants.RolloutHealthy {
		event = EventRolloutHealthy
	}

	updated, changed, err := c.changeStatus(ctx, build.ProjectID, event, SourceWebhook,
		WithIgnoreRefused(),
		WithPrepare(func(tx *repository.Store, p *model.Project) error {
			if p.DeployingBuildID == nil || *p.DeployingBuildID != buildID {
				return errSkip
			}
			return nil
		}),
		WithSideEffect(func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error {
			fields["deploying_build_id"] = nil
			if event != EventRolloutHealthy {
				return nil
			}
			d := &model.Deploy{BuildID: &build.ID}
			if err := tx.Deploys.Create(d); err != nil {
				return err
			}
			fields["current_deploy_id"] = d.ID
			fields["current_build_id"] = build.ID
			return nil
		}),
		WithPayload(map[string]interface{}{"build_id": buildID, "health": string(health)}))
	if err != nil {
		return false, err
	}
	if !changed {
		c.logger.Info("发布状态事件已确认, 无需变更",
			zap.Int64("project_id", build.ProjectID),
			zap.Int64("build_id", buildID),
			zap.String("health", string(health)))
		return false, nil
	}

	c.notify(ctx, updated)
	return true, nil
}
