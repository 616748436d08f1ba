package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pitapat/internal/adapter/workflow"
	"pitapat/internal/model"
	"pitapat/internal/repository"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

// BuildEvent 构建回调
type BuildEvent struct {
	ProjectID     int64
	Status        string
	CommitMsg     string
	ImageName     string
	ImageTag      string
	CallbackToken string
}

// RequestBuild 用户发起构建: 以最新提交的短 SHA 为镜像标签触发工作流, 成功后进入 Building
func (c *Controller) RequestBuild(ctx context.Context, projectID int64, token string) (*model.Project, error) {
	_, project, err := c.authorizeOwner(ctx, token, projectID)
	if err != nil {
		return nil, err
	}
	log := c.logger.With(zap.Int64("project_id", project.ID))

	owner, err := c.store.Users.FindByID(project.UserID)
	if err != nil {
		return nil, err
	}
	commit, err := c.source.GetLatestCommit(ctx, owner.Login, project.Name, token)
	if err != nil {
		return nil, err
	}
	imageTag := commit.ShortSHA()

	exists, err := c.store.Builds.ExistsTag(project.ID, imageTag)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgErrors.ErrBuildExists
	}
	if _, ok := canTransition(EventBuildRequested, project.Status, SourceUser); !ok {
		return nil, pkgErrors.ErrInvalidState
	}

	pre := project.Status
	callbackToken, err := c.signer.Generate(project.ID, imageTag)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindInternal, "签发回调令牌失败", err)
	}

	webhookURL := ""
	if project.WebhookURL != nil {
		webhookURL = *project.WebhookURL
	}
	err = c.trigger.Trigger(ctx, webhookURL, &workflow.TriggerParam{
		ProjectID:     project.ID,
		ImageName:     project.Name,
		ImageTag:      imageTag,
		CommitMsg:     commit.Message,
		CallbackToken: callbackToken,
	})
	if err != nil {
		log.Error("触发构建失败", zap.String("image_tag", imageTag), zap.Error(err))
		c.recoverStatus(ctx, project.ID, pre, EventBuildTriggerFail, err)
		return nil, pkgErrors.ErrTrigger.WithCause(err)
	}

	updated, _, err := c.changeStatus(ctx, project.ID, EventBuildRequested, SourceUser,
		WithExpectedStatus(pre),
		WithSideEffect(func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error {
			fields["building_image_tag"] = imageTag
			return nil
		}),
		WithPayload(map[string]interface{}{"image_tag": imageTag, "commit_msg": commit.Message}))
	if err != nil {
		if !errors.Is(err, pkgErrors.ErrStatusConflict) {
			c.recoverStatus(ctx, project.ID, pre, EventBuildTriggerFail, err)
			return nil, err
		}
		// 构建回调先于本次提交到达时, 构建已经完成
		if done, findErr := c.store.Builds.ExistsTag(project.ID, imageTag); findErr == nil && done {
			log.Info("构建回调已先行完成", zap.String("image_tag", imageTag))
			return c.store.Projects.FindByID(project.ID)
		}
		return nil, err
	}

	c.notify(ctx, updated)
	return updated, nil
}

// OnBuildEvent 构建回调: 成功时按 (项目, 镜像标签) 幂等记录构建并设为当前构建, 已记录过的标签只确认.
// 失败回调只结束进行中且标签一致的构建. 部署进行中时只记录构建不改变状态
func (c *Controller) OnBuildEvent(ctx context.Context, ev *BuildEvent) (*model.Project, error) {
	project, err := c.store.Projects.FindByID(ev.ProjectID)
	if err != nil {
		return nil, err
	}
	log := c.logger.With(zap.Int64("project_id", project.ID), zap.String("status", ev.Status))

	if c.signer.Enabled() {
		if _, err := c.signer.Validate(ev.CallbackToken, project.ID); err != nil {
			return nil, err
		}
	}

	success := ev.Status == constants.BuildEventSuccess
	if success && (ev.ImageTag == "" || ev.CommitMsg == "") {
		if err := c.fillFromSource(ctx, project, ev); err != nil {
			return nil, err
		}
	}
	if ev.ImageName == "" {
		ev.ImageName = project.Name
	}

	event := EventBuildFailed
	opts := []TransitionOption{
		WithIgnoreRefused(),
		WithPayload(map[string]interface{}{"status": ev.Status, "image_tag": ev.ImageTag}),
	}
	recorded := false
	if success {
		event = EventBuildSucceeded
		var build *model.Build
		opts = append(opts,
			WithPrepare(func(tx *repository.Store, p *model.Project) error {
				b, created, err := tx.Builds.CreateIfAbsent(&model.Build{
					ProjectID: p.ID,
					CommitMsg: ev.CommitMsg,
					ImageName: ev.ImageName,
					ImageTag:  ev.ImageTag,
				})
				if err != nil {
					return err
				}
				if !created {
					return errSkip
				}
				build = b
				recorded = true
				return nil
			}),
			WithSideEffect(func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error {
				fields["current_build_id"] = build.ID
				fields["building_image_tag"] = nil
				return nil
			}),
		)
	} else {
		opts = append(opts,
			WithPrepare(func(tx *repository.Store, p *model.Project) error {
				if ev.ImageTag != "" && p.BuildingImageTag != nil && *p.BuildingImageTag != ev.ImageTag {
					return errSkip
				}
				return nil
			}),
			WithSideEffect(func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error {
				fields["building_image_tag"] = nil
				return nil
			}),
		)
	}

	updated, changed, err := c.changeStatus(ctx, project.ID, event, SourceWebhook, opts...)
	if err != nil {
		log.Error("处理构建回调失败", zap.Error(err))
		return nil, err
	}
	if !changed {
		log.Info("构建回调未改变项目状态",
			zap.String("image_tag", ev.ImageTag),
			zap.String("current", updated.Status.String()))
		if !recorded {
			return updated, nil
		}
	}

	c.notify(ctx, updated)
	return updated, nil
}

// fillFromSource 回调缺少标签或提交信息时, 用项目所有者的 token 查询最新提交
func (c *Controller) fillFromSource(ctx context.Context, project *model.Project, ev *BuildEvent) error {
	owner, err := c.store.Users.FindByID(project.UserID)
	if err != nil {
		return err
	}
	token, err := c.store.Tokens.FindByUserID(project.UserID)
	if err != nil {
		return pkgErrors.ErrSourceHost.WithCause(err)
	}
	commit, err := c.source.GetLatestCommit(ctx, owner.Login, project.Name, token.AccessToken)
	if err != nil {
		return err
	}
	if ev.ImageTag == "" {
		ev.ImageTag = commit.ShortSHA()
	}
	if ev.CommitMsg == "" {
		ev.CommitMsg = commit.Message
	}
	return nil
}
