package lifecycle

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"pitapat/internal/adapter/deploy"
	"pitapat/internal/adapter/dns"
	"pitapat/internal/adapter/notification"
	"pitapat/internal/adapter/workflow"
	"pitapat/internal/model"
	"pitapat/internal/pkg/crypto"
	gitApi "pitapat/internal/pkg/git/api"
	"pitapat/internal/pkg/jwt"
	"pitapat/internal/repository"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

// Authorizer token → userId
type Authorizer interface {
	Authorize(ctx context.Context, token string) (int64, error)
}

// Dependencies 控制器依赖
type Dependencies struct {
	Store    *repository.Store
	Auth     Authorizer
	Source   gitApi.SourceHost
	Trigger  workflow.Trigger
	Deployer deploy.Adapter
	DNS      dns.Manager
	Notifier notification.Publisher
	Cipher   *crypto.Cipher
	Signer   *jwt.CallbackSigner
	Logger   *zap.Logger
}

// Controller 项目生命周期, 所有状态变更都经过这里
type Controller struct {
	store    *repository.Store
	auth     Authorizer
	source   gitApi.SourceHost
	trigger  workflow.Trigger
	deployer deploy.Adapter
	dns      dns.Manager
	notifier notification.Publisher
	cipher   *crypto.Cipher
	signer   *jwt.CallbackSigner
	logger   *zap.Logger
}

func NewController(deps Dependencies) *Controller {
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Controller{
		store:    deps.Store,
		auth:     deps.Auth,
		source:   deps.Source,
		trigger:  deps.Trigger,
		deployer: deps.Deployer,
		dns:      deps.DNS,
		notifier: deps.Notifier,
		cipher:   deps.Cipher,
		signer:   deps.Signer,
		logger:   l.With(zap.String("component", "lifecycle")),
	}
}

// errSkip 由 prepare 返回, 表示本次事件只确认不流转
var errSkip = errors.New("skip transition")

type TransitionOption func(*transitionOptions)

type transitionOptions struct {
	expected      *constants.ProjectStatus
	ignoreRefused bool
	prepare       func(tx *repository.Store, p *model.Project) error
	sideEffect    func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error
	payload       interface{}
}

// WithExpectedStatus 适配器调用前读到的状态, 事务内状态已变化视为并发冲突
func WithExpectedStatus(s constants.ProjectStatus) TransitionOption {
	return func(o *transitionOptions) { o.expected = &s }
}

// WithIgnoreRefused 状态表不允许时仅确认, 不报错
func WithIgnoreRefused() TransitionOption {
	return func(o *transitionOptions) { o.ignoreRefused = true }
}

// WithPrepare 状态检查前执行, 其写入与流转同事务提交
func WithPrepare(fn func(tx *repository.Store, p *model.Project) error) TransitionOption {
	return func(o *transitionOptions) { o.prepare = fn }
}

// WithSideEffect 状态检查通过后执行, 可追加要更新的字段
func WithSideEffect(fn func(tx *repository.Store, p *model.Project, fields map[string]interface{}) error) TransitionOption {
	return func(o *transitionOptions) { o.sideEffect = fn }
}

// WithPayload 写入项目日志
func WithPayload(payload interface{}) TransitionOption {
	return func(o *transitionOptions) { o.payload = payload }
}

// changeStatus 单事务内: 重新加载 → 检查 → 副作用 → 乐观更新 → 写日志.
// 返回提交后的项目, changed 表示状态是否发生了流转
func (c *Controller) changeStatus(ctx context.Context, projectID int64, event Event, source int8, opts ...TransitionOption) (*model.Project, bool, error) {
	option := &transitionOptions{}
	for _, opt := range opts {
		opt(option)
	}

	var (
		project *model.Project
		changed bool
	)
	err := c.store.Transaction(ctx, func(tx *repository.Store) error {
		// 1. 重新加载最新状态
		p, err := tx.Projects.FindByID(projectID)
		if err != nil {
			return err
		}
		project = p
		from := p.Status

		if option.expected != nil && *option.expected != from {
			return pkgErrors.ErrStatusConflict
		}

		// 2. 与检查结果无关的写入
		if option.prepare != nil {
			if err := option.prepare(tx, p); err != nil {
				if errors.Is(err, errSkip) {
					return nil
				}
				return err
			}
		}

		// 3. 检查是否允许
		t, ok := canTransition(event, from, source)
		if !ok {
			if option.ignoreRefused {
				c.logger.Info("忽略不适用的事件",
					zap.Int64("project_id", projectID),
					zap.String("event", string(event)),
					zap.String("status", from.String()))
				return nil
			}
			return pkgErrors.ErrInvalidState
		}

		// 4. 副作用
		fields := map[string]interface{}{"status": t.To}
		if option.sideEffect != nil {
			if err := option.sideEffect(tx, p, fields); err != nil {
				return err
			}
		}

		// 5. 乐观锁更新
		rows, err := tx.Projects.UpdateStatus(projectID, from, fields)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgErrors.ErrStatusConflict
		}

		if err := tx.Logs.Create(newProjectLog(projectID, event, from, t.To, option.payload)); err != nil {
			return err
		}

		if project, err = tx.Projects.FindByID(projectID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		c.logger.Info("项目状态变更成功",
			zap.Int64("project_id", projectID),
			zap.String("event", string(event)),
			zap.String("status", project.Status.String()))
	}
	return project, changed, nil
}

// recoverStatus 适配器调用失败后的补偿, 仅当状态仍为调用前的状态时生效, 自身失败只记日志
func (c *Controller) recoverStatus(ctx context.Context, projectID int64, pre constants.ProjectStatus, event Event, cause error) {
	log := c.logger.With(zap.Int64("project_id", projectID), zap.String("event", string(event)))

	t, ok := canTransition(event, pre, SourceInside)
	if !ok {
		log.Warn("补偿流转不适用", zap.String("status", pre.String()))
		return
	}

	rows, err := c.store.Projects.UpdateStatus(projectID, pre, map[string]interface{}{"status": t.To})
	if err != nil {
		log.Error("补偿更新项目状态失败", zap.Error(err))
		return
	}
	if rows == 0 {
		log.Warn("补偿跳过, 项目状态已被修改")
		return
	}

	payload := map[string]interface{}{}
	if cause != nil {
		payload["error"] = cause.Error()
	}
	if err := c.store.Logs.Create(newProjectLog(projectID, event, pre, t.To, payload)); err != nil {
		log.Warn("写入项目日志失败", zap.Error(err))
	}

	if p, err := c.store.Projects.FindByID(projectID); err == nil {
		c.notify(ctx, p)
	}
}

// notify 提交后通知, 失败不影响结果
func (c *Controller) notify(ctx context.Context, p *model.Project) {
	if c.notifier == nil || p == nil {
		return
	}
	if err := c.notifier.Publish(ctx, p.UserID, notification.NewMessage(p)); err != nil {
		c.logger.Warn("发送项目通知失败", zap.Int64("project_id", p.ID), zap.Error(err))
	}
}

// authorizeOwner 校验 token 并确认项目归属
func (c *Controller) authorizeOwner(ctx context.Context, token string, projectID int64) (int64, *model.Project, error) {
	userID, err := c.auth.Authorize(ctx, token)
	if err != nil {
		return 0, nil, err
	}
	project, err := c.store.Projects.FindByID(projectID)
	if err != nil {
		return 0, nil, err
	}
	if !project.IsOwnedBy(userID) {
		return 0, nil, pkgErrors.ErrNotProjectOwner
	}
	return userID, project, nil
}

func newProjectLog(projectID int64, event Event, from, to constants.ProjectStatus, payload interface{}) *model.ProjectLog {
	log := &model.ProjectLog{
		ProjectID:  projectID,
		Event:      string(event),
		FromStatus: from,
		ToStatus:   to,
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			log.Payload = datatypes.JSON(data)
		}
	}
	return log
}
