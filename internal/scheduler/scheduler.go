package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pitapat/internal/core/lifecycle"
	"pitapat/internal/model"
)

const rolloutJobName = "rollout_reconcile"

// RolloutSource 部署中的项目
type RolloutSource interface {
	ListDeploying() ([]*model.Project, error)
}

// RolloutPoller 查询一次发布状态, 终态时推进项目
type RolloutPoller interface {
	OnRolloutStatus(ctx context.Context, projectID, buildID int64) (*lifecycle.RolloutResult, error)
}

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	projects      RolloutSource
	poller        RolloutPoller
	timeout       time.Duration
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(projects RolloutSource, poller RolloutPoller, logger *zap.Logger) *Scheduler {
	// 创建 cron 实例（带秒级支持）, 上一轮未结束时跳过
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	return &Scheduler{
		cron:          c,
		logger:        logger,
		projects:      projects,
		poller:        poller,
		timeout:       30 * time.Second,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器, cron 表达式为空时不注册巡检任务
// cron 表达式格式: 秒 分 时 日 月 周
func (s *Scheduler) Start(cronExpr string) error {
	log := s.logger.Sugar()

	if cronExpr == "" {
		log.Info("未配置 scheduler.rollout_cron, 不启动发布状态巡检")
		return nil
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.ReconcileRollouts(context.Background())
	})
	if err != nil {
		log.Errorf("注册发布状态巡检任务: %v 失败: %v", cronExpr, err)
		return err
	}

	s.cronSchedules[rolloutJobName] = entryID
	log.Infof("发布状态巡检任务已注册: %s entry_id=%d", cronExpr, entryID)

	s.cron.Start()
	log.Info("定时任务调度器启动成功")
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// ReconcileRollouts 轮询所有部署中的项目, 单个项目失败不影响其他项目
func (s *Scheduler) ReconcileRollouts(ctx context.Context) int {
	projects, err := s.projects.ListDeploying()
	if err != nil {
		s.logger.Error("查询部署中的项目失败", zap.Error(err))
		return 0
	}

	settled := 0
	for _, p := range projects {
		if p.DeployingBuildID == nil {
			continue
		}
		log := s.logger.With(zap.Int64("project_id", p.ID), zap.Int64("build_id", *p.DeployingBuildID))

		pollCtx, cancel := context.WithTimeout(ctx, s.timeout)
		result, err := s.poller.OnRolloutStatus(pollCtx, p.ID, *p.DeployingBuildID)
		cancel()
		if err != nil {
			log.Warn("巡检发布状态失败", zap.Error(err))
			continue
		}
		if result.Applied {
			settled++
			log.Info("发布已结束",
				zap.String("health", string(result.Health)),
				zap.String("status", result.Status.String()))
		}
	}
	return settled
}
