package notification

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"pitapat/internal/model"
	"pitapat/pkg/constants"
)

// Message 推送给前端的项目状态变更
type Message struct {
	ProjectID       int64                   `json:"projectId"`
	Status          constants.ProjectStatus `json:"status"`
	CurrentBuildID  *int64                  `json:"currentBuildId"`
	CurrentDeployID *int64                  `json:"currentDeployId"`
}

// NewMessage 由项目当前状态构造消息
func NewMessage(project *model.Project) *Message {
	return &Message{
		ProjectID:       project.ID,
		Status:          project.Status,
		CurrentBuildID:  project.CurrentBuildID,
		CurrentDeployID: project.CurrentDeployID,
	}
}

func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Publisher 按用户投递消息, 投递失败不影响已提交的状态
type Publisher interface {
	Publish(ctx context.Context, userID int64, msg *Message) error
}

// Subscriber 订阅某个用户的消息, 调用 cancel 释放订阅
type Subscriber interface {
	Subscribe(ctx context.Context, userID int64) (<-chan []byte, func(), error)
}

// Broker 同时支持发布和订阅
type Broker interface {
	Publisher
	Subscriber
}

// Channel 用户频道名: <prefix><userId>
func Channel(prefix string, userID int64) string {
	return prefix + strconv.FormatInt(userID, 10)
}

// ============= 多通知器 =============

// MultiNotifier 同时投递到多个渠道
type MultiNotifier struct {
	publishers []Publisher
	logger     *zap.Logger
}

func NewMultiNotifier(logger *zap.Logger, publishers ...Publisher) *MultiNotifier {
	return &MultiNotifier{
		publishers: publishers,
		logger:     logger,
	}
}

// Publish 投递到所有渠道, 返回最后一个错误
func (m *MultiNotifier) Publish(ctx context.Context, userID int64, msg *Message) error {
	var lastErr error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, userID, msg); err != nil {
			m.logger.Error("发送通知失败", zap.Int64("user_id", userID), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ============= 日志通知器 =============

// LogNotifier 仅记录日志
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(ctx context.Context, userID int64, msg *Message) error {
	n.logger.Info("📢 项目状态通知",
		zap.Int64("user_id", userID),
		zap.Int64("project_id", msg.ProjectID),
		zap.String("status", msg.Status.String()),
		zap.Int64p("current_build_id", msg.CurrentBuildID),
		zap.Int64p("current_deploy_id", msg.CurrentDeployID))
	return nil
}
