package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pitapat/internal/adapter/notification"
	"pitapat/internal/api/middleware"
	"pitapat/internal/service"
	pkgErrors "pitapat/pkg/errors"
	"pitapat/pkg/responses"
)

// StreamHandler SSE 推送项目状态
type StreamHandler struct {
	auth       service.AuthorizationService
	subscriber notification.Subscriber
	heartbeat  time.Duration
	logger     *zap.Logger
}

func NewStreamHandler(auth service.AuthorizationService, subscriber notification.Subscriber, heartbeat time.Duration, logger *zap.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &StreamHandler{auth: auth, subscriber: subscriber, heartbeat: heartbeat, logger: logger}
}

// Stream 订阅当前用户的通知
// @Summary 项目状态推送 (text/event-stream)
// @Tags 通知
// @Produce text/event-stream
// @Param token query string false "EventSource 无法设置请求头时使用"
// @Success 200 {string} string "event: message"
// @Router /stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := h.auth.Authorize(ctx, middleware.GetToken(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	messages, cancel, err := h.subscriber.Subscribe(ctx, userID)
	if err != nil {
		responses.Error(c, pkgErrors.Wrap(pkgErrors.KindAdapterFailure, "订阅通知失败", err))
		return
	}
	defer cancel()

	log := h.logger.With(zap.String("handler", "stream.Stream"), zap.Int64("user_id", userID))
	log.Debug("SSE 连接建立")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		}
	})
	log.Debug("SSE 连接关闭")
}
