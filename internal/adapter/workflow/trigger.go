package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pitapat/internal/pkg/config"
)

// TriggerParam 构建参数, 原样作为 EventSource 的请求体
type TriggerParam struct {
	ProjectID     int64  `json:"projectId"`
	ImageName     string `json:"imageName,omitempty"`
	ImageTag      string `json:"imageTag"`
	CommitMsg     string `json:"commitMsg,omitempty"`
	CallbackToken string `json:"callbackToken,omitempty"`
}

// Trigger 触发一次构建, 构建结果通过 build/event 回调
type Trigger interface {
	Trigger(ctx context.Context, targetURL string, param *TriggerParam) error
}

// WebhookTrigger 调用项目的 Argo Events webhook
type WebhookTrigger struct {
	scheme string
	path   string
	client *http.Client
	logger *zap.Logger
}

func NewWebhookTrigger(cfg *config.WorkflowConfig, logger *zap.Logger) *WebhookTrigger {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return &WebhookTrigger{
		scheme: scheme,
		path:   cfg.Path,
		client: &http.Client{
			Timeout: config.ParseDuration(cfg.Timeout, 10*time.Second),
		},
		logger: logger,
	}
}

// endpoint webhook_url 不带协议时按配置补全
func (w *WebhookTrigger) endpoint(targetURL string) string {
	u := strings.TrimRight(targetURL, "/")
	if !strings.Contains(u, "://") {
		u = w.scheme + "://" + u
	}
	if w.path != "" {
		u += "/" + strings.TrimLeft(w.path, "/")
	}
	return u
}

func (w *WebhookTrigger) Trigger(ctx context.Context, targetURL string, param *TriggerParam) error {
	if targetURL == "" {
		return fmt.Errorf("项目未配置 webhook 地址")
	}

	body, err := json.Marshal(param)
	if err != nil {
		return fmt.Errorf("序列化构建参数失败: %w", err)
	}

	url := w.endpoint(targetURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook 返回错误状态码: %d, %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	w.logger.Info("构建已触发",
		zap.String("url", url),
		zap.Int64("project_id", param.ProjectID),
		zap.String("image_tag", param.ImageTag))
	return nil
}
