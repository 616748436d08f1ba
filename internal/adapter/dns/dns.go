package dns

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Manager 项目域名记录
type Manager interface {
	AddRecord(ctx context.Context, host string) error
	DeleteRecord(ctx context.Context, host string) error
}

// fqdn host 不带根域时补全
func fqdn(host, zone string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	zone = strings.TrimSuffix(strings.TrimSpace(zone), ".")
	if zone == "" || host == zone || strings.HasSuffix(host, "."+zone) {
		return host
	}
	return host + "." + zone
}

// LogManager 只记录日志, 本地开发使用
type LogManager struct {
	zone   string
	logger *zap.Logger
}

func NewLogManager(zone string, logger *zap.Logger) *LogManager {
	return &LogManager{zone: zone, logger: logger}
}

func (m *LogManager) AddRecord(ctx context.Context, host string) error {
	m.logger.Info("添加DNS记录", zap.String("host", fqdn(host, m.zone)))
	return nil
}

func (m *LogManager) DeleteRecord(ctx context.Context, host string) error {
	m.logger.Info("删除DNS记录", zap.String("host", fqdn(host, m.zone)))
	return nil
}
