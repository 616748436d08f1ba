package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pitapat/internal/pkg/config"
)

// NewRedisClient 创建 Redis 客户端并检查连通性
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}
	return client, nil
}

// RedisBroker 基于 Redis Pub/Sub, 多实例部署时 SSE 连接可落在任意实例
type RedisBroker struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisBroker(client *redis.Client, prefix string, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, userID int64, msg *Message) error {
	payload, err := msg.Marshal()
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, Channel(b.prefix, userID), payload).Err(); err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}
	return nil
}

// Subscribe 等待订阅确认后返回, ctx 结束或调用 cancel 时退出
func (b *RedisBroker) Subscribe(ctx context.Context, userID int64) (<-chan []byte, func(), error) {
	channel := Channel(b.prefix, userID)
	ps := b.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("订阅频道失败: %w", err)
	}

	out := make(chan []byte, hubBufferSize)
	done := make(chan struct{})
	go func() {
		defer close(out)
		in := ps.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(m.Payload):
				default:
					b.logger.Warn("订阅者消费过慢, 丢弃消息", zap.String("channel", channel))
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				b.logger.Debug("关闭订阅失败", zap.String("channel", channel), zap.Error(err))
			}
		})
	}
	return out, cancel, nil
}
