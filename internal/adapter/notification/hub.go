package notification

import (
	"context"
	"sync"
)

const hubBufferSize = 16

// Hub 进程内的订阅分发, 未配置 Redis 时使用
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[chan []byte]struct{})}
}

func (h *Hub) Subscribe(ctx context.Context, userID int64) (<-chan []byte, func(), error) {
	ch := make(chan []byte, hubBufferSize)

	h.mu.Lock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[chan []byte]struct{})
	}
	h.clients[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if clients, ok := h.clients[userID]; ok {
				delete(clients, ch)
				if len(clients) == 0 {
					delete(h.clients, userID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Publish 缓冲区已满的订阅者丢弃本条消息
func (h *Hub) Publish(ctx context.Context, userID int64, msg *Message) error {
	payload, err := msg.Marshal()
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients[userID] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribers 当前订阅数
func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
