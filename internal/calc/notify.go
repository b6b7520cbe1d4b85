package calc

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"cmdbgroup/internal/messages"
)

// Notification 一条展示给用户的临时通知。
type Notification struct {
	At         time.Time `json:"at"`
	RoutingKey string    `json:"routing_key"`
	EntityID   string    `json:"entity_id"`
	Text       string    `json:"message,omitempty"`
}

// NotificationLog 保留最近的通知，超出容量时丢弃最旧的。
type NotificationLog struct {
	mu       sync.Mutex
	capacity int
	items    []Notification
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationLog 创建通知日志，capacity 小于 1 时取 20。
func NewNotificationLog(capacity int, logger *zap.Logger) *NotificationLog {
	if capacity < 1 {
		capacity = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationLog{capacity: capacity, logger: logger, now: time.Now}
}

// Notify 实现 Notifier。
func (l *NotificationLog) Notify(msg messages.Message) {
	n := Notification{
		At:         l.now(),
		RoutingKey: msg.RoutingKey,
		EntityID:   msg.Data.EntityID,
		Text:       msg.Data.Text,
	}
	l.mu.Lock()
	l.items = append(l.items, n)
	if len(l.items) > l.capacity {
		l.items = append([]Notification(nil), l.items[len(l.items)-l.capacity:]...)
	}
	l.mu.Unlock()
	l.logger.Info("其他实体消息", zap.String("routing_key", n.RoutingKey), zap.String("entity_id", n.EntityID))
}

// Recent 返回最近的通知，最新的在最后。
func (l *NotificationLog) Recent() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notification(nil), l.items...)
}
