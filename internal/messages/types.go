package messages

import (
	"context"
	"errors"
	"strings"

	"cmdbgroup/internal/domain"
)

const (
	RoutingRunStarted    = "object.projectrun.started"
	RoutingRunFinished   = "object.projectrun.finished"
	RoutingChangedPrefix = "object.project.changed"
)

// ErrChannelNotFound 消息通道已过期（HTTP 404），需要重新创建。
var ErrChannelNotFound = errors.New("message channel not found")

// Message 一条轮询得到的通知。
type Message struct {
	RoutingKey string `json:"routing_key"`
	Data       Data   `json:"data"`
}

// Data 通知携带的数据。
type Data struct {
	EntityID  string `json:"entity_id"`
	RequestID string `json:"request_id,omitempty"`
	Text      string `json:"message,omitempty"`
}

// IsStarted 计算开始。
func (m Message) IsStarted() bool { return m.RoutingKey == RoutingRunStarted }

// IsFinished 计算结束。
func (m Message) IsFinished() bool { return m.RoutingKey == RoutingRunFinished }

// IsChanged 实体已变更（包括 object.project.changed.* 的所有子类型）。
func (m Message) IsChanged() bool { return strings.HasPrefix(m.RoutingKey, RoutingChangedPrefix) }

// Feed 消息轮询接口。
type Feed interface {
	CreateChannel(ctx context.Context) (string, error)
	Poll(ctx context.Context, channelID string) ([]Message, error)
}

// SaveReceipt 保存调用返回的关联键，用于匹配之后的 changed 通知。
type SaveReceipt struct {
	RequestID string `json:"request_id"`
	EntityID  string `json:"entity_id"`
}

// Saver 保存库存快照。
type Saver interface {
	Save(ctx context.Context, m domain.Model) (SaveReceipt, error)
}

// SaveError 服务端拒绝保存，Message 原样展示给用户。
type SaveError struct {
	Status  int
	Message string
}

func (e *SaveError) Error() string {
	return e.Message
}

// RunStarter 触发一次服务端计算，进度通过消息回报。
type RunStarter interface {
	StartRun(ctx context.Context) error
}
