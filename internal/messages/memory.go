package messages

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryFeed 进程内消息源，用于本地存储模式和测试。每个通道独立缓存消息。
type MemoryFeed struct {
	mu       sync.Mutex
	channels map[string][]Message
}

// NewMemoryFeed 创建空的内存消息源。
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{channels: make(map[string][]Message)}
}

// CreateChannel 创建新通道。
func (f *MemoryFeed) CreateChannel(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.channels[id] = nil
	return id, nil
}

// Poll 取出并清空通道内的消息，通道不存在时返回 ErrChannelNotFound。
func (f *MemoryFeed) Poll(_ context.Context, channelID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs, ok := f.channels[channelID]
	if !ok {
		return nil, ErrChannelNotFound
	}
	f.channels[channelID] = nil
	return msgs, nil
}

// Publish 向所有通道广播消息。
func (f *MemoryFeed) Publish(msgs ...Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.channels {
		f.channels[id] = append(f.channels[id], msgs...)
	}
}

// Expire 删除通道，模拟服务端通道过期。
func (f *MemoryFeed) Expire(channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channelID)
}
