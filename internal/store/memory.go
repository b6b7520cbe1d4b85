package store

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/snapshot"
)

// MemoryStore 离线模式的存储：快照保存在内存中，可选写回 YAML 文件。
type MemoryStore struct {
	source    *snapshot.StaticSource
	publisher Publisher
	projectID string
	path      string
	logger    *zap.Logger

	mu     sync.Mutex
	counts []GroupCount
}

// NewMemoryStore 创建 MemoryStore，path 为空时不落盘。
func NewMemoryStore(source *snapshot.StaticSource, publisher Publisher, projectID, path string, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{source: source, publisher: publisher, projectID: projectID, path: path, logger: logger}
}

// Fetch 实现 snapshot.Source。
func (s *MemoryStore) Fetch(ctx context.Context) (domain.Model, error) {
	return s.source.Fetch(ctx)
}

// Save 校验后替换内存快照并发布 changed 通知。
func (s *MemoryStore) Save(_ context.Context, m domain.Model) (messages.SaveReceipt, error) {
	if err := m.Validate(); err != nil {
		return messages.SaveReceipt{}, &messages.SaveError{Status: http.StatusUnprocessableEntity, Message: err.Error()}
	}
	s.source.Replace(m)
	if s.path != "" {
		if err := snapshot.WriteFile(s.path, m); err != nil {
			s.logger.Warn("快照写回文件失败", zap.String("path", s.path), zap.Error(err))
		}
	}
	receipt := messages.SaveReceipt{RequestID: uuid.NewString(), EntityID: s.projectID}
	s.publish(messages.Message{
		RoutingKey: messages.RoutingChangedPrefix + ".inventory",
		Data:       messages.Data{EntityID: s.projectID, RequestID: receipt.RequestID},
	})
	return receipt, nil
}

// StartRun 在内存中统计每个迁移组未排除的节点数量。
func (s *MemoryStore) StartRun(ctx context.Context) error {
	entity := messages.Data{EntityID: s.projectID}
	s.publish(messages.Message{RoutingKey: messages.RoutingRunStarted, Data: entity})
	m, err := s.source.Fetch(ctx)
	if err == nil {
		s.mu.Lock()
		s.counts = countGroups(m)
		s.mu.Unlock()
	}
	finished := entity
	if err != nil {
		finished.Text = err.Error()
	}
	s.publish(messages.Message{RoutingKey: messages.RoutingRunFinished, Data: finished})
	s.publish(messages.Message{RoutingKey: messages.RoutingChangedPrefix + ".calculation", Data: entity})
	return err
}

// Calculation 返回最近一次计算结果。
func (s *MemoryStore) Calculation(context.Context) ([]GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GroupCount(nil), s.counts...), nil
}

func (s *MemoryStore) publish(msgs ...messages.Message) {
	if s.publisher != nil {
		s.publisher.Publish(msgs...)
	}
}

func countGroups(m domain.Model) []GroupCount {
	out := make([]GroupCount, 0, len(m.MoveGroups))
	for _, g := range m.MoveGroups {
		c := GroupCount{ID: g.ID, Name: g.Name}
		for _, id := range g.NodeIDs {
			if n := m.Node(id); n != nil && !n.Excluded {
				c.NodeCount++
			}
		}
		out = append(out, c)
	}
	return out
}
