package snapshot

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"cmdbgroup/internal/domain"
)

// StaticSource 从 YAML 文件加载快照，保存时写回内存，用于离线调试。
type StaticSource struct {
	mu    sync.RWMutex
	model domain.Model
}

// NewStaticSource 使用给定快照创建 source。
func NewStaticSource(m domain.Model) *StaticSource {
	return &StaticSource{model: m.Clone()}
}

// LoadFile 读取 YAML 快照文件。
func LoadFile(path string) (domain.Model, error) {
	var m domain.Model
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("读取快照文件失败: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("解析快照文件失败: %w", err)
	}
	return m, nil
}

// WriteFile 将快照写为 YAML 文件。
func WriteFile(path string, m domain.Model) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("编码快照失败: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// Fetch 实现 Source。
func (s *StaticSource) Fetch(context.Context) (domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Clone(), nil
}

// Replace 替换保存的快照。
func (s *StaticSource) Replace(m domain.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m.Clone()
}
