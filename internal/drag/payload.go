package drag

import "sync"

// Group 被拖拽行在表格分组（group-by）下的上下文。
type Group struct {
	Category   Category `json:"category"`
	Key        string   `json:"key"`
	PropertyID string   `json:"property_id,omitempty"`
}

// Payload 一次已完成放下的拖拽描述。
type Payload struct {
	Source      Collection `json:"source"`
	Intent      Intent     `json:"intent"`
	IDs         []string   `json:"ids"`
	SourceGroup Group      `json:"source_group"`
	Target      Collection `json:"target"`
	// TargetID 放入的目标行；为空表示放到空白处（无分组）。
	TargetID string `json:"target_id"`
	// TargetProperty 目标为属性值行时的属性 id，TargetID 为属性值。
	TargetProperty string `json:"target_property,omitempty"`
	// TargetSelection 目标表格中当前选中的行。
	TargetSelection []string `json:"target_selection,omitempty"`
}

// Slot 单写者的待处理载荷槽：新的放下覆盖旧值，取出后清空，避免重放。
type Slot struct {
	mu      sync.Mutex
	pending *Payload
}

// Put 写入载荷，覆盖尚未处理的旧载荷，返回是否发生覆盖。
func (s *Slot) Put(p Payload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := s.pending != nil
	s.pending = &p
	return replaced
}

// Take 取出并清空载荷。
func (s *Slot) Take() (Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Payload{}, false
	}
	p := *s.pending
	s.pending = nil
	return p, true
}

// Peek 查看载荷但不清空。
func (s *Slot) Peek() (Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Payload{}, false
	}
	return *s.pending, true
}
