package domain

// ApplicationsOf 返回节点所属的全部应用 id，顺序与 Applications 一致。
func (m *Model) ApplicationsOf(nodeID string) []string {
	var ids []string
	for _, app := range m.Applications {
		if containsID(app.NodeIDs, nodeID) {
			ids = append(ids, app.ID)
		}
	}
	return ids
}

// MoveGroupOf 返回节点直接所属的迁移组 id，没有则返回空串。
func (m *Model) MoveGroupOf(nodeID string) string {
	for _, g := range m.MoveGroups {
		if containsID(g.NodeIDs, nodeID) {
			return g.ID
		}
	}
	return ""
}

// MoveGroupOfApplication 返回应用所属的迁移组 id。
func (m *Model) MoveGroupOfApplication(appID string) string {
	for _, g := range m.MoveGroups {
		if containsID(g.ApplicationIDs, appID) {
			return g.ID
		}
	}
	return ""
}

// EffectiveMoveGroup 计算节点的生效迁移组：直接分配优先，否则取第一个
// 已分配迁移组的所属应用。
func (m *Model) EffectiveMoveGroup(nodeID string) string {
	if id := m.MoveGroupOf(nodeID); id != "" {
		return id
	}
	for _, appID := range m.ApplicationsOf(nodeID) {
		if id := m.MoveGroupOfApplication(appID); id != "" {
			return id
		}
	}
	return ""
}

// Contains 判断迁移组是否包含节点（直接成员或经由成员应用）。
func (g MoveGroup) Contains(m *Model, nodeID string) bool {
	if containsID(g.NodeIDs, nodeID) {
		return true
	}
	for _, appID := range g.ApplicationIDs {
		if app := m.Application(appID); app != nil && containsID(app.NodeIDs, nodeID) {
			return true
		}
	}
	return false
}

// MembershipCount 统计全部成员关系条数，用于守恒校验。
func (m *Model) MembershipCount() int {
	total := 0
	for _, app := range m.Applications {
		total += len(app.NodeIDs)
	}
	for _, g := range m.MoveGroups {
		total += len(g.NodeIDs) + len(g.ApplicationIDs)
	}
	return total
}

// AddID 以集合语义追加 id，返回新切片以及是否发生变化。
func AddID(ids []string, id string) ([]string, bool) {
	if containsID(ids, id) {
		return ids, false
	}
	return append(ids, id), true
}

// RemoveID 移除 id，保持其余顺序。
func RemoveID(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			out := make([]string, 0, len(ids)-1)
			out = append(out, ids[:i]...)
			return append(out, ids[i+1:]...), true
		}
	}
	return ids, false
}

// ContainsID 判断 id 是否在集合中。
func ContainsID(ids []string, id string) bool {
	return containsID(ids, id)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
