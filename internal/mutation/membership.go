package mutation

import "cmdbgroup/internal/domain"

func removeNodeFromApplications(m *domain.Model, nodeID string, keep string) {
	for i := range m.Applications {
		if m.Applications[i].ID == keep {
			continue
		}
		m.Applications[i].NodeIDs, _ = domain.RemoveID(m.Applications[i].NodeIDs, nodeID)
	}
}

func removeNodeFromMoveGroups(m *domain.Model, nodeID string, keep string) {
	for i := range m.MoveGroups {
		if m.MoveGroups[i].ID == keep {
			continue
		}
		m.MoveGroups[i].NodeIDs, _ = domain.RemoveID(m.MoveGroups[i].NodeIDs, nodeID)
	}
}

func removeApplicationFromMoveGroups(m *domain.Model, appID string, keep string) {
	for i := range m.MoveGroups {
		if m.MoveGroups[i].ID == keep {
			continue
		}
		m.MoveGroups[i].ApplicationIDs, _ = domain.RemoveID(m.MoveGroups[i].ApplicationIDs, appID)
	}
}

// assignNodeToMoveGroup 将节点直接分配到迁移组。复制时节点已属于其他迁移组返回 false。
func assignNodeToMoveGroup(m *domain.Model, g *domain.MoveGroup, nodeID string, isCopy bool) (current string, ok bool) {
	current = m.MoveGroupOf(nodeID)
	if current == g.ID {
		return current, true
	}
	if current != "" {
		if isCopy {
			return current, false
		}
		removeNodeFromMoveGroups(m, nodeID, g.ID)
	}
	g.NodeIDs, _ = domain.AddID(g.NodeIDs, nodeID)
	return current, true
}

func assignApplicationToMoveGroup(m *domain.Model, g *domain.MoveGroup, appID string, isCopy bool) (current string, ok bool) {
	current = m.MoveGroupOfApplication(appID)
	if current == g.ID {
		return current, true
	}
	if current != "" {
		if isCopy {
			return current, false
		}
		removeApplicationFromMoveGroups(m, appID, g.ID)
	}
	g.ApplicationIDs, _ = domain.AddID(g.ApplicationIDs, appID)
	return current, true
}
