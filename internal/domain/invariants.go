package domain

import (
	"errors"
	"fmt"
)

// Validate 校验快照不变量，返回所有违反项合并后的错误。
func (m *Model) Validate() error {
	var errs []error
	nodes := make(map[string]struct{}, len(m.Nodes))
	for _, n := range m.Nodes {
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, fmt.Errorf("节点 %s 重复", n.ID))
		}
		nodes[n.ID] = struct{}{}
	}
	apps := make(map[string]struct{}, len(m.Applications))
	for _, app := range m.Applications {
		apps[app.ID] = struct{}{}
		seen := make(map[string]struct{}, len(app.NodeIDs))
		for _, id := range app.NodeIDs {
			if _, ok := nodes[id]; !ok {
				errs = append(errs, fmt.Errorf("应用 %s 引用了不存在的节点 %s", app.ID, id))
			}
			if _, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("应用 %s 中节点 %s 重复", app.ID, id))
			}
			seen[id] = struct{}{}
		}
	}

	direct := make(map[string]string)
	groupOfApp := make(map[string]string)
	for _, g := range m.MoveGroups {
		seen := make(map[string]struct{}, len(g.NodeIDs))
		for _, id := range g.NodeIDs {
			if _, ok := nodes[id]; !ok {
				errs = append(errs, fmt.Errorf("迁移组 %s 引用了不存在的节点 %s", g.ID, id))
			}
			if _, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("迁移组 %s 中节点 %s 重复", g.ID, id))
			}
			seen[id] = struct{}{}
			if other, ok := direct[id]; ok {
				errs = append(errs, fmt.Errorf("节点 %s 同时属于迁移组 %s 和 %s", id, other, g.ID))
			}
			direct[id] = g.ID
		}
		for _, appID := range g.ApplicationIDs {
			if _, ok := apps[appID]; !ok {
				errs = append(errs, fmt.Errorf("迁移组 %s 引用了不存在的应用 %s", g.ID, appID))
			}
			if other, ok := groupOfApp[appID]; ok {
				errs = append(errs, fmt.Errorf("应用 %s 同时属于迁移组 %s 和 %s", appID, other, g.ID))
			}
			groupOfApp[appID] = g.ID
		}
	}

	props := make(map[string]CustomProperty, len(m.Properties))
	for _, p := range m.Properties {
		props[p.ID] = p
		seen := make(map[string]struct{}, len(p.Values))
		for _, v := range p.Values {
			if _, dup := seen[v]; dup {
				errs = append(errs, fmt.Errorf("属性 %s 的值 %q 重复", p.ID, v))
			}
			seen[v] = struct{}{}
		}
	}
	for _, n := range m.Nodes {
		for propID, value := range n.Properties {
			p, ok := props[propID]
			if !ok {
				errs = append(errs, fmt.Errorf("节点 %s 引用了不存在的属性 %s", n.ID, propID))
				continue
			}
			if !p.HasValue(value) {
				errs = append(errs, fmt.Errorf("节点 %s 的属性 %s 取值 %q 不在值集合中", n.ID, propID, value))
			}
		}
	}
	return errors.Join(errs...)
}
