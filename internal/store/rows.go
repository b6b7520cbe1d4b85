package store

import (
	"time"

	"cmdbgroup/internal/domain"
)

// BuildRows 把库存快照展开为图节点与关系。位置属性保存成员顺序。
func BuildRows(projectID string, m domain.Model, now time.Time) ([]domain.NodeRow, []domain.RelRow) {
	nodeKey := func(id string) string { return domain.MakeKey(projectID, domain.PrefixNode, id) }
	appKey := func(id string) string { return domain.MakeKey(projectID, domain.PrefixApplication, id) }
	mgKey := func(id string) string { return domain.MakeKey(projectID, domain.PrefixMoveGroup, id) }
	propKey := func(id string) string { return domain.MakeKey(projectID, domain.PrefixProperty, id) }

	nodes := make([]domain.NodeRow, 0, len(m.Nodes)+len(m.Applications)+len(m.MoveGroups)+len(m.Properties))
	var rels []domain.RelRow

	row := func(key, label string, props map[string]any) domain.NodeRow {
		return domain.NodeRow{Key: key, Labels: []string{label}, Properties: props, ProjectID: projectID, UpdatedAt: now}
	}
	rel := func(start, end, typ string, props map[string]any) domain.RelRow {
		return domain.RelRow{StartKey: start, EndKey: end, Type: typ, Properties: props, ProjectID: projectID}
	}

	for i, n := range m.Nodes {
		nodes = append(nodes, row(nodeKey(n.ID), domain.LabelNode, map[string]any{
			"raw_id":   n.ID,
			"name":     n.Name,
			"type":     string(n.Type),
			"ips":      append([]string{}, n.IPs...),
			"excluded": n.Excluded,
			"position": i,
		}))
		for propID, value := range n.Properties {
			rels = append(rels, rel(nodeKey(n.ID), propKey(propID), domain.RelHasValue, map[string]any{"value": value}))
		}
	}
	for i, a := range m.Applications {
		nodes = append(nodes, row(appKey(a.ID), domain.LabelApplication, map[string]any{
			"raw_id":   a.ID,
			"name":     a.Name,
			"position": i,
		}))
		for pos, id := range a.NodeIDs {
			rels = append(rels, rel(nodeKey(id), appKey(a.ID), domain.RelMemberOf, map[string]any{"position": pos}))
		}
	}
	for i, g := range m.MoveGroups {
		nodes = append(nodes, row(mgKey(g.ID), domain.LabelMoveGroup, map[string]any{
			"raw_id":   g.ID,
			"name":     g.Name,
			"position": i,
		}))
		for pos, id := range g.NodeIDs {
			rels = append(rels, rel(nodeKey(id), mgKey(g.ID), domain.RelInMoveGroup, map[string]any{"position": pos}))
		}
		for pos, id := range g.ApplicationIDs {
			rels = append(rels, rel(appKey(id), mgKey(g.ID), domain.RelInMoveGroup, map[string]any{"position": pos}))
		}
	}
	for i, p := range m.Properties {
		nodes = append(nodes, row(propKey(p.ID), domain.LabelProperty, map[string]any{
			"raw_id":   p.ID,
			"title":    p.Title,
			"values":   append([]string{}, p.Values...),
			"position": i,
		}))
	}
	return nodes, rels
}
