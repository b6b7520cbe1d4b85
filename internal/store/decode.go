package store

import (
	"fmt"

	"cmdbgroup/internal/domain"
)

func decodeModel(nodeRecs, appRecs, mgRecs, propRecs, valueRecs []map[string]any) domain.Model {
	m := domain.Model{
		Nodes:        make([]domain.Node, 0, len(nodeRecs)),
		Applications: make([]domain.Application, 0, len(appRecs)),
		MoveGroups:   make([]domain.MoveGroup, 0, len(mgRecs)),
		Properties:   make([]domain.CustomProperty, 0, len(propRecs)),
	}
	index := make(map[string]int, len(nodeRecs))
	for _, r := range nodeRecs {
		n := domain.Node{
			ID:       asString(r["id"]),
			Name:     asString(r["name"]),
			Type:     domain.NodeType(asString(r["type"])),
			IPs:      asStrings(r["ips"]),
			Excluded: asBool(r["excluded"]),
		}
		if n.Type == "" {
			n.Type = domain.NodeTypeUnknown
		}
		index[n.ID] = len(m.Nodes)
		m.Nodes = append(m.Nodes, n)
	}
	for _, r := range appRecs {
		m.Applications = append(m.Applications, domain.Application{
			ID:      asString(r["id"]),
			Name:    asString(r["name"]),
			NodeIDs: asStrings(r["node_ids"]),
		})
	}
	for _, r := range mgRecs {
		m.MoveGroups = append(m.MoveGroups, domain.MoveGroup{
			ID:             asString(r["id"]),
			Name:           asString(r["name"]),
			NodeIDs:        asStrings(r["node_ids"]),
			ApplicationIDs: asStrings(r["group_ids"]),
		})
	}
	for _, r := range propRecs {
		m.Properties = append(m.Properties, domain.CustomProperty{
			ID:     asString(r["id"]),
			Title:  asString(r["title"]),
			Values: asStrings(r["values"]),
		})
	}
	for _, r := range valueRecs {
		i, ok := index[asString(r["node_id"])]
		if !ok {
			continue
		}
		n := &m.Nodes[i]
		if n.Properties == nil {
			n.Properties = make(map[string]string)
		}
		n.Properties[asString(r["property_id"])] = asString(r["value"])
	}
	return m
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// asStrings 兼容驱动返回的 []any，跳过 nil 元素。
func asStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, asString(item))
		}
		return out
	default:
		return nil
	}
}
