package mutation

import (
	"sort"
	"strings"
	"testing"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

func fixture() domain.Model {
	return domain.Model{
		Nodes: []domain.Node{
			{ID: "n1", Name: "web-1", Type: domain.NodeTypeVirtual, Properties: map[string]string{"env": "prod"}},
			{ID: "n2", Name: "web-2", Type: domain.NodeTypeVirtual, Properties: map[string]string{"env": "prod"}},
			{ID: "n3", Name: "db-1", Type: domain.NodeTypePhysical},
			{ID: "n4", Name: "cache-1", Type: domain.NodeTypeVirtual},
		},
		Applications: []domain.Application{
			{ID: "a1", Name: "shop", NodeIDs: []string{"n1", "n2", "n3"}},
			{ID: "a2", Name: "billing"},
			{ID: "a3", Name: "search"},
		},
		MoveGroups: []domain.MoveGroup{
			{ID: "m1", Name: "wave-1", NodeIDs: []string{"n3"}, ApplicationIDs: []string{"a1"}},
			{ID: "m2", Name: "wave-2"},
		},
		Properties: []domain.CustomProperty{
			{ID: "env", Title: "Environment", Values: []string{"prod", "dev"}},
		},
	}
}

func devicePayload(target drag.Collection, targetID string, copy bool) drag.Payload {
	mode := drag.Move
	if copy {
		mode = drag.Copy
	}
	return drag.Payload{
		Source:   drag.CollectionDevice,
		Intent:   drag.Intent{Mode: mode, Source: drag.CollectionDevice},
		Target:   target,
		TargetID: targetID,
	}
}

func members(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func mustValid(t *testing.T, m domain.Model) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
}
