package domain

import (
	"strings"
	"testing"
)

func sampleModel() Model {
	return Model{
		Nodes: []Node{
			{ID: "n1", Name: "web-1", Type: NodeTypeVirtual, Properties: map[string]string{"p1": "prod"}},
			{ID: "n2", Name: "web-2", Type: NodeTypeVirtual},
			{ID: "n3", Name: "db-1", Type: NodeTypePhysical},
		},
		Applications: []Application{
			{ID: "a1", Name: "shop", NodeIDs: []string{"n1", "n2"}},
			{ID: "a2", Name: "billing", NodeIDs: []string{"n2"}},
		},
		MoveGroups: []MoveGroup{
			{ID: "m1", Name: "wave-1", NodeIDs: []string{"n3"}, ApplicationIDs: []string{"a1"}},
		},
		Properties: []CustomProperty{{ID: "p1", Title: "env", Values: []string{"prod", "dev"}}},
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := sampleModel()
	c := m.Clone()
	c.Applications[0].NodeIDs[0] = "changed"
	c.Nodes[0].Properties["p1"] = "dev"
	c.MoveGroups[0].ApplicationIDs = append(c.MoveGroups[0].ApplicationIDs, "a2")
	c.Properties[0].Values[0] = "staging"

	if m.Applications[0].NodeIDs[0] != "n1" {
		t.Fatalf("application members leaked into original")
	}
	if m.Nodes[0].Properties["p1"] != "prod" {
		t.Fatalf("node properties leaked into original")
	}
	if len(m.MoveGroups[0].ApplicationIDs) != 1 {
		t.Fatalf("move group leaked into original")
	}
	if m.Properties[0].Values[0] != "prod" {
		t.Fatalf("property values leaked into original")
	}
}

func TestMembershipQueries(t *testing.T) {
	m := sampleModel()
	if got := m.ApplicationsOf("n2"); len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Fatalf("unexpected applications %v", got)
	}
	if got := m.MoveGroupOf("n1"); got != "" {
		t.Fatalf("n1 has no direct move group, got %q", got)
	}
	if got := m.EffectiveMoveGroup("n1"); got != "m1" {
		t.Fatalf("n1 should inherit m1 via a1, got %q", got)
	}
	if got := m.EffectiveMoveGroup("n3"); got != "m1" {
		t.Fatalf("n3 direct member of m1, got %q", got)
	}
	g := m.MoveGroup("m1")
	if !g.Contains(&m, "n2") || !g.Contains(&m, "n3") {
		t.Fatalf("contains relation should cover direct and application members")
	}
	if m.MembershipCount() != 5 {
		t.Fatalf("unexpected membership count %d", m.MembershipCount())
	}
}

func TestValidate(t *testing.T) {
	m := sampleModel()
	if err := m.Validate(); err != nil {
		t.Fatalf("sample model should be valid: %v", err)
	}

	broken := m.Clone()
	broken.Applications[0].NodeIDs = append(broken.Applications[0].NodeIDs, "ghost")
	broken.MoveGroups = append(broken.MoveGroups, MoveGroup{ID: "m2", NodeIDs: []string{"n3"}})
	broken.Properties[0].Values = append(broken.Properties[0].Values, "prod")
	err := broken.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"ghost", "n3", "prod"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}

func TestLocalProperty(t *testing.T) {
	p := NewLocalProperty("owner")
	if !p.IsUnsaved() {
		t.Fatalf("fresh property %q should be unsaved", p.ID)
	}
	if !p.AddValue("team-a") || p.AddValue("team-a") {
		t.Fatalf("AddValue should only add distinct values")
	}
	saved := CustomProperty{ID: "42"}
	if saved.IsUnsaved() {
		t.Fatalf("server id should count as saved")
	}
}

func TestSetHelpers(t *testing.T) {
	ids, added := AddID([]string{"a"}, "a")
	if added || len(ids) != 1 {
		t.Fatalf("AddID should be idempotent")
	}
	ids, removed := RemoveID([]string{"a", "b", "c"}, "b")
	if !removed || strings.Join(ids, ",") != "a,c" {
		t.Fatalf("unexpected remove result %v", ids)
	}
}

func TestLabelPattern(t *testing.T) {
	pattern := LabelPattern([]string{LabelNode, LabelInventory})
	if pattern != ":ComputeNode:Inventory" {
		t.Fatalf("unexpected pattern %s", pattern)
	}
}
