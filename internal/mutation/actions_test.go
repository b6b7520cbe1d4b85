package mutation

import (
	"testing"
)

func TestExcludeIsIdempotentAndKeepsMembership(t *testing.T) {
	m := fixture()
	out, res := Exclude(m, []string{"n1", "n3"})
	if !res.OK() || res.Message != "Excluded 2 compute instances from calculation" {
		t.Fatalf("unexpected result %+v", res)
	}
	again, res := Exclude(out, []string{"n1"})
	if !res.OK() || res.Message != "Excluded 0 compute instances from calculation" {
		t.Fatalf("excluding twice should be a no-op, got %+v", res)
	}
	if members(again.ApplicationsOf("n1")) != "a1" || again.MoveGroupOf("n3") != "m1" {
		t.Fatalf("exclusion must not touch membership")
	}
	back, _ := Unexclude(again, []string{"n1", "ghost"})
	if back.Node("n1").Excluded || !back.Node("n3").Excluded {
		t.Fatalf("unexpected exclusion flags")
	}
	if m.Node("n1").Excluded {
		t.Fatalf("input must not be modified")
	}
}

func TestRemoveFromMoveGroup(t *testing.T) {
	out, res := RemoveFromMoveGroup(fixture(), []string{"n3", "n1"})
	if res.Message != "Removed 1 compute instance from move groups" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if out.MoveGroupOf("n3") != "" {
		t.Fatalf("n3 should be removed")
	}
	if out.EffectiveMoveGroup("n1") != "m1" {
		t.Fatalf("n1 still inherits m1 from a1")
	}
}

func TestAssignProperty(t *testing.T) {
	out, res := AssignProperty(fixture(), []string{"n3", "n4"}, "env", "dev")
	if !res.OK() || res.Message != "Set Environment = dev on 2 compute instances" {
		t.Fatalf("unexpected result %+v", res)
	}
	if out.Node("n3").Properties["env"] != "dev" {
		t.Fatalf("value should be assigned")
	}
	_, res = AssignProperty(fixture(), []string{"n3"}, "env", "qa")
	if res.OK() {
		t.Fatalf("unknown value should be rejected")
	}
}

func TestAssignEmptyValueClearsProperty(t *testing.T) {
	out, res := AssignProperty(fixture(), []string{"n1", "n3", "ghost"}, "env", "")
	if len(res.Errors) != 1 || res.Message != "Cleared Environment on 1 compute instance" {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, has := out.Node("n1").Properties["env"]; has {
		t.Fatalf("n1 value should be cleared")
	}
	if out.Node("n2").Properties["env"] != "prod" {
		t.Fatalf("unselected devices keep their value")
	}
	mustValid(t, out)
}

func TestPropertyValues(t *testing.T) {
	out, prop, res := CreateProperty(fixture(), "Owner", []string{"a", "a", " "})
	if !prop.IsUnsaved() || len(prop.Values) != 1 || len(res.Errors) != 1 {
		t.Fatalf("unexpected property %+v %v", prop, res.Errors)
	}
	out, res = AddPropertyValue(out, prop.ID, "b")
	if !res.OK() || len(out.Property(prop.ID).Values) != 2 {
		t.Fatalf("value should be added: %+v", res)
	}
	out, _ = AddPropertyValue(out, prop.ID, "b")
	if len(out.Property(prop.ID).Values) != 2 {
		t.Fatalf("values must stay distinct")
	}
	mustValid(t, out)
}

func TestCreateGroups(t *testing.T) {
	out, app, res := CreateApplication(fixture(), "new", []string{"n4", "ghost"})
	if len(res.Errors) != 1 || members(app.NodeIDs) != "n4" {
		t.Fatalf("unexpected application %+v %v", app, res.Errors)
	}
	out, group, _ := CreateMoveGroup(out, "wave-3", []string{"n3"})
	if out.MoveGroupOf("n3") != group.ID {
		t.Fatalf("n3 should move into the new group")
	}
	mustValid(t, out)
}
