package mutation

import (
	"strings"
	"testing"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

func TestMoveDevicesToApplication(t *testing.T) {
	m := fixture()
	out, res := CopyOrMoveDevices(m, devicePayload(drag.CollectionApplication, "a2", false), []string{"n1", "n2", "n3"}, false)
	if !res.OK() {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if res.Message != "Moved 3 compute instances to Application billing" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if got := members(out.Application("a1").NodeIDs); got != "" {
		t.Fatalf("source application should be empty, got %s", got)
	}
	if got := members(out.Application("a2").NodeIDs); got != "n1,n2,n3" {
		t.Fatalf("unexpected target members %s", got)
	}
	if out.MembershipCount() != m.MembershipCount() {
		t.Fatalf("move must conserve memberships: %d != %d", out.MembershipCount(), m.MembershipCount())
	}
	if out.MoveGroupOf("n3") != "m1" {
		t.Fatalf("moving between applications must not touch move group membership")
	}
	if members(m.Application("a1").NodeIDs) != "n1,n2,n3" {
		t.Fatalf("input model must not be modified")
	}
	mustValid(t, out)
}

func TestCopyDevicesIsIdempotentUnion(t *testing.T) {
	m := fixture()
	p := devicePayload(drag.CollectionApplication, "a2", true)
	once, res := CopyOrMoveDevices(m, p, []string{"n1", "n4"}, true)
	if !res.OK() || res.Message != "Copied 2 compute instances to Application billing" {
		t.Fatalf("unexpected result %+v", res)
	}
	twice, _ := CopyOrMoveDevices(once, p, []string{"n1", "n4"}, true)
	if got := members(twice.Application("a2").NodeIDs); got != "n1,n4" {
		t.Fatalf("repeated copy should be idempotent, got %s", got)
	}
	if got := members(twice.Application("a1").NodeIDs); got != "n1,n2,n3" {
		t.Fatalf("copy must leave the source untouched, got %s", got)
	}
	mustValid(t, twice)
}

func TestCopyIntoApplicationKeepsMoveGroup(t *testing.T) {
	m := fixture()
	out, _ := CopyOrMoveDevices(m, devicePayload(drag.CollectionApplication, "a3", true), []string{"n3"}, true)
	if out.MoveGroupOf("n3") != "m1" {
		t.Fatalf("copying into an application must not remove the move group")
	}
}

func TestMoveDevicesPartialFailure(t *testing.T) {
	m := fixture()
	out, res := CopyOrMoveDevices(m, devicePayload(drag.CollectionApplication, "a2", false), []string{"n1", "ghost", "n4"}, false)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "ghost") {
		t.Fatalf("expected one error for ghost, got %v", res.Errors)
	}
	if res.Message != "Moved 2 compute instances to Application billing" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if got := members(out.Application("a2").NodeIDs); got != "n1,n4" {
		t.Fatalf("remaining ids should still be placed, got %s", got)
	}
}

func TestMoveDevicesToEmptyApplication(t *testing.T) {
	m := fixture()
	m.Nodes[0].Excluded = true
	out, res := CopyOrMoveDevices(m, devicePayload(drag.CollectionApplication, "", false), []string{"n1"}, false)
	if !res.OK() {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if len(out.ApplicationsOf("n1")) != 0 {
		t.Fatalf("n1 should no longer belong to any application")
	}
	if !out.Node("n1").Excluded {
		t.Fatalf("exclusion is independent of membership")
	}

	_, res = CopyOrMoveDevices(m, devicePayload(drag.CollectionApplication, "", true), []string{"n1"}, true)
	if res.OK() {
		t.Fatalf("copy to no application should be reported")
	}
}

func TestDevicesToMoveGroup(t *testing.T) {
	m := fixture()
	out, res := CopyOrMoveDevices(m, devicePayload(drag.CollectionMoveGroup, "m2", true), []string{"n3", "n4"}, true)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "wave-1") {
		t.Fatalf("copy of a node already in another move group should fail, got %v", res.Errors)
	}
	if out.MoveGroupOf("n4") != "m2" || out.MoveGroupOf("n3") != "m1" {
		t.Fatalf("unexpected move groups n4=%s n3=%s", out.MoveGroupOf("n4"), out.MoveGroupOf("n3"))
	}

	out, res = CopyOrMoveDevices(m, devicePayload(drag.CollectionMoveGroup, "m2", false), []string{"n3"}, false)
	if !res.OK() || out.MoveGroupOf("n3") != "m2" {
		t.Fatalf("move should reassign n3, got %s %v", out.MoveGroupOf("n3"), res.Errors)
	}
	if out.MembershipCount() != m.MembershipCount() {
		t.Fatalf("move must conserve memberships")
	}
	mustValid(t, out)

	out, _ = CopyOrMoveDevices(m, devicePayload(drag.CollectionMoveGroup, "", false), []string{"n3"}, false)
	if out.MoveGroupOf("n3") != "" {
		t.Fatalf("moving to empty should clear the direct move group")
	}
}

func TestCopyDeviceIntoSameMoveGroupTwice(t *testing.T) {
	m := fixture()
	p := devicePayload(drag.CollectionMoveGroup, "m1", true)
	out, _ := CopyOrMoveDevices(m, p, []string{"n1"}, true)
	out, res := CopyOrMoveDevices(out, p, []string{"n1", "n1"}, true)
	if !res.OK() {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	count := 0
	for _, id := range out.MoveGroup("m1").NodeIDs {
		if id == "n1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("node must appear in a move group at most once, got %d", count)
	}
	mustValid(t, out)
}

func TestDevicesToPropertyValue(t *testing.T) {
	m := fixture()
	p := devicePayload(drag.CollectionPropertyValue, "dev", true)
	p.TargetProperty = "env"
	out, res := CopyOrMoveDevices(m, p, []string{"n1", "n4"}, true)
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "web-1") {
		t.Fatalf("copy onto a device carrying another value should fail, got %v", res.Errors)
	}
	if out.Node("n4").Properties["env"] != "dev" || out.Node("n1").Properties["env"] != "prod" {
		t.Fatalf("unexpected property values")
	}

	p.Intent.Mode = drag.Move
	out, res = CopyOrMoveDevices(m, p, []string{"n1"}, false)
	if !res.OK() || out.Node("n1").Properties["env"] != "dev" {
		t.Fatalf("move should replace the value, got %v", res.Errors)
	}
	if res.Message != "Moved 1 compute instance to Environment = dev" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	mustValid(t, out)
}

func TestDevicesToUnsavedProperty(t *testing.T) {
	m := fixture()
	local := domain.NewLocalProperty("Owner")
	local.AddValue("team-a")
	m.Properties = append(m.Properties, local)
	p := devicePayload(drag.CollectionPropertyValue, "team-a", false)
	p.TargetProperty = local.ID
	out, res := CopyOrMoveDevices(m, p, []string{"n1"}, false)
	if res.OK() || !strings.Contains(res.Errors[0], "not been saved") {
		t.Fatalf("unsaved property must be rejected, got %v", res.Errors)
	}
	if _, ok := out.Node("n1").Properties[local.ID]; ok {
		t.Fatalf("unsaved property must not be assigned")
	}
}

func TestUnselectedDragMovesOnlyThatRow(t *testing.T) {
	m := fixture()
	in := drag.DragInput{Source: drag.CollectionDevice, RowID: "n4", SelectedIDs: []string{"n1", "n2", "n3"}}
	g := drag.Begin(in, nil)
	p := devicePayload(drag.CollectionApplication, "a2", false)
	out, res := CopyOrMoveDevices(m, p, g.IDs, g.Intent.IsCopy())
	if res.Message != "Moved 1 compute instance to Application billing" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if got := members(out.Application("a2").NodeIDs); got != "n4" {
		t.Fatalf("only the unselected row should move, got %s", got)
	}
	if got := members(out.Application("a1").NodeIDs); got != "n1,n2,n3" {
		t.Fatalf("selection must stay put, got %s", got)
	}
}

func TestCopySelectedRowsKeepsSource(t *testing.T) {
	m := fixture()
	in := drag.DragInput{Source: drag.CollectionDevice, RowID: "n2", RowSelected: true, SelectedIDs: []string{"n1", "n2", "n3"}, CopyModifier: true}
	g := drag.Begin(in, nil)
	out, res := CopyOrMoveDevices(m, devicePayload(drag.CollectionApplication, "a3", true), g.IDs, g.Intent.IsCopy())
	if res.Message != "Copied 3 compute instances to Application search" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if got := members(out.Application("a1").NodeIDs); got != "n1,n2,n3" {
		t.Fatalf("copy must not remove from source, got %s", got)
	}
	if got := members(out.Application("a3").NodeIDs); got != "n1,n2,n3" {
		t.Fatalf("all selected rows should be copied, got %s", got)
	}
}

func TestWrongSourcePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("routing an application payload to the device handler should panic")
		}
	}()
	p := devicePayload(drag.CollectionApplication, "a1", false)
	p.Source = drag.CollectionApplication
	CopyOrMoveDevices(fixture(), p, []string{"n1"}, false)
}
