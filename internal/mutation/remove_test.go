package mutation

import (
	"strings"
	"testing"

	"cmdbgroup/internal/domain"
)

func threeApps() domain.Model {
	m := fixture()
	m.Applications = []domain.Application{
		{ID: "A", NodeIDs: []string{"n1"}},
		{ID: "B", NodeIDs: []string{"n1"}},
		{ID: "C", NodeIDs: []string{"n1"}},
	}
	m.MoveGroups = []domain.MoveGroup{{ID: "m1", NodeIDs: []string{"n1"}, ApplicationIDs: []string{"A"}}}
	return m
}

func TestMembershipSetFunctions(t *testing.T) {
	current := []string{"A", "B", "C"}
	selected := []string{"A", "B"}
	if got := dropAll(current, selected); len(got) != 0 {
		t.Fatalf("dropAll should keep nothing, got %v", got)
	}
	if got := strings.Join(dropSelected(current, selected), ","); got != "C" {
		t.Fatalf("dropSelected should keep C, got %s", got)
	}
	if got := strings.Join(keepSelected(current, selected), ","); got != "A,B" {
		t.Fatalf("keepSelected should keep A,B, got %s", got)
	}
	if got := keepSelected(current, nil); len(got) != 0 {
		t.Fatalf("keepSelected with nothing selected keeps nothing, got %v", got)
	}
}

func TestRemoveFromAllExceptSelected(t *testing.T) {
	out, res := RemoveFromUnselectedApplications(threeApps(), []string{"n1"}, []string{"A", "B"})
	if !res.OK() {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if got := members(out.ApplicationsOf("n1")); got != "A,B" {
		t.Fatalf("node should end in A,B, got %q", got)
	}
}

func TestRemoveFromSelected(t *testing.T) {
	out, res := RemoveFromSelectedApplications(threeApps(), []string{"n1"}, []string{"A", "B"})
	if !res.OK() || res.Message != "Removed 1 compute instance from applications" {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := members(out.ApplicationsOf("n1")); got != "C" {
		t.Fatalf("node should end in C, got %q", got)
	}
}

func TestRemoveFromAllKeepsDirectMoveGroup(t *testing.T) {
	out, _ := RemoveFromAllApplications(threeApps(), []string{"n1"})
	if len(out.ApplicationsOf("n1")) != 0 {
		t.Fatalf("node should leave every application")
	}
	if out.MoveGroupOf("n1") != "m1" {
		t.Fatalf("direct move group membership must survive removal from its application")
	}
}

func TestRemoveWithEmptySelection(t *testing.T) {
	m := threeApps()
	for _, fn := range []func(domain.Model, []string, []string) (domain.Model, Result){
		RemoveFromSelectedApplications,
		RemoveFromUnselectedApplications,
	} {
		out, res := fn(m, []string{"n1"}, nil)
		if res.OK() {
			t.Fatalf("empty selection should be reported")
		}
		if got := members(out.ApplicationsOf("n1")); got != "A,B,C" {
			t.Fatalf("empty selection must not change membership, got %s", got)
		}
	}
}

func TestRemoveFromApplicationsDispatch(t *testing.T) {
	out, _ := RemoveFromApplications(threeApps(), RemoveAllExceptSelected, []string{"n1"}, []string{"C"})
	if got := members(out.ApplicationsOf("n1")); got != "C" {
		t.Fatalf("unexpected membership %s", got)
	}
	_, res := RemoveFromApplications(threeApps(), RemoveMode("some"), []string{"n1"}, nil)
	if res.OK() {
		t.Fatalf("unknown mode should be reported")
	}
}

func TestRemoveUnknownSelection(t *testing.T) {
	out, res := RemoveFromSelectedApplications(threeApps(), []string{"n1", "ghost"}, []string{"A", "Z"})
	if len(res.Errors) != 2 {
		t.Fatalf("expected errors for Z and ghost, got %v", res.Errors)
	}
	if got := members(out.ApplicationsOf("n1")); got != "B,C" {
		t.Fatalf("valid part of the selection still applies, got %s", got)
	}
}
