package drag

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   DragInput
		want Intent
		ids  []string
	}{
		{
			name: "unselected row ignores existing selection",
			in:   DragInput{Source: CollectionDevice, RowID: "n4", SelectedIDs: []string{"n1", "n2", "n3"}},
			want: Intent{Mode: Move, Scope: SingleRow, Source: CollectionDevice},
			ids:  []string{"n4"},
		},
		{
			name: "selected row with single selection",
			in:   DragInput{Source: CollectionDevice, RowID: "n1", RowSelected: true, SelectedIDs: []string{"n1"}},
			want: Intent{Mode: Move, Scope: SingleRow, Source: CollectionDevice},
			ids:  []string{"n1"},
		},
		{
			name: "selected row with copy modifier drags whole selection",
			in:   DragInput{Source: CollectionDevice, RowID: "n2", RowSelected: true, SelectedIDs: []string{"n1", "n2", "n3"}, CopyModifier: true},
			want: Intent{Mode: Copy, Scope: SelectedRows, Source: CollectionDevice},
			ids:  []string{"n1", "n2", "n3"},
		},
		{
			name: "group header carries every leaf",
			in:   DragInput{Source: CollectionApplication, RowID: "wave-1", GroupHeader: true, LeafIDs: []string{"a1", "a2"}},
			want: Intent{Mode: Move, Scope: SelectedGroup, Source: CollectionApplication},
			ids:  []string{"a1", "a2"},
		},
		{
			name: "copy single move group",
			in:   DragInput{Source: CollectionMoveGroup, RowID: "m1", CopyModifier: true},
			want: Intent{Mode: Copy, Scope: SingleRow, Source: CollectionMoveGroup},
			ids:  []string{"m1"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			ids := DraggedIDs(tc.in, got)
			if strings.Join(ids, ",") != strings.Join(tc.ids, ",") {
				t.Fatalf("expected ids %v, got %v", tc.ids, ids)
			}
		})
	}
}

func TestIntentCrossProductIsDistinct(t *testing.T) {
	seen := make(map[string]struct{})
	for _, mode := range []Mode{Copy, Move} {
		for _, scope := range []Scope{SingleRow, SelectedRows, SelectedGroup} {
			for _, src := range []Collection{CollectionDevice, CollectionApplication, CollectionMoveGroup, CollectionPropertyValue} {
				name := Intent{Mode: mode, Scope: scope, Source: src}.String()
				if _, dup := seen[name]; dup {
					t.Fatalf("duplicate intent name %s", name)
				}
				seen[name] = struct{}{}
			}
		}
	}
	if len(seen) != 24 {
		t.Fatalf("expected 24 intents, got %d", len(seen))
	}
}

func TestGesturePromotedToCopyMidDrag(t *testing.T) {
	keys := NewKeyState("linux")
	g := Begin(DragInput{Source: CollectionDevice, RowID: "n1"}, keys)
	if g.Intent.IsCopy() {
		t.Fatalf("drag started without modifier should be a move")
	}
	keys.KeyDown(KeyControl)
	if !g.Resolve(keys).IsCopy() {
		t.Fatalf("pressing the modifier mid-drag should promote to copy")
	}
	keys.KeyUp(KeyControl)
	if g.Resolve(keys).IsCopy() {
		t.Fatalf("releasing the modifier should fall back to move")
	}
}

func TestCopyModifierPerPlatform(t *testing.T) {
	mac := NewKeyState("darwin")
	mac.KeyDown(KeyControl)
	if mac.CopyHeld() {
		t.Fatalf("Ctrl is not the copy modifier on macOS")
	}
	mac.KeyDown(KeyMeta)
	if !mac.CopyHeld() {
		t.Fatalf("Cmd should be the copy modifier on macOS")
	}
	if CopyModifierKey("windows") != KeyControl {
		t.Fatalf("Ctrl should be the copy modifier on windows")
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("Copy")); err != nil || m != Copy {
		t.Fatalf("unexpected mode %v err %v", m, err)
	}
	if err := m.UnmarshalText([]byte("Teleport")); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
