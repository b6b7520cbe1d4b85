package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/snapshot"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "inventory.yaml")
	m := domain.Model{
		Nodes: []domain.Node{
			{ID: "n1", Name: "web-1", Type: domain.NodeTypeVirtual},
			{ID: "n2", Name: "web-2", Type: domain.NodeTypeVirtual},
		},
		Applications: []domain.Application{{ID: "A", Name: "shop", NodeIDs: []string{"n1"}}},
	}
	if err := snapshot.WriteFile(path, m); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestClassifySelectedRows(t *testing.T) {
	out, err := run(t, "classify", "--source", "Device", "--row", "n1", "--row-selected", "--selected", "n1,n2", "--copy")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var got classifyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !got.Intent.IsCopy() || len(got.IDs) != 2 {
		t.Fatalf("unexpected classification %+v", got)
	}
}

func TestClassifyUnknownSource(t *testing.T) {
	if _, err := run(t, "classify", "--source", "Rack"); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestApplyWritesResultAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir)
	payload := filepath.Join(dir, "drop.json")
	raw := `{"source":"Device","intent":{"mode":"Move","scope":"SingleRow","source":"Device"},"ids":["n2"],"target":"Application","target_id":"A"}`
	if err := os.WriteFile(payload, []byte(raw), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	outPath := filepath.Join(dir, "next.yaml")
	out, err := run(t, "apply", "--snapshot", snap, "--payload", payload, "--out", outPath)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(out, "Moved 1 compute instance to Application shop") {
		t.Fatalf("unexpected output %q", out)
	}
	next, err := snapshot.LoadFile(outPath)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if got := next.ApplicationsOf("n2"); len(got) != 1 || got[0] != "A" {
		t.Fatalf("n2 should be in A, got %v", got)
	}
}

func TestApplyRejectedDrop(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir)
	payload := filepath.Join(dir, "drop.json")
	raw := `{"source":"Device","intent":{"mode":"Move","scope":"SingleRow","source":"Device"},"ids":["n1"],"target":"Device","target_id":"n2"}`
	if err := os.WriteFile(payload, []byte(raw), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	out, err := run(t, "apply", "--snapshot", snap, "--payload", payload)
	if err != nil || !strings.Contains(out, `"rejected": true`) {
		t.Fatalf("expected rejection, got %q %v", out, err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "validate", "--snapshot", writeSnapshot(t, dir))
	if err != nil || !strings.HasPrefix(out, "ok: 2 nodes") {
		t.Fatalf("unexpected validate output %q %v", out, err)
	}
}

func TestShowListsNodes(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "show", "--snapshot", writeSnapshot(t, dir))
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "web-1") || !strings.Contains(out, "shop") {
		t.Fatalf("unexpected table %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil || !strings.Contains(out, "dev") {
		t.Fatalf("unexpected version output %q %v", out, err)
	}
}
