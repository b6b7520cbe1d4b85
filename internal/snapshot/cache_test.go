package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cmdbgroup/internal/domain"
)

type fakeSource struct {
	model domain.Model
	err   error
	calls int
}

func (f *fakeSource) Fetch(context.Context) (domain.Model, error) {
	f.calls++
	return f.model.Clone(), f.err
}

func baseModel() domain.Model {
	return domain.Model{
		Nodes:        []domain.Node{{ID: "n1", Name: "web-1", Type: domain.NodeTypeVirtual}},
		Applications: []domain.Application{{ID: "a1", Name: "shop", NodeIDs: []string{"n1"}}},
	}
}

func TestCacheLoadsLazily(t *testing.T) {
	src := &fakeSource{model: baseModel()}
	cache := NewCache(src, nil)
	e, err := cache.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(e.Model.Nodes) != 1 || e.Version != 1 || src.calls != 1 {
		t.Fatalf("unexpected entry %+v calls=%d", e, src.calls)
	}
	if _, err := cache.Current(context.Background()); err != nil || src.calls != 1 {
		t.Fatalf("second read must hit the cache, calls=%d", src.calls)
	}
}

func TestCacheCopyOnWrite(t *testing.T) {
	cache := NewCache(&fakeSource{model: baseModel()}, nil)
	ctx := context.Background()
	e, _ := cache.Current(ctx)
	e.Model.Nodes[0].Name = "mutated"
	again, _ := cache.Current(ctx)
	if again.Model.Nodes[0].Name != "web-1" {
		t.Fatalf("readers must not be able to modify the cached model")
	}
}

func TestCacheOptimisticMutateAndDiscard(t *testing.T) {
	src := &fakeSource{model: baseModel()}
	cache := NewCache(src, nil)
	ctx := context.Background()
	if _, err := cache.Current(ctx); err != nil {
		t.Fatalf("current: %v", err)
	}
	next := baseModel()
	next.Applications[0].NodeIDs = nil
	e, err := cache.Mutate(ctx, next, false)
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !e.Optimistic || !cache.Optimistic() || len(e.Model.Applications[0].NodeIDs) != 0 {
		t.Fatalf("optimistic entry expected, got %+v", e)
	}
	// a second optimistic write keeps the confirmed base
	next.Nodes[0].Excluded = true
	if _, err := cache.Mutate(ctx, next, false); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	back, err := cache.Discard(ctx)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if back.Optimistic || len(back.Model.Applications[0].NodeIDs) != 1 || back.Model.Nodes[0].Excluded {
		t.Fatalf("discard should restore the confirmed snapshot, got %+v", back.Model)
	}
	if src.calls != 1 {
		t.Fatalf("discard with a base must not refetch, calls=%d", src.calls)
	}
}

func TestCacheMutateWithRevalidate(t *testing.T) {
	src := &fakeSource{model: baseModel()}
	cache := NewCache(src, nil)
	next := baseModel()
	next.Nodes[0].Name = "local"
	e, err := cache.Mutate(context.Background(), next, true)
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if e.Model.Nodes[0].Name != "web-1" || e.Optimistic {
		t.Fatalf("revalidate should replace the local write with the source state, got %+v", e)
	}
}

func TestCacheRevalidateError(t *testing.T) {
	sentinel := errors.New("offline")
	cache := NewCache(&fakeSource{err: sentinel}, nil)
	if _, err := cache.Current(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestCacheRevalidateKeepsVersionWhenUnchanged(t *testing.T) {
	cache := NewCache(&fakeSource{model: baseModel()}, nil)
	ctx := context.Background()
	first, _ := cache.Current(ctx)
	if err := cache.Revalidate(ctx); err != nil {
		t.Fatalf("revalidate: %v", err)
	}
	second, _ := cache.Current(ctx)
	if first.Version != second.Version {
		t.Fatalf("unchanged snapshot should keep its version: %d vs %d", first.Version, second.Version)
	}
}

func TestStaticSourceFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	if err := WriteFile(path, baseModel()); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	src := NewStaticSource(m)
	got, _ := src.Fetch(context.Background())
	if len(got.Applications) != 1 || got.Applications[0].NodeIDs[0] != "n1" {
		t.Fatalf("unexpected model %+v", got)
	}
}
