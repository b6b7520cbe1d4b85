package ioc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"cmdbgroup/internal/app"
)

func staticConfig() app.Config {
	return app.Config{
		Project: app.Project{ID: "demo-project", Platform: "linux"},
		Source:  app.Source{Mode: app.SourceStatic, SeedFile: "../configs/seed.yaml"},
		Poll:    app.Poll{BusyMillis: 2000, IdleMillis: 5000, Mask: "both"},
	}
}

func TestStaticWiring(t *testing.T) {
	ctx := context.Background()
	cfg := staticConfig()
	logger := zap.NewNop()
	backend, cleanup, err := InitBackend(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	defer cleanup()
	if backend.Schema != nil {
		t.Fatalf("static mode has no schema store")
	}

	cache := InitCache(backend, logger)
	notes := InitNotificationLog(logger)
	rec := InitReconciler(cfg, notes, logger)
	poller := InitPoller(cfg, backend, rec, logger)
	svc := InitAppService(cfg, backend, cache, rec, notes, logger)
	engine := InitGinEngine(InitInventoryHandler(svc, logger), InitRegistry(), logger)

	entry, err := svc.Inventory(ctx)
	if err != nil || len(entry.Model.Nodes) != 4 {
		t.Fatalf("seed not loaded: %d nodes, %v", len(entry.Model.Nodes), err)
	}

	if err := poller.PollOnce(ctx); err != nil {
		t.Fatalf("create channel: %v", err)
	}
	if _, err := svc.ActionFlow.Exclude(ctx, []string{"n-web-1"}, true); err != nil {
		t.Fatalf("exclude: %v", err)
	}
	if !svc.Status().IsSaving {
		t.Fatalf("save should be pending until the ack is polled")
	}
	if err := poller.PollOnce(ctx); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if svc.Status().IsSaving {
		t.Fatalf("ack should clear the pending save")
	}

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}
}

func TestUnknownModeFails(t *testing.T) {
	cfg := staticConfig()
	cfg.Source.Mode = "ftp"
	if _, _, err := InitBackend(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRemoteBackendRequiresBaseURL(t *testing.T) {
	cfg := staticConfig()
	cfg.Source.Mode = app.SourceRemote
	if _, _, err := InitBackend(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected error without base url")
	}
}
