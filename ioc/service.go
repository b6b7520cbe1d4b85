package ioc

import (
	"time"

	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/calc"
	"cmdbgroup/internal/drag"
	"cmdbgroup/internal/snapshot"
)

// InitCache 构建快照缓存。
func InitCache(backend *Backend, logger *zap.Logger) *snapshot.Cache {
	return snapshot.NewCache(backend.Source, logger.Named("cache"))
}

// InitAppService 组装各个 Flow。
func InitAppService(cfg app.Config, backend *Backend, cache *snapshot.Cache, rec *calc.Reconciler,
	notes *calc.NotificationLog, logger *zap.Logger) *app.Service {
	committer := &app.Committer{Cache: cache, Saver: backend.Saver, Reconciler: rec, Logger: logger.Named("commit")}
	runFlow := &app.RunFlow{Runner: backend.Runner, Reconciler: rec, Logger: logger.Named("run")}
	syncFlow := &app.SyncFlow{Cache: cache, Reconciler: rec, Timeout: 30 * time.Second, Logger: logger.Named("sync")}
	initFlow := &app.InitFlow{Store: backend.Schema, SeedFile: cfg.Source.SeedFile, Logger: logger.Named("init")}
	return app.NewService(cache, rec, notes, committer, runFlow, syncFlow, initFlow,
		drag.NewKeyState(cfg.Project.Platform), logger)
}
