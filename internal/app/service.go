package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cmdbgroup/internal/calc"
	"cmdbgroup/internal/drag"
	"cmdbgroup/internal/grid"
	"cmdbgroup/internal/mutation"
	"cmdbgroup/internal/snapshot"
)

// Service 负责装配各个 Flow 并提供统一入口。
type Service struct {
	Cache         *snapshot.Cache
	Reconciler    *calc.Reconciler
	Notifications *calc.NotificationLog
	Grid          *grid.Coordinator
	DropFlow      *DropFlow
	ActionFlow    *ActionFlow
	RunFlow       *RunFlow
	SyncFlow      *SyncFlow
	InitFlow      *InitFlow
	logger        *zap.Logger
}

// NewService 组装 Service，grid 的放下交给 DropFlow 处理。
func NewService(cache *snapshot.Cache, rec *calc.Reconciler, notes *calc.NotificationLog, committer *Committer,
	runner *RunFlow, syncFlow *SyncFlow, initFlow *InitFlow, keys *drag.KeyState, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	dropFlow := &DropFlow{Committer: committer, Logger: logger}
	if syncFlow.Committer == nil {
		syncFlow.Committer = committer
	}
	syncFlow.Attach(rec)
	return &Service{
		Cache:         cache,
		Reconciler:    rec,
		Notifications: notes,
		Grid:          grid.NewCoordinator(keys, dropFlow, logger),
		DropFlow:      dropFlow,
		ActionFlow:    &ActionFlow{Committer: committer},
		RunFlow:       runner,
		SyncFlow:      syncFlow,
		InitFlow:      initFlow,
		logger:        logger,
	}
}

// StatusView 页面遮罩所需的状态。
type StatusView struct {
	calc.Status
	Optimistic    bool                `json:"optimistic"`
	PendingDrop   bool                `json:"pending_drop"`
	Notifications []calc.Notification `json:"notifications"`
}

// Status 汇总对账器、缓存和待处理载荷的状态。
func (s *Service) Status() StatusView {
	_, pending := s.Grid.Pending()
	view := StatusView{
		Status:      s.Reconciler.Status(),
		Optimistic:  s.Cache.Optimistic(),
		PendingDrop: pending,
	}
	if s.Notifications != nil {
		view.Notifications = s.Notifications.Recent()
	}
	return view
}

// Inventory 返回当前快照。
func (s *Service) Inventory(ctx context.Context) (snapshot.Entry, error) {
	return s.Cache.Current(ctx)
}

// Drop 记录放下并立即处理。
func (s *Service) Drop(ctx context.Context, ev grid.DropEvent) (mutation.Result, error) {
	if _, err := s.Grid.Drop(ev); err != nil {
		return mutation.Result{}, err
	}
	res, _, err := s.Grid.Flush(ctx)
	return res, err
}

// Discard 丢弃保存失败后保留的本地变更。
func (s *Service) Discard(ctx context.Context) (snapshot.Entry, error) {
	return s.Cache.Discard(ctx)
}

// Init 执行首跑初始化。
func (s *Service) Init(ctx context.Context) error {
	if s.InitFlow == nil {
		return nil
	}
	if err := s.InitFlow.Run(ctx); err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}
	return nil
}

// Close 刷新日志。
func (s *Service) Close() {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}
