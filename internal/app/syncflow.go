package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cmdbgroup/internal/calc"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/snapshot"
)

// SyncFlow 在没有未完成操作时用服务端快照替换本地缓存。
type SyncFlow struct {
	Cache      *snapshot.Cache
	Reconciler *calc.Reconciler
	// Committer 非空时与变更共用一把锁，避免在保存途中替换乐观快照。
	Committer *Committer
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Run 定时重新验证。仍有计算、保存或未确认的本地变更时跳过。
func (f *SyncFlow) Run(ctx context.Context) error {
	if f == nil || f.Cache == nil {
		return fmt.Errorf("sync flow 未初始化")
	}
	if f.Cache.Optimistic() {
		f.logger().Debug("存在未确认的本地变更，跳过重新验证")
		return nil
	}
	return f.Confirm(ctx)
}

// Confirm 保存或计算确认后重新验证，只在没有未完成操作时执行。
func (f *SyncFlow) Confirm(ctx context.Context) error {
	if f.Committer != nil {
		f.Committer.mu.Lock()
		defer f.Committer.mu.Unlock()
	}
	if f.Reconciler != nil && f.Reconciler.Outstanding() {
		f.logger().Debug("仍有未完成的计算或保存，跳过重新验证")
		return nil
	}
	return f.Cache.Revalidate(ctx)
}

// Attach 注册到对账器：保存确认和计算完成后自动重新验证。
func (f *SyncFlow) Attach(r *calc.Reconciler) {
	if r == nil {
		return
	}
	f.Reconciler = r
	r.SetOnSaved(func(receipt messages.SaveReceipt) {
		f.confirm("save", zap.String("request_id", receipt.RequestID))
	})
	r.SetOnFinished(func() {
		f.confirm("calculation")
	})
}

func (f *SyncFlow) confirm(reason string, fields ...zap.Field) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := f.Confirm(ctx); err != nil {
		f.logger().Warn("重新验证失败", append(fields, zap.String("reason", reason), zap.Error(err))...)
	}
}

func (f *SyncFlow) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
