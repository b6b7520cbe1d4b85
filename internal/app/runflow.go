package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cmdbgroup/internal/calc"
	"cmdbgroup/internal/messages"
)

// ErrAlreadyCalculating 已有计算在进行中。
var ErrAlreadyCalculating = errors.New("calculation already in progress")

// RunFlow 触发一次计算并立即遮罩页面，完成由消息对账。
type RunFlow struct {
	Runner     messages.RunStarter
	Reconciler *calc.Reconciler
	Logger     *zap.Logger
}

// Run 触发计算。触发失败时撤销遮罩。
func (f *RunFlow) Run(ctx context.Context) error {
	if f == nil || f.Runner == nil || f.Reconciler == nil {
		return fmt.Errorf("run flow 依赖未注入完整")
	}
	if f.Reconciler.Status().IsCalculating {
		return ErrAlreadyCalculating
	}
	f.Reconciler.Begin()
	if err := f.Runner.StartRun(ctx); err != nil {
		f.Reconciler.Abort()
		return fmt.Errorf("触发计算失败: %w", err)
	}
	if f.Logger != nil {
		f.Logger.Info("计算已触发")
	}
	return nil
}
