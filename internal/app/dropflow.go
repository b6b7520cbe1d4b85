package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
	"cmdbgroup/internal/metrics"
	"cmdbgroup/internal/mutation"
)

var (
	// ErrDropRejected 兼容性校验拒绝的放下，调用方按静默无操作处理。
	ErrDropRejected = errors.New("drop rejected")
	// ErrInvalidPayload 载荷缺少必要字段。
	ErrInvalidPayload = errors.New("invalid drop payload")
)

// DropFlow 校验并执行一次拖放：兼容性校验 → 调用点检查 → 变更引擎 → 提交。
type DropFlow struct {
	Committer *Committer
	Logger    *zap.Logger
}

// HandleDrop 实现 grid.DropHandler。
func (f *DropFlow) HandleDrop(ctx context.Context, p drag.Payload) (mutation.Result, error) {
	return f.Run(ctx, p)
}

// Run 执行拖放。
func (f *DropFlow) Run(ctx context.Context, p drag.Payload) (mutation.Result, error) {
	if f == nil || f.Committer == nil {
		return mutation.Result{}, fmt.Errorf("drop flow 未初始化")
	}
	if err := checkPayload(p); err != nil {
		return mutation.Result{}, err
	}
	op := "drop_" + strings.ToLower(string(p.Source))
	res, err := f.Committer.Apply(ctx, op, func(m domain.Model) (domain.Model, mutation.Result, error) {
		src, dst := drag.ResolveEndpoints(&m, p)
		if !drag.CanDrop(src, dst) {
			metrics.DropsRejected.WithLabelValues(src.Category.String(), dst.Category.String()).Inc()
			if f.Logger != nil {
				f.Logger.Debug("拖放被拒绝", zap.Stringer("source", src.Category), zap.Stringer("target", dst.Category))
			}
			return m, mutation.Result{}, ErrDropRejected
		}
		if copiesToMany(p) {
			return m, mutation.Result{
				Errors:  []string{"A custom property value can only be copied to one compute instance at a time"},
				Message: "No custom property values were copied",
			}, nil
		}
		next, res := dispatch(m, p)
		return next, res, nil
	})
	return res, err
}

func checkPayload(p drag.Payload) error {
	if !p.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidPayload, p.Source)
	}
	if !p.Target.Valid() {
		return fmt.Errorf("%w: unknown target %q", ErrInvalidPayload, p.Target)
	}
	if len(p.IDs) == 0 {
		return fmt.Errorf("%w: no rows dragged", ErrInvalidPayload)
	}
	if p.Source == drag.CollectionPropertyValue && p.SourceGroup.PropertyID == "" {
		return fmt.Errorf("%w: property value drag without property", ErrInvalidPayload)
	}
	return nil
}

// copiesToMany 复制属性值到多选中的目标行属于复制到多个设备，在调用点拒绝。
func copiesToMany(p drag.Payload) bool {
	if p.Source != drag.CollectionPropertyValue || !p.Intent.IsCopy() || len(p.TargetSelection) < 2 {
		return false
	}
	return domain.ContainsID(p.TargetSelection, p.TargetID)
}

func dispatch(m domain.Model, p drag.Payload) (domain.Model, mutation.Result) {
	isCopy := p.Intent.IsCopy()
	switch p.Source {
	case drag.CollectionDevice:
		return mutation.CopyOrMoveDevices(m, p, p.IDs, isCopy)
	case drag.CollectionApplication:
		return mutation.CopyOrMoveApplications(m, p, p.IDs, isCopy)
	case drag.CollectionMoveGroup:
		return mutation.CopyOrMoveMoveGroups(m, p, p.IDs, isCopy)
	default:
		return mutation.CopyOrMoveProperties(m, p, p.IDs, isCopy)
	}
}
