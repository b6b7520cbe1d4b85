package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cmdbgroup/internal/calc"
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/metrics"
	"cmdbgroup/internal/mutation"
	"cmdbgroup/internal/snapshot"
	"cmdbgroup/pkg/util"
)

// Committer 串行执行变更：读取快照、乐观写入缓存、保存并跟踪保存确认。
type Committer struct {
	Cache      *snapshot.Cache
	Saver      messages.Saver
	Reconciler *calc.Reconciler
	Logger     *zap.Logger

	mu sync.Mutex
}

// Transform 由变更引擎实现，返回 error 时放弃本次变更。
type Transform func(m domain.Model) (domain.Model, mutation.Result, error)

// Apply 执行一次变更。保存失败时保留乐观状态，返回服务端原始错误。
func (c *Committer) Apply(ctx context.Context, op string, fn Transform) (mutation.Result, error) {
	if c == nil || c.Cache == nil || c.Saver == nil {
		return mutation.Result{}, fmt.Errorf("committer 依赖未注入完整")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.Cache.Current(ctx)
	if err != nil {
		return mutation.Result{}, err
	}
	next, res, err := fn(entry.Model)
	if err != nil {
		return res, err
	}
	fp, err := util.Fingerprint(next.Clone())
	if err != nil {
		return res, err
	}
	changed := fp != entry.Fingerprint
	metrics.Mutations.WithLabelValues(op, metrics.Outcome(len(res.Errors), changed)).Inc()
	if !changed {
		return res, nil
	}

	if _, err := c.Cache.Mutate(ctx, next, false); err != nil {
		return res, fmt.Errorf("更新快照失败: %w", err)
	}
	start := time.Now()
	receipt, err := c.Saver.Save(ctx, next)
	metrics.SaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SaveErrors.Inc()
		c.logger().Warn("保存失败，保留本地变更", zap.String("op", op), zap.Error(err))
		return res, err
	}
	if c.Reconciler != nil {
		c.Reconciler.TrackSave(receipt)
	}
	c.logger().Info("变更已提交",
		zap.String("op", op),
		zap.String("request_id", receipt.RequestID),
		zap.Int("errors", len(res.Errors)),
		zap.String("message", res.Message))
	return res, nil
}

func (c *Committer) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// SaveFailure 返回保存失败时的服务端状态码和原样消息。
func SaveFailure(err error) (int, string, bool) {
	var saveErr *messages.SaveError
	if errors.As(err, &saveErr) {
		return saveErr.Status, saveErr.Message, true
	}
	return 0, "", false
}
