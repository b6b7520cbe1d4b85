package job

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/logging"
)

const (
	defaultRevalidateSpec = "@every 1m"
	heartbeatSpec         = "@hourly"
)

// Revalidator 按 cron 表达式重新拉取快照，并每小时输出一次状态心跳。
type Revalidator struct {
	cronExpr string
	logger   *zap.Logger
	sync     func(context.Context) error
	status   func() app.StatusView

	mu      sync.Mutex
	cron    *cron.Cron
	parent  context.Context
	running bool
}

// NewRevalidator 根据配置构建任务，svc 为空时只保留心跳。
func NewRevalidator(cfg app.Config, svc *app.Service, logger *zap.Logger) *Revalidator {
	spec := strings.TrimSpace(cfg.Revalidate.Cron)
	if spec == "" {
		spec = defaultRevalidateSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Revalidator{cronExpr: spec, logger: logger}
	if svc != nil {
		r.status = svc.Status
		if svc.SyncFlow != nil {
			r.sync = svc.SyncFlow.Run
		}
	}
	return r
}

// Start 启动任务，返回停止函数。
func (r *Revalidator) Start(parent context.Context) context.CancelFunc {
	if r == nil {
		return func() {}
	}
	c := cron.New(cron.WithLogger(logging.NewCronLogger(r.logger)))
	id, err := c.AddFunc(r.cronExpr, r.runOnce)
	if err != nil {
		r.logger.Error("注册快照校验任务失败", zap.String("cron", r.cronExpr), zap.Error(err))
		return func() {}
	}
	if _, err := c.AddFunc(heartbeatSpec, r.heartbeat); err != nil {
		r.logger.Warn("注册心跳任务失败", zap.Error(err))
	}
	r.mu.Lock()
	r.cron = c
	r.parent = parent
	r.mu.Unlock()
	c.Start()
	r.logger.Info("快照校验任务已启动", zap.String("cron", r.cronExpr), zap.Time("next", c.Entry(id).Next))

	var once sync.Once
	stop := func() {
		once.Do(func() {
			<-c.Stop().Done()
			r.logger.Info("快照校验任务已停止")
		})
	}
	go func() {
		<-parent.Done()
		stop()
	}()
	return stop
}

func (r *Revalidator) runOnce() {
	if r.sync == nil {
		r.logger.Warn("sync function not configured")
		return
	}
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Warn("上一次校验仍在运行，跳过本次调度")
		return
	}
	r.running = true
	ctx := r.parent
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		r.logger.Info("调度上下文已取消，跳过校验")
		return
	}
	start := time.Now()
	if err := r.sync(ctx); err != nil {
		r.logger.Error("快照校验失败", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	r.logger.Debug("快照校验完成", zap.Duration("duration", time.Since(start)))
}

func (r *Revalidator) heartbeat() {
	if r.status == nil {
		r.logger.Info("hourly job heartbeat", zap.Time("timestamp", time.Now()))
		return
	}
	st := r.status()
	r.logger.Info("hourly job heartbeat",
		zap.Time("timestamp", time.Now()),
		zap.Stringer("state", st.State),
		zap.Int("pending_saves", st.PendingSaves),
		zap.Bool("optimistic", st.Optimistic))
}
