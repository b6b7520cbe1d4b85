package calc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cmdbgroup/internal/logging"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/metrics"
)

// MaskMode 决定哪种未完成状态使用短轮询间隔。
type MaskMode string

const (
	MaskCalculating MaskMode = "calculating"
	MaskSaving      MaskMode = "saving"
	MaskBoth        MaskMode = "both"
)

const (
	defaultBusyInterval = 2 * time.Second
	defaultIdleInterval = 5 * time.Second
)

// PollOptions 轮询配置。
type PollOptions struct {
	Busy time.Duration
	Idle time.Duration
	Mask MaskMode
}

// Poller 使用 cron 定时拉取消息并交给 Reconciler。
type Poller struct {
	feed   messages.Feed
	rec    *Reconciler
	logger *zap.Logger
	opts   PollOptions

	mu      sync.Mutex
	channel string
	cron    *cron.Cron
	stop    context.CancelFunc
}

// NewPoller 创建轮询器。
func NewPoller(feed messages.Feed, rec *Reconciler, opts PollOptions, logger *zap.Logger) *Poller {
	if opts.Busy <= 0 {
		opts.Busy = defaultBusyInterval
	}
	if opts.Idle <= 0 {
		opts.Idle = defaultIdleInterval
	}
	if opts.Mask == "" {
		opts.Mask = MaskBoth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{feed: feed, rec: rec, logger: logger, opts: opts}
}

// Interval 返回下一次轮询前的等待时间。
func (p *Poller) Interval() time.Duration {
	s := p.rec.Status()
	var busy bool
	switch p.opts.Mask {
	case MaskCalculating:
		busy = s.IsCalculating
	case MaskSaving:
		busy = s.IsSaving
	default:
		busy = s.IsCalculating || s.IsSaving
	}
	if busy {
		return p.opts.Busy
	}
	return p.opts.Idle
}

// adaptiveSchedule 每次调度时重新计算间隔。
type adaptiveSchedule struct {
	p *Poller
}

func (s adaptiveSchedule) Next(t time.Time) time.Time {
	return t.Add(s.p.Interval())
}

// Start 启动轮询，返回停止函数。parent 取消时自动停止。
func (p *Poller) Start(parent context.Context) context.CancelFunc {
	if p == nil {
		return func() {}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return p.stop
	}

	ctx, cancel := context.WithCancel(parent)
	cronLogger := logging.NewCronLogger(p.logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	c.Schedule(adaptiveSchedule{p: p}, cron.FuncJob(func() {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("消息轮询失败", zap.Error(err))
		}
	}))
	c.Start()
	p.cron = c
	p.logger.Info("消息轮询已启动", zap.Duration("busy", p.opts.Busy), zap.Duration("idle", p.opts.Idle), zap.String("mask", string(p.opts.Mask)))

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-c.Stop().Done()
			p.mu.Lock()
			if p.cron == c {
				p.cron = nil
				p.stop = nil
			}
			p.mu.Unlock()
			p.logger.Info("消息轮询已停止")
		})
	}
	p.stop = stop

	go func() {
		<-ctx.Done()
		stop()
	}()
	return stop
}

// Restart 停止当前轮询并重新启动，消息通道保留。
func (p *Poller) Restart(parent context.Context) context.CancelFunc {
	p.mu.Lock()
	stop := p.stop
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
	return p.Start(parent)
}

// Running 报告轮询是否在运行。
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cron != nil
}

// PollOnce 拉取一次消息。通道过期时重建通道并只重试一次。
func (p *Poller) PollOnce(ctx context.Context) error {
	channel, err := p.ensureChannel(ctx)
	if err != nil {
		metrics.PollErrors.Inc()
		return err
	}
	batch, err := p.feed.Poll(ctx, channel)
	if errors.Is(err, messages.ErrChannelNotFound) {
		metrics.ChannelRecreated.Inc()
		p.logger.Info("消息通道已过期，重新创建", zap.String("channel", channel))
		channel, err = p.recreateChannel(ctx, channel)
		if err == nil {
			batch, err = p.feed.Poll(ctx, channel)
		}
	}
	if err != nil {
		metrics.PollErrors.Inc()
		return fmt.Errorf("轮询消息失败: %w", err)
	}
	if len(batch) > 0 {
		p.logger.Debug("收到消息", zap.Int("count", len(batch)))
		p.rec.Handle(batch)
	}
	return nil
}

func (p *Poller) ensureChannel(ctx context.Context) (string, error) {
	p.mu.Lock()
	channel := p.channel
	p.mu.Unlock()
	if channel != "" {
		return channel, nil
	}
	return p.recreateChannel(ctx, "")
}

// recreateChannel 仅当当前通道仍是 stale 时才创建新通道。
func (p *Poller) recreateChannel(ctx context.Context, stale string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != stale {
		return p.channel, nil
	}
	channel, err := p.feed.CreateChannel(ctx)
	if err != nil {
		return "", fmt.Errorf("创建消息通道失败: %w", err)
	}
	p.channel = channel
	return channel, nil
}
