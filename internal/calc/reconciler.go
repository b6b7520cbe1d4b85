package calc

import (
	"sync"

	"go.uber.org/zap"

	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/metrics"
)

// Notifier 接收其他实体的消息，仅用于展示，不影响本实体状态。
type Notifier interface {
	Notify(msg messages.Message)
}

// Status 提供给页面判断是否需要遮罩。
type Status struct {
	State         State `json:"state"`
	IsCalculating bool  `json:"is_calculating"`
	IsSaving      bool  `json:"is_saving"`
	PendingSaves  int   `json:"pending_saves"`
}

// Options 配置对账器的回调。回调在锁外执行，可以安全地回读 Status。
type Options struct {
	EntityID   string
	Notifier   Notifier
	OnFinished func()
	OnSaved    func(messages.SaveReceipt)
	Logger     *zap.Logger
}

// Reconciler 根据轮询到的消息维护本实体的计算状态和保存状态。
type Reconciler struct {
	entityID   string
	notifier   Notifier
	onFinished func()
	onSaved    func(messages.SaveReceipt)
	logger     *zap.Logger

	mu      sync.Mutex
	state   State
	pending map[messages.SaveReceipt]struct{}
	// early 记录在 TrackSave 之前就到达的保存确认。
	early []messages.SaveReceipt
}

const maxEarlyAcks = 64

// NewReconciler 创建对账器，初始状态为 NotCalculating。
func NewReconciler(opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		entityID:   opts.EntityID,
		notifier:   opts.Notifier,
		onFinished: opts.OnFinished,
		onSaved:    opts.OnSaved,
		logger:     logger,
		pending:    make(map[messages.SaveReceipt]struct{}),
	}
}

// Begin 本地发起计算后立即进入 StartedCalculation，无需等待 started 消息。
// 已在计算中时不做任何事。
func (r *Reconciler) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == NotCalculating {
		r.setState(StartedCalculation)
	}
}

// TrackSave 记录一次保存，匹配的 changed 消息到达前 IsSaving 为 true。
func (r *Reconciler) TrackSave(receipt messages.SaveReceipt) {
	if receipt.RequestID == "" {
		return
	}
	if receipt.EntityID == "" {
		receipt.EntityID = r.entityID
	}
	r.mu.Lock()
	for i, ack := range r.early {
		if ack == receipt {
			r.early = append(r.early[:i], r.early[i+1:]...)
			onSaved := r.onSaved
			r.mu.Unlock()
			r.logger.Info("保存已确认", zap.String("request_id", receipt.RequestID), zap.String("entity_id", receipt.EntityID))
			if onSaved != nil {
				onSaved(receipt)
			}
			return
		}
	}
	r.pending[receipt] = struct{}{}
	r.mu.Unlock()
	r.logger.Debug("跟踪保存请求", zap.String("request_id", receipt.RequestID))
}

// Abort 本地发起计算失败时回到 NotCalculating，不触发完成回调。
func (r *Reconciler) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != NotCalculating {
		r.setState(NotCalculating)
	}
}

// SetOnFinished 替换计算完成回调。
func (r *Reconciler) SetOnFinished(fn func()) {
	r.mu.Lock()
	r.onFinished = fn
	r.mu.Unlock()
}

// SetOnSaved 替换保存确认回调。
func (r *Reconciler) SetOnSaved(fn func(messages.SaveReceipt)) {
	r.mu.Lock()
	r.onSaved = fn
	r.mu.Unlock()
}

// Handle 按顺序处理一批消息。
func (r *Reconciler) Handle(batch []messages.Message) {
	var (
		finished int
		saved    []messages.SaveReceipt
		foreign  []messages.Message
	)

	r.mu.Lock()
	for _, msg := range batch {
		if msg.IsChanged() && msg.Data.RequestID != "" {
			key := messages.SaveReceipt{RequestID: msg.Data.RequestID, EntityID: msg.Data.EntityID}
			if key.EntityID == "" {
				key.EntityID = r.entityID
			}
			if _, ok := r.pending[key]; ok {
				delete(r.pending, key)
				saved = append(saved, key)
				continue
			}
			r.early = append(r.early, key)
			if len(r.early) > maxEarlyAcks {
				r.early = r.early[len(r.early)-maxEarlyAcks:]
			}
			if !r.ours(msg) {
				foreign = append(foreign, msg)
			}
			continue
		}
		if !r.ours(msg) {
			foreign = append(foreign, msg)
			continue
		}
		var ev event
		switch {
		case msg.IsStarted():
			ev = evStarted
		case msg.IsFinished():
			ev = evFinished
		case msg.IsChanged():
			ev = evChanged
		default:
			continue
		}
		next, done := transition(r.state, ev)
		if next != r.state {
			r.setState(next)
		}
		if done {
			finished++
		}
	}
	onSaved, onFinished := r.onSaved, r.onFinished
	r.mu.Unlock()

	for _, receipt := range saved {
		r.logger.Info("保存已确认", zap.String("request_id", receipt.RequestID), zap.String("entity_id", receipt.EntityID))
		if onSaved != nil {
			onSaved(receipt)
		}
	}
	for i := 0; i < finished; i++ {
		metrics.CalculationEpisodes.Inc()
		r.logger.Info("计算已完成")
		if onFinished != nil {
			onFinished()
		}
	}
	if r.notifier != nil {
		for _, msg := range foreign {
			r.notifier.Notify(msg)
		}
	}
}

// ours 判断消息是否属于本实体，未携带实体 id 的消息视为本实体。
func (r *Reconciler) ours(msg messages.Message) bool {
	return r.entityID == "" || msg.Data.EntityID == "" || msg.Data.EntityID == r.entityID
}

// setState 需持有锁。
func (r *Reconciler) setState(next State) {
	r.logger.Debug("计算状态变化", zap.Stringer("from", r.state), zap.Stringer("to", next))
	r.state = next
	if next == NotCalculating {
		metrics.Calculating.Set(0)
	} else {
		metrics.Calculating.Set(1)
	}
}

// Status 返回当前状态快照。
func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		State:         r.state,
		IsCalculating: r.state != NotCalculating,
		IsSaving:      len(r.pending) > 0,
		PendingSaves:  len(r.pending),
	}
}

// Outstanding 是否有计算或保存尚未完成。
func (r *Reconciler) Outstanding() bool {
	s := r.Status()
	return s.IsCalculating || s.IsSaving
}
