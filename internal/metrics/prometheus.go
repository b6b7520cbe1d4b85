package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_mutations_total",
		Help: "按操作和结果统计的库存变更次数",
	}, []string{"operation", "outcome"})

	DropsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_drops_rejected_total",
		Help: "被兼容性校验拒绝的拖放",
	}, []string{"source", "target"})

	SaveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_save_duration_seconds",
		Help:    "单次保存耗时",
		Buckets: prometheus.DefBuckets,
	})

	SaveErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_save_errors_total",
		Help: "保存失败次数",
	})

	PollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_poll_errors_total",
		Help: "消息轮询失败次数",
	})

	ChannelRecreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_channel_recreated_total",
		Help: "消息通道过期后重建的次数",
	})

	CalculationEpisodes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_calculation_episodes_total",
		Help: "完成对账的计算轮次",
	})

	Calculating = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_calculating",
		Help: "当前是否处于计算中（1 为计算中）",
	})
)

// MustRegister 注册指标，可在 main 中调用。
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Mutations, DropsRejected, SaveDuration, SaveErrors, PollErrors, ChannelRecreated, CalculationEpisodes, Calculating)
}

// Outcome 将变更结果归为 ok / partial / failed。
func Outcome(errs int, changed bool) string {
	switch {
	case errs == 0:
		return "ok"
	case changed:
		return "partial"
	default:
		return "failed"
	}
}
