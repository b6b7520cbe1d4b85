package ioc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/metrics"
	"cmdbgroup/pkg/logging"
)

// InitLogger 构建全局 logger。
func InitLogger(cfg app.Config) (*zap.Logger, error) {
	return logging.NewZapLogger(cfg.Log.Level)
}

// InitRegistry 构建 Prometheus 注册表并注册业务指标。
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)
	return reg
}
