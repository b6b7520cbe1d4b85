package ioc

import (
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/job"
)

// InitRevalidator 构建定时重新验证任务。
func InitRevalidator(cfg app.Config, svc *app.Service, logger *zap.Logger) *job.Revalidator {
	return job.NewRevalidator(cfg, svc, logger.Named("job"))
}
