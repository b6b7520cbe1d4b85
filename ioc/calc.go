package ioc

import (
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/calc"
)

const notificationCapacity = 50

// InitNotificationLog 构建其他实体通知的环形记录。
func InitNotificationLog(logger *zap.Logger) *calc.NotificationLog {
	return calc.NewNotificationLog(notificationCapacity, logger.Named("notify"))
}

// InitReconciler 构建计算状态对账器，回调由 SyncFlow 挂载。
func InitReconciler(cfg app.Config, notes *calc.NotificationLog, logger *zap.Logger) *calc.Reconciler {
	return calc.NewReconciler(calc.Options{
		EntityID: cfg.Project.ID,
		Notifier: notes,
		Logger:   logger.Named("reconciler"),
	})
}

// InitPoller 构建消息轮询器。
func InitPoller(cfg app.Config, backend *Backend, rec *calc.Reconciler, logger *zap.Logger) *calc.Poller {
	return calc.NewPoller(backend.Feed, rec, calc.PollOptions{
		Busy: cfg.Poll.BusyInterval(),
		Idle: cfg.Poll.IdleInterval(),
		Mask: calc.MaskMode(cfg.Poll.Mask),
	}, logger.Named("poller"))
}
