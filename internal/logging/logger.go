package logging

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger 把 cron 的日志转给 zap。
type cronLogger struct {
	sugar *zap.SugaredLogger
}

// NewCronLogger 返回写入 zap 的 cron.Logger，Info 级别降为 Debug，避免每次调度都刷屏。
func NewCronLogger(logger *zap.Logger) cron.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cronLogger{sugar: logger.Named("cron").Sugar()}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
