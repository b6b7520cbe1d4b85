package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCronLoggerForwardsToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewCronLogger(zap.New(core))

	l.Info("schedule", "entry", 1)
	l.Error(errors.New("boom"), "job panicked", "entry", 2)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].LoggerName != "cron" {
		t.Fatalf("unexpected info entry %+v", entries[0])
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["error"] != "boom" {
		t.Fatalf("unexpected error entry %+v", entries[1].ContextMap())
	}
}

func TestCronLoggerNilSafe(t *testing.T) {
	NewCronLogger(nil).Info("noop")
}
