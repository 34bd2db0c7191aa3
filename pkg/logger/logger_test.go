package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncateForLog(t *testing.T) {
	if got := TruncateForLog("  hello world  ", 5); got != "hello..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateForLog("short", 10); got != "short" {
		t.Fatalf("unexpected value: %q", got)
	}
	if got := TruncateForLog("anything", 0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	if WithFields(nil) == nil {
		t.Fatal("expected no-op logger")
	}
}

func TestJobFieldsSkipsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := WithFields(zap.New(core), JobFields("job-1", " ")...)
	l.Info("started")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx[FieldJobID] != "job-1" {
		t.Fatalf("missing job id: %v", ctx)
	}
	if _, ok := ctx[FieldUserID]; ok {
		t.Fatalf("empty user id must be skipped: %v", ctx)
	}
}
