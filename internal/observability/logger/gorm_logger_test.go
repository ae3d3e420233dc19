package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func captureQueryLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestQueryLoggerReportsFailures(t *testing.T) {
	logs := captureQueryLogs(t)
	l := NewQueryLogger(QueryLoggerConfig{})

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO service_orders VALUES (?)", 0
	}, errors.New("constraint failed"))

	entries := logs.FilterMessage("sql").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %v", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["verb"] != "INSERT" {
		t.Fatalf("expected verb INSERT, got %v", fields["verb"])
	}
}

func TestQueryLoggerSkipsNotFoundWhenConfigured(t *testing.T) {
	logs := captureQueryLogs(t)
	l := NewQueryLogger(QueryLoggerConfig{SkipNotFound: true})

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM service_orders WHERE id = ?", 0
	}, gormlogger.ErrRecordNotFound)

	if n := logs.Len(); n != 0 {
		t.Fatalf("expected no log entries, got %d", n)
	}
}

func TestQueryLoggerFlagsSlowStatements(t *testing.T) {
	logs := captureQueryLogs(t)
	l := NewQueryLogger(QueryLoggerConfig{SlowThreshold: time.Millisecond})

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM task_details", 3
	}, nil)

	entries := logs.FilterMessage("sql").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", entries[0].Level)
	}
}

func TestQueryLoggerQuietUnlessVerbose(t *testing.T) {
	logs := captureQueryLogs(t)

	quiet := NewQueryLogger(QueryLoggerConfig{})
	quiet.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	if n := logs.Len(); n != 0 {
		t.Fatalf("expected no entries from quiet logger, got %d", n)
	}

	verbose := NewQueryLogger(QueryLoggerConfig{LogAllQueries: true})
	verbose.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	entries := logs.FilterMessage("sql").All()
	if len(entries) != 1 || entries[0].Level != zapcore.DebugLevel {
		t.Fatalf("expected one debug entry, got %+v", entries)
	}
}

func TestSQLVerbSkipsCTEPrefix(t *testing.T) {
	if verb := sqlVerb("WITH recent AS (SELECT 1) SELECT * FROM recent"); verb != "SELECT" {
		t.Fatalf("expected SELECT, got %s", verb)
	}
	if verb := sqlVerb("PRAGMA foreign_keys"); verb != "OTHER" {
		t.Fatalf("expected OTHER, got %s", verb)
	}
}
