package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// QueryLoggerConfig tunes SQL logging. Zero values mean: warn-and-up only,
// 200ms slow threshold, record-not-found reported as an error.
type QueryLoggerConfig struct {
	// LogAllQueries emits every statement at debug level, not just slow and
	// failing ones.
	LogAllQueries bool
	SlowThreshold time.Duration
	// SkipNotFound drops gorm.ErrRecordNotFound from error logging; lookups
	// that legitimately miss (parent orders, check results) stay quiet.
	SkipNotFound bool
}

// QueryLogger bridges GORM's logger interface onto the request-scoped zap
// logger so SQL lines carry the same request fields as everything else.
type QueryLogger struct {
	cfg QueryLoggerConfig
}

func NewQueryLogger(cfg QueryLoggerConfig) *QueryLogger {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = defaultSlowQueryThreshold
	}
	return &QueryLogger{cfg: cfg}
}

// LogMode satisfies gormlogger.Interface. Session-level overrides map onto
// the two knobs this logger actually has.
func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.LogAllQueries = level >= gormlogger.Info
	return &next
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.cfg.LogAllQueries {
		l.emit(ctx, zapcore.InfoLevel, msg, data)
	}
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, zapcore.WarnLevel, msg, data)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, zapcore.ErrorLevel, msg, data)
}

// Trace reports failed statements as errors, slow statements as warnings,
// and everything else at debug when LogAllQueries is set.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	if err != nil && !(l.cfg.SkipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
		l.trace(ctx, zapcore.ErrorLevel, fc, elapsed, err)
		return
	}
	if elapsed > l.cfg.SlowThreshold {
		l.trace(ctx, zapcore.WarnLevel, fc, elapsed, nil)
		return
	}
	if l.cfg.LogAllQueries {
		l.trace(ctx, zapcore.DebugLevel, fc, elapsed, nil)
	}
}

// ParamsFilter keeps bound values out of the logs.
func (l *QueryLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	_ = ctx
	_ = params
	return sql, nil
}

func (l *QueryLogger) emit(ctx context.Context, level zapcore.Level, msg string, data []interface{}) {
	fields := []zap.Field{zap.String("component", "gorm")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *QueryLogger) trace(ctx context.Context, level zapcore.Level, fc func() (string, int64), elapsed time.Duration, err error) {
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("verb", sqlVerb(sql)),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Duration("elapsed", elapsed),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if ce := FromContext(ctx).Check(level, "sql"); ce != nil {
		ce.Write(fields...)
	}
}

// sqlVerb extracts the leading statement verb, skipping CTE prefixes.
func sqlVerb(sql string) string {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		switch strings.Trim(token, "();") {
		case "SELECT", "INSERT", "UPDATE", "DELETE", "MERGE":
			return strings.Trim(token, "();")
		}
	}
	return "OTHER"
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
