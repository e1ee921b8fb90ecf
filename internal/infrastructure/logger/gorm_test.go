package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewGormLogger(t *testing.T) {
	gl := NewGormLogger(nil, gormlogger.Warn)
	assert.Equal(t, gormlogger.Warn, gl.level)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.Equal(t, DefaultMaxSQLLength, gl.maxSQLLength)
	assert.False(t, gl.logNotFound)

	gl = NewGormLogger(nil, gormlogger.Warn,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
		WithMaxSQLLength(0))
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.True(t, gl.logNotFound)
	assert.Zero(t, gl.maxSQLLength)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)

	changed, ok := gl.LogMode(gormlogger.Info).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Info, changed.level)
	assert.Equal(t, gormlogger.Warn, gl.level)
}

func TestGormLogger_Messages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx := context.Background()

	gl.Info(ctx, "suppressed %s", "info")
	gl.Warn(ctx, "migrating %s", "print_templates")
	gl.Error(ctx, "failed %d", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "migrating print_templates", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "gorm", entries[0].LoggerName)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(ctx, time.Now(), sqlFunc(`SELECT * FROM "settings"`, 0), errors.New("connection reset"))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "SQL Error", logs.All()[0].Message)
		assert.Equal(t, `SELECT * FROM "settings"`, logs.All()[0].ContextMap()["sql"])
	})

	t.Run("record not found ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow query", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))

		gl.Trace(ctx, time.Now().Add(-time.Second), sqlFunc("SELECT * FROM entity_snapshots", 1), nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "SLOW SQL", entry.Message)
		assert.Equal(t, 10*time.Millisecond, entry.ContextMap()["threshold"])
	})

	t.Run("record not found logged when enabled", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
	})

	t.Run("long statements are truncated", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info, WithMaxSQLLength(16))

		long := `INSERT INTO "print_templates" ("body") VALUES ('<html>...</html>')`
		gl.Trace(ctx, time.Now(), sqlFunc(long, 1), nil)

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, long[:16]+"...", fields["sql"])
		assert.EqualValues(t, len(long), fields["sql_length"])
	})

	t.Run("normal query at info", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info)

		gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 1), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "SQL Query", logs.All()[0].Message)
		assert.EqualValues(t, 1, logs.All()[0].ContextMap()["rows"])
	})

	t.Run("silent", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Silent)

		gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 1), errors.New("ignored"))
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("request and trace correlation", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info)

		traced := trace.ContextWithSpanContext(ctx, validSpanContext(t))
		traced, _ = WithRequestID(traced, zap.NewNop(), "req-sql")
		gl.Trace(traced, time.Now(), sqlFunc("SELECT 1", 1), nil)

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-sql", fields["request_id"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"DEBUG":  gormlogger.Info,
		"":       gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}
