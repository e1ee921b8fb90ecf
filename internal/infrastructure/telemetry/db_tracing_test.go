package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

// setupGlobalTracer installs a recording provider; otelgorm resolves its tracer globally.
func setupGlobalTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return tp, sr
}

func TestNewQueryTracing_DefaultsThreshold(t *testing.T) {
	q := NewQueryTracing(QueryTracingConfig{}, nil)
	assert.Equal(t, DefaultSlowQueryThreshold, q.cfg.SlowThreshold)
	assert.Equal(t, "pdfengine:query_tracing", q.Name())
}

func TestQueryTracing_Initialize(t *testing.T) {
	_, sr := setupGlobalTracer(t)
	db := setupTestDB(t)

	require.NoError(t, db.Use(NewQueryTracing(QueryTracingConfig{DBSystem: "sqlite"}, zap.NewNop())))

	assert.NotNil(t, db.Callback().Query().Get("pdfengine:annotate_query"))
	assert.NotNil(t, db.Callback().Create().Get("pdfengine:start_create"))

	ctx, span := otel.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "traced"}).Error)
	var found tracedRow
	require.NoError(t, db.WithContext(ctx).First(&found, "name = ?", "traced").Error)
	span.End()

	assert.Equal(t, "traced", found.Name)
	// parent plus at least one statement span
	assert.GreaterOrEqual(t, len(sr.Ended()), 2)
}

func TestQueryTracing_InitializeTwice(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Use(NewQueryTracing(QueryTracingConfig{}, nil)))
	assert.ErrorIs(t, db.Use(NewQueryTracing(QueryTracingConfig{}, nil)), gorm.ErrRegistered)
}

// statementFor returns a statement instance that started at start.
func statementFor(ctx context.Context, db *gorm.DB, start time.Time) *gorm.DB {
	tx := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx).InstanceSet(queryStartKey, start)
	tx.Statement.Table = "print_templates"
	return tx
}

func TestQueryTracing_Annotate(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupGlobalTracer(t)
	lastSpan := func() sdktrace.ReadOnlySpan { return sr.Ended()[len(sr.Ended())-1] }

	t.Run("marks slow statements and logs them", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		q := NewQueryTracing(QueryTracingConfig{SlowThreshold: time.Millisecond}, zap.New(core))

		ctx, span := tp.Tracer("test").Start(context.Background(), "slow")
		q.annotate(statementFor(ctx, db, time.Now().Add(-time.Second)))
		span.End()

		got := lastSpan()
		attrs := map[string]any{}
		for _, a := range got.Attributes() {
			attrs[string(a.Key)] = a.Value.AsInterface()
		}
		assert.Equal(t, true, attrs["db.slow_query"])
		assert.Equal(t, "print_templates", attrs["db.sql.table"])
		assert.GreaterOrEqual(t, attrs["db.query_duration_ms"], int64(1000))
		require.NotEmpty(t, got.Events())
		assert.Equal(t, "slow_query", got.Events()[0].Name)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "slow query", logs.All()[0].Message)
		assert.Equal(t, "print_templates", logs.All()[0].ContextMap()["table"])
	})

	t.Run("fast statements are not marked", func(t *testing.T) {
		q := NewQueryTracing(QueryTracingConfig{SlowThreshold: time.Hour}, nil)

		ctx, span := tp.Tracer("test").Start(context.Background(), "fast")
		q.annotate(statementFor(ctx, db, time.Now()))
		span.End()

		for _, a := range lastSpan().Attributes() {
			assert.NotEqual(t, "db.slow_query", string(a.Key))
		}
		assert.Empty(t, lastSpan().Events())
	})

	t.Run("records statement errors except not found", func(t *testing.T) {
		q := NewQueryTracing(QueryTracingConfig{SlowThreshold: time.Hour}, nil)

		ctx, span := tp.Tracer("test").Start(context.Background(), "failing")
		tx := statementFor(ctx, db, time.Now())
		tx.Error = errors.New("relation does not exist")
		q.annotate(tx)
		span.End()
		assert.Equal(t, codes.Error, lastSpan().Status().Code)

		ctx, span = tp.Tracer("test").Start(context.Background(), "missing")
		tx = statementFor(ctx, db, time.Now())
		tx.Error = gorm.ErrRecordNotFound
		q.annotate(tx)
		span.End()
		assert.Equal(t, codes.Unset, lastSpan().Status().Code)
	})

	t.Run("ignores non-recording spans", func(t *testing.T) {
		q := NewQueryTracing(QueryTracingConfig{}, nil)
		assert.NotPanics(t, func() {
			q.annotate(statementFor(context.Background(), db, time.Now().Add(-time.Hour)))
		})
	})
}
