package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks statements slower than this as slow
const DefaultSlowQueryThreshold = 200 * time.Millisecond

const queryStartKey = "pdfengine:query_start"

// QueryTracingConfig configures QueryTracing
type QueryTracingConfig struct {
	// IncludeVars records statement variables on spans. Development only.
	IncludeVars   bool
	SlowThreshold time.Duration
	// DBSystem names the database on spans, e.g. "postgres"
	DBSystem string
}

// QueryTracing is a gorm plugin that installs otelgorm and annotates every
// statement span with its table and slowness. Slow statements are also
// logged at warn level.
type QueryTracing struct {
	cfg    QueryTracingConfig
	logger *zap.Logger
}

var _ gorm.Plugin = (*QueryTracing)(nil)

// NewQueryTracing creates the plugin; install it with db.Use.
func NewQueryTracing(cfg QueryTracingConfig, logger *zap.Logger) *QueryTracing {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = DefaultSlowQueryThreshold
	}
	return &QueryTracing{cfg: cfg, logger: logger}
}

// Name implements gorm.Plugin
func (*QueryTracing) Name() string { return "pdfengine:query_tracing" }

type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// Initialize implements gorm.Plugin. The annotate callbacks run before
// otelgorm ends the statement span.
func (q *QueryTracing) Initialize(db *gorm.DB) error {
	var opts []otelgorm.Option
	if q.cfg.DBSystem != "" {
		opts = append(opts, otelgorm.WithDBName(q.cfg.DBSystem))
	}
	if !q.cfg.IncludeVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	steps := []struct {
		op            string
		before, after registrar
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create").Before("otel:after:create")},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query").Before("otel:after:select")},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update").Before("otel:after:update")},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete").Before("otel:after:delete")},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row").Before("otel:after:row")},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw").Before("otel:after:raw")},
	}
	for _, s := range steps {
		if err := s.before.Register("pdfengine:start_"+s.op, markStart); err != nil {
			return err
		}
		if err := s.after.Register("pdfengine:annotate_"+s.op, q.annotate); err != nil {
			return err
		}
	}

	q.logger.Info("Database tracing enabled",
		zap.Bool("include_vars", q.cfg.IncludeVars),
		zap.Duration("slow_threshold", q.cfg.SlowThreshold),
		zap.String("db_system", q.cfg.DBSystem))
	return nil
}

func markStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (q *QueryTracing) annotate(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > q.cfg.SlowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", q.cfg.SlowThreshold.Milliseconds())))
		q.logger.Warn("slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", q.cfg.SlowThreshold))
	}
}
