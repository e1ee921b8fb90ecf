package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Render outcomes
const (
	RenderStatusSuccess = "success"
	RenderStatusError   = "error"
)

// Metric attribute keys
var (
	AttrEngine     = attribute.Key("pdf.engine")
	AttrEntityType = attribute.Key("entity_type")
	AttrStatus     = attribute.Key("status")
	AttrErrorCode  = attribute.Key("error.code")
)

var (
	// RenderDurationBuckets cover remote conversions, which take seconds rather than milliseconds.
	RenderDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

	// SizeBuckets are document sizes in bytes.
	SizeBuckets = []float64{10 << 10, 50 << 10, 100 << 10, 500 << 10, 1 << 20, 5 << 20, 20 << 20}
)

// ErrMeterNil is returned by NewRenderMetrics without a meter.
var ErrMeterNil = errors.New("render metrics: meter cannot be nil")

// RenderMetrics records PDF conversions per engine.
type RenderMetrics struct {
	logger *zap.Logger

	total    metric.Int64Counter
	duration metric.Float64Histogram
	size     metric.Float64Histogram
}

// RenderMetricsConfig holds configuration for render metrics.
type RenderMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewRenderMetrics creates the render instruments on the given meter.
func NewRenderMetrics(cfg RenderMetricsConfig) (*RenderMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	rm := &RenderMetrics{logger: cfg.Logger}
	if rm.logger == nil {
		rm.logger = zap.NewNop()
	}

	var err error
	if rm.total, err = cfg.Meter.Int64Counter("pdf_render_total",
		metric.WithDescription("Total number of PDF render attempts"),
		metric.WithUnit("{renders}"),
	); err != nil {
		return nil, fmt.Errorf("render metrics: %w", err)
	}
	if rm.duration, err = cfg.Meter.Float64Histogram("pdf_render_duration_seconds",
		metric.WithDescription("Time spent producing a PDF document"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(RenderDurationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("render metrics: %w", err)
	}
	if rm.size, err = cfg.Meter.Float64Histogram("pdf_document_size_bytes",
		metric.WithDescription("Size of rendered PDF documents"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(SizeBuckets...),
	); err != nil {
		return nil, fmt.Errorf("render metrics: %w", err)
	}
	return rm, nil
}

// RenderObservation describes one finished render attempt.
type RenderObservation struct {
	Engine     string
	EntityType string
	Duration   time.Duration
	Size       int
	ErrorCode  string // empty on success
}

// Record adds one render attempt. A nil receiver is a no-op.
func (rm *RenderMetrics) Record(ctx context.Context, o RenderObservation) {
	if rm == nil {
		return
	}

	status := RenderStatusSuccess
	if o.ErrorCode != "" {
		status = RenderStatusError
	}
	attrs := attribute.NewSet(
		AttrEngine.String(o.Engine),
		AttrEntityType.String(o.EntityType),
		AttrStatus.String(status),
	)
	rm.duration.Record(ctx, o.Duration.Seconds(), metric.WithAttributeSet(attrs))

	if status == RenderStatusError {
		rm.total.Add(ctx, 1, metric.WithAttributeSet(attrs), metric.WithAttributes(AttrErrorCode.String(o.ErrorCode)))
		rm.logger.Debug("Render failure recorded",
			zap.String("engine", o.Engine),
			zap.String("error_code", o.ErrorCode))
		return
	}
	rm.total.Add(ctx, 1, metric.WithAttributeSet(attrs))
	rm.size.Record(ctx, float64(o.Size), metric.WithAttributes(AttrEngine.String(o.Engine)))
}
