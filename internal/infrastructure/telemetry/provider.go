// Package telemetry exports traces, metrics and logs over OTLP and profiles over Pyroscope.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported resource.
const ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Collector is the OTLP gRPC endpoint shared by all signals.
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

func (c Collector) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// signal holds the lifecycle common to the trace, metric and log providers.
// A signal without a shutdown func is disabled.
type signal struct {
	name     string
	logger   *zap.Logger
	shutdown func(context.Context) error
	flush    func(context.Context) error

	once sync.Once
	err  error
}

func newSignal(name string, logger *zap.Logger) signal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return signal{name: name, logger: logger}
}

// IsEnabled reports whether the signal is exported.
func (s *signal) IsEnabled() bool {
	return s.shutdown != nil
}

// ForceFlush exports everything buffered so far.
func (s *signal) ForceFlush(ctx context.Context) error {
	if s.flush == nil {
		return nil
	}
	return s.flush(ctx)
}

// Shutdown flushes and stops the provider. Later calls return the first result.
func (s *signal) Shutdown(ctx context.Context) error {
	if s.shutdown == nil {
		s.logger.Debug("Telemetry signal disabled, nothing to shut down", zap.String("signal", s.name))
		return nil
	}
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := s.shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown failed", zap.String("signal", s.name), zap.Error(err))
			s.err = fmt.Errorf("failed to shutdown %s provider: %w", s.name, err)
			return
		}
		s.logger.Info("Telemetry signal stopped", zap.String("signal", s.name))
	})
	return s.err
}
