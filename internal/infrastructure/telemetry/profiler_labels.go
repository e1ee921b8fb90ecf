package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelEngine     = "pdf_engine"
	ProfilingLabelEntityType = "entity_type"
	ProfilingLabelOperation  = "operation"
)

// MaxLabelValueLength bounds label values to keep profile cardinality low.
const MaxLabelValueLength = 128

// WithProfilingLabels runs fn with pprof labels attached, so CPU and
// allocation profiles can be sliced by them in Pyroscope. Empty keys and
// values are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// RenderLabels are the profiling labels of a PDF render.
func RenderLabels(engine, entityType string) map[string]string {
	return map[string]string{
		ProfilingLabelOperation:  "render",
		ProfilingLabelEngine:     engine,
		ProfilingLabelEntityType: entityType,
	}
}

func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k != "" && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
