package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// metricBuilder creates instruments and keeps the first error
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(meter metric.Meter) *metricBuilder {
	return &metricBuilder{meter: meter}
}

// Error returns any accumulated error
func (mb *metricBuilder) Error() error {
	return mb.err
}

// Int64Counter creates an Int64Counter metric
func (mb *metricBuilder) Int64Counter(name, desc string) metric.Int64Counter {
	if mb.err != nil {
		return nil
	}
	counter, err := mb.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		mb.err = fmt.Errorf("failed to create counter %s: %w", name, err)
		return nil
	}
	return counter
}

// Int64UpDownCounter creates an Int64UpDownCounter metric
func (mb *metricBuilder) Int64UpDownCounter(name, desc string) metric.Int64UpDownCounter {
	if mb.err != nil {
		return nil
	}
	counter, err := mb.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	if err != nil {
		mb.err = fmt.Errorf("failed to create updowncounter %s: %w", name, err)
		return nil
	}
	return counter
}

// Float64Histogram creates a Float64Histogram metric with explicit bucket boundaries
func (mb *metricBuilder) Float64Histogram(name, desc, unit string, buckets []float64) metric.Float64Histogram {
	if mb.err != nil {
		return nil
	}
	histogram, err := mb.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		mb.err = fmt.Errorf("failed to create histogram %s: %w", name, err)
		return nil
	}
	return histogram
}
