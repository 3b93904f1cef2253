package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DomainMetrics counts validation failures, record writes, schema changes
// and cache lookups. A nil *DomainMetrics is valid and records nothing.
type DomainMetrics struct {
	validationFailures metric.Int64Counter
	recordWrites       metric.Int64Counter
	schemaChanges      metric.Int64Counter
	cacheLookups       metric.Int64Counter
}

// NewDomainMetrics creates the domain instruments on meter
func NewDomainMetrics(meter metric.Meter) (*DomainMetrics, error) {
	mb := newMetricBuilder(meter)
	m := &DomainMetrics{
		validationFailures: mb.Int64Counter("personnel_validation_failures", "Field errors reported by the validation engine"),
		recordWrites:       mb.Int64Counter("personnel_record_writes", "Employee record writes"),
		schemaChanges:      mb.Int64Counter("personnel_schema_changes", "Field definition and form mutations"),
		cacheLookups:       mb.Int64Counter("personnel_cache_lookups", "Definition cache lookups"),
	}
	if err := mb.Error(); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidationFailure counts one field error with its code
func (m *DomainMetrics) ValidationFailure(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordWrite counts an employee write (create, update, delete)
func (m *DomainMetrics) RecordWrite(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.recordWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// SchemaChange counts a registry or form mutation
func (m *DomainMetrics) SchemaChange(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.schemaChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// CacheLookup counts a cache hit or miss
func (m *DomainMetrics) CacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
