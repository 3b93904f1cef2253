package api

import (
	"context"
	"errors"
	"maps"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/internal/events"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/ericfitz/personnel/internal/telemetry"
)

// read-only keys of the employee document, ignored on input
var employeeReadOnlyKeys = []string{"id", "created_by", "created_at", "updated_at"}

const dynamicDataKey = "dynamic_data"

// EmployeeService runs every employee write through the validation engine
// against the composed schema before it reaches the store.
type EmployeeService struct {
	store     EmployeeStore
	schema    *SchemaService
	publisher events.Publisher
	metrics   *telemetry.DomainMetrics
}

// NewEmployeeService wires the employee write path. publisher and metrics may be nil.
func NewEmployeeService(store EmployeeStore, schema *SchemaService, publisher events.Publisher, metrics *telemetry.DomainMetrics) *EmployeeService {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &EmployeeService{store: store, schema: schema, publisher: publisher, metrics: metrics}
}

// flattenEmployeeInput merges a nested dynamic_data object into the top
// level and drops read-only keys. Top-level keys win over nested ones.
func flattenEmployeeInput(body map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(body))
	if nested, ok := body[dynamicDataKey]; ok && nested != nil {
		dyn, ok := nested.(map[string]any)
		if !ok {
			return nil, InvalidInputError("dynamic_data must be an object")
		}
		maps.Copy(out, dyn)
	}
	for k, v := range body {
		if k == dynamicDataKey {
			continue
		}
		out[k] = v
	}
	for _, k := range employeeReadOnlyKeys {
		delete(out, k)
	}
	return out, nil
}

// Validate checks input against the schema of source without writing
func (s *EmployeeService) Validate(ctx context.Context, source fieldschema.Source, input map[string]any) (fieldschema.Record, error) {
	rec, _, err := s.validate(ctx, source, input)
	return rec, err
}

func (s *EmployeeService) validate(ctx context.Context, source fieldschema.Source, input map[string]any) (fieldschema.Record, []fieldschema.Field, error) {
	schema, err := s.schema.Compose(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	rec, err := fieldschema.Validate(schema, input)
	if err != nil {
		var valErr *fieldschema.ValidationError
		if errors.As(err, &valErr) {
			for _, fe := range valErr.Errors {
				s.metrics.ValidationFailure(ctx, string(fe.Code))
			}
		}
		return nil, nil, err
	}
	return rec, schema, nil
}

// Get loads one employee
func (s *EmployeeService) Get(ctx context.Context, id string) (*Employee, error) {
	return s.store.Get(ctx, id)
}

// List returns a filtered page of employees
func (s *EmployeeService) List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error) {
	return s.store.List(ctx, filter)
}

// Create validates input and stores a new employee
func (s *EmployeeService) Create(ctx context.Context, source fieldschema.Source, input map[string]any, actor string) (*Employee, error) {
	rec, err := s.Validate(ctx, source, input)
	if err != nil {
		return nil, err
	}
	employee := employeeFromRecord(rec)
	employee.CreatedBy = actor
	if err := s.store.Create(ctx, &employee); err != nil {
		return nil, err
	}

	s.metrics.RecordWrite(ctx, "create")
	s.publish(ctx, events.TopicEmployeeCreated, &employee, actor)
	return &employee, nil
}

// Update applies a partial change: keys absent from changes keep their
// stored values, a null clears the value. The merged record is validated
// as a whole against the current schema.
func (s *EmployeeService) Update(ctx context.Context, source fieldschema.Source, id string, changes map[string]any, actor string) (*Employee, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := current.Record()
	for k, v := range changes {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return s.replace(ctx, source, current, merged, actor)
}

// Replace validates record as the complete new state of employee id
func (s *EmployeeService) Replace(ctx context.Context, source fieldschema.Source, id string, record map[string]any, actor string) (*Employee, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, source, current, record, actor)
}

// replace writes record over current. Stored dynamic keys that the schema
// no longer knows are kept with their stored value unless record omits them.
func (s *EmployeeService) replace(ctx context.Context, source fieldschema.Source, current *Employee, record map[string]any, actor string) (*Employee, error) {
	rec, schema, err := s.validate(ctx, source, record)
	if err != nil {
		return nil, err
	}
	employee := employeeFromRecord(rec)
	employee.ID = current.ID
	maps.Copy(employee.DynamicData, orphanedData(current.DynamicData, schema, record))

	if err := s.store.Update(ctx, &employee); err != nil {
		return nil, err
	}

	s.metrics.RecordWrite(ctx, "update")
	s.publish(ctx, events.TopicEmployeeUpdated, &employee, actor)
	return &employee, nil
}

// orphanedData returns the stored values whose keys are outside schema and
// still present in record.
func orphanedData(stored map[string]any, schema []fieldschema.Field, record map[string]any) map[string]any {
	known := make(map[string]bool, len(schema))
	for _, f := range schema {
		known[f.Name] = true
	}
	out := make(map[string]any)
	for k, v := range stored {
		if known[k] {
			continue
		}
		if _, ok := record[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Delete removes an employee. Field definitions are not affected.
func (s *EmployeeService) Delete(ctx context.Context, id string, actor string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.RecordWrite(ctx, "delete")
	s.publish(ctx, events.TopicEmployeeDeleted, &Employee{ID: id}, actor)
	return nil
}

func (s *EmployeeService) publish(ctx context.Context, topic string, e *Employee, actor string) {
	err := s.publisher.Publish(ctx, topic, events.EmployeeChanged{
		EmployeeID: e.ID,
		Department: e.Department,
		Actor:      actor,
	})
	if err != nil {
		slogging.Get().Warn("Failed to publish %s for employee %s: %v", topic, e.ID, err)
	}
}
