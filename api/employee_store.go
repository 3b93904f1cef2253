package api

import (
	"context"
)

// EmployeeStore persists employee records. Callers validate records before
// writing; the store enforces email uniqueness.
type EmployeeStore interface {
	// Create stores a new employee, filling ID and timestamps
	Create(ctx context.Context, employee *Employee) error
	// Get retrieves an employee by ID
	Get(ctx context.Context, id string) (*Employee, error)
	// Update overwrites the stored employee with the same ID
	Update(ctx context.Context, employee *Employee) error
	// Delete removes an employee
	Delete(ctx context.Context, id string) error
	// List returns employees newest first, with the total matching count
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
}
