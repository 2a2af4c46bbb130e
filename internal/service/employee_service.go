package service

import (
	"context"
	"fmt"
	"time"

	"certtrack/internal/auth"
	"certtrack/internal/authz"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// EmployeeService handles employee profile operations.
type EmployeeService interface {
	Register(ctx context.Context, id *auth.Identity, name, email, department, position string, joinDate time.Time) (*model.Employee, error)
	List(ctx context.Context, id *auth.Identity) ([]model.PublicEmployee, error)
}

type employeeService struct {
	employees repository.EmployeeRepository
}

// NewEmployeeService creates a new employee service.
func NewEmployeeService(employees repository.EmployeeRepository) EmployeeService {
	return &employeeService{employees: employees}
}

// Register creates an employee record directly. Admin only.
func (s *employeeService) Register(ctx context.Context, id *auth.Identity, name, email, department, position string, joinDate time.Time) (*model.Employee, error) {
	if err := authz.RequireAdmin(id); err != nil {
		return nil, err
	}

	employee := &model.Employee{
		Name:       name,
		Email:      email,
		Department: department,
		Position:   position,
		JoinDate:   joinDate,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return employee, nil
}

// List returns the public projection of all employees. Any authenticated
// caller may see it; the raw account data never leaves the auth layer.
func (s *employeeService) List(ctx context.Context, id *auth.Identity) ([]model.PublicEmployee, error) {
	if id == nil {
		return nil, fmt.Errorf("missing identity")
	}

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	public := make([]model.PublicEmployee, 0, len(employees))
	for i := range employees {
		public = append(public, employees[i].Public())
	}
	return public, nil
}
