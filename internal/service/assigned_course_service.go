package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"certtrack/internal/auth"
	"certtrack/internal/authz"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// AssignedCourseService handles course-to-employee assignments.
type AssignedCourseService interface {
	Assign(ctx context.Context, id *auth.Identity, employeeID, courseID uuid.UUID) (*model.AssignedCourse, error)
	List(ctx context.Context, id *auth.Identity) ([]model.AssignedCourse, error)
}

type assignedCourseService struct {
	assignments repository.AssignedCourseRepository
	employees   repository.EmployeeRepository
	courses     repository.CourseRepository
}

// NewAssignedCourseService creates a new assignment service.
func NewAssignedCourseService(assignments repository.AssignedCourseRepository, employees repository.EmployeeRepository, courses repository.CourseRepository) AssignedCourseService {
	return &assignedCourseService{
		assignments: assignments,
		employees:   employees,
		courses:     courses,
	}
}

// Assign links a course to an employee. Admin only; both sides must exist and
// the pair may exist at most once.
func (s *assignedCourseService) Assign(ctx context.Context, id *auth.Identity, employeeID, courseID uuid.UUID) (*model.AssignedCourse, error) {
	if err := authz.RequireAdmin(id); err != nil {
		return nil, err
	}

	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("check employee: %w", err)
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("check course: %w", err)
	}

	if existing, err := s.assignments.FindByPair(ctx, employeeID, courseID); err == nil && existing != nil {
		return nil, errors.ErrAlreadyAssigned
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check assignment: %w", err)
	}

	assignment := &model.AssignedCourse{
		EmployeeID:   employeeID,
		CourseID:     courseID,
		AssignedDate: time.Now(),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return assignment, nil
}

// List returns assignments visible to the caller, scoped before the query.
func (s *assignedCourseService) List(ctx context.Context, id *auth.Identity) ([]model.AssignedCourse, error) {
	scope, err := authz.ScopeEmployeeID(id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
