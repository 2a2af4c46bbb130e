// Package authz is the stateless authorization engine. Every function takes
// the resolved caller identity as an explicit argument and returns either a
// terminal decision or a narrowed query scope. Scope narrowing happens here,
// before any store is queried, so an employee can never observe another
// employee's records even transiently.
package authz

import (
	"github.com/google/uuid"

	"certtrack/internal/auth"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// RequireAdmin allows the operation only for admin callers.
func RequireAdmin(id *auth.Identity) error {
	if id == nil || !id.IsAdmin() {
		return errors.ErrForbidden
	}
	return nil
}

// ScopeCertifications narrows a certification query to the caller's employee
// link. Admins pass through unfiltered; employees always get their own scope
// regardless of what the request asked for.
func ScopeCertifications(id *auth.Identity, filter repository.CertificationFilter) (repository.CertificationFilter, error) {
	if id == nil {
		return filter, errors.ErrForbidden
	}
	if id.IsAdmin() {
		return filter, nil
	}
	if id.EmployeeID == uuid.Nil {
		// Identity construction should make this unreachable for employees.
		return filter, errors.ErrBrokenProfileLink
	}
	employeeID := id.EmployeeID
	filter.EmployeeID = &employeeID
	return filter, nil
}

// ScopeEmployeeID returns the employee id a listing should be narrowed to:
// nil for admins (unscoped), the caller's own link otherwise.
func ScopeEmployeeID(id *auth.Identity) (*uuid.UUID, error) {
	if id == nil {
		return nil, errors.ErrForbidden
	}
	if id.IsAdmin() {
		return nil, nil
	}
	if id.EmployeeID == uuid.Nil {
		return nil, errors.ErrBrokenProfileLink
	}
	employeeID := id.EmployeeID
	return &employeeID, nil
}

// CanAccessDocument reports whether the caller may fetch the certification's
// attached document: admins always, employees only for their own
// certifications. A missing link denies rather than errors.
func CanAccessDocument(id *auth.Identity, cert *model.Certification) bool {
	if id == nil || cert == nil {
		return false
	}
	if id.IsAdmin() {
		return true
	}
	if id.EmployeeID == uuid.Nil {
		return false
	}
	return cert.EmployeeID == id.EmployeeID
}
