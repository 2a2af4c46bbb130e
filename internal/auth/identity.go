package auth

import (
	"github.com/google/uuid"

	"certtrack/internal/model"
)

// Identity is the resolved caller of a request. It is built only by the auth
// service's Resolve step, so an employee identity always carries a verified
// employee link. Every authorization and service call takes it as an explicit
// argument; it is never stashed in ambient state.
type Identity struct {
	AccountID  uuid.UUID
	Name       string
	Role       model.Role
	EmployeeID uuid.UUID // zero for admins
}

// IsAdmin reports whether the caller holds the admin role.
func (id *Identity) IsAdmin() bool {
	return id.Role == model.RoleAdmin
}

// NewAdminIdentity builds an admin identity.
func NewAdminIdentity(accountID uuid.UUID, name string) *Identity {
	return &Identity{AccountID: accountID, Name: name, Role: model.RoleAdmin}
}

// NewEmployeeIdentity builds an employee identity bound to its profile link.
func NewEmployeeIdentity(accountID uuid.UUID, name string, employeeID uuid.UUID) *Identity {
	return &Identity{AccountID: accountID, Name: name, Role: model.RoleEmployee, EmployeeID: employeeID}
}
