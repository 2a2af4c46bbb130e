package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"certtrack/internal/auth"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

func adminIdentity() *auth.Identity {
	return auth.NewAdminIdentity(uuid.New(), "Admin")
}

func employeeIdentity(employeeID uuid.UUID) *auth.Identity {
	return auth.NewEmployeeIdentity(uuid.New(), "Employee", employeeID)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		identity *auth.Identity
		wantErr  error
	}{
		{"admin allowed", adminIdentity(), nil},
		{"employee forbidden", employeeIdentity(uuid.New()), errors.ErrForbidden},
		{"nil identity forbidden", nil, errors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAdmin(tt.identity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScopeCertifications_AdminPassesThrough(t *testing.T) {
	filter, err := ScopeCertifications(adminIdentity(), repository.CertificationFilter{})

	assert.NoError(t, err)
	assert.Nil(t, filter.EmployeeID)
}

func TestScopeCertifications_EmployeeIsForcedToOwnScope(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	// Even a filter already pointing at someone else gets overwritten.
	requested := repository.CertificationFilter{EmployeeID: &other}
	filter, err := ScopeCertifications(employeeIdentity(own), requested)

	assert.NoError(t, err)
	if assert.NotNil(t, filter.EmployeeID) {
		assert.Equal(t, own, *filter.EmployeeID)
	}
}

func TestScopeEmployeeID(t *testing.T) {
	own := uuid.New()

	scope, err := ScopeEmployeeID(adminIdentity())
	assert.NoError(t, err)
	assert.Nil(t, scope)

	scope, err = ScopeEmployeeID(employeeIdentity(own))
	assert.NoError(t, err)
	if assert.NotNil(t, scope) {
		assert.Equal(t, own, *scope)
	}

	_, err = ScopeEmployeeID(nil)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestCanAccessDocument(t *testing.T) {
	owner := uuid.New()
	cert := &model.Certification{ID: uuid.New(), EmployeeID: owner}

	tests := []struct {
		name     string
		identity *auth.Identity
		want     bool
	}{
		{"admin always allowed", adminIdentity(), true},
		{"owning employee allowed", employeeIdentity(owner), true},
		{"other employee denied", employeeIdentity(uuid.New()), false},
		{"nil identity denied", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessDocument(tt.identity, cert))
		})
	}
}

func TestCanAccessDocument_NilCertDenied(t *testing.T) {
	assert.False(t, CanAccessDocument(adminIdentity(), nil))
}
