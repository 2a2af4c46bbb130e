package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"certtrack/internal/model"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	accountID := uuid.New()
	employeeID := uuid.New()

	token, err := svc.Generate(accountID, model.RoleEmployee, &employeeID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, model.RoleEmployee, claims.Role)
	assert.Equal(t, employeeID.String(), claims.EmployeeID)
}

func TestJWTService_AdminTokenHasNoEmployeeClaim(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Generate(uuid.New(), model.RoleAdmin, nil)
	assert.NoError(t, err)

	claims, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Empty(t, claims.EmployeeID)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	svc.expiry = -time.Minute

	token, err := svc.Generate(uuid.New(), model.RoleEmployee, nil)
	assert.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("issuer-secret", time.Hour)
	verifier := NewJWTService("other-secret", time.Hour)

	token, err := issuer.Generate(uuid.New(), model.RoleEmployee, nil)
	assert.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, err := svc.Validate("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTService_DefaultsExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	assert.Equal(t, DefaultTokenExpiry, svc.expiry)
}
