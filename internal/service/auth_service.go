package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"certtrack/internal/auth"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

const bcryptCost = 10

// AuthService handles signup, login and identity resolution.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	// Resolve reconstructs the caller identity from validated token claims.
	// It distinguishes a vanished account from an employee account whose
	// profile link is broken; the latter is a data-integrity error and must
	// not be treated as unauthenticated.
	Resolve(ctx context.Context, claims *auth.Claims) (*auth.Identity, error)
}

type authService struct {
	users      repository.UserRepository
	employees  repository.EmployeeRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, employees repository.EmployeeRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		employees:  employees,
		jwtService: jwtService,
	}
}

// Register creates an employee-role user together with its linked employee
// record in one transaction, so no caller can ever observe an unlinked
// employee account.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", errors.ErrDuplicateEmail
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleEmployee,
	}

	err = s.users.WithTransaction(ctx, func(ctx context.Context, users repository.UserRepository, employees repository.EmployeeRepository) error {
		employee := &model.Employee{
			ID:       uuid.New(),
			Name:     name,
			Email:    email,
			JoinDate: time.Now(),
		}
		if err := employees.Create(ctx, employee); err != nil {
			return fmt.Errorf("create employee: %w", err)
		}
		user.EmployeeID = &employee.ID
		user.Employee = employee
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	token, err := s.jwtService.Generate(user.ID, user.Role, user.EmployeeID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a session token. Unknown email and
// wrong password produce the same generic error.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Generate(user.ID, user.Role, user.EmployeeID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	// Employee users get their linked profile summary in the response.
	if user.Role == model.RoleEmployee && user.EmployeeID != nil {
		if employee, err := s.employees.FindByID(ctx, *user.EmployeeID); err == nil {
			user.Employee = employee
		}
	}

	return token, user, nil
}

// Resolve loads the account behind the claims and rebuilds its identity.
func (s *authService) Resolve(ctx context.Context, claims *auth.Claims) (*auth.Identity, error) {
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, accountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUnknownAccount
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if user.Role == model.RoleAdmin {
		return auth.NewAdminIdentity(user.ID, user.Name), nil
	}

	if user.EmployeeID == nil {
		return nil, errors.ErrBrokenProfileLink
	}
	if _, err := s.employees.FindByID(ctx, *user.EmployeeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBrokenProfileLink
		}
		return nil, fmt.Errorf("load employee link: %w", err)
	}

	return auth.NewEmployeeIdentity(user.ID, user.Name, *user.EmployeeID), nil
}
