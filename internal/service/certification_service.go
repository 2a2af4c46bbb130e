package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"certtrack/internal/auth"
	"certtrack/internal/authz"
	"certtrack/internal/cache"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
	"certtrack/internal/storage"
)

const (
	expiringCacheTTL = 5 * time.Minute
	// DefaultUpcomingWindowDays is the dashboard's long-horizon expiry window.
	DefaultUpcomingWindowDays = 30
)

// CertificationService handles certification operations.
type CertificationService interface {
	Create(ctx context.Context, id *auth.Identity, title string, issueDate, expiryDate time.Time, employeeID uuid.UUID) (*model.Certification, error)
	List(ctx context.Context, id *auth.Identity) ([]model.Certification, error)
	// ListExpiring returns certifications expiring within the next `days`
	// days, scoped to the caller. Both window ends are inclusive.
	ListExpiring(ctx context.Context, id *auth.Identity, days int) ([]model.Certification, error)
	Delete(ctx context.Context, id *auth.Identity, certID uuid.UUID) error
	AttachDocument(ctx context.Context, id *auth.Identity, certID uuid.UUID, contentType string, body io.Reader, size int64) (*model.Certification, error)
	FetchDocument(ctx context.Context, id *auth.Identity, certID uuid.UUID) (io.ReadCloser, error)
}

type certificationService struct {
	certs     repository.CertificationRepository
	employees repository.EmployeeRepository
	documents storage.DocumentStore
	cache     *cache.Client
}

// NewCertificationService creates a new certification service.
func NewCertificationService(certs repository.CertificationRepository, employees repository.EmployeeRepository, documents storage.DocumentStore, cache *cache.Client) CertificationService {
	return &certificationService{
		certs:     certs,
		employees: employees,
		documents: documents,
		cache:     cache,
	}
}

func expiringCacheKey(days int, employeeID *uuid.UUID) string {
	if employeeID != nil {
		return fmt.Sprintf("expiring:%d:%s", days, employeeID.String())
	}
	return fmt.Sprintf("expiring:%d:all", days)
}

// Create validates and persists a new certification. Admin only; the expiry
// date may not precede the issue date, and the owning employee must exist.
func (s *certificationService) Create(ctx context.Context, id *auth.Identity, title string, issueDate, expiryDate time.Time, employeeID uuid.UUID) (*model.Certification, error) {
	if err := authz.RequireAdmin(id); err != nil {
		return nil, err
	}
	if expiryDate.Before(issueDate) {
		return nil, errors.ErrInvalidDateRange
	}
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("check employee: %w", err)
	}

	cert := &model.Certification{
		Title:      title,
		IssueDate:  issueDate,
		ExpiryDate: expiryDate,
		EmployeeID: employeeID,
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("create certification: %w", err)
	}

	s.invalidateExpiring(ctx, employeeID)
	return cert, nil
}

// List returns certifications visible to the caller: all of them for admins,
// only the caller's own for employees. The scope is applied before the store
// is queried.
func (s *certificationService) List(ctx context.Context, id *auth.Identity) ([]model.Certification, error) {
	filter, err := authz.ScopeCertifications(id, repository.CertificationFilter{})
	if err != nil {
		return nil, err
	}
	certs, err := s.certs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list certifications: %w", err)
	}
	return certs, nil
}

// ListExpiring computes the dashboard expiry window on demand, with a short
// redis cache per scope.
func (s *certificationService) ListExpiring(ctx context.Context, id *auth.Identity, days int) ([]model.Certification, error) {
	if days <= 0 {
		days = DefaultUpcomingWindowDays
	}
	filter, err := authz.ScopeCertifications(id, repository.CertificationFilter{})
	if err != nil {
		return nil, err
	}

	key := expiringCacheKey(days, filter.EmployeeID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Certification
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	now := time.Now()
	certs, err := s.certs.ListExpiringBetween(ctx, now, now.AddDate(0, 0, days), filter)
	if err != nil {
		return nil, fmt.Errorf("list expiring certifications: %w", err)
	}

	if payload, err := json.Marshal(certs); err == nil {
		_ = s.cache.Set(ctx, key, payload, expiringCacheTTL)
	}
	return certs, nil
}

// Delete removes a certification. Admin only.
func (s *certificationService) Delete(ctx context.Context, id *auth.Identity, certID uuid.UUID) error {
	if err := authz.RequireAdmin(id); err != nil {
		return err
	}

	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotFound
		}
		return fmt.Errorf("find certification: %w", err)
	}

	if err := s.certs.Delete(ctx, certID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotFound
		}
		return fmt.Errorf("delete certification: %w", err)
	}

	s.invalidateExpiring(ctx, cert.EmployeeID)
	return nil
}

// AttachDocument stores the uploaded document and records its key. Admin
// only; at most one document per certification, a re-upload replaces the key.
func (s *certificationService) AttachDocument(ctx context.Context, id *auth.Identity, certID uuid.UUID, contentType string, body io.Reader, size int64) (*model.Certification, error) {
	if err := authz.RequireAdmin(id); err != nil {
		return nil, err
	}

	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("find certification: %w", err)
	}

	key := storage.NewDocumentKey()
	if err := s.documents.Put(ctx, key, contentType, body, size); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	if err := s.certs.AttachFile(ctx, certID, key); err != nil {
		return nil, fmt.Errorf("attach document: %w", err)
	}

	cert.FileKey = key
	return cert, nil
}

// FetchDocument streams the attached document after an ownership check:
// admins always, employees only for their own certification.
func (s *certificationService) FetchDocument(ctx context.Context, id *auth.Identity, certID uuid.UUID) (io.ReadCloser, error) {
	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("find certification: %w", err)
	}
	if !authz.CanAccessDocument(id, cert) {
		return nil, errors.ErrForbidden
	}
	if cert.FileKey == "" {
		return nil, errors.ErrNotFound
	}

	reader, err := s.documents.Get(ctx, cert.FileKey)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	return reader, nil
}

// invalidateExpiring drops the default-window cache entries touched by a
// certification mutation. The short TTL bounds staleness for other windows.
func (s *certificationService) invalidateExpiring(ctx context.Context, employeeID uuid.UUID) {
	_ = s.cache.Delete(ctx,
		expiringCacheKey(DefaultUpcomingWindowDays, nil),
		expiringCacheKey(DefaultUpcomingWindowDays, &employeeID),
	)
}
