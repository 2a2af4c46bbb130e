package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"certtrack/internal/model"
)

// CertificationFilter narrows certification queries. A nil EmployeeID means
// unscoped; the authorization layer fills it in for employee callers before
// any query runs.
type CertificationFilter struct {
	EmployeeID *uuid.UUID
}

// CertificationRepository defines certification persistence operations,
// including the reminder dedupe marker updates.
type CertificationRepository interface {
	Create(ctx context.Context, cert *model.Certification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Certification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachFile(ctx context.Context, id uuid.UUID, fileKey string) error
	List(ctx context.Context, filter CertificationFilter) ([]model.Certification, error)
	// ListExpiringBetween returns certifications whose expiry date falls in
	// [from, to], inclusive at both ends, with the owning employee preloaded.
	ListExpiringBetween(ctx context.Context, from, to time.Time, filter CertificationFilter) ([]model.Certification, error)
	// ClaimNotification atomically marks the certification as notified at the
	// given time, unless it was already marked on or after dayStart. It
	// reports whether this caller won the claim.
	ClaimNotification(ctx context.Context, id uuid.UUID, at, dayStart time.Time) (bool, error)
	// ReleaseNotification undoes a claim made at the given time so a later
	// run can retry after a failed dispatch.
	ReleaseNotification(ctx context.Context, id uuid.UUID, at time.Time) error
}

type certificationRepository struct {
	db *gorm.DB
}

// NewCertificationRepository creates a new certification repository.
func NewCertificationRepository(db *gorm.DB) CertificationRepository {
	return &certificationRepository{db: db}
}

// Create creates a new certification.
func (r *certificationRepository) Create(ctx context.Context, cert *model.Certification) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

// FindByID finds a certification by ID with its employee preloaded.
func (r *certificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Certification, error) {
	var cert model.Certification
	if err := r.db.WithContext(ctx).Preload("Employee").Where("id = ?", id).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// Delete soft-deletes a certification.
func (r *certificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Certification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AttachFile records the blob-store key of the uploaded document.
func (r *certificationRepository) AttachFile(ctx context.Context, id uuid.UUID, fileKey string) error {
	res := r.db.WithContext(ctx).Model(&model.Certification{}).
		Where("id = ?", id).
		Update("file_key", fileKey)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns certifications matching the filter, employee preloaded.
func (r *certificationRepository) List(ctx context.Context, filter CertificationFilter) ([]model.Certification, error) {
	q := r.db.WithContext(ctx).Preload("Employee")
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	var certs []model.Certification
	if err := q.Order("expiry_date").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// ListExpiringBetween returns certifications expiring inside [from, to].
func (r *certificationRepository) ListExpiringBetween(ctx context.Context, from, to time.Time, filter CertificationFilter) ([]model.Certification, error) {
	q := r.db.WithContext(ctx).Preload("Employee").
		Where("expiry_date >= ? AND expiry_date <= ?", from, to)
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	var certs []model.Certification
	if err := q.Order("expiry_date").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// ClaimNotification marks the certification notified, guarded so that two
// racing runs cannot both win the same calendar day.
func (r *certificationRepository) ClaimNotification(ctx context.Context, id uuid.UUID, at, dayStart time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Certification{}).
		Where("id = ? AND (last_notified_at IS NULL OR last_notified_at < ?)", id, dayStart).
		Update("last_notified_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseNotification clears a claim, but only if it is still ours.
func (r *certificationRepository) ReleaseNotification(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Certification{}).
		Where("id = ? AND last_notified_at = ?", id, at).
		Update("last_notified_at", nil).Error
}
