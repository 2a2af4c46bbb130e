package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"certtrack/internal/auth"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// MockCertificationRepository is a mock implementation of CertificationRepository.
type MockCertificationRepository struct {
	mock.Mock
}

func (m *MockCertificationRepository) Create(ctx context.Context, cert *model.Certification) error {
	args := m.Called(ctx, cert)
	return args.Error(0)
}

func (m *MockCertificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Certification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Certification), args.Error(1)
}

func (m *MockCertificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCertificationRepository) AttachFile(ctx context.Context, id uuid.UUID, fileKey string) error {
	args := m.Called(ctx, id, fileKey)
	return args.Error(0)
}

func (m *MockCertificationRepository) List(ctx context.Context, filter repository.CertificationFilter) ([]model.Certification, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Certification), args.Error(1)
}

func (m *MockCertificationRepository) ListExpiringBetween(ctx context.Context, from, to time.Time, filter repository.CertificationFilter) ([]model.Certification, error) {
	args := m.Called(ctx, from, to, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Certification), args.Error(1)
}

func (m *MockCertificationRepository) ClaimNotification(ctx context.Context, id uuid.UUID, at, dayStart time.Time) (bool, error) {
	args := m.Called(ctx, id, at, dayStart)
	return args.Bool(0), args.Error(1)
}

func (m *MockCertificationRepository) ReleaseNotification(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockDocumentStore is a mock implementation of storage.DocumentStore.
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockDocumentStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func adminIdentity() *auth.Identity {
	return auth.NewAdminIdentity(uuid.New(), "Admin")
}

func employeeIdentity(employeeID uuid.UUID) *auth.Identity {
	return auth.NewEmployeeIdentity(uuid.New(), "Member", employeeID)
}

func TestCertificationService_Create_RejectsExpiryBeforeIssue(t *testing.T) {
	certs := new(MockCertificationRepository)
	employees := new(MockEmployeeRepository)
	svc := NewCertificationService(certs, employees, new(MockDocumentStore), nil)

	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), adminIdentity(), "AWS SAA", issue, issue.AddDate(0, 0, -1), uuid.New())

	assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
	certs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCertificationService_Create_AllowsSameDayExpiry(t *testing.T) {
	certs := new(MockCertificationRepository)
	employees := new(MockEmployeeRepository)
	svc := NewCertificationService(certs, employees, new(MockDocumentStore), nil)

	employeeID := uuid.New()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	employees.On("FindByID", mock.Anything, employeeID).
		Return(&model.Employee{ID: employeeID}, nil)
	certs.On("Create", mock.Anything, mock.AnythingOfType("*model.Certification")).Return(nil)

	cert, err := svc.Create(context.Background(), adminIdentity(), "First Aid", issue, issue, employeeID)

	assert.NoError(t, err)
	assert.Equal(t, employeeID, cert.EmployeeID)
	certs.AssertExpectations(t)
}

func TestCertificationService_Create_RequiresAdmin(t *testing.T) {
	certs := new(MockCertificationRepository)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), new(MockDocumentStore), nil)

	now := time.Now()
	_, err := svc.Create(context.Background(), employeeIdentity(uuid.New()), "AWS SAA", now, now.AddDate(1, 0, 0), uuid.New())

	assert.ErrorIs(t, err, errors.ErrForbidden)
	certs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCertificationService_Create_UnknownEmployee(t *testing.T) {
	certs := new(MockCertificationRepository)
	employees := new(MockEmployeeRepository)
	svc := NewCertificationService(certs, employees, new(MockDocumentStore), nil)

	employeeID := uuid.New()
	employees.On("FindByID", mock.Anything, employeeID).Return(nil, gorm.ErrRecordNotFound)

	now := time.Now()
	_, err := svc.Create(context.Background(), adminIdentity(), "AWS SAA", now, now.AddDate(1, 0, 0), employeeID)

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCertificationService_List_ScopesMemberToOwnRecords(t *testing.T) {
	certs := new(MockCertificationRepository)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), new(MockDocumentStore), nil)

	employeeID := uuid.New()
	certs.On("List", mock.Anything, mock.MatchedBy(func(f repository.CertificationFilter) bool {
		return f.EmployeeID != nil && *f.EmployeeID == employeeID
	})).Return([]model.Certification{{ID: uuid.New(), EmployeeID: employeeID}}, nil)

	result, err := svc.List(context.Background(), employeeIdentity(employeeID))

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	certs.AssertExpectations(t)
}

func TestCertificationService_List_AdminSeesAll(t *testing.T) {
	certs := new(MockCertificationRepository)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), new(MockDocumentStore), nil)

	certs.On("List", mock.Anything, mock.MatchedBy(func(f repository.CertificationFilter) bool {
		return f.EmployeeID == nil
	})).Return([]model.Certification{{}, {}}, nil)

	result, err := svc.List(context.Background(), adminIdentity())

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	certs.AssertExpectations(t)
}

func TestCertificationService_ListExpiring_InclusiveWindowFromDays(t *testing.T) {
	certs := new(MockCertificationRepository)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), new(MockDocumentStore), nil)

	days := 7
	certs.On("ListExpiringBetween", mock.Anything,
		mock.MatchedBy(func(from time.Time) bool { return time.Since(from) < time.Minute }),
		mock.MatchedBy(func(to time.Time) bool {
			return time.Until(to) > time.Duration(days)*24*time.Hour-time.Minute
		}),
		mock.Anything,
	).Return([]model.Certification{}, nil)

	_, err := svc.ListExpiring(context.Background(), adminIdentity(), days)

	assert.NoError(t, err)
	certs.AssertExpectations(t)
}

func TestCertificationService_FetchDocument_OwnershipCheck(t *testing.T) {
	owner := uuid.New()
	cert := &model.Certification{ID: uuid.New(), EmployeeID: owner, FileKey: "certs/2026/03/01/doc.pdf"}

	tests := []struct {
		name     string
		identity *auth.Identity
		wantErr  error
	}{
		{name: "admin can fetch any document", identity: adminIdentity()},
		{name: "owner can fetch own document", identity: employeeIdentity(owner)},
		{name: "other member is forbidden", identity: employeeIdentity(uuid.New()), wantErr: errors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certs := new(MockCertificationRepository)
			documents := new(MockDocumentStore)
			svc := NewCertificationService(certs, new(MockEmployeeRepository), documents, nil)

			certs.On("FindByID", mock.Anything, cert.ID).Return(cert, nil)
			documents.On("Get", mock.Anything, cert.FileKey).
				Return(io.NopCloser(strings.NewReader("%PDF-")), nil).Maybe()

			reader, err := svc.FetchDocument(context.Background(), tt.identity, cert.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				documents.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, reader)
			reader.Close()
		})
	}
}

func TestCertificationService_FetchDocument_NoAttachment(t *testing.T) {
	certs := new(MockCertificationRepository)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), new(MockDocumentStore), nil)

	cert := &model.Certification{ID: uuid.New(), EmployeeID: uuid.New()}
	certs.On("FindByID", mock.Anything, cert.ID).Return(cert, nil)

	_, err := svc.FetchDocument(context.Background(), adminIdentity(), cert.ID)

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCertificationService_AttachDocument_StoresBeforeRecording(t *testing.T) {
	certs := new(MockCertificationRepository)
	documents := new(MockDocumentStore)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), documents, nil)

	cert := &model.Certification{ID: uuid.New(), EmployeeID: uuid.New()}
	body := strings.NewReader("%PDF-1.7")

	certs.On("FindByID", mock.Anything, cert.ID).Return(cert, nil)
	documents.On("Put", mock.Anything, mock.AnythingOfType("string"), "application/pdf", body, int64(8)).Return(nil)
	certs.On("AttachFile", mock.Anything, cert.ID, mock.AnythingOfType("string")).Return(nil)

	updated, err := svc.AttachDocument(context.Background(), adminIdentity(), cert.ID, "application/pdf", body, 8)

	assert.NoError(t, err)
	assert.NotEmpty(t, updated.FileKey)
	certs.AssertExpectations(t)
	documents.AssertExpectations(t)
}

func TestCertificationService_Delete_RequiresAdmin(t *testing.T) {
	certs := new(MockCertificationRepository)
	svc := NewCertificationService(certs, new(MockEmployeeRepository), new(MockDocumentStore), nil)

	err := svc.Delete(context.Background(), employeeIdentity(uuid.New()), uuid.New())

	assert.ErrorIs(t, err, errors.ErrForbidden)
	certs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
