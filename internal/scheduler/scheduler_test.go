package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

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

// MockDispatcher is a mock notification dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)
}

func certWithEmployee(title, email string) model.Certification {
	return model.Certification{
		ID:         uuid.New(),
		Title:      title,
		IssueDate:  fixedNow().AddDate(-1, 0, 0),
		ExpiryDate: fixedNow().AddDate(0, 0, 3),
		EmployeeID: uuid.New(),
		Employee: &model.Employee{
			ID:    uuid.New(),
			Name:  "Test Employee",
			Email: email,
		},
	}
}

func newTestScheduler(certs repository.CertificationRepository, dispatcher *MockDispatcher) *Scheduler {
	s := New(certs, dispatcher, time.Hour, 7, testLogger())
	s.now = fixedNow
	return s
}

func TestRunOnce_QueriesInclusiveWindow(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	now := fixedNow()
	upper := now.AddDate(0, 0, 7)
	certRepo.On("ListExpiringBetween", mock.Anything, now, upper, repository.CertificationFilter{}).
		Return([]model.Certification{}, nil)

	report, err := s.RunOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Attempted)
	assert.Empty(t, report.Outcomes)
	certRepo.AssertExpectations(t)
}

func TestRunOnce_SendsAndClaimsBeforeDispatch(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	cert := certWithEmployee("AWS-SA", "asha@example.com")
	now := fixedNow()
	dayStart := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	certRepo.On("ListExpiringBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Certification{cert}, nil)
	certRepo.On("ClaimNotification", mock.Anything, cert.ID, now, dayStart).Return(true, nil)
	dispatcher.On("Send", mock.Anything, "asha@example.com", "Certification Expiry Reminder: AWS-SA", mock.Anything).
		Return(nil)

	report, err := s.RunOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusSent, report.Outcomes[0].Status)
	assert.Equal(t, "asha@example.com", report.Outcomes[0].Recipient)
	certRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestRunOnce_SecondRunSameDayIsIdempotent(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	cert := certWithEmployee("CKA", "tomas@example.com")

	certRepo.On("ListExpiringBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Certification{cert}, nil)
	// First claim wins, second finds the marker already set for today.
	certRepo.On("ClaimNotification", mock.Anything, cert.ID, mock.Anything, mock.Anything).
		Return(true, nil).Once()
	certRepo.On("ClaimNotification", mock.Anything, cert.ID, mock.Anything, mock.Anything).
		Return(false, nil).Once()
	dispatcher.On("Send", mock.Anything, "tomas@example.com", mock.Anything, mock.Anything).
		Return(nil).Once()

	first, err := s.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Attempted)
	assert.Equal(t, StatusSent, first.Outcomes[0].Status)

	second, err := s.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Attempted)
	assert.Equal(t, StatusSkipped, second.Outcomes[0].Status)
	assert.Equal(t, "already notified today", second.Outcomes[0].Reason)

	dispatcher.AssertNumberOfCalls(t, "Send", 1)
}

func TestRunOnce_DispatchFailureDoesNotHaltBatch(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	bad := certWithEmployee("First Aid", "bounce@example.com")
	good := certWithEmployee("CPR", "mei@example.com")

	certRepo.On("ListExpiringBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Certification{bad, good}, nil)
	certRepo.On("ClaimNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
	dispatcher.On("Send", mock.Anything, "bounce@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp: mailbox unavailable"))
	dispatcher.On("Send", mock.Anything, "mei@example.com", mock.Anything, mock.Anything).
		Return(nil)
	// The failed claim is rolled back so a later run can retry.
	certRepo.On("ReleaseNotification", mock.Anything, bad.ID, mock.Anything).Return(nil)

	report, err := s.RunOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Len(t, report.Outcomes, 2)
	assert.Equal(t, StatusFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Reason, "mailbox unavailable")
	assert.Equal(t, StatusSent, report.Outcomes[1].Status)
	certRepo.AssertCalled(t, "ReleaseNotification", mock.Anything, bad.ID, mock.Anything)
}

func TestRunOnce_MissingContactAddressIsSkippedNotFailed(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	noEmail := certWithEmployee("Forklift", "")
	orphan := certWithEmployee("Welding", "x@example.com")
	orphan.Employee = nil
	ok := certWithEmployee("Rigging", "ok@example.com")

	certRepo.On("ListExpiringBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Certification{noEmail, orphan, ok}, nil)
	certRepo.On("ClaimNotification", mock.Anything, ok.ID, mock.Anything, mock.Anything).
		Return(true, nil)
	dispatcher.On("Send", mock.Anything, "ok@example.com", mock.Anything, mock.Anything).
		Return(nil)

	report, err := s.RunOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Len(t, report.Outcomes, 3)
	assert.Equal(t, StatusSkipped, report.Outcomes[0].Status)
	assert.Equal(t, StatusSkipped, report.Outcomes[1].Status)
	assert.Equal(t, StatusSent, report.Outcomes[2].Status)
	// No claim was ever attempted for the skipped records.
	certRepo.AssertNumberOfCalls(t, "ClaimNotification", 1)
}

func TestRunOnce_StoreFailureIsRunLevel(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	certRepo.On("ListExpiringBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	report, err := s.RunOnce(context.Background())

	assert.Error(t, err)
	assert.Nil(t, report)
	dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnce_RejectsOverlappingRun(t *testing.T) {
	certRepo := new(MockCertificationRepository)
	dispatcher := new(MockDispatcher)
	s := newTestScheduler(certRepo, dispatcher)

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.RunOnce(context.Background())

	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Nil(t, report)
}
