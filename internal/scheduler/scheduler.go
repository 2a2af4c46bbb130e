// Package scheduler runs the recurring expiry-reminder job: find
// certifications expiring inside the notify window, resolve each to its
// employee's contact address, and dispatch one reminder per certification at
// most once per calendar day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"certtrack/internal/mailer"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// ErrRunInProgress is returned when a run is requested while another is still
// executing. Runs never overlap within one instance.
var ErrRunInProgress = errors.New("reminder run already in progress")

// OutcomeStatus classifies one per-recipient delivery attempt.
type OutcomeStatus string

const (
	StatusSent    OutcomeStatus = "sent"
	StatusFailed  OutcomeStatus = "failed"
	StatusSkipped OutcomeStatus = "skipped"
)

// Outcome records one attempted delivery. Outcomes are ephemeral: produced
// fresh every run, never persisted.
type Outcome struct {
	CertificationID uuid.UUID     `json:"certification_id"`
	Title           string        `json:"title"`
	Recipient       string        `json:"recipient,omitempty"`
	Subject         string        `json:"subject,omitempty"`
	Status          OutcomeStatus `json:"status"`
	Reason          string        `json:"reason,omitempty"`
}

// Report aggregates one run. Every certification the run touched appears in
// Outcomes exactly once; Attempted counts actual dispatch attempts (sent or
// failed, not skipped).
type Report struct {
	RanAt      time.Time `json:"ran_at"`
	WindowDays int       `json:"window_days"`
	Attempted  int       `json:"attempted"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Scheduler drives the periodic reminder job.
type Scheduler struct {
	certs      repository.CertificationRepository
	dispatcher mailer.Dispatcher
	interval   time.Duration
	windowDays int
	log        *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

// New creates a scheduler. interval is how often the job fires (production
// default is daily); windowDays is the notify horizon.
func New(certs repository.CertificationRepository, dispatcher mailer.Dispatcher, interval time.Duration, windowDays int, log *slog.Logger) *Scheduler {
	return &Scheduler{
		certs:      certs,
		dispatcher: dispatcher,
		interval:   interval,
		windowDays: windowDays,
		log:        log,
		now:        time.Now,
	}
}

// Run executes the job once immediately, then on every tick until the context
// is canceled. An in-flight run is drained rather than abandoned on shutdown.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("reminder scheduler started",
		"interval", s.interval.String(),
		"window_days", s.windowDays,
	)

	for {
		if report, err := s.RunOnce(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Error("reminder run failed", "error", err)
			}
		} else {
			s.log.Info("reminder run finished",
				"attempted", report.Attempted,
				"outcomes", len(report.Outcomes),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single reminder pass and returns its report. Only one
// run may execute at a time; a concurrent request (timer tick racing a manual
// trigger) gets ErrRunInProgress instead of a duplicate pass.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	now := s.now()
	upper := now.AddDate(0, 0, s.windowDays)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	certs, err := s.certs.ListExpiringBetween(ctx, now, upper, repository.CertificationFilter{})
	if err != nil {
		return nil, fmt.Errorf("list expiring certifications: %w", err)
	}

	report := &Report{RanAt: now, WindowDays: s.windowDays}
	for i := range certs {
		outcome := s.notify(ctx, &certs[i], now, dayStart)
		if outcome.Status != StatusSkipped {
			report.Attempted++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}

// notify handles one certification. A failure here is recorded in the outcome
// and never propagates, so one bad recipient cannot halt the batch.
func (s *Scheduler) notify(ctx context.Context, cert *model.Certification, now, dayStart time.Time) Outcome {
	outcome := Outcome{CertificationID: cert.ID, Title: cert.Title}

	if cert.Employee == nil || cert.Employee.Email == "" {
		outcome.Status = StatusSkipped
		outcome.Reason = "no contact address for employee"
		return outcome
	}
	outcome.Recipient = cert.Employee.Email
	outcome.Subject = fmt.Sprintf("Certification Expiry Reminder: %s", cert.Title)

	// Claim the dedupe marker before dispatching so racing instances cannot
	// both send for the same day.
	claimed, err := s.certs.ClaimNotification(ctx, cert.ID, now, dayStart)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = fmt.Sprintf("claim dedupe marker: %v", err)
		return outcome
	}
	if !claimed {
		outcome.Status = StatusSkipped
		outcome.Reason = "already notified today"
		return outcome
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour certification %q is expiring on %s.\n\nPlease renew it before expiry.\n\n- Corporate Training System",
		cert.Employee.Name, cert.Title, cert.ExpiryDate.Format("Jan 2, 2006"),
	)

	if err := s.dispatcher.Send(ctx, outcome.Recipient, outcome.Subject, body); err != nil {
		// Release the claim so a later run retries this certification. The
		// release must survive shutdown cancellation or the claim would
		// record a send that never happened.
		releaseCtx := context.WithoutCancel(ctx)
		if relErr := s.certs.ReleaseNotification(releaseCtx, cert.ID, now); relErr != nil {
			s.log.Error("release dedupe marker failed",
				"certification_id", cert.ID, "error", relErr)
		}
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		s.log.Warn("reminder dispatch failed",
			"certification_id", cert.ID, "recipient", outcome.Recipient, "error", err)
		return outcome
	}

	outcome.Status = StatusSent
	return outcome
}
