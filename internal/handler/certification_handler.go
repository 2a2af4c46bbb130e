package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "certtrack/internal/errors"
	"certtrack/internal/scheduler"
	"certtrack/internal/service"
)

// maxDocumentSize caps uploaded certificate documents at 5 MiB.
const maxDocumentSize = 5 << 20

// ReminderRunner triggers one reminder pass on demand.
type ReminderRunner interface {
	RunOnce(ctx context.Context) (*scheduler.Report, error)
}

// CertificationHandler handles certification endpoints.
type CertificationHandler struct {
	certService service.CertificationService
	reminders   ReminderRunner
}

// NewCertificationHandler creates a new certification handler.
func NewCertificationHandler(certService service.CertificationService, reminders ReminderRunner) *CertificationHandler {
	return &CertificationHandler{
		certService: certService,
		reminders:   reminders,
	}
}

// CreateCertificationRequest represents a certification creation request.
type CreateCertificationRequest struct {
	Title      string    `json:"title" validate:"required"`
	IssueDate  time.Time `json:"issue_date" validate:"required"`
	ExpiryDate time.Time `json:"expiry_date" validate:"required"`
	EmployeeID string    `json:"employee_id" validate:"required,uuid"`
}

// Create godoc
// @Summary Create a certification for an employee
// @Tags certifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCertificationRequest true "Certification data"
// @Success 201 {object} model.Certification
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /certifications [post]
func (h *CertificationHandler) Create(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req CreateCertificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}

	cert, err := h.certService.Create(c.Request().Context(), id,
		req.Title, req.IssueDate, req.ExpiryDate, employeeID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, cert)
}

// List godoc
// @Summary List certifications visible to the caller
// @Tags certifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Certification
// @Failure 401 {object} errors.ErrorResponse
// @Router /certifications [get]
func (h *CertificationHandler) List(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	certs, err := h.certService.List(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, certs)
}

// ListExpiring godoc
// @Summary List certifications expiring soon
// @Tags certifications
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (default 30)"
// @Success 200 {array} model.Certification
// @Failure 401 {object} errors.ErrorResponse
// @Router /certifications/expiring-soon [get]
func (h *CertificationHandler) ListExpiring(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days parameter")
		}
	}

	certs, err := h.certService.ListExpiring(c.Request().Context(), id, days)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, certs)
}

// Delete godoc
// @Summary Delete a certification
// @Tags certifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certification ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certifications/{id} [delete]
func (h *CertificationHandler) Delete(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid certification id")
	}

	if err := h.certService.Delete(c.Request().Context(), id, certID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "certification deleted"})
}

// UploadDocument godoc
// @Summary Attach a PDF document to a certification
// @Tags certifications
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certification ID"
// @Param pdf formData file true "Certificate PDF (max 5 MiB)"
// @Success 200 {object} model.Certification
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /certifications/{id}/document [post]
func (h *CertificationHandler) UploadDocument(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid certification id")
	}

	file, err := c.FormFile("pdf")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing pdf file")
	}
	if file.Size > maxDocumentSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file exceeds 5MB limit")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return echo.NewHTTPError(http.StatusBadRequest, "only PDF files are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	cert, err := h.certService.AttachDocument(c.Request().Context(), id, certID,
		"application/pdf", src, file.Size)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "file uploaded successfully",
		"certification": cert,
	})
}

// FetchDocument godoc
// @Summary Download the attached certificate document
// @Tags certifications
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Certification ID"
// @Success 200 {file} binary
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certifications/{id}/document [get]
func (h *CertificationHandler) FetchDocument(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid certification id")
	}

	reader, err := h.certService.FetchDocument(c.Request().Context(), id, certID)
	if err != nil {
		return httpError(err)
	}
	defer reader.Close()

	return c.Stream(http.StatusOK, "application/pdf", reader)
}

// SendReminders godoc
// @Summary Run the expiry-reminder pass immediately
// @Tags certifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} scheduler.Report
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /certifications/send-reminders [post]
func (h *CertificationHandler) SendReminders(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return httpError(apperrors.ErrForbidden)
	}

	report, err := h.reminders.RunOnce(c.Request().Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			return echo.NewHTTPError(http.StatusConflict, apperrors.ErrorResponse{
				Error: err.Error(),
				Code:  "RUN_IN_PROGRESS",
			})
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
