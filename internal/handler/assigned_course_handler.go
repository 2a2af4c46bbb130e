package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"certtrack/internal/service"
)

// AssignedCourseHandler handles course assignment endpoints.
type AssignedCourseHandler struct {
	assignmentService service.AssignedCourseService
}

// NewAssignedCourseHandler creates a new assignment handler.
func NewAssignedCourseHandler(assignmentService service.AssignedCourseService) *AssignedCourseHandler {
	return &AssignedCourseHandler{assignmentService: assignmentService}
}

// AssignCourseRequest represents a course assignment request.
type AssignCourseRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	CourseID   string `json:"course_id" validate:"required,uuid"`
}

// Assign godoc
// @Summary Assign a course to an employee
// @Tags assigned-courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssignCourseRequest true "Assignment data"
// @Success 201 {object} model.AssignedCourse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /assigned-courses [post]
func (h *AssignedCourseHandler) Assign(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req AssignCourseRequest
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
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}

	assignment, err := h.assignmentService.Assign(c.Request().Context(), id, employeeID, courseID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

// List godoc
// @Summary List course assignments visible to the caller
// @Tags assigned-courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.AssignedCourse
// @Failure 401 {object} errors.ErrorResponse
// @Router /assigned-courses [get]
func (h *AssignedCourseHandler) List(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	assignments, err := h.assignmentService.List(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, assignments)
}
