package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"certtrack/internal/service"
)

// CourseHandler handles course catalog endpoints.
type CourseHandler struct {
	courseService service.CourseService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CourseRequest represents a course create or update request.
type CourseRequest struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor" validate:"required"`
	Duration    string    `json:"duration" validate:"required"`
	StartDate   time.Time `json:"start_date" validate:"required"`
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CourseRequest true "Course data"
// @Success 201 {object} model.Course
// @Failure 403 {object} errors.ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	course, err := h.courseService.Create(c.Request().Context(), id,
		req.Name, req.Description, req.Instructor, req.Duration, req.StartDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, course)
}

// Update godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body CourseRequest true "Course data"
// @Success 200 {object} model.Course
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}

	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	course, err := h.courseService.Update(c.Request().Context(), id, courseID,
		req.Name, req.Description, req.Instructor, req.Duration, req.StartDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}

	if err := h.courseService.Delete(c.Request().Context(), id, courseID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "course deleted"})
}

// List godoc
// @Summary List courses visible to the caller
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Course
// @Failure 401 {object} errors.ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	courses, err := h.courseService.List(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, courses)
}
