package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"certtrack/internal/service"
)

// EmployeeHandler handles employee profile endpoints.
type EmployeeHandler struct {
	employeeService service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// RegisterEmployeeRequest represents an employee registration request.
type RegisterEmployeeRequest struct {
	Name       string    `json:"name" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	JoinDate   time.Time `json:"join_date" validate:"required"`
}

// Register godoc
// @Summary Register an employee profile
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterEmployeeRequest true "Employee data"
// @Success 201 {object} model.Employee
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /employees [post]
func (h *EmployeeHandler) Register(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req RegisterEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	employee, err := h.employeeService.Register(c.Request().Context(), id,
		req.Name, req.Email, req.Department, req.Position, req.JoinDate)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, employee)
}

// List godoc
// @Summary List employees (public fields only)
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PublicEmployee
// @Failure 401 {object} errors.ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	id, err := identityFrom(c)
	if err != nil {
		return err
	}

	employees, err := h.employeeService.List(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, employees)
}
