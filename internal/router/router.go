package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"certtrack/internal/auth"
	"certtrack/internal/config"
	"certtrack/internal/errors"
	"certtrack/internal/handler"
	"certtrack/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	employeeHandler *handler.EmployeeHandler,
	certificationHandler *handler.CertificationHandler,
	courseHandler *handler.CourseHandler,
	assignedCourseHandler *handler.AssignedCourseHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes: bearer token validated first, then the account behind
	// it is resolved into an Identity that handlers pass down explicitly.
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization,
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(auth.Claims)
			},
		}),
		resolveIdentity(authService),
	)

	secured.GET("/me", authHandler.Me)

	// Employee routes
	secured.POST("/employees", employeeHandler.Register)
	secured.GET("/employees", employeeHandler.List)

	// Certification routes
	secured.POST("/certifications", certificationHandler.Create)
	secured.GET("/certifications", certificationHandler.List)
	secured.GET("/certifications/expiring-soon", certificationHandler.ListExpiring)
	secured.POST("/certifications/send-reminders", certificationHandler.SendReminders)
	secured.DELETE("/certifications/:id", certificationHandler.Delete)
	secured.POST("/certifications/:id/document", certificationHandler.UploadDocument)
	secured.GET("/certifications/:id/document", certificationHandler.FetchDocument)

	// Course routes
	secured.GET("/courses", courseHandler.List)
	secured.POST("/courses", courseHandler.Create)
	secured.PUT("/courses/:id", courseHandler.Update)
	secured.DELETE("/courses/:id", courseHandler.Delete)

	// Assigned course routes
	secured.POST("/assigned-courses", assignedCourseHandler.Assign)
	secured.GET("/assigned-courses", assignedCourseHandler.List)
}

// resolveIdentity turns validated token claims into a full caller identity.
// A token whose account vanished or whose employee link is broken is rejected
// here, before any handler logic runs.
func resolveIdentity(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return tokenError(errors.ErrInvalidToken)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return tokenError(errors.ErrInvalidToken)
			}

			identity, err := authService.Resolve(c.Request().Context(), claims)
			if err != nil {
				return tokenError(err)
			}

			handler.SetIdentity(c, identity)
			return next(c)
		}
	}
}

func tokenError(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
