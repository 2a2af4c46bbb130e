package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"certtrack/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"certtrack/internal/auth"
	"certtrack/internal/cache"
	"certtrack/internal/config"
	"certtrack/internal/db"
	"certtrack/internal/handler"
	"certtrack/internal/mailer"
	"certtrack/internal/model"
	"certtrack/internal/repository"
	"certtrack/internal/router"
	"certtrack/internal/scheduler"
	"certtrack/internal/service"
	"certtrack/internal/storage"
)

// @title Certification Tracking API
// @version 1.0
// @description Employee certification tracking with expiry reminders, role-scoped access, and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.User{},
		&model.Certification{},
		&model.Course{},
		&model.AssignedCourse{},
	); err != nil {
		log.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	documentStore, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		log.Error("document store init failed", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	employeeRepo := repository.NewEmployeeRepository(gormDB)
	certRepo := repository.NewCertificationRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	assignedCourseRepo := repository.NewAssignedCourseRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	// Initialize services
	authService := service.NewAuthService(userRepo, employeeRepo, jwtService)
	employeeService := service.NewEmployeeService(employeeRepo)
	certService := service.NewCertificationService(certRepo, employeeRepo, documentStore, cacheClient)
	courseService := service.NewCourseService(courseRepo)
	assignedCourseService := service.NewAssignedCourseService(assignedCourseRepo, employeeRepo, courseRepo)

	// Expiry-reminder scheduler
	dispatcher := mailer.NewSMTPDispatcher(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	reminders := scheduler.New(certRepo, dispatcher, cfg.SchedulerInterval, cfg.NotifyWindowDays, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	certHandler := handler.NewCertificationHandler(certService, reminders)
	courseHandler := handler.NewCourseHandler(courseService)
	assignedCourseHandler := handler.NewAssignedCourseHandler(assignedCourseService)

	// Register routes
	router.Register(
		e,
		cfg,
		authService,
		authHandler,
		employeeHandler,
		certHandler,
		courseHandler,
		assignedCourseHandler,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		reminders.Run(ctx)
	}()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server start failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	if err := e.Shutdown(context.Background()); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	// Let an in-flight reminder run drain rather than abandoning dispatches.
	<-schedulerDone
}
