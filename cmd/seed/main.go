package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"certtrack/internal/config"
	"certtrack/internal/db"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// Seeds an admin account plus a few demo employees and certifications so the
// system is usable right after first boot.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Error("connect database", "error", err)
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.User{},
		&model.Certification{},
		&model.Course{},
		&model.AssignedCourse{},
	); err != nil {
		log.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(gormDB)
	employees := repository.NewEmployeeRepository(gormDB)
	certs := repository.NewCertificationRepository(gormDB)

	adminEmail := envOr("SEED_ADMIN_EMAIL", "admin@certtrack.local")
	adminPassword := envOr("SEED_ADMIN_PASSWORD", "admin-change-me")

	if _, err := users.FindByEmail(ctx, adminEmail); err == nil {
		log.Info("admin already exists, skipping", "email", adminEmail)
		return
	} else if err != gorm.ErrRecordNotFound {
		log.Error("check admin", "error", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 10)
	if err != nil {
		log.Error("hash admin password", "error", err)
		os.Exit(1)
	}

	admin := &model.User{
		ID:           uuid.New(),
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Error("create admin", "error", err)
		os.Exit(1)
	}
	log.Info("admin account created", "email", adminEmail)

	now := time.Now()
	demo := []struct {
		name, email, department, position string
		certTitle                         string
		expiresInDays                     int
	}{
		{"Asha Verma", "asha.verma@example.com", "Engineering", "SRE", "AWS Solutions Architect", 5},
		{"Tomás Rivera", "tomas.rivera@example.com", "Engineering", "Backend Engineer", "CKA", 45},
		{"Mei Lin", "mei.lin@example.com", "Safety", "Compliance Officer", "First Aid", 20},
	}

	for _, d := range demo {
		employee := &model.Employee{
			Name:       d.name,
			Email:      d.email,
			Department: d.department,
			Position:   d.position,
			JoinDate:   now.AddDate(-1, 0, 0),
		}
		if err := employees.Create(ctx, employee); err != nil {
			log.Warn("create employee (may exist)", "email", d.email, "error", err)
			continue
		}
		cert := &model.Certification{
			Title:      d.certTitle,
			IssueDate:  now.AddDate(-1, 0, 0),
			ExpiryDate: now.AddDate(0, 0, d.expiresInDays),
			EmployeeID: employee.ID,
		}
		if err := certs.Create(ctx, cert); err != nil {
			log.Warn("create certification", "title", d.certTitle, "error", err)
		}
	}

	log.Info("seed complete")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
