// Package db opens, migrates and seeds the development backend database.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/config"
	"github.com/diewo77/invoicedesk/internal/models"
)

// Default administrator created by Seed when no "admin" account exists.
const (
	AdminUsername = "admin"
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
)

// Open connects to the configured database. PostgreSQL is retried a few
// times so the server can start alongside its database container.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Driver != "postgres" {
		log.Info("opening database", "driver", "sqlite", "path", cfg.Path)
		return gorm.Open(sqlite.Open(cfg.DSN()), gcfg)
	}

	log.Info("connecting to database", "driver", "postgres",
		"host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)
	var (
		conn *gorm.DB
		err  error
	)
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			return conn, nil
		}
		log.Warn("database not ready", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect database: %w", err)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Product{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.CompanySettings{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed creates the default administrator when it does not exist.
func Seed(db *gorm.DB) error {
	var admin models.User
	err := db.Where("username = ?", AdminUsername).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed: %w", err)
	}
	_, err = CreateUser(db, AdminUsername, AdminEmail, AdminPassword, gate.RoleAdmin)
	return err
}

// CreateUser stores an enabled account with a bcrypt password hash.
func CreateUser(db *gorm.DB, username, email, password string, roles ...string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Roles:    models.RoleSet(roles),
		Enabled:  true,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return u, nil
}
