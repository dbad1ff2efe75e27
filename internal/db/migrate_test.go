package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/config"
	"github.com/diewo77/invoicedesk/internal/models"
)

func TestMigrateAndSeed(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: "file:seed_" + t.Name() + "?mode=memory&cache=shared"}
	dbi, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := Seed(dbi); err != nil {
			t.Fatalf("seed #%d: %v", i+1, err)
		}
	}

	var users []models.User
	if err := dbi.Find(&users).Error; err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 seeded user, got %d", len(users))
	}
	admin := users[0]
	if admin.Username != AdminUsername || !admin.Enabled || !admin.Roles.Has(gate.RoleAdmin) {
		t.Errorf("unexpected admin: %+v", admin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(AdminPassword)); err != nil {
		t.Errorf("admin password hash mismatch: %v", err)
	}
}
