// Package policy wires the backend handlers to the authorization gate.
package policy

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/internal/handlers"
)

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// AuthGate provides authorization checks and middleware
	AuthGate *AuthGate
	Issuer   *auth.Issuer
	Verifier auth.UserVerifier

	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ActivityHandler *handlers.ActivityHandler

	ClientHandler  *handlers.ClientHandler
	ProductHandler *handlers.ProductHandler
	InvoiceHandler *handlers.InvoiceHandler
	CompanyHandler *handlers.CompanyHandler
}

// NewRouterConfig creates a fully configured router setup. Every mutating
// handler records its change through one activity recorder.
func NewRouterConfig(db *gorm.DB, issuer *auth.Issuer, log *slog.Logger) *RouterConfig {
	authGate := NewAuthGate()
	activity := handlers.NewActivityRecorder(db, log)

	return &RouterConfig{
		AuthGate:        authGate,
		Issuer:          issuer,
		Verifier:        UserVerifier(db),
		AuthHandler:     handlers.NewAuthHandler(db, issuer, activity),
		UserHandler:     handlers.NewUserHandler(db, activity, authGate.Authorize),
		ActivityHandler: handlers.NewActivityHandler(db),
		ClientHandler:   handlers.NewClientHandler(db, activity),
		ProductHandler:  handlers.NewProductHandler(db, activity),
		InvoiceHandler:  handlers.NewInvoiceHandler(db, activity),
		CompanyHandler:  handlers.NewCompanyHandler(db, activity),
	}
}
