// Package services holds the screen controllers: each one owns the cached
// entities of a page, talks to the backend through the api package and applies
// the server's answers with a deterministic merge instead of reloading.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/diewo77/invoicedesk/internal/models"
)

var (
	// ErrNotAllowed is returned when the session lacks the capability for an
	// action. No request is sent.
	ErrNotAllowed = errors.New("services: action not allowed")
	// ErrNothingStaged is returned by Confirm when no change awaits confirmation.
	ErrNothingStaged = errors.New("services: nothing staged")
)

// InvoiceAPI is the part of the backend the invoice screens use.
type InvoiceAPI interface {
	List(ctx context.Context) ([]models.Invoice, error)
	Create(ctx context.Context, payload any) (*models.Invoice, error)
	Update(ctx context.Context, id uint, payload any) (*models.Invoice, error)
	Remove(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status models.InvoiceStatus) (*models.Invoice, error)
}

// EntityAPI is the CRUD surface shared by clients and products.
type EntityAPI[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload any) (*T, error)
	Update(ctx context.Context, id uint, payload any) (*T, error)
	Remove(ctx context.Context, id uint) error
}

// Lister loads a whole collection.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
