package services

import (
	"context"
	"errors"
	"sync"

	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/models"
)

var errBackend = errors.New("backend down")

// recorder counts backend calls by name.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeInvoices struct {
	recorder
	list     []models.Invoice
	err      error
	payloads []any
	nextID   uint
}

func (f *fakeInvoices) List(context.Context) ([]models.Invoice, error) {
	f.record("list")
	return append([]models.Invoice(nil), f.list...), f.err
}

func (f *fakeInvoices) Create(_ context.Context, payload any) (*models.Invoice, error) {
	f.record("create")
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	req := payload.(api.InvoiceRequest)
	f.nextID++
	return &models.Invoice{ID: f.nextID, InvoiceNumber: "FACT-0100", CustomerName: req.CustomerName, Status: models.StatusPending}, nil
}

func (f *fakeInvoices) Update(_ context.Context, id uint, payload any) (*models.Invoice, error) {
	f.record("update")
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	req := payload.(api.InvoiceRequest)
	return &models.Invoice{ID: id, CustomerName: req.CustomerName, Status: models.StatusPending}, nil
}

func (f *fakeInvoices) Remove(context.Context, uint) error {
	f.record("remove")
	return f.err
}

func (f *fakeInvoices) UpdateStatus(_ context.Context, id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	f.record("status")
	if f.err != nil {
		return nil, f.err
	}
	for _, inv := range f.list {
		if inv.ID == id {
			inv.Status = status
			return &inv, nil
		}
	}
	return &models.Invoice{ID: id, Status: status}, nil
}

type fakeList[T any] struct {
	recorder
	items []T
	err   error
}

func (f *fakeList[T]) List(context.Context) ([]T, error) {
	f.record("list")
	return append([]T(nil), f.items...), f.err
}

type fakeEntities[T any] struct {
	fakeList[T]
	saved func(payload any) *T
}

func (f *fakeEntities[T]) Create(_ context.Context, payload any) (*T, error) {
	f.record("create")
	if f.err != nil {
		return nil, f.err
	}
	return f.saved(payload), nil
}

func (f *fakeEntities[T]) Update(_ context.Context, _ uint, payload any) (*T, error) {
	f.record("update")
	if f.err != nil {
		return nil, f.err
	}
	return f.saved(payload), nil
}

func (f *fakeEntities[T]) Remove(context.Context, uint) error {
	f.record("remove")
	return f.err
}

type fakeCompany struct {
	recorder
	settings *models.CompanySettings
	err      error
}

func (f *fakeCompany) Get(context.Context) (*models.CompanySettings, error) {
	f.record("get")
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.settings
	return &cp, nil
}

func (f *fakeCompany) Update(_ context.Context, cs *models.CompanySettings) (*models.CompanySettings, error) {
	f.record("update")
	if f.err != nil {
		return nil, f.err
	}
	cp := *cs
	f.settings = &cp
	return &cp, nil
}

func (f *fakeCompany) GenerateInvoiceNumber(context.Context) (string, error) {
	f.record("generate")
	n := f.settings.InvoiceNumberPreview(0)
	f.settings.NextInvoiceNumber++
	return n, nil
}

type fakeUsers struct {
	recorder
	users []models.User
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.record("list")
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeUsers) Remove(context.Context, uint) error {
	f.record("remove")
	return nil
}

func (f *fakeUsers) ToggleStatus(_ context.Context, id uint) (*models.User, error) {
	f.record("toggle")
	for _, u := range f.users {
		if u.ID == id {
			u.Enabled = !u.Enabled
			return &u, nil
		}
	}
	return nil, errBackend
}

type fakeActivity struct {
	recorder
	logs []models.ActivityLog
}

func (f *fakeActivity) Paginated(_ context.Context, page, size int) (*models.Page[models.ActivityLog], error) {
	f.record("paginated")
	// size is not applied; the feed truncates on its own
	p := models.NewPage(f.logs, page, size, int64(len(f.logs)))
	return &p, nil
}

func (f *fakeActivity) Filter(_ context.Context, filter api.ActivityFilter) ([]models.ActivityLog, error) {
	f.record("filter")
	var out []models.ActivityLog
	for _, l := range f.logs {
		if filter.Username != "" && l.Username != filter.Username {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeActivity) FilterOptions(context.Context) (*models.ActivityFilterOptions, error) {
	f.record("options")
	return &models.ActivityFilterOptions{Usernames: []string{"admin"}, Actions: []string{"CREATE"}}, nil
}
