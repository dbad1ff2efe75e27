package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/config"
	"github.com/diewo77/invoicedesk/internal/db"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/policy"
	"github.com/diewo77/invoicedesk/internal/prefs"
	"github.com/diewo77/invoicedesk/internal/services"
	"github.com/diewo77/invoicedesk/internal/session"
)

type e2e struct {
	db       *gorm.DB
	srv      *httptest.Server
	sessions *session.Manager
	client   *api.Client
}

func setupE2E(t *testing.T) *e2e {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: "file:e2e_" + t.Name() + "?mode=memory&cache=shared"}
	dbi, err := db.Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := dbi.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(dbi))
	require.NoError(t, db.Seed(dbi))

	issuer := auth.NewIssuer("e2e-secret", time.Hour)
	srv := httptest.NewServer(NewApp(policy.NewRouterConfig(dbi, issuer, log), log))
	t.Cleanup(func() {
		srv.Close()
		_ = sqlDB.Close()
	})

	sessions := session.NewManager(prefs.NewMemory())
	client, err := api.New(srv.URL+"/api/", sessions, api.WithLogger(log))
	require.NoError(t, err)
	return &e2e{db: dbi, srv: srv, sessions: sessions, client: client}
}

func (e *e2e) signIn(t *testing.T, username, password string) *session.Session {
	t.Helper()
	s, err := e.client.Auth.SignIn(context.Background(), username, password)
	require.NoError(t, err)
	require.NoError(t, e.sessions.Set(context.Background(), s))
	return s
}

func statusCode(err error) int {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func TestSignInE2E(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()

	_, err := e.client.Products.List(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	_, err = e.client.Auth.SignIn(ctx, db.AdminUsername, "wrong")
	assert.Equal(t, http.StatusUnauthorized, statusCode(err))
	assert.Contains(t, err.Error(), "Invalid username or password")

	s := e.signIn(t, db.AdminUsername, db.AdminPassword)
	assert.Equal(t, "Bearer", s.Type)
	assert.Equal(t, db.AdminEmail, s.Email)
	assert.Equal(t, []string{gate.RoleAdmin}, s.Roles)
	assert.True(t, s.Capabilities().CanManageUsers)

	products, err := e.client.Products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestInvoiceLifecycleE2E(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()
	e.signIn(t, db.AdminUsername, db.AdminPassword)

	widget, err := e.client.Products.Create(ctx, &models.Product{Name: "Widget", Price: decimal.RequireFromString("12.5"), StockQuantity: 5})
	require.NoError(t, err)
	require.NotZero(t, widget.ID)

	inv, err := e.client.Invoices.Create(ctx, api.InvoiceRequest{
		CustomerName: "Dan",
		Items:        []api.InvoiceItemRequest{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FACT-0001", inv.InvoiceNumber)
	assert.Equal(t, models.StatusPending, inv.Status)
	assert.Equal(t, "25.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "30.00", inv.TotalAmount.StringFixed(2))
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Widget", inv.Items[0].ProductName())
	assert.False(t, inv.DueDate.IsZero())

	stock, err := e.client.Products.Get(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stock.StockQuantity)

	_, err = e.client.Invoices.Create(ctx, api.InvoiceRequest{
		CustomerName: "Eve",
		Items:        []api.InvoiceItemRequest{{ProductID: widget.ID, Quantity: 10}},
	})
	assert.Equal(t, http.StatusBadRequest, statusCode(err))
	assert.Contains(t, err.Error(), "Insufficient stock for product: Widget")

	_, err = e.client.Invoices.Create(ctx, api.InvoiceRequest{
		CustomerName: "Eve",
		Items:        []api.InvoiceItemRequest{{ProductID: 999, Quantity: 1}},
	})
	assert.Contains(t, err.Error(), "Product not found with ID: 999")

	updated, err := e.client.Invoices.Update(ctx, inv.ID, api.InvoiceRequest{
		CustomerName: "Dan B.",
		Items:        []api.InvoiceItemRequest{{ProductID: widget.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FACT-0001", updated.InvoiceNumber)
	assert.Equal(t, "60.00", updated.TotalAmount.StringFixed(2))
	stock, err = e.client.Products.Get(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stock.StockQuantity)

	paid, err := e.client.Invoices.UpdateStatus(ctx, inv.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)

	found, err := e.client.Invoices.Search(ctx, "dan")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, inv.ID, found[0].ID)

	require.NoError(t, e.client.Invoices.Remove(ctx, inv.ID))
	_, err = e.client.Invoices.Get(ctx, inv.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestCompanyNumberingE2E(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()
	e.signIn(t, db.AdminUsername, db.AdminPassword)

	cs, err := e.client.Company.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCompanyName, cs.CompanyName)

	cs.InvoicePrefix = "INV"
	cs.DefaultTaxRate = decimal.NewFromInt(10)
	cs.CompanyName = "Acme"
	saved, err := e.client.Company.Update(ctx, cs)
	require.NoError(t, err)
	assert.Equal(t, cs.ID, saved.ID)

	n, err := e.client.Company.GenerateInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", n)

	p, err := e.client.Products.Create(ctx, &models.Product{Name: "Bolt", Price: decimal.NewFromInt(3), StockQuantity: 50})
	require.NoError(t, err)
	inv, err := e.client.Invoices.Create(ctx, api.InvoiceRequest{
		CustomerName: "Zed",
		Items:        []api.InvoiceItemRequest{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", inv.InvoiceNumber)
	assert.Equal(t, "0.90", inv.TaxAmount.StringFixed(2))

	cs.DefaultTaxRate = decimal.NewFromInt(150)
	_, err = e.client.Company.Update(ctx, cs)
	assert.Equal(t, http.StatusBadRequest, statusCode(err))
}

func TestAdministrationE2E(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()

	_, err := db.CreateUser(e.db, "bob", "bob@example.com", "bobpass", gate.RoleUser)
	require.NoError(t, err)

	// a plain user may not touch users or the activity log
	e.signIn(t, "bob", "bobpass")
	_, err = e.client.Users.List(ctx)
	assert.Equal(t, http.StatusForbidden, statusCode(err))
	_, err = e.client.Activity.All(ctx)
	assert.Equal(t, http.StatusForbidden, statusCode(err))
	_, err = e.client.Clients.Create(ctx, &models.Client{Name: "Acme", Email: "hello@acme.io"})
	require.NoError(t, err)
	_, err = e.client.Clients.Create(ctx, &models.Client{Name: "Acme 2", Email: "hello@acme.io"})
	assert.Contains(t, err.Error(), "Email already exists")

	admin := e.signIn(t, db.AdminUsername, db.AdminPassword)
	err = e.client.Users.Remove(ctx, admin.ID)
	assert.Equal(t, http.StatusForbidden, statusCode(err))

	users, err := e.client.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	bob := users[1]
	toggled, err := e.client.Users.ToggleStatus(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	_, err = e.client.Auth.SignIn(ctx, "bob", "bobpass")
	assert.Contains(t, err.Error(), "Account is disabled")

	logs, err := e.client.Activity.All(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, models.ActionStatusChange, logs[0].Action)
	assert.Equal(t, "Changed user bob status from ACTIVE to INACTIVE", logs[0].Details)
	assert.Equal(t, db.AdminUsername, logs[0].Username)
	assert.Equal(t, gate.RoleAdmin, logs[0].UserRole)

	opts, err := e.client.Activity.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "bob"}, opts.Usernames)
	assert.Contains(t, opts.Actions, models.ActionLogin)
	assert.Contains(t, opts.EntityTypes, "CLIENT")

	created, err := e.client.Activity.Filter(ctx, api.ActivityFilter{Username: "bob", Action: models.ActionCreate})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Created client: Acme, company: , email: hello@acme.io", created[0].Details)

	page, err := e.client.Activity.Paginated(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, int64(len(logs)), page.TotalElements)

	day, err := e.client.Activity.ByDateRange(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, day, len(logs))
}

func TestInvoicePreviewE2E(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()
	s := e.signIn(t, db.AdminUsername, db.AdminPassword)

	p, err := e.client.Products.Create(ctx, &models.Product{Name: "Gizmo", Price: decimal.NewFromInt(8), StockQuantity: 2})
	require.NoError(t, err)
	inv, err := e.client.Invoices.Create(ctx, api.InvoiceRequest{
		CustomerName: "Ivy",
		Items:        []api.InvoiceItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/invoices/"+strconv.FormatUint(uint64(inv.ID), 10)+"/preview/html?lang=en", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.StatusCode, body)
	}
	for _, want := range []string{"INVOICE", "FACT-0001", "Gizmo", "9.60 EUR"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestRevokedSessionE2E(t *testing.T) {
	e := setupE2E(t)
	ctx := context.Background()
	s := e.signIn(t, db.AdminUsername, db.AdminPassword)
	require.NoError(t, e.db.Model(&models.User{}).Where("username = ?", db.AdminUsername).Update("enabled", false).Error)

	var logins atomic.Int32
	client, err := api.New(e.srv.URL+"/api/", e.sessions,
		api.WithNavigator(api.NavigatorFunc(func() { logins.Add(1) })))
	require.NoError(t, err)

	ctrl := services.NewInvoiceController(client.Invoices, client.Products, s.Capabilities(), nil)
	ctrl.View.Mount()
	defer ctrl.View.Unmount()
	err = ctrl.Load(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, int32(1), logins.Load())

	cur, err := e.sessions.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}
