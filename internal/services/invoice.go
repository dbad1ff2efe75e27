package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/store"
	"github.com/diewo77/invoicedesk/validation"
)

// ErrTransitionNotAllowed is returned when a status change is not offered
// for the invoice or the session.
var ErrTransitionNotAllowed = errors.New("services: status transition not allowed")

// AvailableTransitions lists the statuses inv may be moved to. Only
// PENDING and PAID move, and only for sessions allowed to change status.
func AvailableTransitions(caps gate.Capabilities, inv *models.Invoice) []models.InvoiceStatus {
	if inv == nil || !caps.CanChangeInvoiceStatus {
		return nil
	}
	switch inv.Status {
	case models.StatusPending:
		return []models.InvoiceStatus{models.StatusPaid}
	case models.StatusPaid:
		return []models.InvoiceStatus{models.StatusPending}
	}
	return nil
}

// Transition is a status change waiting for confirmation.
type Transition struct {
	InvoiceID uint
	Number    string
	From      models.InvoiceStatus
	To        models.InvoiceStatus
}

// InvoiceController is the invoice lifecycle: status transitions with a
// confirm step, create and edit with validation, and deletion.
type InvoiceController struct {
	View     store.View
	Invoices *store.Collection[*models.Invoice]
	Products *store.Collection[*models.Product]

	api      InvoiceAPI
	products Lister[models.Product]
	caps     gate.Capabilities
	logger   *slog.Logger

	mu       sync.Mutex
	staged   *Transition
	deleting *models.Invoice
}

func NewInvoiceController(invoices InvoiceAPI, products Lister[models.Product], caps gate.Capabilities, logger *slog.Logger) *InvoiceController {
	return &InvoiceController{
		Invoices: store.NewCollection[*models.Invoice](),
		Products: store.NewCollection[*models.Product](),
		api:      invoices,
		products: products,
		caps:     caps,
		logger:   orDefault(logger),
	}
}

type invoicePage struct {
	invoices []models.Invoice
	products []models.Product
}

// Load fetches invoices and products in parallel and replaces both caches.
func (c *InvoiceController) Load(ctx context.Context) error {
	return store.Load(ctx, &c.View, func(ctx context.Context) (invoicePage, error) {
		var p invoicePage
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			p.invoices, err = c.api.List(ctx)
			return err
		})
		g.Go(func() (err error) {
			p.products, err = c.products.List(ctx)
			return err
		})
		return p, g.Wait()
	}, func(p invoicePage) {
		c.Invoices.Reset(store.Pointers(p.invoices))
		c.Products.Reset(store.Pointers(p.products))
	})
}

func (c *InvoiceController) Capabilities() gate.Capabilities { return c.caps }

func (c *InvoiceController) AvailableTransitions(inv *models.Invoice) []models.InvoiceStatus {
	return AvailableTransitions(c.caps, inv)
}

// StageTransition records a change of inv to status to. Nothing is sent
// until ConfirmTransition.
func (c *InvoiceController) StageTransition(inv *models.Invoice, to models.InvoiceStatus) (Transition, error) {
	allowed := false
	for _, s := range c.AvailableTransitions(inv) {
		if s == to {
			allowed = true
		}
	}
	if !allowed {
		return Transition{}, ErrTransitionNotAllowed
	}
	t := Transition{InvoiceID: inv.ID, Number: inv.DisplayNumber(), From: inv.Status, To: to}
	c.mu.Lock()
	c.staged = &t
	c.mu.Unlock()
	return t, nil
}

// Staged returns the transition awaiting confirmation, if any.
func (c *InvoiceController) Staged() (Transition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staged == nil {
		return Transition{}, false
	}
	return *c.staged, true
}

// CancelTransition drops the staged change without any request.
func (c *InvoiceController) CancelTransition() {
	c.mu.Lock()
	c.staged = nil
	c.mu.Unlock()
}

// ConfirmTransition sends the staged change. On success the invoice returned
// by the backend replaces the cached one; on failure the cache is untouched.
// The staged change is consumed either way.
func (c *InvoiceController) ConfirmTransition(ctx context.Context) (*models.Invoice, error) {
	c.mu.Lock()
	t := c.staged
	c.staged = nil
	c.mu.Unlock()
	if t == nil {
		return nil, ErrNothingStaged
	}

	ticket := c.View.Ticket()
	updated, err := c.api.UpdateStatus(ctx, t.InvoiceID, t.To)
	if err != nil {
		return nil, fmt.Errorf("change status of %s: %w", t.Number, err)
	}
	if err := ticket.Apply(func() { c.Invoices.Replace(updated) }); err != nil {
		return updated, err
	}
	c.logger.Info("invoice status changed", "invoice", t.Number, "from", t.From, "to", updated.Status)
	return updated, nil
}

// ItemRow is one line of the invoice form. ProductID is the raw value of the
// product selector, empty when nothing is selected.
type ItemRow struct {
	ProductID string
	Quantity  int
}

// InvoiceForm is the create/edit form. ID is zero when creating.
type InvoiceForm struct {
	ID           uint
	CustomerName string
	Items        []ItemRow
}

// NewInvoiceForm returns an empty form with one blank row.
func NewInvoiceForm() InvoiceForm {
	return InvoiceForm{Items: []ItemRow{{Quantity: 1}}}
}

// EditForm fills the form from an existing invoice, mapping each item's
// nested product back to its id.
func EditForm(inv *models.Invoice) InvoiceForm {
	f := InvoiceForm{ID: inv.ID, CustomerName: inv.CustomerName}
	for i := range inv.Items {
		it := &inv.Items[i]
		row := ItemRow{Quantity: it.Quantity}
		if id := it.ProductRef(); id != 0 {
			row.ProductID = strconv.FormatUint(uint64(id), 10)
		}
		f.Items = append(f.Items, row)
	}
	if len(f.Items) == 0 {
		f.Items = []ItemRow{{Quantity: 1}}
	}
	return f
}

// Request validates the form and builds the payload. Rows without a product
// or with a quantity below one are dropped silently; an empty result is a
// violation.
func (f InvoiceForm) Request() (api.InvoiceRequest, error) {
	v := make(validation.Violations)
	req := api.InvoiceRequest{CustomerName: strings.TrimSpace(f.CustomerName)}
	if req.CustomerName == "" {
		v["customerName"] = "customer_required"
	}
	for _, row := range f.Items {
		id, err := strconv.ParseUint(strings.TrimSpace(row.ProductID), 10, 64)
		if err != nil || id == 0 || row.Quantity < 1 {
			continue
		}
		req.Items = append(req.Items, api.InvoiceItemRequest{ProductID: uint(id), Quantity: row.Quantity})
	}
	if len(req.Items) == 0 {
		v["items"] = "at_least_one_item"
	}
	return req, v.Err()
}

// Submit creates or updates the invoice. A created invoice is put first in
// the cache and an updated one replaces its entry in place. Stock changes
// only show after RefreshStock, which Submit runs as its last step.
func (c *InvoiceController) Submit(ctx context.Context, f InvoiceForm) (*models.Invoice, error) {
	if (f.ID == 0 && !c.caps.CanCreateInvoices) || (f.ID != 0 && !c.caps.CanEditInvoices) {
		return nil, ErrNotAllowed
	}
	req, err := f.Request()
	if err != nil {
		return nil, err
	}

	ticket := c.View.Ticket()
	var inv *models.Invoice
	if f.ID == 0 {
		inv, err = c.api.Create(ctx, req)
	} else {
		inv, err = c.api.Update(ctx, f.ID, req)
	}
	if err != nil {
		return nil, err
	}
	err = ticket.Apply(func() {
		if f.ID == 0 {
			c.Invoices.Prepend(inv)
		} else {
			c.Invoices.Replace(inv)
		}
	})
	if err != nil {
		return inv, err
	}

	if err := c.RefreshStock(ctx); err != nil {
		c.logger.Warn("stock refresh failed", "invoice", inv.DisplayNumber(), "err", err)
	}
	return inv, nil
}

// RefreshStock reloads the products so stock levels reflect the backend.
func (c *InvoiceController) RefreshStock(ctx context.Context) error {
	ticket := c.View.Ticket()
	products, err := c.products.List(ctx)
	if err != nil {
		return err
	}
	return ticket.Apply(func() { c.Products.Reset(store.Pointers(products)) })
}

// CanEdit reports whether inv may be edited or deleted: only pending
// invoices, for sessions allowed to.
func (c *InvoiceController) CanEdit(inv *models.Invoice) bool {
	return inv != nil && inv.Status == models.StatusPending && c.caps.CanEditInvoices
}

// StageDelete records inv for deletion pending confirmation.
func (c *InvoiceController) StageDelete(inv *models.Invoice) error {
	if inv == nil || inv.Status != models.StatusPending || !c.caps.CanDeleteInvoices {
		return ErrNotAllowed
	}
	c.mu.Lock()
	c.deleting = inv
	c.mu.Unlock()
	return nil
}

func (c *InvoiceController) CancelDelete() {
	c.mu.Lock()
	c.deleting = nil
	c.mu.Unlock()
}

// ConfirmDelete removes the staged invoice on the backend, then from the
// cache.
func (c *InvoiceController) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	inv := c.deleting
	c.deleting = nil
	c.mu.Unlock()
	if inv == nil {
		return ErrNothingStaged
	}
	ticket := c.View.Ticket()
	if err := c.api.Remove(ctx, inv.ID); err != nil {
		return fmt.Errorf("delete %s: %w", inv.DisplayNumber(), err)
	}
	return ticket.Apply(func() { c.Invoices.Remove(inv.ID) })
}
