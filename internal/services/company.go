package services

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/export"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/store"
	"github.com/diewo77/invoicedesk/validation"
)

// CompanyAPI reads and saves the settings document.
type CompanyAPI interface {
	Get(ctx context.Context) (*models.CompanySettings, error)
	Update(ctx context.Context, cs *models.CompanySettings) (*models.CompanySettings, error)
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}

// CompanyController backs the settings page. The document is loaded once per
// visit and always saved whole.
type CompanyController struct {
	View store.View

	api  CompanyAPI
	caps gate.Capabilities

	mu       sync.RWMutex
	settings *models.CompanySettings
}

func NewCompanyController(api CompanyAPI, caps gate.Capabilities) *CompanyController {
	return &CompanyController{api: api, caps: caps}
}

func (c *CompanyController) Load(ctx context.Context) error {
	return store.Load(ctx, &c.View, c.api.Get, func(cs *models.CompanySettings) {
		c.mu.Lock()
		c.settings = cs
		c.mu.Unlock()
	})
}

// Settings returns a copy of the loaded document, or nil before Load.
func (c *CompanyController) Settings() *models.CompanySettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.settings == nil {
		return nil
	}
	cp := *c.settings
	return &cp
}

// Save validates and sends the whole document, then keeps the backend's copy.
func (c *CompanyController) Save(ctx context.Context, cs *models.CompanySettings) (*models.CompanySettings, error) {
	if !c.caps.CanEditCompany {
		return nil, ErrNotAllowed
	}
	if err := validation.Check(cs); err != nil {
		return nil, err
	}
	ticket := c.View.Ticket()
	saved, err := c.api.Update(ctx, cs)
	if err != nil {
		return nil, err
	}
	err = ticket.Apply(func() {
		c.mu.Lock()
		c.settings = saved
		c.mu.Unlock()
	})
	return saved, err
}

// SetLogo stores an uploaded image on cs as a data URI. Files over 2MB and
// non-images are rejected as violations of the logo field.
func SetLogo(cs *models.CompanySettings, data []byte) error {
	uri, err := export.EncodeLogo(data)
	switch {
	case errors.Is(err, export.ErrLogoTooLarge):
		return validation.Violations{"logo": "file_too_large"}
	case errors.Is(err, export.ErrNotImage):
		return validation.Violations{"logo": "not_an_image"}
	case err != nil:
		return err
	}
	cs.Logo = uri
	return nil
}

// NumberingPreview returns the next three invoice numbers. They are display
// values; the backend assigns the real ones.
func NumberingPreview(cs *models.CompanySettings) []string {
	out := make([]string, 3)
	for i := range out {
		out[i] = cs.InvoiceNumberPreview(i)
	}
	return out
}

// ReserveNumber asks the backend to hand out the next invoice number and
// reloads the settings so the counter shown is current.
func (c *CompanyController) ReserveNumber(ctx context.Context) (string, error) {
	if !c.caps.CanEditCompany {
		return "", ErrNotAllowed
	}
	n, err := c.api.GenerateInvoiceNumber(ctx)
	if err != nil {
		return "", err
	}
	return n, c.Load(ctx)
}

// QuoteLine is a line of the settings preview.
type QuoteLine struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Quote is a client-side computed preview. It is never sent to the backend,
// which computes persisted invoices itself.
type Quote struct {
	Lines    []QuoteLine
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// PreviewQuote builds the sample invoice shown on the settings page: two
// units at 100 and one at 50, taxed at the default rate.
func PreviewQuote(cs *models.CompanySettings, lang string) Quote {
	q := Quote{TaxRate: cs.DefaultTaxRate}
	for i, l := range []struct {
		qty   int64
		price int64
	}{{2, 100}, {1, 50}} {
		price := decimal.NewFromInt(l.price)
		line := QuoteLine{
			Description: i18n.Tf(lang, "label.sample_product", i+1),
			Quantity:    l.qty,
			UnitPrice:   price,
			Total:       price.Mul(decimal.NewFromInt(l.qty)),
		}
		q.Lines = append(q.Lines, line)
		q.Subtotal = q.Subtotal.Add(line.Total)
	}
	q.Tax = q.Subtotal.Mul(q.TaxRate).Div(hundred).Round(2)
	q.Total = q.Subtotal.Add(q.Tax)
	return q
}
