package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/view"
)

type InvoiceHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

func NewInvoiceHandler(db *gorm.DB, activity *ActivityRecorder) *InvoiceHandler {
	return &InvoiceHandler{db: db, activity: activity}
}

type invoiceItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type invoiceRequest struct {
	CustomerName string               `json:"customerName"`
	Items        []invoiceItemRequest `json:"items"`
}

func (req *invoiceRequest) check() error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return badRequestf("Customer name is required")
	}
	if len(req.Items) == 0 {
		return badRequestf("At least one item is required")
	}
	for _, it := range req.Items {
		if it.ProductID == 0 || it.Quantity < 1 {
			return badRequestf("Each item needs a product and a positive quantity")
		}
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

func (h *InvoiceHandler) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).Preload("Items.Product")
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices := []models.Invoice{}
	if err := h.preload(h.db.WithContext(r.Context())).Order("id").Find(&invoices).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Search lists invoices whose customer name contains the path value,
// ignoring case.
func (h *InvoiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := "%" + strings.ToLower(r.PathValue("customerName")) + "%"
	invoices := []models.Invoice{}
	err := h.preload(h.db.WithContext(r.Context())).
		Where("LOWER(customer_name) LIKE ?", name).Order("id").Find(&invoices).Error
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) load(db *gorm.DB, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := h.preload(db).First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.load(h.db.WithContext(r.Context()), id)
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// nextNumber assigns the next number from the settings and advances the
// counter. The settings are created with their defaults on first use.
func nextNumber(tx *gorm.DB) (string, decimal.Decimal, error) {
	cs, err := settings(tx)
	if err != nil {
		return "", decimal.Zero, err
	}
	cs.ApplyDefaults()
	number := models.FormatInvoiceNumber(cs.InvoicePrefix, cs.NextInvoiceNumber)
	cs.NextInvoiceNumber++
	if err := tx.Save(cs).Error; err != nil {
		return "", decimal.Zero, err
	}
	return number, cs.DefaultTaxRate, nil
}

// taxRate is the settings' default rate, or 20 without settings.
func taxRate(tx *gorm.DB) (decimal.Decimal, error) {
	var cs models.CompanySettings
	err := tx.Order("id").First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultTaxRate, nil
	}
	return cs.DefaultTaxRate, err
}

// fill takes stock for every requested line, writes the items of inv and
// computes its amounts. inv must already have an id.
func fill(tx *gorm.DB, inv *models.Invoice, items []invoiceItemRequest) error {
	subtotal := decimal.Zero
	for _, it := range items {
		var p models.Product
		err := tx.First(&p, it.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return badRequestf("Product not found with ID: %d", it.ProductID)
		}
		if err != nil {
			return err
		}
		if !p.InStock(it.Quantity) {
			return badRequestf("Insufficient stock for product: %s", p.Name)
		}
		line := models.InvoiceItem{
			InvoiceID: inv.ID,
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		if err := tx.Model(&p).Update("stock_quantity", p.StockQuantity-it.Quantity).Error; err != nil {
			return err
		}
		subtotal = subtotal.Add(line.Subtotal)
	}

	inv.Subtotal = subtotal
	inv.Discount = decimal.Zero
	inv.TaxAmount = subtotal.Mul(inv.TaxRate).Div(hundred).Round(2)
	inv.TotalAmount = subtotal.Add(inv.TaxAmount)
	return tx.Model(inv).Select("subtotal", "discount", "tax_amount", "total_amount").Updates(inv).Error
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := req.check(); err != nil {
		fail(w, h.activity.log, err)
		return
	}

	var inv *models.Invoice
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		number, rate, err := nextNumber(tx)
		if err != nil {
			return err
		}
		created := models.Invoice{InvoiceNumber: number, CustomerName: req.CustomerName, TaxRate: rate}
		if err := tx.Omit("Items").Create(&created).Error; err != nil {
			return err
		}
		if err := fill(tx, &created, req.Items); err != nil {
			return err
		}
		inv, err = h.load(tx, created.ID)
		return err
	})
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionCreate, EntityInvoice, inv.ID,
		"Created invoice %s for customer %s, total: %s", inv.InvoiceNumber, inv.CustomerName, inv.TotalAmount.StringFixed(2))
	httpx.JSON(w, http.StatusOK, inv)
}

// Update puts the stock of the old lines back, then rebuilds the invoice
// from the request. Number and status are kept.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := req.check(); err != nil {
		fail(w, h.activity.log, err)
		return
	}

	var inv *models.Invoice
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		existing, err := h.load(tx, id)
		if err != nil {
			return err
		}
		if err := restock(tx, existing.Items); err != nil {
			return err
		}
		existing.Items = nil
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		rate, err := taxRate(tx)
		if err != nil {
			return err
		}
		existing.CustomerName = req.CustomerName
		existing.TaxRate = rate
		if err := tx.Model(existing).Select("customer_name", "tax_rate").Updates(existing).Error; err != nil {
			return err
		}
		if err := fill(tx, existing, req.Items); err != nil {
			return err
		}
		inv, err = h.load(tx, id)
		return err
	})
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionUpdate, EntityInvoice, inv.ID,
		"Updated invoice %s, customer: %s, new total: %s", inv.InvoiceNumber, inv.CustomerName, inv.TotalAmount.StringFixed(2))
	httpx.JSON(w, http.StatusOK, inv)
}

func restock(tx *gorm.DB, items []models.InvoiceItem) error {
	for _, it := range items {
		err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", it.Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus sets ?status= on the invoice. Any known status is accepted;
// which transitions are offered is up to the client.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	status := models.InvoiceStatus(strings.ToUpper(r.URL.Query().Get("status")))
	if !status.Valid() {
		httpx.Fail(w, http.StatusBadRequest, "invalid status")
		return
	}
	db := h.db.WithContext(r.Context())
	inv, err := h.load(db, id)
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	old := inv.Status
	if err := db.Model(inv).Update("status", status).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	inv.Status = status
	h.activity.Record(r, models.ActionStatusChange, EntityInvoice, inv.ID,
		"Changed invoice %s status from %s to %s", inv.InvoiceNumber, old, status)
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete removes the invoice and its lines. Stock is not restored.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var inv models.Invoice
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, id).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionDelete, EntityInvoice, inv.ID,
		"Deleted invoice %s for customer %s", inv.InvoiceNumber, inv.CustomerName)
	writeOK(w)
}

// Preview renders the invoice as an HTML document in the request language.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	db := h.db.WithContext(r.Context())
	inv, err := h.load(db, id)
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	cs, err := settings(db)
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	if err := view.Render(w, r, "invoice.html", view.InvoicePage{Company: cs, Invoice: inv}); err != nil {
		fail(w, h.activity.log, err)
	}
}
