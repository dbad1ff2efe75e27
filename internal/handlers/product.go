package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/validation"
)

// LowStockThreshold is the stock level under which a product is listed by
// the low-stock endpoint.
const LowStockThreshold = 10

type ProductHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

func NewProductHandler(db *gorm.DB, activity *ActivityRecorder) *ProductHandler {
	return &ProductHandler{db: db, activity: activity}
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, query func(*gorm.DB) *gorm.DB) {
	products := []models.Product{}
	if err := query(h.db.WithContext(r.Context())).Order("id").Find(&products).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db })
}

func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db.Where("category = ?", category) })
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := "%" + strings.ToLower(r.PathValue("name")) + "%"
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db.Where("LOWER(name) LIKE ?", name) })
}

func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db.Where("stock_quantity < ?", LowStockThreshold) })
}

func (h *ProductHandler) find(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	var p models.Product
	if err := h.db.WithContext(r.Context()).First(&p, id).Error; err != nil {
		fail(w, h.activity.log, err)
		return nil, false
	}
	return &p, true
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.find(w, r); ok {
		httpx.JSON(w, http.StatusOK, p)
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := httpx.Decode(r, &p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p.ID = 0
	if err := validation.Check(&p); err != nil {
		fail(w, h.activity.log, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Create(&p).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionCreate, EntityProduct, p.ID,
		"Created product: %s, price: %s, stock: %d", p.Name, p.Price.StringFixed(2), p.StockQuantity)
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	var details models.Product
	if err := httpx.Decode(r, &details); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	details.ID = p.ID
	if err := validation.Check(&details); err != nil {
		fail(w, h.activity.log, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Save(&details).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionUpdate, EntityProduct, details.ID,
		"Updated product: %s, new price: %s, stock: %d", details.Name, details.Price.StringFixed(2), details.StockQuantity)
	httpx.JSON(w, http.StatusOK, details)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.find(w, r)
	if !ok {
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(p).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionDelete, EntityProduct, p.ID, "Deleted product: %s", p.Name)
	writeOK(w)
}
