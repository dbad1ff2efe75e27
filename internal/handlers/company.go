package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/validation"
)

// CompanyHandler serves the settings singleton.
type CompanyHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

func NewCompanyHandler(db *gorm.DB, activity *ActivityRecorder) *CompanyHandler {
	return &CompanyHandler{db: db, activity: activity}
}

// settings returns the stored document, creating the defaults on first use.
func settings(tx *gorm.DB) (*models.CompanySettings, error) {
	var cs models.CompanySettings
	err := tx.Order("id").First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := models.NewCompanySettings()
		if err := tx.Create(created).Error; err != nil {
			return nil, err
		}
		return created, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	cs, err := settings(h.db.WithContext(r.Context()))
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cs)
}

// Update replaces the whole document, keeping its id.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.CompanySettings
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.ApplyDefaults()
	if err := validation.Check(&in); err != nil {
		fail(w, h.activity.log, err)
		return
	}
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		existing, err := settings(tx)
		if err != nil {
			return err
		}
		in.ID = existing.ID
		in.CreatedAt = existing.CreatedAt
		return tx.Save(&in).Error
	})
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionUpdate, EntityCompany, in.ID, "Updated company settings: %s", in.CompanyName)
	httpx.JSON(w, http.StatusOK, in)
}

// GenerateInvoiceNumber hands out the next number as plain text and
// advances the counter.
func (h *CompanyHandler) GenerateInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	var number string
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		cs, err := settings(tx)
		if err != nil {
			return err
		}
		cs.ApplyDefaults()
		number = models.FormatInvoiceNumber(cs.InvoicePrefix, cs.NextInvoiceNumber)
		cs.NextInvoiceNumber++
		return tx.Save(cs).Error
	})
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.Text(w, http.StatusOK, number)
}
