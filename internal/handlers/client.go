package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/validation"
)

type ClientHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

func NewClientHandler(db *gorm.DB, activity *ActivityRecorder) *ClientHandler {
	return &ClientHandler{db: db, activity: activity}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients := []models.Client{}
	if err := h.db.WithContext(r.Context()).Order("id").Find(&clients).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

// Search matches the query against name, company name and email.
func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := "%" + strings.ToLower(r.URL.Query().Get("query")) + "%"
	clients := []models.Client{}
	err := h.db.WithContext(r.Context()).
		Where("LOWER(name) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(email) LIKE ?", q, q, q).
		Order("id").Find(&clients).Error
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) find(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	var c models.Client
	if err := h.db.WithContext(r.Context()).First(&c, id).Error; err != nil {
		fail(w, h.activity.log, err)
		return nil, false
	}
	return &c, true
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	if c, ok := h.find(w, r); ok {
		httpx.JSON(w, http.StatusOK, c)
	}
}

// emailTaken reports whether another client already uses email.
func (h *ClientHandler) emailTaken(r *http.Request, email string, except uint) (bool, error) {
	if email == "" {
		return false, nil
	}
	var other models.Client
	err := h.db.WithContext(r.Context()).Where("email = ? AND id <> ?", email, except).First(&other).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (h *ClientHandler) save(w http.ResponseWriter, r *http.Request, c *models.Client) bool {
	if err := validation.Check(c); err != nil {
		fail(w, h.activity.log, err)
		return false
	}
	taken, err := h.emailTaken(r, c.Email, c.ID)
	if err != nil {
		fail(w, h.activity.log, err)
		return false
	}
	if taken {
		httpx.Fail(w, http.StatusBadRequest, "Email already exists")
		return false
	}
	if err := h.db.WithContext(r.Context()).Save(c).Error; err != nil {
		fail(w, h.activity.log, err)
		return false
	}
	return true
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Client
	if err := httpx.Decode(r, &c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c.ID = 0
	if !h.save(w, r, &c) {
		return
	}
	h.activity.Record(r, models.ActionCreate, EntityClient, c.ID,
		"Created client: %s, company: %s, email: %s", c.Name, c.CompanyName, c.Email)
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.find(w, r)
	if !ok {
		return
	}
	var c models.Client
	if err := httpx.Decode(r, &c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c.ID = existing.ID
	if !h.save(w, r, &c) {
		return
	}
	h.activity.Record(r, models.ActionUpdate, EntityClient, c.ID,
		"Updated client: %s, company: %s", c.Name, c.CompanyName)
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.find(w, r)
	if !ok {
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(c).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionDelete, EntityClient, c.ID,
		"Deleted client: %s, company: %s", c.Name, c.CompanyName)
	writeOK(w)
}
