package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
)

// Paging defaults of the paginated activity listing.
const (
	DefaultActivityPageSize = 50
	MaxActivityPageSize     = 500
)

// ActivityHandler serves the audit log. Every listing is newest first.
type ActivityHandler struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{db: db, log: slog.Default()}
}

func (h *ActivityHandler) list(w http.ResponseWriter, r *http.Request, query func(*gorm.DB) *gorm.DB) {
	logs := []models.ActivityLog{}
	err := query(h.db.WithContext(r.Context())).Order("created_at DESC").Order("id DESC").Find(&logs).Error
	if err != nil {
		fail(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, logs)
}

func (h *ActivityHandler) All(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db })
}

func (h *ActivityHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db.Where("username = ?", username) })
}

func (h *ActivityHandler) ByEntityType(w http.ResponseWriter, r *http.Request) {
	entityType := r.PathValue("entityType")
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db.Where("entity_type = ?", entityType) })
}

func (h *ActivityHandler) ByAction(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	h.list(w, r, func(db *gorm.DB) *gorm.DB { return db.Where("action = ?", action) })
}

// ByDateRange lists entries between startDate and endDate inclusive.
func (h *ActivityHandler) ByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := models.ParseDateTime(q.Get("startDate"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := models.ParseDateTime(q.Get("endDate"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	h.list(w, r, func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at BETWEEN ? AND ?", start, end)
	})
}

// Filter combines the optional username, entityType and action parameters.
func (h *ActivityHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, func(db *gorm.DB) *gorm.DB {
		for _, col := range []struct{ param, column string }{
			{"username", "username"},
			{"entityType", "entity_type"},
			{"action", "action"},
		} {
			if v := q.Get(col.param); v != "" {
				db = db.Where(col.column+" = ?", v)
			}
		}
		return db
	})
}

func (h *ActivityHandler) Paginated(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", DefaultActivityPageSize)
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultActivityPageSize
	}
	size = min(size, MaxActivityPageSize)

	db := h.db.WithContext(r.Context())
	var total int64
	if err := db.Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		fail(w, h.log, err)
		return
	}
	logs := []models.ActivityLog{}
	err := db.Order("created_at DESC").Order("id DESC").Offset(page * size).Limit(size).Find(&logs).Error
	if err != nil {
		fail(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, models.NewPage(logs, page, size, total))
}

// FilterOptions returns the distinct usernames, entity types and actions.
func (h *ActivityHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	db := h.db.WithContext(r.Context())
	var opts models.ActivityFilterOptions
	for _, col := range []struct {
		column string
		dst    *[]string
	}{
		{"username", &opts.Usernames},
		{"entity_type", &opts.EntityTypes},
		{"action", &opts.Actions},
	} {
		*col.dst = []string{}
		if err := db.Model(&models.ActivityLog{}).Distinct().Order(col.column).Pluck(col.column, col.dst).Error; err != nil {
			fail(w, h.log, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, opts)
}

func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}
