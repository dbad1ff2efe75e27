// Package handlers implements the JSON REST backend used for local work
// and end-to-end tests: CRUD for clients, products and invoices, the
// company settings singleton, user administration and the activity log.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/validation"
)

// Entity types recorded in the activity log.
const (
	EntityInvoice = "INVOICE"
	EntityProduct = "PRODUCT"
	EntityClient  = "CLIENT"
	EntityUser    = "USER"
	EntityCompany = "COMPANY"
)

// badRequest is a client error raised inside a transaction.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

// pathID parses the {id} wildcard. It answers 400 and returns false when
// the id is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// fail maps an error to its answer: violations 400 with details, bad
// requests 400, missing records 404, anything else 500.
func fail(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		v  validation.Violations
		br *badRequest
	)
	switch {
	case errors.As(err, &v):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
	case errors.As(err, &br):
		httpx.Fail(w, http.StatusBadRequest, br.msg)
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.Fail(w, http.StatusNotFound, "not found")
	default:
		log.Error("request failed", "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}

func writeOK(w http.ResponseWriter) { w.WriteHeader(http.StatusOK) }

// ActivityRecorder appends audit entries for the authenticated caller.
type ActivityRecorder struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewActivityRecorder(db *gorm.DB, log *slog.Logger) *ActivityRecorder {
	return &ActivityRecorder{db: db, log: log}
}

// Record stores one entry. A failure is logged; the request it describes
// has already succeeded.
func (a *ActivityRecorder) Record(r *http.Request, action, entityType string, id uint, format string, args ...any) {
	entry := models.ActivityLog{
		Username:   "Anonymous",
		UserRole:   "UNKNOWN",
		Action:     action,
		EntityType: entityType,
		Details:    truncate(fmt.Sprintf(format, args...), 1000),
		IPAddress:  clientIP(r),
	}
	if s, ok := auth.SubjectFromContext(r.Context()); ok {
		entry.Username = s.Username
		entry.UserRole = strings.Join(s.Roles, ", ")
	}
	if id != 0 {
		entry.TargetID = &id
	}
	if err := a.db.WithContext(r.Context()).Create(&entry).Error; err != nil {
		a.log.Warn("record activity", "action", action, "entity", entityType, "error", err)
	}
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
