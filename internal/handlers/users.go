package handlers

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
)

// AuthorizeFunc checks an action on a specific resource for the caller in
// ctx.
type AuthorizeFunc func(ctx context.Context, action gate.Action, resourceType string, resource any) error

// UserHandler administers accounts. Routes are admin only; the authorize
// callback additionally refuses actions on the caller's own account.
type UserHandler struct {
	db        *gorm.DB
	activity  *ActivityRecorder
	authorize AuthorizeFunc
}

func NewUserHandler(db *gorm.DB, activity *ActivityRecorder, authorize AuthorizeFunc) *UserHandler {
	return &UserHandler{db: db, activity: activity, authorize: authorize}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}
	if err := h.db.WithContext(r.Context()).Order("id").Find(&users).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) find(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	var u models.User
	if err := h.db.WithContext(r.Context()).First(&u, id).Error; err != nil {
		fail(w, h.activity.log, err)
		return nil, false
	}
	return &u, true
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if u, ok := h.find(w, r); ok {
		httpx.JSON(w, http.StatusOK, u)
	}
}

// allowed answers 403 when the caller may not act on u.
func (h *UserHandler) allowed(w http.ResponseWriter, r *http.Request, action gate.Action, u *models.User) bool {
	if err := h.authorize(r.Context(), action, gate.ResourceUser, u); err != nil {
		httpx.Fail(w, http.StatusForbidden, "You cannot modify your own account")
		return false
	}
	return true
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.find(w, r)
	if !ok || !h.allowed(w, r, gate.ActionDelete, u) {
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(u).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionDelete, EntityUser, u.ID, "Deleted user: %s (%s)", u.Username, u.Email)
	writeOK(w)
}

// ToggleStatus flips the enabled flag and returns the account.
func (h *UserHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := h.find(w, r)
	if !ok || !h.allowed(w, r, gate.ActionStatus, u) {
		return
	}
	from, to := accountStatus(u.Enabled), accountStatus(!u.Enabled)
	u.Enabled = !u.Enabled
	if err := h.db.WithContext(r.Context()).Model(u).Update("enabled", u.Enabled).Error; err != nil {
		fail(w, h.activity.log, err)
		return
	}
	h.activity.Record(r, models.ActionStatusChange, EntityUser, u.ID,
		"Changed user %s status from %s to %s", u.Username, from, to)
	httpx.JSON(w, http.StatusOK, u)
}

func accountStatus(enabled bool) string {
	if enabled {
		return "ACTIVE"
	}
	return "INACTIVE"
}
