package handlers

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/validation"
)

type AuthHandler struct {
	db       *gorm.DB
	issuer   *auth.Issuer
	activity *ActivityRecorder
}

func NewAuthHandler(db *gorm.DB, issuer *auth.Issuer, activity *ActivityRecorder) *AuthHandler {
	return &AuthHandler{db: db, issuer: issuer, activity: activity}
}

type signInRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// SignInResponse is the session descriptor handed to clients.
type SignInResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// SignIn exchanges a username and password for a bearer token.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validation.Check(&req); err != nil {
		fail(w, h.activity.log, err)
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Fail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httpx.Fail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !user.Enabled {
		httpx.Fail(w, http.StatusUnauthorized, "Account is disabled")
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Username, user.Roles)
	if err != nil {
		fail(w, h.activity.log, err)
		return
	}
	subject := &gate.Subject{ID: user.ID, Username: user.Username, Roles: user.Roles}
	h.activity.Record(r.WithContext(auth.WithSubject(r.Context(), subject)),
		models.ActionLogin, EntityUser, user.ID, "User %s signed in", user.Username)

	roles := []string(user.Roles)
	if roles == nil {
		roles = []string{}
	}
	httpx.JSON(w, http.StatusOK, SignInResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	})
}
