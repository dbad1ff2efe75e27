package policy

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/internal/models"
)

// AuthGate is the central authorization point of the backend: role
// permissions plus the NotSelf policy on user accounts.
type AuthGate struct {
	Gate *gate.Gate[*gate.Subject]
}

func NewAuthGate() *AuthGate {
	return &AuthGate{Gate: gate.NewRoleGate()}
}

// Authorize checks if the current user can perform an action on a resource.
// Returns nil if authorized, gate.ErrUnauthorized otherwise.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	s, ok := auth.SubjectFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, s, action, resourceType, resource)
}

// CanProfile checks only profile permissions (no policy check).
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	s, ok := auth.SubjectFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, s, action, resourceType)
}

// RequirePermission returns middleware that checks profile permission.
// Anonymous callers get 401, others without the permission 403.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				httpx.Fail(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// UserVerifier accepts tokens whose user still exists and is enabled, and
// refreshes the roles carried by the token from the database.
func UserVerifier(db *gorm.DB) auth.UserVerifier {
	return func(ctx context.Context, s *gate.Subject) (*gate.Subject, bool) {
		var u models.User
		err := db.WithContext(ctx).First(&u, s.ID).Error
		if err != nil || !u.Enabled {
			return nil, false
		}
		return &gate.Subject{ID: u.ID, Username: u.Username, Roles: u.Roles}, true
	}
}
