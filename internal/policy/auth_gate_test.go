package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/models"
)

func TestRequirePermission(t *testing.T) {
	ag := NewAuthGate()
	h := ag.RequirePermission(gate.ResourceInvoice, gate.ActionDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name    string
		subject *gate.Subject
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", &gate.Subject{ID: 2, Username: "bob", Roles: []string{gate.RoleUser}}, http.StatusForbidden},
		{"manager", &gate.Subject{ID: 3, Username: "ann", Roles: []string{gate.RoleManager}}, http.StatusNoContent},
		{"admin", &gate.Subject{ID: 1, Username: "admin", Roles: []string{gate.RoleAdmin}}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/invoices/1", nil)
			if tc.subject != nil {
				req = req.WithContext(auth.WithSubject(req.Context(), tc.subject))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAuthorize_NotSelf(t *testing.T) {
	ag := NewAuthGate()
	admin := &gate.Subject{ID: 1, Username: "admin", Roles: []string{gate.RoleAdmin}}
	ctx := auth.WithSubject(context.Background(), admin)

	err := ag.Authorize(ctx, gate.ActionDelete, gate.ResourceUser, &models.User{ID: 1})
	assert.Error(t, err)
	assert.NoError(t, ag.Authorize(ctx, gate.ActionDelete, gate.ResourceUser, &models.User{ID: 2}))

	assert.ErrorIs(t, ag.Authorize(context.Background(), gate.ActionList, gate.ResourceUser, nil), gate.ErrUnauthorized)
	assert.False(t, ag.CanProfile(context.Background(), gate.ActionList, gate.ResourceUser))
}

func TestUserVerifier(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:policy_verifier?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))

	active := models.User{Username: "ann", Email: "ann@example.com", Password: "x", Roles: models.RoleSet{gate.RoleManager}, Enabled: true}
	require.NoError(t, db.Create(&active).Error)
	disabled := models.User{Username: "bob", Email: "bob@example.com", Password: "x", Roles: models.RoleSet{gate.RoleUser}, Enabled: true}
	require.NoError(t, db.Create(&disabled).Error)
	require.NoError(t, db.Model(&disabled).Update("enabled", false).Error)

	verify := UserVerifier(db)
	ctx := context.Background()

	s, ok := verify(ctx, &gate.Subject{ID: active.ID, Username: "ann", Roles: []string{gate.RoleAdmin}})
	require.True(t, ok)
	assert.Equal(t, []string{gate.RoleManager}, s.Roles)

	_, ok = verify(ctx, &gate.Subject{ID: disabled.ID})
	assert.False(t, ok)
	_, ok = verify(ctx, &gate.Subject{ID: 999})
	assert.False(t, ok)
}
