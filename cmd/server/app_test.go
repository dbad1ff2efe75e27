package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/internal/policy"
)

func TestNewApp_Routes(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var app *App
	require.NotPanics(t, func() {
		app = NewApp(policy.NewRouterConfig(nil, auth.NewIssuer("s", time.Hour), log), log)
	})

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/invoices/search/preview", http.StatusUnauthorized},
		{http.MethodGet, "/api/invoices/7/preview/html", http.StatusUnauthorized},
		{http.MethodPut, "/api/invoices/7/status", http.StatusUnauthorized},
		{http.MethodGet, "/api/products/search/bolt", http.StatusUnauthorized},
		{http.MethodGet, "/api/activity-logs/user/admin", http.StatusUnauthorized},
		{http.MethodGet, "/api/invoices/7/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
