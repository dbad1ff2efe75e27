package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/invoicedesk/auth"
	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/httpx"
	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	log       *slog.Logger
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig, log *slog.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		log:       log,
	}
	app.setupRoutes()
	app.handler = withLogging(log, auth.Middleware(routerCfg.Issuer, routerCfg.Verifier)(withPreferences(app.mux)))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("POST /api/auth/signin", a.routerCfg.AuthHandler.SignIn)
	a.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Products
	ph := a.routerCfg.ProductHandler
	a.route("GET /api/products", gate.ResourceProduct, gate.ActionList, ph.List)
	a.route("GET /api/products/low-stock", gate.ResourceProduct, gate.ActionList, ph.LowStock)
	a.route("GET /api/products/category/{category}", gate.ResourceProduct, gate.ActionList, ph.ByCategory)
	a.route("GET /api/products/search/{name}", gate.ResourceProduct, gate.ActionList, ph.Search)
	a.route("GET /api/products/{id}", gate.ResourceProduct, gate.ActionView, ph.Get)
	a.route("POST /api/products", gate.ResourceProduct, gate.ActionCreate, ph.Create)
	a.route("PUT /api/products/{id}", gate.ResourceProduct, gate.ActionUpdate, ph.Update)
	a.route("DELETE /api/products/{id}", gate.ResourceProduct, gate.ActionDelete, ph.Delete)

	// Clients
	ch := a.routerCfg.ClientHandler
	a.route("GET /api/clients", gate.ResourceClient, gate.ActionList, ch.List)
	a.route("GET /api/clients/search", gate.ResourceClient, gate.ActionList, ch.Search)
	a.route("GET /api/clients/{id}", gate.ResourceClient, gate.ActionView, ch.Get)
	a.route("POST /api/clients", gate.ResourceClient, gate.ActionCreate, ch.Create)
	a.route("PUT /api/clients/{id}", gate.ResourceClient, gate.ActionUpdate, ch.Update)
	a.route("DELETE /api/clients/{id}", gate.ResourceClient, gate.ActionDelete, ch.Delete)

	// Invoices
	ih := a.routerCfg.InvoiceHandler
	a.route("GET /api/invoices", gate.ResourceInvoice, gate.ActionList, ih.List)
	a.route("GET /api/invoices/search/{customerName}", gate.ResourceInvoice, gate.ActionList, ih.Search)
	a.route("GET /api/invoices/{id}", gate.ResourceInvoice, gate.ActionView, ih.Get)
	a.route("GET /api/invoices/{id}/preview/html", gate.ResourceInvoice, gate.ActionExport, ih.Preview)
	a.route("POST /api/invoices", gate.ResourceInvoice, gate.ActionCreate, ih.Create)
	a.route("PUT /api/invoices/{id}", gate.ResourceInvoice, gate.ActionUpdate, ih.Update)
	a.route("PUT /api/invoices/{id}/status", gate.ResourceInvoice, gate.ActionStatus, ih.UpdateStatus)
	a.route("DELETE /api/invoices/{id}", gate.ResourceInvoice, gate.ActionDelete, ih.Delete)

	// Company settings
	sh := a.routerCfg.CompanyHandler
	a.route("GET /api/company", gate.ResourceCompany, gate.ActionView, sh.Get)
	a.route("PUT /api/company", gate.ResourceCompany, gate.ActionUpdate, sh.Update)
	a.route("POST /api/company/generate-invoice-number", gate.ResourceCompany, gate.ActionUpdate, sh.GenerateInvoiceNumber)

	// Admin: users and activity log
	uh := a.routerCfg.UserHandler
	a.route("GET /api/users", gate.ResourceUser, gate.ActionList, uh.List)
	a.route("GET /api/users/{id}", gate.ResourceUser, gate.ActionView, uh.Get)
	a.route("DELETE /api/users/{id}", gate.ResourceUser, gate.ActionDelete, uh.Delete)
	a.route("PUT /api/users/{id}/toggle-status", gate.ResourceUser, gate.ActionStatus, uh.ToggleStatus)

	lh := a.routerCfg.ActivityHandler
	a.route("GET /api/activity-logs", gate.ResourceActivity, gate.ActionList, lh.All)
	a.route("GET /api/activity-logs/paginated", gate.ResourceActivity, gate.ActionList, lh.Paginated)
	a.route("GET /api/activity-logs/user/{username}", gate.ResourceActivity, gate.ActionList, lh.ByUsername)
	a.route("GET /api/activity-logs/entity/{entityType}", gate.ResourceActivity, gate.ActionList, lh.ByEntityType)
	a.route("GET /api/activity-logs/action/{action}", gate.ResourceActivity, gate.ActionList, lh.ByAction)
	a.route("GET /api/activity-logs/date-range", gate.ResourceActivity, gate.ActionList, lh.ByDateRange)
	a.route("GET /api/activity-logs/filter", gate.ResourceActivity, gate.ActionList, lh.Filter)
	a.route("GET /api/activity-logs/filters-options", gate.ResourceActivity, gate.ActionList, lh.FilterOptions)
}

// route registers h behind authentication and the resource permission.
func (a *App) route(pattern, resourceType string, action gate.Action, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.routerCfg.AuthGate.RequirePermission(resourceType, action)(h))
}

// withPreferences resolves the response language from ?lang=, then the
// lang cookie, then Accept-Language.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    i18n.Normalize(lang),
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request.
func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
