package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/session"
)

// InvoiceRequest is the create/update payload of an invoice. Amounts are
// computed by the backend.
type InvoiceRequest struct {
	CustomerName string               `json:"customerName"`
	Items        []InvoiceItemRequest `json:"items"`
}

type InvoiceItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type InvoiceService struct {
	*Resource[models.Invoice]
}

// UpdateStatus moves invoice id to status and returns the stored invoice.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	var out models.Invoice
	err := s.c.do(ctx, request{
		method: http.MethodPut,
		path:   idPath(s.path, id, "status"),
		query:  url.Values{"status": {string(status)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Search lists invoices whose customer name contains name.
func (s *InvoiceService) Search(ctx context.Context, name string) ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.c.do(ctx, request{method: http.MethodGet, path: s.path + "/search/" + url.PathEscape(name)}, &out)
	return out, err
}

type UserService struct {
	*Resource[models.User]
}

// ToggleStatus flips the enabled flag of user id.
func (s *UserService) ToggleStatus(ctx context.Context, id uint) (*models.User, error) {
	var out models.User
	if err := s.c.do(ctx, request{method: http.MethodPut, path: idPath(s.path, id, "toggle-status")}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CompanyService struct {
	c *Client
}

func (s *CompanyService) Get(ctx context.Context) (*models.CompanySettings, error) {
	var out models.CompanySettings
	if err := s.c.do(ctx, request{method: http.MethodGet, path: "company"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update saves the whole settings document.
func (s *CompanyService) Update(ctx context.Context, cs *models.CompanySettings) (*models.CompanySettings, error) {
	var out models.CompanySettings
	if err := s.c.do(ctx, request{method: http.MethodPut, path: "company", body: cs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateInvoiceNumber reserves the next number on the backend. The answer
// is a bare string, quoted or not.
func (s *CompanyService) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	raw, err := s.c.send(ctx, request{method: http.MethodPost, path: "company/generate-invoice-number"})
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(raw))
	if uq, err := strconv.Unquote(v); err == nil {
		v = uq
	}
	return v, nil
}

// ActivityFilter narrows the audit log; empty fields are ignored.
type ActivityFilter struct {
	Username   string
	EntityType string
	Action     string
}

type ActivityService struct {
	c *Client
}

const activityPath = "activity-logs"

func (s *ActivityService) list(ctx context.Context, path string, q url.Values) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	if err := s.c.do(ctx, request{method: http.MethodGet, path: path, query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// All returns every entry, most recent first.
func (s *ActivityService) All(ctx context.Context) ([]models.ActivityLog, error) {
	return s.list(ctx, activityPath, nil)
}

func (s *ActivityService) Paginated(ctx context.Context, page, size int) (*models.Page[models.ActivityLog], error) {
	var out models.Page[models.ActivityLog]
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	if err := s.c.do(ctx, request{method: http.MethodGet, path: activityPath + "/paginated", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ActivityService) Filter(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error) {
	q := url.Values{}
	for k, v := range map[string]string{"username": f.Username, "entityType": f.EntityType, "action": f.Action} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return s.list(ctx, activityPath+"/filter", q)
}

func (s *ActivityService) FilterOptions(ctx context.Context) (*models.ActivityFilterOptions, error) {
	var out models.ActivityFilterOptions
	if err := s.c.do(ctx, request{method: http.MethodGet, path: activityPath + "/filters-options"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ActivityService) ByUsername(ctx context.Context, username string) ([]models.ActivityLog, error) {
	return s.list(ctx, activityPath+"/user/"+url.PathEscape(username), nil)
}

func (s *ActivityService) ByEntityType(ctx context.Context, entityType string) ([]models.ActivityLog, error) {
	return s.list(ctx, activityPath+"/entity/"+url.PathEscape(entityType), nil)
}

func (s *ActivityService) ByAction(ctx context.Context, action string) ([]models.ActivityLog, error) {
	return s.list(ctx, activityPath+"/action/"+url.PathEscape(action), nil)
}

// ByDateRange returns entries created between start and end inclusive.
func (s *ActivityService) ByDateRange(ctx context.Context, start, end time.Time) ([]models.ActivityLog, error) {
	const layout = "2006-01-02T15:04:05"
	q := url.Values{"startDate": {start.Format(layout)}, "endDate": {end.Format(layout)}}
	return s.list(ctx, activityPath+"/date-range", q)
}

type AuthService struct {
	c *Client
}

// SignIn exchanges credentials for a session descriptor. The caller stores
// it through the session manager.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*session.Session, error) {
	var out session.Session
	body := map[string]string{"username": username, "password": password}
	if err := s.c.do(ctx, request{method: http.MethodPost, path: "auth/signin", body: body, anonymous: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
