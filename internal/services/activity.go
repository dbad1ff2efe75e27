package services

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/store"
)

// FeedSize is the number of entries shown in the notification feed.
const FeedSize = 5

// ActivityAPI is the read side of the audit log.
type ActivityAPI interface {
	Paginated(ctx context.Context, page, size int) (*models.Page[models.ActivityLog], error)
	Filter(ctx context.Context, f api.ActivityFilter) ([]models.ActivityLog, error)
	FilterOptions(ctx context.Context) (*models.ActivityFilterOptions, error)
}

// TimeAgo renders how long before now t happened. The coarsest bucket that
// applies wins: under a minute, minutes below an hour, hours below a day,
// then days.
func TimeAgo(lang string, t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return i18n.T(lang, "time.just_now")
	case d < time.Hour:
		return i18n.Tf(lang, "time.minutes", int(d/time.Minute))
	case d < 24*time.Hour:
		return i18n.Tf(lang, "time.hours", int(d/time.Hour))
	}
	return i18n.Tf(lang, "time.days", int(d/(24*time.Hour)))
}

// FeedEntry is a feed line with its display time.
type FeedEntry struct {
	Log models.ActivityLog
	Ago string
}

// ActivityFeed is the admin notification feed. It is fetched once per
// mount and never refreshed.
type ActivityFeed struct {
	View store.View

	api  ActivityAPI
	caps gate.Capabilities

	mu      sync.Mutex
	fetched bool
	entries []models.ActivityLog
}

func NewActivityFeed(api ActivityAPI, caps gate.Capabilities) *ActivityFeed {
	return &ActivityFeed{api: api, caps: caps}
}

// Mount starts a new page visit and allows one more fetch.
func (f *ActivityFeed) Mount() {
	f.mu.Lock()
	f.fetched = false
	f.entries = nil
	f.mu.Unlock()
	f.View.Mount()
}

func (f *ActivityFeed) Unmount() { f.View.Unmount() }

// Load fetches the most recent entries. Sessions that cannot view activity
// and repeated calls within one mount send nothing.
func (f *ActivityFeed) Load(ctx context.Context) error {
	if !f.caps.CanViewActivity {
		return nil
	}
	f.mu.Lock()
	if f.fetched {
		f.mu.Unlock()
		return nil
	}
	f.fetched = true
	f.mu.Unlock()

	return store.Load(ctx, &f.View, func(ctx context.Context) ([]models.ActivityLog, error) {
		page, err := f.api.Paginated(ctx, 0, FeedSize)
		if err != nil {
			return nil, err
		}
		return page.Content, nil
	}, func(logs []models.ActivityLog) {
		if len(logs) > FeedSize {
			logs = logs[:FeedSize]
		}
		f.mu.Lock()
		f.entries = logs
		f.mu.Unlock()
	})
}

// Entries returns the feed with display times relative to now.
func (f *ActivityFeed) Entries(lang string, now time.Time) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FeedEntry, len(f.entries))
	for i, l := range f.entries {
		out[i] = FeedEntry{Log: l, Ago: TimeAgo(lang, l.CreatedAt.Time, now)}
	}
	return out
}

// ActivityLogBrowser is the admin audit log page: filters, their options and
// pagination.
type ActivityLogBrowser struct {
	View store.View

	api  ActivityAPI
	caps gate.Capabilities

	mu      sync.Mutex
	options models.ActivityFilterOptions
	page    models.Page[models.ActivityLog]
	logs    []models.ActivityLog
}

func NewActivityLogBrowser(api ActivityAPI, caps gate.Capabilities) *ActivityLogBrowser {
	return &ActivityLogBrowser{api: api, caps: caps}
}

// LoadOptions fetches the distinct usernames, entity types and actions.
func (b *ActivityLogBrowser) LoadOptions(ctx context.Context) error {
	if !b.caps.CanViewActivity {
		return ErrNotAllowed
	}
	return store.Load(ctx, &b.View, b.api.FilterOptions, func(o *models.ActivityFilterOptions) {
		b.mu.Lock()
		b.options = *o
		b.mu.Unlock()
	})
}

func (b *ActivityLogBrowser) Options() models.ActivityFilterOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options
}

// Page loads page number n of size entries.
func (b *ActivityLogBrowser) Page(ctx context.Context, n, size int) (models.Page[models.ActivityLog], error) {
	if !b.caps.CanViewActivity {
		return models.Page[models.ActivityLog]{}, ErrNotAllowed
	}
	err := store.Load(ctx, &b.View, func(ctx context.Context) (*models.Page[models.ActivityLog], error) {
		return b.api.Paginated(ctx, n, size)
	}, func(p *models.Page[models.ActivityLog]) {
		b.mu.Lock()
		b.page = *p
		b.logs = p.Content
		b.mu.Unlock()
	})
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page, err
}

// Filter loads the entries matching every non-empty field of f.
func (b *ActivityLogBrowser) Filter(ctx context.Context, f api.ActivityFilter) ([]models.ActivityLog, error) {
	if !b.caps.CanViewActivity {
		return nil, ErrNotAllowed
	}
	err := store.Load(ctx, &b.View, func(ctx context.Context) ([]models.ActivityLog, error) {
		return b.api.Filter(ctx, f)
	}, func(logs []models.ActivityLog) {
		b.mu.Lock()
		b.logs = logs
		b.mu.Unlock()
	})
	return b.Logs(), err
}

// Logs returns the entries of the last Page or Filter call.
func (b *ActivityLogBrowser) Logs() []models.ActivityLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.ActivityLog(nil), b.logs...)
}
