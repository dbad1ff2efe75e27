package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/invoicedesk/internal/api"
	"github.com/diewo77/invoicedesk/internal/models"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		lang string
		want string
	}{
		{0, "en", "Just now"},
		{59 * time.Second, "en", "Just now"},
		{45 * time.Minute, "en", "45m ago"},
		{5 * time.Hour, "en", "5h ago"},
		{25 * time.Hour, "en", "1d ago"},
		{72 * time.Hour, "en", "3d ago"},
		{0, "fr", "À l'instant"},
		{12 * time.Minute, "fr", "Il y a 12 min"},
		{2 * time.Hour, "fr", "Il y a 2h"},
		{96 * time.Hour, "fr", "Il y a 4j"},
	}
	for _, tt := range tests {
		if got := TimeAgo(tt.lang, now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("TimeAgo(%s, -%v) = %q, want %q", tt.lang, tt.ago, got, tt.want)
		}
	}
}

func activityLogs(n int) []models.ActivityLog {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	logs := make([]models.ActivityLog, n)
	for i := range logs {
		logs[i] = models.ActivityLog{
			ID:         uint(i + 1),
			Username:   fmt.Sprintf("user%d", i%2),
			Action:     models.ActionCreate,
			EntityType: "INVOICE",
			CreatedAt:  models.DateTime{Time: base.Add(-time.Duration(i) * time.Hour)},
		}
	}
	logs[1].Action = models.ActionDelete
	return logs
}

func TestActivityFeed_NonAdminSendsNothing(t *testing.T) {
	backend := &fakeActivity{logs: activityLogs(3)}
	f := NewActivityFeed(backend, managerCaps)
	f.Mount()
	require.NoError(t, f.Load(context.Background()))
	assert.Zero(t, backend.total())
	assert.Empty(t, f.Entries("en", time.Now()))
}

func TestActivityFeed_OncePerMount(t *testing.T) {
	backend := &fakeActivity{logs: activityLogs(8)}
	f := NewActivityFeed(backend, adminCaps)
	f.Mount()
	require.NoError(t, f.Load(context.Background()))
	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, 1, backend.count("paginated"))

	now := time.Date(2024, 3, 10, 12, 0, 30, 0, time.UTC)
	entries := f.Entries("en", now)
	require.Len(t, entries, FeedSize)
	assert.Equal(t, uint(1), entries[0].Log.ID)
	assert.Equal(t, "Just now", entries[0].Ago)
	assert.Equal(t, "4h ago", entries[4].Ago)

	f.Unmount()
	f.Mount()
	assert.Empty(t, f.Entries("en", now))
	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, 2, backend.count("paginated"))
}

func TestActivityLogBrowser(t *testing.T) {
	backend := &fakeActivity{logs: activityLogs(6)}
	b := NewActivityLogBrowser(backend, adminCaps)
	b.View.Mount()

	require.NoError(t, b.LoadOptions(context.Background()))
	assert.Equal(t, []string{"admin"}, b.Options().Usernames)

	page, err := b.Page(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.TotalElements)
	assert.True(t, page.First)
	assert.Len(t, b.Logs(), 6)

	logs, err := b.Filter(context.Background(), api.ActivityFilter{Username: "user1", Action: models.ActionCreate})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, uint(4), logs[0].ID)
	assert.Equal(t, uint(6), logs[1].ID)
	assert.Equal(t, logs, b.Logs())
}

func TestActivityLogBrowser_NotAllowed(t *testing.T) {
	backend := &fakeActivity{}
	b := NewActivityLogBrowser(backend, userCaps)
	b.View.Mount()
	assert.ErrorIs(t, b.LoadOptions(context.Background()), ErrNotAllowed)
	_, err := b.Page(context.Background(), 0, 10)
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = b.Filter(context.Background(), api.ActivityFilter{})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Zero(t, backend.total())
}
