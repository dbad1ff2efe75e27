package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/prefs"
)

func TestManager_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemory()
	m := NewManager(store)

	s, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, "", m.Token(ctx))

	require.NoError(t, m.Set(ctx, &Session{Token: "tok", ID: 3, Username: "alice", Roles: []string{gate.RoleManager}}))

	s, err = m.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "tok", m.Token(ctx))
	assert.True(t, s.Capabilities().CanChangeInvoiceStatus)
	assert.False(t, s.Capabilities().CanManageUsers)

	raw, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.Contains(t, raw, `"token":"tok"`)

	require.NoError(t, m.Clear(ctx))
	require.NoError(t, m.Clear(ctx))
	s, err = m.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestManager_SharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemory()
	a, b := NewManager(store), NewManager(store)

	require.NoError(t, a.Set(ctx, &Session{Token: "x", Username: "bob"}))
	assert.Equal(t, "x", b.Token(ctx))

	require.NoError(t, b.SetLanguage(ctx, "en-GB"))
	assert.Equal(t, "en", a.Language(ctx))
}

func TestManager_CorruptSession(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemory()
	require.NoError(t, store.Set(ctx, KeyUser, "{"))
	_, err := NewManager(store).Get(ctx)
	assert.Error(t, err)
}

func TestManager_Preferences(t *testing.T) {
	ctx := context.Background()
	m := NewManager(prefs.NewMemory())

	assert.Equal(t, "fr", m.Language(ctx))
	assert.False(t, m.SidebarCollapsed(ctx))

	require.NoError(t, m.SetLanguage(ctx, "EN"))
	require.NoError(t, m.SetSidebarCollapsed(ctx, true))
	assert.Equal(t, "en", m.Language(ctx))
	assert.True(t, m.SidebarCollapsed(ctx))
}

func TestManager_Subscribe(t *testing.T) {
	ctx := context.Background()
	m := NewManager(prefs.NewMemory())

	var got []Change
	unsubscribe := m.Subscribe(func(c Change) { got = append(got, c) })

	require.NoError(t, m.Set(ctx, &Session{Username: "carol"}))
	require.NoError(t, m.SetLanguage(ctx, "en"))
	require.NoError(t, m.Clear(ctx))

	require.Len(t, got, 3)
	assert.Equal(t, "carol", got[0].Session.Username)
	assert.Equal(t, Change{Key: KeyLanguage, Value: "en"}, got[1])
	assert.Equal(t, Change{Key: KeyUser}, got[2])

	unsubscribe()
	require.NoError(t, m.SetSidebarCollapsed(ctx, true))
	assert.Len(t, got, 3)
}

func TestSession_NilSafe(t *testing.T) {
	var s *Session
	assert.Equal(t, gate.Capabilities{}, s.Capabilities())
	assert.Nil(t, s.Subject())
}
