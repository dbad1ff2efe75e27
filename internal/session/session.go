// Package session is the single owner of the process-wide client state: the
// signed-in user, the language and the compact-output flag. Components read
// and change it through a Manager; nothing else touches the prefs store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/i18n"
	"github.com/diewo77/invoicedesk/internal/prefs"
)

// Keys under which state is persisted.
const (
	KeyUser             = "user"
	KeyLanguage         = "language"
	KeySidebarCollapsed = "sidebarCollapsed"
)

// Session is the descriptor returned by the sign-in endpoint.
type Session struct {
	Token    string   `json:"token"`
	Type     string   `json:"type,omitempty"`
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
}

// Capabilities derives the UI capabilities of the session's roles.
func (s *Session) Capabilities() gate.Capabilities {
	if s == nil {
		return gate.Capabilities{}
	}
	return gate.CapabilitiesFor(s.Roles)
}

// Subject returns the gate subject for s, or nil for no session.
func (s *Session) Subject() *gate.Subject {
	if s == nil {
		return nil
	}
	return &gate.Subject{ID: s.ID, Username: s.Username, Roles: s.Roles}
}

// Change describes a mutation delivered to subscribers.
type Change struct {
	Key     string
	Session *Session // set for KeyUser; nil after Clear
	Value   string   // set for the other keys
}

// Manager reads and writes session state. Mutations are visible to the next
// read from any component and are pushed to subscribers synchronously.
type Manager struct {
	store prefs.Store

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Change)
}

func NewManager(store prefs.Store) *Manager {
	return &Manager{store: store, subs: make(map[int]func(Change))}
}

// Get returns the current session, or nil when signed out.
func (m *Manager) Get(ctx context.Context) (*Session, error) {
	raw, err := m.store.Get(ctx, KeyUser)
	if errors.Is(err, prefs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &s, nil
}

// Token returns the bearer token of the current session, or "".
func (m *Manager) Token(ctx context.Context) string {
	s, err := m.Get(ctx)
	if err != nil || s == nil {
		return ""
	}
	return s.Token
}

func (m *Manager) Set(ctx context.Context, s *Session) error {
	if s == nil {
		return m.Clear(ctx)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, KeyUser, string(b)); err != nil {
		return err
	}
	m.publish(Change{Key: KeyUser, Session: s})
	return nil
}

// Clear signs out. It is safe to call without a session.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, KeyUser); err != nil {
		return err
	}
	m.publish(Change{Key: KeyUser})
	return nil
}

// Language returns the stored language, French by default.
func (m *Manager) Language(ctx context.Context) string {
	v, err := m.store.Get(ctx, KeyLanguage)
	if err != nil || v == "" {
		return i18n.Default
	}
	return i18n.Normalize(v)
}

func (m *Manager) SetLanguage(ctx context.Context, lang string) error {
	lang = i18n.Normalize(lang)
	if err := m.store.Set(ctx, KeyLanguage, lang); err != nil {
		return err
	}
	m.publish(Change{Key: KeyLanguage, Value: lang})
	return nil
}

// SidebarCollapsed is the compact-output flag; false when unset or invalid.
func (m *Manager) SidebarCollapsed(ctx context.Context) bool {
	v, err := m.store.Get(ctx, KeySidebarCollapsed)
	if err != nil {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func (m *Manager) SetSidebarCollapsed(ctx context.Context, collapsed bool) error {
	v := strconv.FormatBool(collapsed)
	if err := m.store.Set(ctx, KeySidebarCollapsed, v); err != nil {
		return err
	}
	m.publish(Change{Key: KeySidebarCollapsed, Value: v})
	return nil
}

// Subscribe registers fn for every mutation and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(Change)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish(c Change) {
	m.mu.Lock()
	fns := make([]func(Change), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
