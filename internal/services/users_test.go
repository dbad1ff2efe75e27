package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/models"
)

func newUserFixture(t *testing.T, subject *gate.Subject) (*UserController, *fakeUsers) {
	t.Helper()
	backend := &fakeUsers{users: []models.User{
		{ID: 1, Username: "admin", Roles: models.RoleSet{gate.RoleAdmin}, Enabled: true},
		{ID: 2, Username: "bob", Roles: models.RoleSet{gate.RoleUser}, Enabled: true},
	}}
	c := NewUserController(backend, subject)
	c.View.Mount()
	return c, backend
}

func TestUserController_SelfActionsRefused(t *testing.T) {
	admin := &gate.Subject{ID: 1, Username: "admin", Roles: []string{gate.RoleAdmin}}
	c, backend := newUserFixture(t, admin)
	require.NoError(t, c.Load(context.Background()))
	self, _ := c.Users.Find(1)

	assert.ErrorIs(t, c.Delete(context.Background(), self), gate.ErrSelfAction)
	_, err := c.ToggleStatus(context.Background(), self)
	assert.ErrorIs(t, err, gate.ErrSelfAction)
	assert.False(t, c.Can(context.Background(), gate.ActionDelete, self))
	assert.Zero(t, backend.count("remove"))
	assert.Zero(t, backend.count("toggle"))
}

func TestUserController_ToggleOther(t *testing.T) {
	admin := &gate.Subject{ID: 1, Username: "admin", Roles: []string{gate.RoleAdmin}}
	c, backend := newUserFixture(t, admin)
	require.NoError(t, c.Load(context.Background()))
	bob, _ := c.Users.Find(2)
	require.True(t, c.Can(context.Background(), gate.ActionStatus, bob))

	updated, err := c.ToggleStatus(context.Background(), bob)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	got, _ := c.Users.Find(2)
	assert.Same(t, updated, got)
	assert.True(t, bob.Enabled)

	require.NoError(t, c.Delete(context.Background(), got))
	assert.Equal(t, 1, backend.count("remove"))
	assert.Equal(t, 1, c.Users.Len())
}

func TestUserController_NonAdmin(t *testing.T) {
	manager := &gate.Subject{ID: 5, Username: "mia", Roles: []string{gate.RoleManager}}
	c, backend := newUserFixture(t, manager)

	assert.ErrorIs(t, c.Load(context.Background()), ErrNotAllowed)
	err := c.Delete(context.Background(), &models.User{ID: 2})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Zero(t, backend.total())
}
