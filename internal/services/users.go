package services

import (
	"context"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/internal/models"
	"github.com/diewo77/invoicedesk/internal/store"
)

// UserAPI is the user administration surface.
type UserAPI interface {
	List(ctx context.Context) ([]models.User, error)
	Remove(ctx context.Context, id uint) error
	ToggleStatus(ctx context.Context, id uint) (*models.User, error)
}

// UserController backs the user administration page. Deleting or disabling
// the signed-in account is refused before any request.
type UserController struct {
	View  store.View
	Users *store.Collection[*models.User]

	api     UserAPI
	gate    *gate.Gate[*gate.Subject]
	subject *gate.Subject
}

func NewUserController(api UserAPI, subject *gate.Subject) *UserController {
	return &UserController{
		Users:   store.NewCollection[*models.User](),
		api:     api,
		gate:    gate.NewRoleGate(),
		subject: subject,
	}
}

func (c *UserController) Load(ctx context.Context) error {
	if !c.gate.CanProfile(ctx, c.subject, gate.ActionList, gate.ResourceUser) {
		return ErrNotAllowed
	}
	return store.Load(ctx, &c.View, c.api.List, func(users []models.User) {
		c.Users.Reset(store.Pointers(users))
	})
}

// Can reports whether action is offered for u, so the control can be
// disabled up front.
func (c *UserController) Can(ctx context.Context, action gate.Action, u *models.User) bool {
	return c.authorize(ctx, action, u) == nil
}

func (c *UserController) authorize(ctx context.Context, action gate.Action, u *models.User) error {
	if c.subject != nil && u != nil && u.ID == c.subject.ID && (action == gate.ActionDelete || action == gate.ActionStatus) {
		return gate.ErrSelfAction
	}
	var resource any
	if u != nil {
		resource = u
	}
	if err := c.gate.Authorize(ctx, c.subject, action, gate.ResourceUser, resource); err != nil {
		return ErrNotAllowed
	}
	return nil
}

// ToggleStatus flips the enabled flag of u and replaces the cached entry.
func (c *UserController) ToggleStatus(ctx context.Context, u *models.User) (*models.User, error) {
	if err := c.authorize(ctx, gate.ActionStatus, u); err != nil {
		return nil, err
	}
	ticket := c.View.Ticket()
	updated, err := c.api.ToggleStatus(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return updated, ticket.Apply(func() { c.Users.Replace(updated) })
}

// Delete removes u on the backend and from the cache.
func (c *UserController) Delete(ctx context.Context, u *models.User) error {
	if err := c.authorize(ctx, gate.ActionDelete, u); err != nil {
		return err
	}
	ticket := c.View.Ticket()
	if err := c.api.Remove(ctx, u.ID); err != nil {
		return err
	}
	return ticket.Apply(func() { c.Users.Remove(u.ID) })
}
