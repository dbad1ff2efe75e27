package services

import (
	"context"

	"github.com/diewo77/invoicedesk/internal/store"
	"github.com/diewo77/invoicedesk/validation"
)

// Record is an entity the generic controller can cache.
type Record[T any] interface {
	*T
	store.Entity
}

// EntityController is the CRUD screen for clients and products: payloads are
// validated from their struct tags, created entries are appended, updated
// ones replaced in place and deleted ones removed.
type EntityController[T any, P Record[T]] struct {
	View  store.View
	Items *store.Collection[P]

	api     EntityAPI[T]
	canEdit bool
}

func NewEntityController[T any, P Record[T]](api EntityAPI[T], canEdit bool) *EntityController[T, P] {
	return &EntityController[T, P]{
		Items:   store.NewCollection[P](),
		api:     api,
		canEdit: canEdit,
	}
}

func (c *EntityController[T, P]) Load(ctx context.Context) error {
	return store.Load(ctx, &c.View, c.api.List, func(items []T) {
		out := make([]P, len(items))
		for i := range items {
			out[i] = P(&items[i])
		}
		c.Items.Reset(out)
	})
}

// Save creates e when its id is zero and updates it otherwise.
func (c *EntityController[T, P]) Save(ctx context.Context, e P) (P, error) {
	if !c.canEdit {
		return nil, ErrNotAllowed
	}
	if err := validation.Check(e); err != nil {
		return nil, err
	}

	ticket := c.View.Ticket()
	id := e.EntityID()
	var (
		saved *T
		err   error
	)
	if id == 0 {
		saved, err = c.api.Create(ctx, e)
	} else {
		saved, err = c.api.Update(ctx, id, e)
	}
	if err != nil {
		return nil, err
	}
	out := P(saved)
	err = ticket.Apply(func() {
		if id == 0 {
			c.Items.Append(out)
		} else {
			c.Items.Replace(out)
		}
	})
	return out, err
}

func (c *EntityController[T, P]) Delete(ctx context.Context, id uint) error {
	if !c.canEdit {
		return ErrNotAllowed
	}
	ticket := c.View.Ticket()
	if err := c.api.Remove(ctx, id); err != nil {
		return err
	}
	return ticket.Apply(func() { c.Items.Remove(id) })
}
