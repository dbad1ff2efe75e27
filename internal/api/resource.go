package api

import (
	"context"
	"net/http"
)

// Resource is the CRUD surface of one entity collection.
type Resource[T any] struct {
	c    *Client
	path string
}

func newResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.do(ctx, request{method: http.MethodGet, path: r.path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id uint) (*T, error) {
	out := new(T)
	if err := r.c.do(ctx, request{method: http.MethodGet, path: idPath(r.path, id)}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts payload and returns the server's record.
func (r *Resource[T]) Create(ctx context.Context, payload any) (*T, error) {
	out := new(T)
	if err := r.c.do(ctx, request{method: http.MethodPost, path: r.path, body: payload}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces record id with payload and returns the server's record.
func (r *Resource[T]) Update(ctx context.Context, id uint, payload any) (*T, error) {
	out := new(T)
	if err := r.c.do(ctx, request{method: http.MethodPut, path: idPath(r.path, id), body: payload}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Remove(ctx context.Context, id uint) error {
	return r.c.do(ctx, request{method: http.MethodDelete, path: idPath(r.path, id)}, nil)
}
