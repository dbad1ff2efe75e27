// Package gate turns role sets into permissions and capabilities, and
// authorizes actions on resources. A Gate combines the caller's profile
// permissions with optional per-resource policies.
//
// The package has no dependency on domain models; resources reach policies as
// plain values.
package gate

import "context"

// Policy adds resource-specific rules on top of profile permissions.
type Policy[U any] interface {
	// Can returns true if user may perform action on resource. resource is
	// nil for list/create checks.
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// Gate authorizes actions in two steps:
//  1. the user's profile must hold resource:action
//  2. if a policy is registered for the resource type and a resource is given,
//     the policy must allow it
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate over resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register sets the policy for a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized when the zero user, a missing profile, a
// missing permission or a failing policy denies the action.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	if !g.CanProfile(ctx, user, action, resourceType) {
		return ErrUnauthorized
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, user, action, resource) {
			return ErrUnauthorized
		}
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission. Used to show or hide
// actions before a specific resource is known.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}

// Identified is implemented by resources that expose their id.
type Identified interface {
	EntityID() uint
}

// NotSelf denies delete and status actions on the subject's own account.
func NotSelf() Policy[*Subject] {
	return PolicyFunc[*Subject](func(_ context.Context, s *Subject, action Action, resource any) bool {
		if action != ActionDelete && action != ActionStatus {
			return true
		}
		r, ok := resource.(Identified)
		return !ok || s == nil || r.EntityID() != s.ID
	})
}

// NewRoleGate returns the gate used by the application: role profiles plus
// the NotSelf policy on users.
func NewRoleGate() *Gate[*Subject] {
	g := New[*Subject](RoleResolver{})
	g.Register(ResourceUser, NotSelf())
	return g
}
