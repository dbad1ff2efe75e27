package gate

import (
	"context"
	"strings"
)

// Role identifiers issued by the identity provider.
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleManager = "ROLE_MANAGER"
	RoleUser    = "ROLE_USER"
)

var rolePermissions = map[string][]Permission{
	RoleAdmin: {PermissionSuperAdmin},
	RoleManager: {
		NewPermission(ResourceInvoice, WildcardAll),
		NewPermission(ResourceProduct, WildcardAll),
		NewPermission(ResourceClient, WildcardAll),
		NewPermission(ResourceCompany, ActionView),
	},
	RoleUser: {
		NewPermission(ResourceInvoice, ActionList),
		NewPermission(ResourceInvoice, ActionView),
		NewPermission(ResourceInvoice, ActionCreate),
		NewPermission(ResourceInvoice, ActionExport),
		NewPermission(ResourceProduct, WildcardAll),
		NewPermission(ResourceClient, WildcardAll),
		NewPermission(ResourceCompany, ActionView),
	},
}

// ProfileForRoles merges the permissions of every known role. Unknown roles
// grant nothing.
func ProfileForRoles(roles []string) *StaticProfile {
	p := NewStaticProfile(strings.Join(roles, ", "))
	for _, r := range roles {
		p.Grant(rolePermissions[r]...)
	}
	return p
}

// Subject is the authenticated caller as seen by the gate.
type Subject struct {
	ID       uint
	Username string
	Roles    []string
}

// HasRole reports whether s carries role.
func (s *Subject) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleResolver resolves a Subject to the profile of its roles.
type RoleResolver struct{}

func (RoleResolver) Resolve(_ context.Context, s *Subject) (Profile, error) {
	if s == nil {
		return nil, nil
	}
	return ProfileForRoles(s.Roles), nil
}

// Capabilities are the UI-visible actions derived from a role set.
type Capabilities struct {
	CanManageUsers         bool
	CanViewActivity        bool
	CanCreateInvoices      bool
	CanEditInvoices        bool
	CanChangeInvoiceStatus bool
	CanDeleteInvoices      bool
	CanExport              bool
	CanManageProducts      bool
	CanManageClients       bool
	CanEditCompany         bool
}

// CapabilitiesFor is the single place role strings are turned into
// capabilities.
func CapabilitiesFor(roles []string) Capabilities {
	p := ProfileForRoles(roles)
	can := func(resource string, action Action) bool {
		return p.HasPermission(NewPermission(resource, action))
	}
	return Capabilities{
		CanManageUsers:         can(ResourceUser, ActionDelete),
		CanViewActivity:        can(ResourceActivity, ActionList),
		CanCreateInvoices:      can(ResourceInvoice, ActionCreate),
		CanEditInvoices:        can(ResourceInvoice, ActionUpdate),
		CanChangeInvoiceStatus: can(ResourceInvoice, ActionStatus),
		CanDeleteInvoices:      can(ResourceInvoice, ActionDelete),
		CanExport:              can(ResourceInvoice, ActionExport),
		CanManageProducts:      can(ResourceProduct, ActionCreate),
		CanManageClients:       can(ResourceClient, ActionCreate),
		CanEditCompany:         can(ResourceCompany, ActionUpdate),
	}
}
