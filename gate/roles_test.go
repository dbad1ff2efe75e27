package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diewo77/invoicedesk/gate"
)

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  gate.Capabilities
	}{
		{
			name:  "admin",
			roles: []string{gate.RoleAdmin},
			want: gate.Capabilities{
				CanManageUsers: true, CanViewActivity: true, CanCreateInvoices: true,
				CanEditInvoices: true, CanChangeInvoiceStatus: true, CanDeleteInvoices: true,
				CanExport: true, CanManageProducts: true, CanManageClients: true, CanEditCompany: true,
			},
		},
		{
			name:  "manager",
			roles: []string{gate.RoleManager},
			want: gate.Capabilities{
				CanCreateInvoices: true, CanEditInvoices: true, CanChangeInvoiceStatus: true,
				CanDeleteInvoices: true, CanExport: true, CanManageProducts: true, CanManageClients: true,
			},
		},
		{
			name:  "user",
			roles: []string{gate.RoleUser},
			want: gate.Capabilities{
				CanCreateInvoices: true, CanExport: true, CanManageProducts: true, CanManageClients: true,
			},
		},
		{
			name:  "user and manager merge",
			roles: []string{gate.RoleUser, gate.RoleManager},
			want: gate.Capabilities{
				CanCreateInvoices: true, CanEditInvoices: true, CanChangeInvoiceStatus: true,
				CanDeleteInvoices: true, CanExport: true, CanManageProducts: true, CanManageClients: true,
			},
		},
		{name: "no roles", roles: nil, want: gate.Capabilities{}},
		{name: "unknown role", roles: []string{"ROLE_GUEST"}, want: gate.Capabilities{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.CapabilitiesFor(tt.roles))
		})
	}
}

func TestProfileForRoles(t *testing.T) {
	p := gate.ProfileForRoles([]string{gate.RoleManager})
	assert.Equal(t, "ROLE_MANAGER", p.Name())
	assert.True(t, p.HasPermission("invoice:delete"))
	assert.True(t, p.HasPermission("company:view"))
	assert.False(t, p.HasPermission("company:update"))
	assert.False(t, p.HasPermission("activity:list"))
	assert.Contains(t, p.Permissions(), gate.Permission("client:*"))
}

func TestSubject_HasRole(t *testing.T) {
	s := &gate.Subject{ID: 1, Roles: []string{gate.RoleUser}}
	assert.True(t, s.HasRole(gate.RoleUser))
	assert.False(t, s.HasRole(gate.RoleAdmin))

	var none *gate.Subject
	assert.False(t, none.HasRole(gate.RoleUser))
}
