package rbac

import (
	"testing"

	"go-leave/internal/domain"
	"go-leave/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	enforcer, err := infra.NewEnforcer()
	require.NoError(t, err)

	svc, err := NewService(enforcer, Policy)
	require.NoError(t, err)
	return svc
}

func TestRBACService_CapabilityTable(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		role     string
		resource string
		action   string
		want     bool
	}{
		{domain.RoleEmployee, ResourceLeave, ActionCreate, true},
		{domain.RoleManager, ResourceLeave, ActionCreate, false},
		{domain.RoleHR, ResourceLeave, ActionCreate, true},
		{domain.RoleAdmin, ResourceLeave, ActionCreate, true},

		{domain.RoleEmployee, ResourceLeave, ActionApprove, false},
		{domain.RoleManager, ResourceLeave, ActionApprove, true},
		{domain.RoleHR, ResourceLeave, ActionApprove, true},
		{domain.RoleAdmin, ResourceLeave, ActionApprove, true},

		{domain.RoleEmployee, ResourceLeave, ActionManagers, true},
		{domain.RoleManager, ResourceLeave, ActionManagers, false},

		{domain.RoleEmployee, ResourceLeave, ActionHistoryAll, false},
		{domain.RoleManager, ResourceLeave, ActionHistoryAll, true},

		{domain.RoleManager, ResourceUser, ActionList, false},
		{domain.RoleHR, ResourceUser, ActionList, true},

		{domain.RoleEmployee, ResourceLeave, ActionRead, true},
		{"GUEST", ResourceLeave, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.resource+":"+tt.action, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{Role: tt.role, Resource: tt.resource, Action: tt.action})
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestRBACService_Capabilities(t *testing.T) {
	svc := newTestService(t)

	caps, err := svc.Capabilities(domain.RoleEmployee)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"department:read",
		"leave:create",
		"leave:managers",
		"leave:read",
	}, caps)
}
