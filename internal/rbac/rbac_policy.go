package rbac

import "go-leave/internal/domain"

const (
	ResourceLeave     = "leave"
	ResourceUser      = "user"
	ResourceDashboard = "dashboard"
	ResourceDept      = "department"

	ActionCreate     = "create"
	ActionRead       = "read"
	ActionApprove    = "approve"
	ActionManagers   = "managers"
	ActionHistoryAll = "history_all"
	ActionList       = "list"
	ActionTeam       = "team"
	ActionManage     = "manage"
)

type Capability struct {
	Resource string
	Action   string
	Roles    []string
}

// Policy is the whole capability table. Adding a role or capability is a
// one-line change here.
var Policy = []Capability{
	{ResourceLeave, ActionCreate, []string{domain.RoleEmployee, domain.RoleHR, domain.RoleAdmin}},
	{ResourceLeave, ActionRead, domain.Roles},
	{ResourceLeave, ActionApprove, []string{domain.RoleManager, domain.RoleHR, domain.RoleAdmin}},
	{ResourceLeave, ActionManagers, []string{domain.RoleEmployee}},
	{ResourceLeave, ActionHistoryAll, []string{domain.RoleManager, domain.RoleHR, domain.RoleAdmin}},
	{ResourceUser, ActionList, []string{domain.RoleHR, domain.RoleAdmin}},
	{ResourceDashboard, ActionTeam, []string{domain.RoleManager, domain.RoleHR, domain.RoleAdmin}},
	{ResourceDept, ActionRead, domain.Roles},
	{ResourceDept, ActionManage, []string{domain.RoleHR, domain.RoleAdmin}},
}
