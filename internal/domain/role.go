package domain

const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// Roles lists every role in ascending privilege order.
var Roles = []string{RoleEmployee, RoleManager, RoleHR, RoleAdmin}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ApproverRoles can decide on other people's leave.
var ApproverRoles = []string{RoleManager, RoleHR, RoleAdmin}

func IsApprover(role string) bool {
	for _, r := range ApproverRoles {
		if r == role {
			return true
		}
	}
	return false
}

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type CapabilitiesResponse struct {
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}
