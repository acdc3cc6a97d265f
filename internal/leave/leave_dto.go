package leave

import "go-leave/internal/shared/response"

type CreateLeaveRequest struct {
	LeaveType string `json:"leaveType" binding:"required,oneof=ANNUAL SICK MATERNITY PATERNITY PERSONAL EMERGENCY"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=1,max=1000"`
	IsHalfDay bool   `json:"isHalfDay"`
	ManagerID string `json:"managerId" binding:"omitempty,uuid"`
}

type DecisionRequest struct {
	Comments string `json:"comments" binding:"omitempty,max=1000"`
}

type ListRequestsQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

type HistoryQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

type PersonResponse struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

type LeaveRequestResponse struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	UserID      string          `json:"userId"`
	LeaveType   string          `json:"leaveType"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Days        float64         `json:"days"`
	BalanceYear int             `json:"balanceYear"`
	Reason      string          `json:"reason"`
	IsHalfDay   bool            `json:"isHalfDay"`
	Status      string          `json:"status"`
	ApproverID  *string         `json:"approverId,omitempty"`
	ApprovedAt  *string         `json:"approvedAt,omitempty"`
	Comments    *string         `json:"comments,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	User        *PersonResponse `json:"user,omitempty"`
	Approver    *PersonResponse `json:"approver,omitempty"`
}

type CreateLeaveResponse struct {
	Request LeaveRequestResponse `json:"request"`
}

type RequestListResponse struct {
	Requests   []LeaveRequestResponse `json:"requests"`
	Pagination response.Pagination    `json:"pagination"`
}

type BalanceResponse struct {
	LeaveType string  `json:"leaveType"`
	Year      int     `json:"year"`
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

type BalancesResponse struct {
	Balances []BalanceResponse `json:"balances"`
}

type ApproverResponse struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
}

type ApproversResponse struct {
	Managers []ApproverResponse `json:"managers"`
}
