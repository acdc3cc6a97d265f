package dashboard

type BalanceItem struct {
	LeaveType string  `json:"leaveType"`
	Year      int     `json:"year"`
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

type PersonItem struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

type RequestItem struct {
	ID        string      `json:"id"`
	Reference string      `json:"reference"`
	LeaveType string      `json:"leaveType"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Days      float64     `json:"days"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
	User      *PersonItem `json:"user,omitempty"`
	Approver  *PersonItem `json:"approver,omitempty"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TeamStats is only filled for approver roles.
type TeamStats struct {
	PendingApprovals   int64         `json:"pendingApprovals"`
	TotalApproved      int64         `json:"totalApproved"`
	TotalRejected      int64         `json:"totalRejected"`
	MonthlyStats       []StatusCount `json:"monthlyStats"`
	RecentApprovals    []RequestItem `json:"recentApprovals"`
	TeamMemberCount    int64         `json:"teamMemberCount"`
	AllPendingRequests []RequestItem `json:"allPendingRequests"`
}

type StatsResponse struct {
	LeaveBalances        []BalanceItem `json:"leaveBalances"`
	RecentRequests       []RequestItem `json:"recentRequests"`
	PendingRequestsCount int64         `json:"pendingRequestsCount"`
	*TeamStats
}
