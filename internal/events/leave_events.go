package events

import "time"

const (
	LeaveRequestedTopic = "leave.requested.v1"
	LeaveDecidedTopic   = "leave.decided.v1"

	EventLeaveRequested = "leave_requested"
	EventLeaveDecided   = "leave_decided"
)

type LeaveRequestedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	Reference  string    `json:"reference"`
	UserID     string    `json:"user_id"`
	ApproverID string    `json:"approver_id,omitempty"`
	LeaveType  string    `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Days       float64   `json:"days"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LeaveDecidedEvent is emitted for both approvals and rejections; Status tells
// them apart.
type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	Reference  string    `json:"reference"`
	UserID     string    `json:"user_id"`
	ApproverID string    `json:"approver_id"`
	Status     string    `json:"status"`
	LeaveType  string    `json:"leave_type"`
	Days       float64   `json:"days"`
	Comments   string    `json:"comments,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
