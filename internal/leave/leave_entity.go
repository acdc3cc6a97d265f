package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeaveTypeAnnual    = "ANNUAL"
	LeaveTypeSick      = "SICK"
	LeaveTypeMaternity = "MATERNITY"
	LeaveTypePaternity = "PATERNITY"
	LeaveTypePersonal  = "PERSONAL"
	LeaveTypeEmergency = "EMERGENCY"
)

// LeaveTypes is the fixed order balances are bootstrapped and listed in.
var LeaveTypes = []string{
	LeaveTypeAnnual,
	LeaveTypeSick,
	LeaveTypeMaternity,
	LeaveTypePaternity,
	LeaveTypePersonal,
	LeaveTypeEmergency,
}

func IsValidLeaveType(t string) bool {
	for _, lt := range LeaveTypes {
		if lt == t {
			return true
		}
	}
	return false
}

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type LeaveRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference   string     `gorm:"column:reference"`
	UserID      uuid.UUID  `gorm:"type:uuid"`
	LeaveType   string     `gorm:"column:leave_type"`
	StartDate   time.Time  `gorm:"type:date"`
	EndDate     time.Time  `gorm:"type:date"`
	Days        float64    `gorm:"column:days"`
	BalanceYear int        `gorm:"column:balance_year"`
	Reason      string     `gorm:"column:reason"`
	IsHalfDay   bool       `gorm:"column:is_half_day"`
	Status      string     `gorm:"column:status"`
	ApproverID  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	Comments    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User     *Person `gorm:"foreignKey:UserID"`
	Approver *Person `gorm:"foreignKey:ApproverID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

type LeaveBalance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid"`
	LeaveType string    `gorm:"column:leave_type"`
	Year      int       `gorm:"column:year"`
	Total     float64   `gorm:"column:total"`
	Used      float64   `gorm:"column:used"`
	Remaining float64   `gorm:"column:remaining"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// Person is the read-only slice of users shown next to a request.
type Person struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	FirstName    string            `gorm:"column:first_name"`
	LastName     string            `gorm:"column:last_name"`
	Email        string            `gorm:"column:email"`
	DepartmentID *uuid.UUID        `gorm:"type:uuid"`
	Department   *PersonDepartment `gorm:"foreignKey:DepartmentID"`
}

func (Person) TableName() string {
	return "users"
}

type PersonDepartment struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func (PersonDepartment) TableName() string {
	return "departments"
}

// Approver is one row of the approver directory.
type Approver struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Role           string
	DepartmentName *string
}
