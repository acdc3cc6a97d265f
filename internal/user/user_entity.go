package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	OTPTypeEmailVerification = "EMAIL_VERIFICATION"
	OTPTypePasswordReset     = "PASSWORD_RESET"
)

type User struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Email           string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Password        string     `gorm:"column:password;type:varchar(255);not null"`
	FirstName       string     `gorm:"column:first_name;type:varchar(100);not null"`
	LastName        string     `gorm:"column:last_name;type:varchar(100);not null"`
	Role            string     `gorm:"column:role;type:varchar(20);default:EMPLOYEE"`
	IsActive        bool       `gorm:"column:is_active;default:true"`
	IsEmailVerified bool       `gorm:"column:is_email_verified;default:false"`
	DepartmentID    *uuid.UUID `gorm:"column:department_id;type:uuid"`
	ManagerID       *uuid.UUID `gorm:"column:manager_id;type:uuid"`
	Phone           string     `gorm:"column:phone;type:varchar(30)"`
	DateOfBirth     *time.Time `gorm:"column:date_of_birth;type:date"`
	Address         string     `gorm:"column:address;type:text"`
	ProfileImage    string     `gorm:"column:profile_image;type:text"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Department *UserDepartment `gorm:"foreignKey:DepartmentID;references:ID"`
}

func (User) TableName() string {
	return "users"
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserDepartment is the slice of a department row joined onto users.
type UserDepartment struct {
	ID   uuid.UUID `gorm:"column:id;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (UserDepartment) TableName() string {
	return "departments"
}

type OTP struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Code      string    `gorm:"column:code;type:varchar(6);not null"`
	Type      string    `gorm:"column:type;type:varchar(30);not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	IsUsed    bool      `gorm:"column:is_used;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OTP) TableName() string {
	return "otps"
}
