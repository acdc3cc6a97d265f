package auth

import "go-leave/internal/user"

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	FirstName    string `json:"firstName" binding:"required,min=1,max=100"`
	LastName     string `json:"lastName" binding:"required,min=1,max=100"`
	Role         string `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER HR ADMIN"`
	DepartmentID string `json:"departmentId" binding:"omitempty,uuid"`
	PhoneNumber  string `json:"phoneNumber" binding:"omitempty,max=30"`
	DateOfBirth  string `json:"dateOfBirth"`
	Address      string `json:"address" binding:"omitempty,max=500"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ClientMeta is recorded on the session for the device list.
type ClientMeta struct {
	IPAddress string
	UserAgent string
	DeviceID  string
}

type LoginResult struct {
	User      user.UserResponse `json:"user"`
	Token     string            `json:"token"`
	SessionID string            `json:"sessionId"`
	ExpiresIn int               `json:"expiresIn"`
}
