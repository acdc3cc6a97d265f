package user

import "go-leave/internal/shared/response"

type ListUsersQuery struct {
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
	Role         string `form:"role"`
	DepartmentID string `form:"department"`
}

type UpdateProfileRequest struct {
	FirstName   string `json:"firstName" binding:"required,min=1,max=100"`
	LastName    string `json:"lastName" binding:"required,min=1,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=30"`
	DateOfBirth string `json:"dateOfBirth" binding:"omitempty"`
	Address     string `json:"address" binding:"omitempty,max=500"`
}

type UserResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
	IsActive        bool   `json:"isActive"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	Department      string `json:"department,omitempty"`
	DepartmentID    string `json:"departmentId,omitempty"`
	ManagerID       string `json:"managerId,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileImage    string `json:"profileImage,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

type UserListResponse struct {
	Users      []UserResponse      `json:"users"`
	Pagination response.Pagination `json:"pagination"`
}
