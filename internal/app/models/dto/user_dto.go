package dto

import (
	"time"

	"github.com/yigit/questionbank/internal/app/models"
)

// CreateUserRequest is the admin payload for creating an account
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=2,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"max=150"`
	LastName  string `json:"lastName" binding:"max=150"`
	Role      string `json:"role" binding:"required,roletype"`
	IsStaff   bool   `json:"isStaff"`
}

// UpdateUserRequest is the admin payload for PUT and PATCH. Nil fields are
// left untouched; PUT requires username and role.
type UpdateUserRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=2,max=150"`
	FirstName *string `json:"firstName" binding:"omitempty,max=150"`
	LastName  *string `json:"lastName" binding:"omitempty,max=150"`
	Role      *string `json:"role" binding:"omitempty,roletype"`
	IsActive  *bool   `json:"isActive"`
	IsStaff   *bool   `json:"isStaff"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

// UserFilterRequest holds the user listing query
type UserFilterRequest struct {
	PageRequest
	Role   string `form:"role"`
	Search string `form:"search"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	IsStaff     bool       `json:"isStaff"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromUser maps a user model to its response
func FromUser(u *models.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
