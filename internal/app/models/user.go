package models

import (
	"fmt"
	"strings"
	"time"
)

// RoleType defines the coarse role attached to a user
type RoleType string

const (
	RoleAdmin    RoleType = "admin"
	RoleImporter RoleType = "importer"
	RoleTeacher  RoleType = "teacher"
	RoleStudent  RoleType = "student"
)

// AllRoles lists every role in display order.
var AllRoles = []RoleType{RoleAdmin, RoleImporter, RoleTeacher, RoleStudent}

// ParseRoleType normalizes a role name received from a client. Matching is
// case-insensitive so "ADMIN" and "admin" resolve to the same role.
func ParseRoleType(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleImporter, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"teacher@example.com"`
	Username    string     `json:"username" db:"username" example:"teacher"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	Role        RoleType   `json:"role" db:"role" example:"teacher"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	IsStaff     bool       `json:"isStaff" db:"is_staff" example:"false"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
