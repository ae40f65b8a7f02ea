package dto

import (
	"time"

	"github.com/yigit/questionbank/internal/app/models"
)

// CustomRoleRequest is used for create, PUT and PATCH of permission sets.
// Role is the bound user role; an empty string clears the binding.
type CustomRoleRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=50"`
	Role        *string          `json:"role"`
	Permissions *map[string]bool `json:"permissions"`
}

// CustomRoleResponse represents a permission set
type CustomRoleResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Role        *string         `json:"role"`
	Permissions map[string]bool `json:"permissions"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FromCustomRole maps a permission set to its response
func FromCustomRole(r *models.CustomRole) CustomRoleResponse {
	resp := CustomRoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: r.Permissions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if resp.Permissions == nil {
		resp.Permissions = map[string]bool{}
	}
	if r.Role != nil {
		role := string(*r.Role)
		resp.Role = &role
	}
	return resp
}
