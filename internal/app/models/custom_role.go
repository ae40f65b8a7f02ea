package models

import "time"

// Permission keys understood by the form permission lookup.
const (
	PermCreateForms = "can_create_forms"
	PermEditForms   = "can_edit_forms"
	PermDeleteForms = "can_delete_forms"
	PermViewForms   = "can_view_forms"
)

// KnownPermissions lists the permission keys the engine consults.
var KnownPermissions = []string{PermCreateForms, PermEditForms, PermDeleteForms, PermViewForms}

// CustomRole is a named permission set. Role, when set, binds the set to
// every user holding that role.
type CustomRole struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Role        *RoleType       `json:"role,omitempty" db:"role"`
	Permissions map[string]bool `json:"permissions" db:"permissions"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Allows reports the value of a permission key; absent keys deny.
func (r *CustomRole) Allows(permission string) bool {
	if r == nil || r.Permissions == nil {
		return false
	}
	return r.Permissions[permission]
}
