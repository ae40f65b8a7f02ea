package models

import (
	"fmt"
	"strings"
	"time"
)

// FieldType is the input kind of a form field
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeSelect      FieldType = "SELECT"
	FieldTypeMultiSelect FieldType = "MULTISELECT"
	FieldTypeFile        FieldType = "FILE"
)

// ParseFieldType accepts any casing of a known field type.
func ParseFieldType(s string) (FieldType, error) {
	ft := FieldType(strings.ToUpper(strings.TrimSpace(s)))
	switch ft {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeSelect, FieldTypeMultiSelect, FieldTypeFile:
		return ft, nil
	}
	return "", fmt.Errorf("unsupported field type %q", s)
}

// HasOptions reports whether the type draws its value from an options list.
func (ft FieldType) HasOptions() bool {
	return ft == FieldTypeSelect || ft == FieldTypeMultiSelect
}

// Form is an admin-defined data collection schema
type Form struct {
	ID          int64       `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	CreatedBy   int64       `json:"createdBy" db:"created_by"`
	CreatorMail string      `json:"creatorEmail,omitempty"`
	IsActive    bool        `json:"isActive" db:"is_active"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
	Fields      []FormField `json:"fields,omitempty"`
}

// FormField belongs to exactly one form; Order is unique within the form.
type FormField struct {
	ID         int64     `json:"id" db:"id"`
	FormID     int64     `json:"formId" db:"form_id"`
	Label      string    `json:"label" db:"label"`
	FieldType  FieldType `json:"fieldType" db:"field_type"`
	IsRequired bool      `json:"isRequired" db:"is_required"`
	Options    []string  `json:"options" db:"options"`
	Order      int       `json:"order" db:"display_order"`
}

// FormResponse is an immutable submission keyed by field id.
type FormResponse struct {
	ID             int64                  `json:"id" db:"id"`
	FormID         int64                  `json:"formId" db:"form_id"`
	SubmittedBy    int64                  `json:"submittedBy" db:"submitted_by"`
	SubmitterEmail string                 `json:"submitterEmail,omitempty"`
	Responses      map[string]interface{} `json:"responses" db:"responses"`
	SubmittedAt    time.Time              `json:"submittedAt" db:"submitted_at"`
}
