package dto

import (
	"time"

	"github.com/yigit/questionbank/internal/app/models"
)

// FieldRequest describes one field definition. Order is optional; when
// omitted the field is appended after the current maximum.
type FieldRequest struct {
	Label      string   `json:"label" binding:"required,max=255"`
	FieldType  string   `json:"fieldType" binding:"required"`
	IsRequired bool     `json:"isRequired"`
	Options    []string `json:"options"`
	Order      *int     `json:"order" binding:"omitempty,min=0"`
}

// CreateFormRequest creates a form with an optional inline field batch
type CreateFormRequest struct {
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description"`
	IsActive    *bool          `json:"isActive"`
	Fields      []FieldRequest `json:"fields" binding:"omitempty,dive"`
}

// UpdateFormRequest is shared by PUT and PATCH; PUT requires title
type UpdateFormRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// AddFieldsRequest appends a batch of fields to a form
type AddFieldsRequest struct {
	Fields []FieldRequest `json:"fields" binding:"required,min=1,dive"`
}

// FormFilterRequest holds the form listing query
type FormFilterRequest struct {
	PageRequest
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
}

// SubmitResponseRequest carries the answers keyed by field id
type SubmitResponseRequest struct {
	Form      int64                  `json:"form" binding:"required,gt=0"`
	Responses map[string]interface{} `json:"responses"`
}

// ResponseFilterRequest holds the response listing query
type ResponseFilterRequest struct {
	PageRequest
	Form *int64 `form:"form"`
}

// FormFieldResponse represents a field of a form
type FormFieldResponse struct {
	ID         int64    `json:"id"`
	Label      string   `json:"label"`
	FieldType  string   `json:"fieldType"`
	IsRequired bool     `json:"isRequired"`
	Options    []string `json:"options"`
	Order      int      `json:"order"`
}

// FormResponseDTO represents a form with its ordered fields
type FormResponseDTO struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	CreatedBy    int64               `json:"createdBy"`
	CreatorEmail string              `json:"creatorEmail,omitempty"`
	IsActive     bool                `json:"isActive"`
	Fields       []FormFieldResponse `json:"fields"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// SubmissionResponse represents a stored form response
type SubmissionResponse struct {
	ID             int64                  `json:"id"`
	Form           int64                  `json:"form"`
	SubmittedBy    int64                  `json:"submittedBy"`
	SubmitterEmail string                 `json:"submitterEmail,omitempty"`
	Responses      map[string]interface{} `json:"responses"`
	SubmittedAt    time.Time              `json:"submittedAt"`
}

// FromFormField maps a field model
func FromFormField(f models.FormField) FormFieldResponse {
	opts := f.Options
	if opts == nil {
		opts = []string{}
	}
	return FormFieldResponse{
		ID:         f.ID,
		Label:      f.Label,
		FieldType:  string(f.FieldType),
		IsRequired: f.IsRequired,
		Options:    opts,
		Order:      f.Order,
	}
}

// FromForm maps a form model including its fields
func FromForm(f *models.Form) FormResponseDTO {
	fields := make([]FormFieldResponse, 0, len(f.Fields))
	for _, fld := range f.Fields {
		fields = append(fields, FromFormField(fld))
	}
	return FormResponseDTO{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		CreatedBy:    f.CreatedBy,
		CreatorEmail: f.CreatorMail,
		IsActive:     f.IsActive,
		Fields:       fields,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// FromFormResponse maps a submission model
func FromFormResponse(r *models.FormResponse) SubmissionResponse {
	answers := r.Responses
	if answers == nil {
		answers = map[string]interface{}{}
	}
	return SubmissionResponse{
		ID:             r.ID,
		Form:           r.FormID,
		SubmittedBy:    r.SubmittedBy,
		SubmitterEmail: r.SubmitterEmail,
		Responses:      answers,
		SubmittedAt:    r.SubmittedAt,
	}
}
