package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/app/repositories"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/helpers"
	"github.com/yigit/questionbank/internal/pkg/metrics"
)

const exportSheet = "Responses"

// FormService defines the form engine operations
type FormService interface {
	CreateForm(ctx context.Context, actor *appauth.Actor, req *dto.CreateFormRequest) (*dto.FormResponseDTO, error)
	GetForm(ctx context.Context, id int64) (*dto.FormResponseDTO, error)
	ListForms(ctx context.Context, filter *dto.FormFilterRequest) ([]dto.FormResponseDTO, dto.PaginationInfo, error)
	UpdateForm(ctx context.Context, id int64, req *dto.UpdateFormRequest, partial bool) (*dto.FormResponseDTO, error)
	DeleteForm(ctx context.Context, id int64) error
	AddFields(ctx context.Context, formID int64, req *dto.AddFieldsRequest) ([]dto.FormFieldResponse, error)

	SubmitResponse(ctx context.Context, actor *appauth.Actor, req *dto.SubmitResponseRequest) (*dto.SubmissionResponse, error)
	ListResponses(ctx context.Context, actor *appauth.Actor, filter *dto.ResponseFilterRequest) ([]dto.SubmissionResponse, dto.PaginationInfo, error)
	GetResponse(ctx context.Context, actor *appauth.Actor, id int64) (*dto.SubmissionResponse, error)
	ExportResponses(ctx context.Context, formID int64, w io.Writer) (string, error)
}

type formServiceImpl struct {
	formRepo     FormStore
	responseRepo ResponseStore
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewFormService creates a new FormService
func NewFormService(formRepo FormStore, responseRepo ResponseStore, m *metrics.Metrics, logger zerolog.Logger) FormService {
	return &formServiceImpl{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		metrics:      m,
		logger:       logger,
	}
}

// planFields validates a batch of field definitions against the fields
// already on the form and assigns orders to those that omit one.
func planFields(existing []models.FormField, reqs []dto.FieldRequest) ([]models.FormField, error) {
	taken := make(map[int]bool, len(existing)+len(reqs))
	maxOrder := 0
	for _, f := range existing {
		taken[f.Order] = true
		if f.Order > maxOrder {
			maxOrder = f.Order
		}
	}

	fields := make([]models.FormField, len(reqs))
	for i, r := range reqs {
		prefix := fmt.Sprintf("fields[%d].", i)

		label := strings.TrimSpace(r.Label)
		if label == "" {
			return nil, apperrors.NewValidationError(prefix+"label", "Missing required field: label")
		}
		ft, err := models.ParseFieldType(r.FieldType)
		if err != nil {
			return nil, apperrors.NewValidationError(prefix+"fieldType", fmt.Sprintf("Invalid field type: %s", r.FieldType))
		}
		switch {
		case ft.HasOptions() && len(r.Options) == 0:
			return nil, apperrors.NewValidationError(prefix+"options", fmt.Sprintf("Options are required for %s fields", ft))
		case !ft.HasOptions() && len(r.Options) > 0:
			return nil, apperrors.NewValidationError(prefix+"options", fmt.Sprintf("Options are not allowed for %s fields", ft))
		}

		fields[i] = models.FormField{
			Label:      label,
			FieldType:  ft,
			IsRequired: r.IsRequired,
			Options:    r.Options,
		}

		if r.Order != nil {
			order := *r.Order
			if taken[order] {
				return nil, apperrors.NewConflictError(prefix+"order", fmt.Sprintf("A field with order %d already exists on this form", order))
			}
			taken[order] = true
			fields[i].Order = order
			if order > maxOrder {
				maxOrder = order
			}
		}
	}

	for i, r := range reqs {
		if r.Order == nil {
			maxOrder++
			fields[i].Order = maxOrder
		}
	}
	return fields, nil
}

// CreateForm creates a form, optionally with an initial field batch
func (s *formServiceImpl) CreateForm(ctx context.Context, actor *appauth.Actor, req *dto.CreateFormRequest) (*dto.FormResponseDTO, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Missing required field: title")
	}

	fields, err := planFields(nil, req.Fields)
	if err != nil {
		return nil, err
	}

	form := &models.Form{
		Title:       title,
		Description: req.Description,
		CreatedBy:   actor.UserID,
		CreatorMail: actor.Email,
		IsActive:    true,
		Fields:      fields,
	}
	if req.IsActive != nil {
		form.IsActive = *req.IsActive
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("formID", form.ID).Int64("createdBy", actor.UserID).Int("fields", len(fields)).Msg("Form created")
	resp := dto.FromForm(form)
	return &resp, nil
}

// GetForm retrieves a form with its ordered fields
func (s *formServiceImpl) GetForm(ctx context.Context, id int64) (*dto.FormResponseDTO, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromForm(form)
	return &resp, nil
}

// ListForms returns one page of forms
func (s *formServiceImpl) ListForms(ctx context.Context, filter *dto.FormFilterRequest) ([]dto.FormResponseDTO, dto.PaginationInfo, error) {
	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	forms, total, err := s.formRepo.List(ctx, repositories.FormFilter{
		ListQuery: repositories.ListQuery{Offset: offset, Limit: limit},
		IsActive:  filter.IsActive,
		Search:    filter.Search,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	out := make([]dto.FormResponseDTO, 0, len(forms))
	for i := range forms {
		out = append(out, dto.FromForm(&forms[i]))
	}
	return out, helpers.NewPaginationInfo(total, page, size), nil
}

// UpdateForm changes form metadata. A full update requires title.
func (s *formServiceImpl) UpdateForm(ctx context.Context, id int64, req *dto.UpdateFormRequest, partial bool) (*dto.FormResponseDTO, error) {
	if !partial && req.Title == nil {
		return nil, apperrors.NewValidationError("title", "Missing required field: title")
	}

	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "title cannot be empty")
		}
		form.Title = title
	}
	switch {
	case req.Description != nil:
		form.Description = *req.Description
	case !partial:
		form.Description = ""
	}
	switch {
	case req.IsActive != nil:
		form.IsActive = *req.IsActive
	case !partial:
		form.IsActive = true
	}

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, err
	}
	resp := dto.FromForm(form)
	return &resp, nil
}

// DeleteForm removes a form with its fields and responses
func (s *formServiceImpl) DeleteForm(ctx context.Context, id int64) error {
	if err := s.formRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("formID", id).Msg("Form deleted")
	return nil
}

// AddFields appends a batch of fields in one transaction
func (s *formServiceImpl) AddFields(ctx context.Context, formID int64, req *dto.AddFieldsRequest) ([]dto.FormFieldResponse, error) {
	if len(req.Fields) == 0 {
		return nil, apperrors.NewValidationError("fields", "Missing required field: fields")
	}

	added, err := s.formRepo.AddFields(ctx, formID, func(existing []models.FormField) ([]models.FormField, error) {
		return planFields(existing, req.Fields)
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.FormFieldResponse, 0, len(added))
	for _, f := range added {
		out = append(out, dto.FromFormField(f))
	}
	return out, nil
}

// SubmitResponse stores a submission after checking every required field
// has an answer. Values are stored as sent.
func (s *formServiceImpl) SubmitResponse(ctx context.Context, actor *appauth.Actor, req *dto.SubmitResponseRequest) (*dto.SubmissionResponse, error) {
	form, err := s.formRepo.GetByID(ctx, req.Form)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, apperrors.ErrFormInactive
	}

	answers := req.Responses
	if answers == nil {
		answers = map[string]interface{}{}
	}
	for _, f := range form.Fields {
		if !f.IsRequired {
			continue
		}
		key := strconv.FormatInt(f.ID, 10)
		if _, ok := answers[key]; !ok {
			return nil, apperrors.NewValidationError("responses."+key, fmt.Sprintf("Required field %s is missing", key))
		}
	}

	fr := &models.FormResponse{
		FormID:         form.ID,
		SubmittedBy:    actor.UserID,
		SubmitterEmail: actor.Email,
		Responses:      answers,
	}
	if err := s.responseRepo.Create(ctx, fr); err != nil {
		return nil, err
	}
	s.metrics.SubmissionAccepted()

	resp := dto.FromFormResponse(fr)
	return &resp, nil
}

// responseScope limits non-admins to their own submissions
func responseScope(actor *appauth.Actor) *int64 {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.UserID
	return &id
}

// ListResponses returns one page of submissions visible to actor
func (s *formServiceImpl) ListResponses(ctx context.Context, actor *appauth.Actor, filter *dto.ResponseFilterRequest) ([]dto.SubmissionResponse, dto.PaginationInfo, error) {
	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	responses, total, err := s.responseRepo.List(ctx, repositories.ResponseFilter{
		ListQuery:   repositories.ListQuery{Offset: offset, Limit: limit},
		FormID:      filter.Form,
		SubmittedBy: responseScope(actor),
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	out := make([]dto.SubmissionResponse, 0, len(responses))
	for i := range responses {
		out = append(out, dto.FromFormResponse(&responses[i]))
	}
	return out, helpers.NewPaginationInfo(total, page, size), nil
}

// GetResponse retrieves one submission; other users' submissions are not found
func (s *formServiceImpl) GetResponse(ctx context.Context, actor *appauth.Actor, id int64) (*dto.SubmissionResponse, error) {
	fr, err := s.responseRepo.GetByID(ctx, id, responseScope(actor))
	if err != nil {
		return nil, err
	}
	resp := dto.FromFormResponse(fr)
	return &resp, nil
}

func exportCell(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case string, float64, int, int64, bool:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// ExportResponses writes every submission of a form as an xlsx workbook
// and returns the suggested file name.
func (s *formServiceImpl) ExportResponses(ctx context.Context, formID int64, w io.Writer) (string, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return "", err
	}
	responses, _, err := s.responseRepo.List(ctx, repositories.ResponseFilter{FormID: &formID})
	if err != nil {
		return "", err
	}

	fields := append([]models.FormField(nil), form.Fields...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return "", fmt.Errorf("error naming sheet: %w", err)
	}

	header := []interface{}{"Response ID", "Submitted By", "Submitted At"}
	for _, fld := range fields {
		header = append(header, fld.Label)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return "", fmt.Errorf("error writing header: %w", err)
	}

	for i, r := range responses {
		submitter := r.SubmitterEmail
		if submitter == "" {
			submitter = strconv.FormatInt(r.SubmittedBy, 10)
		}
		row := []interface{}{r.ID, submitter, r.SubmittedAt.UTC().Format("2006-01-02 15:04:05")}
		for _, fld := range fields {
			row = append(row, exportCell(r.Responses[strconv.FormatInt(fld.ID, 10)]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return "", fmt.Errorf("error writing row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return "", fmt.Errorf("error writing workbook: %w", err)
	}

	s.logger.Info().Int64("formID", formID).Int("responses", len(responses)).Msg("Form responses exported")
	return fmt.Sprintf("form_%d_responses.xlsx", formID), nil
}
