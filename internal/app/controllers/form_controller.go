package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/app/services"
	"github.com/yigit/questionbank/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FormController handles form definitions and their responses
type FormController struct {
	formService services.FormService
}

// NewFormController creates a new FormController
func NewFormController(formService services.FormService) *FormController {
	return &FormController{formService: formService}
}

// ListForms lists forms with their fields
// @Summary List forms
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param is_active query bool false "Only active or inactive forms"
// @Param search query string false "Search in title"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /forms [get]
func (c *FormController) ListForms(ctx *gin.Context) {
	var filter dto.FormFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	forms, page, err := c.formService.ListForms(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, forms, page)
}

// CreateForm creates a form, optionally with fields
func (c *FormController) CreateForm(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateFormRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	form, err := c.formService.CreateForm(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, form, "Form created successfully")
}

func (c *FormController) GetForm(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	form, err := c.formService.GetForm(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, form, "")
}

func (c *FormController) UpdateForm(ctx *gin.Context) {
	c.update(ctx, false)
}

func (c *FormController) PatchForm(ctx *gin.Context) {
	c.update(ctx, true)
}

func (c *FormController) update(ctx *gin.Context, partial bool) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateFormRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	form, err := c.formService.UpdateForm(ctx.Request.Context(), id, &req, partial)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, form, "Form updated successfully")
}

func (c *FormController) DeleteForm(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.formService.DeleteForm(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Form deleted successfully")
}

// AddFields appends fields to a form
// @Summary Add fields to a form
// @Description Appends a batch of fields in one transaction. Omitted orders continue after the current maximum.
// @Tags forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Form ID"
// @Param request body dto.AddFieldsRequest true "Fields"
// @Success 201 {object} dto.APIResponse{data=[]dto.FormFieldResponse}
// @Failure 409 {object} dto.ErrorResponse "Order already used on this form"
// @Router /forms/{id}/add_fields [post]
func (c *FormController) AddFields(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AddFieldsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	fields, err := c.formService.AddFields(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, fields, "Fields added successfully")
}

// ExportResponses downloads every response of a form as a spreadsheet
// @Summary Export form responses
// @Tags forms
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Form ID"
// @Router /forms/{id}/export [get]
func (c *FormController) ExportResponses(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	name, err := c.formService.ExportResponses(ctx.Request.Context(), id, &buf)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// SubmitResponse stores a form submission
// @Summary Submit a response
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitResponseRequest true "Answers keyed by field id"
// @Success 201 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Required field missing or form inactive"
// @Failure 404 {object} dto.ErrorResponse "Form not found"
// @Router /responses [post]
func (c *FormController) SubmitResponse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.SubmitResponseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.formService.SubmitResponse(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp, "Response submitted successfully")
}

// ListResponses lists submissions; non-admins only see their own
func (c *FormController) ListResponses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var filter dto.ResponseFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	responses, page, err := c.formService.ListResponses(ctx.Request.Context(), actor, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, responses, page)
}

func (c *FormController) GetResponse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.formService.GetResponse(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp, "")
}
