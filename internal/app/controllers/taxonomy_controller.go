package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/questionbank/internal/app/services"
	"github.com/yigit/questionbank/internal/middleware"
)

// TaxonomyController serves categories and grades
type TaxonomyController struct {
	taxonomyService services.TaxonomyService
}

// NewTaxonomyController creates a new TaxonomyController
func NewTaxonomyController(taxonomyService services.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{taxonomyService: taxonomyService}
}

func (c *TaxonomyController) ListCategories(ctx *gin.Context) {
	categories, err := c.taxonomyService.ListCategories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, categories, "")
}

func (c *TaxonomyController) GetCategory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	category, err := c.taxonomyService.GetCategory(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, category, "")
}

func (c *TaxonomyController) ListGrades(ctx *gin.Context) {
	grades, err := c.taxonomyService.ListGrades(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, grades, "")
}

func (c *TaxonomyController) GetGrade(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	grade, err := c.taxonomyService.GetGrade(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, grade, "")
}
