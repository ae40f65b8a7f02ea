package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/app/services"
	"github.com/yigit/questionbank/internal/middleware"
)

// RoleController exposes permission set management
type RoleController struct {
	roleService services.RoleService
}

// NewRoleController creates a new RoleController
func NewRoleController(roleService services.RoleService) *RoleController {
	return &RoleController{roleService: roleService}
}

func (c *RoleController) ListRoles(ctx *gin.Context) {
	roles, err := c.roleService.ListRoles(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, roles, "")
}

func (c *RoleController) GetRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	role, err := c.roleService.GetRole(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, role, "")
}

// CreateRole creates a permission set
// @Summary Create permission set
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CustomRoleRequest true "Permission set"
// @Success 201 {object} dto.APIResponse{data=dto.CustomRoleResponse}
// @Failure 409 {object} dto.ErrorResponse "Name or role binding already used"
// @Router /roles [post]
func (c *RoleController) CreateRole(ctx *gin.Context) {
	var req dto.CustomRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	role, err := c.roleService.CreateRole(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, role, "Role created successfully")
}

func (c *RoleController) UpdateRole(ctx *gin.Context) {
	c.update(ctx, false)
}

func (c *RoleController) PatchRole(ctx *gin.Context) {
	c.update(ctx, true)
}

func (c *RoleController) update(ctx *gin.Context, partial bool) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CustomRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	role, err := c.roleService.UpdateRole(ctx.Request.Context(), id, &req, partial)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, role, "Role updated successfully")
}

func (c *RoleController) DeleteRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.roleService.DeleteRole(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Role deleted successfully")
}
