package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

// RoleService manages permission sets
type RoleService interface {
	ListRoles(ctx context.Context) ([]dto.CustomRoleResponse, error)
	GetRole(ctx context.Context, id int64) (*dto.CustomRoleResponse, error)
	CreateRole(ctx context.Context, req *dto.CustomRoleRequest) (*dto.CustomRoleResponse, error)
	UpdateRole(ctx context.Context, id int64, req *dto.CustomRoleRequest, partial bool) (*dto.CustomRoleResponse, error)
	DeleteRole(ctx context.Context, id int64) error
}

type roleServiceImpl struct {
	roleRepo CustomRoleStore
	logger   zerolog.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo CustomRoleStore, logger zerolog.Logger) RoleService {
	return &roleServiceImpl{roleRepo: roleRepo, logger: logger}
}

func isKnownPermission(name string) bool {
	for _, p := range models.KnownPermissions {
		if p == name {
			return true
		}
	}
	return false
}

func validatePermissions(perms map[string]bool) error {
	for name := range perms {
		if !isKnownPermission(name) {
			return apperrors.NewValidationError("permissions", fmt.Sprintf("Unknown permission: %s", name))
		}
	}
	return nil
}

// parseBinding maps "" to no binding
func parseBinding(raw string) (*models.RoleType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	role, err := parseRole(raw)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// apply copies the request onto cr; a full update also clears what is omitted
func (s *roleServiceImpl) apply(cr *models.CustomRole, req *dto.CustomRoleRequest, partial bool) error {
	if !partial && req.Name == nil {
		return apperrors.NewValidationError("name", "Missing required field: name")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return apperrors.NewValidationError("name", "name cannot be empty")
		}
		cr.Name = name
	}

	switch {
	case req.Role != nil:
		binding, err := parseBinding(*req.Role)
		if err != nil {
			return err
		}
		cr.Role = binding
	case !partial:
		cr.Role = nil
	}

	switch {
	case req.Permissions != nil:
		if err := validatePermissions(*req.Permissions); err != nil {
			return err
		}
		cr.Permissions = *req.Permissions
	case !partial:
		cr.Permissions = map[string]bool{}
	}
	if cr.Permissions == nil {
		cr.Permissions = map[string]bool{}
	}
	return nil
}

// ListRoles returns every permission set
func (s *roleServiceImpl) ListRoles(ctx context.Context) ([]dto.CustomRoleResponse, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomRoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, dto.FromCustomRole(&roles[i]))
	}
	return out, nil
}

// GetRole retrieves one permission set
func (s *roleServiceImpl) GetRole(ctx context.Context, id int64) (*dto.CustomRoleResponse, error) {
	cr, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromCustomRole(cr)
	return &resp, nil
}

// CreateRole creates a permission set
func (s *roleServiceImpl) CreateRole(ctx context.Context, req *dto.CustomRoleRequest) (*dto.CustomRoleResponse, error) {
	cr := &models.CustomRole{}
	if err := s.apply(cr, req, false); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Create(ctx, cr); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("roleID", cr.ID).Str("name", cr.Name).Msg("Permission set created")
	resp := dto.FromCustomRole(cr)
	return &resp, nil
}

// UpdateRole applies a full or partial update
func (s *roleServiceImpl) UpdateRole(ctx context.Context, id int64, req *dto.CustomRoleRequest, partial bool) (*dto.CustomRoleResponse, error) {
	cr, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(cr, req, partial); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Update(ctx, cr); err != nil {
		return nil, err
	}
	resp := dto.FromCustomRole(cr)
	return &resp, nil
}

// DeleteRole removes a permission set
func (s *roleServiceImpl) DeleteRole(ctx context.Context, id int64) error {
	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("roleID", id).Msg("Permission set deleted")
	return nil
}
