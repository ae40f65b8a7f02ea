package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/app/repositories"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/auth"
	"github.com/yigit/questionbank/internal/pkg/helpers"
)

// UserService defines the interface for account administration
type UserService interface {
	Me(ctx context.Context, actor *appauth.Actor) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id int64) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, filter *dto.UserFilterRequest) ([]dto.UserResponse, dto.PaginationInfo, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor *appauth.Actor, id int64, req *dto.UpdateUserRequest, partial bool) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor *appauth.Actor, id int64) error
}

type userServiceImpl struct {
	userRepo  UserStore
	tokenRepo TokenStore
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo UserStore, tokenRepo TokenStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

func parseRole(raw string) (models.RoleType, error) {
	role, err := models.ParseRoleType(raw)
	if err != nil {
		return "", apperrors.NewValidationError("role", fmt.Sprintf("Invalid role: %s", raw))
	}
	return role, nil
}

// Me returns the caller's own account
func (s *userServiceImpl) Me(ctx context.Context, actor *appauth.Actor) (*dto.UserResponse, error) {
	return s.GetUser(ctx, actor.UserID)
}

// GetUser retrieves a user by ID
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// ListUsers returns one page of accounts
func (s *userServiceImpl) ListUsers(ctx context.Context, filter *dto.UserFilterRequest) ([]dto.UserResponse, dto.PaginationInfo, error) {
	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	f := repositories.UserFilter{
		ListQuery: repositories.ListQuery{Offset: offset, Limit: limit},
		Search:    filter.Search,
	}
	if filter.Role != "" {
		role, err := parseRole(filter.Role)
		if err != nil {
			return nil, dto.PaginationInfo{}, err
		}
		f.Role = &role
	}

	users, total, err := s.userRepo.List(ctx, f)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.FromUser(&users[i]))
	}
	return out, helpers.NewPaginationInfo(total, page, size), nil
}

// CreateUser creates an account with any role
func (s *userServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     normalizeEmail(req.Email),
		Username:  strings.TrimSpace(req.Username),
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
		IsActive:  true,
		IsStaff:   req.IsStaff,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User created")
	resp := dto.FromUser(user)
	return &resp, nil
}

// UpdateUser applies an admin edit. A full update requires username and role.
func (s *userServiceImpl) UpdateUser(ctx context.Context, actor *appauth.Actor, id int64, req *dto.UpdateUserRequest, partial bool) (*dto.UserResponse, error) {
	if !partial {
		if req.Username == nil {
			return nil, apperrors.NewValidationError("username", "Missing required field: username")
		}
		if req.Role == nil {
			return nil, apperrors.NewValidationError("role", "Missing required field: role")
		}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, apperrors.NewValidationError("username", "username cannot be empty")
		}
		user.Username = name
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if actor.UserID == user.ID && role != user.Role {
			return nil, apperrors.NewValidationError("role", "You cannot change your own role")
		}
		user.Role = role
	}
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsActive != nil {
		if actor.UserID == user.ID && !*req.IsActive {
			return nil, apperrors.NewValidationError("isActive", "You cannot deactivate your own account")
		}
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !user.IsActive || req.Password != nil {
		s.revokeSessions(ctx, user.ID)
	}

	resp := dto.FromUser(user)
	return &resp, nil
}

// DeleteUser deactivates an account; rows are never removed
func (s *userServiceImpl) DeleteUser(ctx context.Context, actor *appauth.Actor, id int64) error {
	if actor.UserID == id {
		return apperrors.NewValidationError("id", "You cannot deactivate your own account")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.revokeSessions(ctx, user.ID)

	s.logger.Info().Int64("userID", id).Int64("by", actor.UserID).Msg("User deactivated")
	return nil
}

func (s *userServiceImpl) revokeSessions(ctx context.Context, userID int64) {
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Could not revoke refresh tokens")
	}
}
