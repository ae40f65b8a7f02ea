package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/auth"
)

// DefaultCategories is the fixed category catalog
var DefaultCategories = []string{
	"Mathematics",
	"Science",
	"English",
	"Social Studies",
	"Computer Science",
	"History",
	"Geography",
	"Art",
	"Music",
	"Physical Education",
	"Foreign Language",
	"General Knowledge",
	"General Intelligence",
	"Logical Reasoning",
	"Quantitative Aptitude",
	"Verbal Ability",
	"Non-Verbal Ability",
}

// DefaultGrades is the fixed grade catalog
var DefaultGrades = []string{
	"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
	"Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12",
	"Diploma",
	"Undergraduate",
	"Postgraduate",
	"Others",
}

// TaxonomyStore get-or-creates catalog rows
type TaxonomyStore interface {
	EnsureCategory(ctx context.Context, name string) (int64, bool, error)
	EnsureGrade(ctx context.Context, name string) (int64, bool, error)
}

// PermissionSetStore get-or-creates the permission set bound to a role
type PermissionSetStore interface {
	EnsureForRole(ctx context.Context, name string, role appModels.RoleType, perms map[string]bool) (bool, error)
}

// UserStore is what the admin bootstrap needs from the identity store
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
	Create(ctx context.Context, user *appModels.User) error
}

// Admin describes the initial administrator; an empty email skips it
type Admin struct {
	Email    string
	Password string
}

// Seeder loads the default catalog, permission sets and admin account
type Seeder struct {
	taxonomy TaxonomyStore
	roles    PermissionSetStore
	users    UserStore
	logger   zerolog.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(taxonomy TaxonomyStore, roles PermissionSetStore, users UserStore, logger zerolog.Logger) *Seeder {
	return &Seeder{taxonomy: taxonomy, roles: roles, users: users, logger: logger}
}

// Result counts the rows a run inserted
type Result struct {
	Categories     int
	Grades         int
	PermissionSets int
	AdminCreated   bool
}

// Run seeds everything. It is idempotent: existing rows are left alone.
// Errors are collected so one failing entry does not stop the rest.
func (s *Seeder) Run(ctx context.Context, admin Admin) (Result, error) {
	var (
		res      Result
		finalErr error
	)

	s.logger.Info().Msg("Checking/Creating default data (categories, grades, permission sets)...")

	for _, name := range DefaultCategories {
		_, created, err := s.taxonomy.EnsureCategory(ctx, name)
		if err != nil {
			s.logger.Error().Err(err).Str("category", name).Msg("Error creating category")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			res.Categories++
		}
	}

	for _, name := range DefaultGrades {
		_, created, err := s.taxonomy.EnsureGrade(ctx, name)
		if err != nil {
			s.logger.Error().Err(err).Str("grade", name).Msg("Error creating grade")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			res.Grades++
		}
	}

	// Non-admin roles may view forms only; admins bypass the lookup.
	for _, role := range []appModels.RoleType{appModels.RoleImporter, appModels.RoleTeacher, appModels.RoleStudent} {
		created, err := s.roles.EnsureForRole(ctx, permissionSetName(role), role, ViewOnlyPermissions())
		if err != nil {
			s.logger.Error().Err(err).Str("role", string(role)).Msg("Error creating permission set")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			res.PermissionSets++
		}
	}

	if admin.Email != "" {
		created, err := s.ensureAdmin(ctx, admin)
		if err != nil {
			s.logger.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		}
		res.AdminCreated = created
	}

	s.logger.Info().
		Int("categories", res.Categories).
		Int("grades", res.Grades).
		Int("permissionSets", res.PermissionSets).
		Bool("adminCreated", res.AdminCreated).
		Msg("Default data check/creation finished.")
	return res, finalErr
}

func (s *Seeder) ensureAdmin(ctx context.Context, admin Admin) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info().Msg("Admin user already exists, skipping creation")
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return false, fmt.Errorf("check admin user: %w", err)
	}
	if admin.Password == "" {
		return false, errors.New("admin password is required to create the admin user")
	}

	hashed, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	user := &appModels.User{
		Email:     email,
		Username:  strings.SplitN(email, "@", 2)[0],
		Password:  hashed,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      appModels.RoleAdmin,
		IsActive:  true,
		IsStaff:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
	return true, nil
}

// ViewOnlyPermissions returns a fresh permission map granting form viewing only
func ViewOnlyPermissions() map[string]bool {
	perms := make(map[string]bool, len(appModels.KnownPermissions))
	for _, p := range appModels.KnownPermissions {
		perms[p] = p == appModels.PermViewForms
	}
	return perms
}

func permissionSetName(role appModels.RoleType) string {
	r := string(role)
	return strings.ToUpper(r[:1]) + r[1:] + " Role"
}
