package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/db"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/dberrors"
)

var customRoleColumns = []string{"id", "name", "role", "permissions", "created_at", "updated_at"}

// CustomRoleRepository persists permission sets
type CustomRoleRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewCustomRoleRepository creates a new CustomRoleRepository
func NewCustomRoleRepository(conn db.DBTX) *CustomRoleRepository {
	return &CustomRoleRepository{db: conn, sb: psql}
}

func scanCustomRole(row pgx.Row) (*models.CustomRole, error) {
	var (
		cr    models.CustomRole
		role  *string
		perms []byte
	)
	if err := row.Scan(&cr.ID, &cr.Name, &role, &perms, &cr.CreatedAt, &cr.UpdatedAt); err != nil {
		return nil, err
	}
	if role != nil {
		rt := models.RoleType(*role)
		cr.Role = &rt
	}
	cr.Permissions = map[string]bool{}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &cr.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions of role %d: %w", cr.ID, err)
		}
	}
	return &cr, nil
}

func roleArg(r *models.RoleType) interface{} {
	if r == nil {
		return nil
	}
	return string(*r)
}

func mapCustomRoleWriteErr(err error) error {
	if dberrors.IsUniqueViolation(err) {
		return apperrors.ErrCustomRoleExists
	}
	return err
}

// List returns every permission set ordered by name
func (r *CustomRoleRepository) List(ctx context.Context) ([]models.CustomRole, error) {
	sql, args, err := r.sb.Select(customRoleColumns...).From("custom_roles").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list roles query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []models.CustomRole{}
	for rows.Next() {
		cr, err := scanCustomRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *cr)
	}
	return roles, rows.Err()
}

func (r *CustomRoleRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.CustomRole, error) {
	sql, args, err := r.sb.Select(customRoleColumns...).From("custom_roles").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get role query: %w", err)
	}
	cr, err := scanCustomRole(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomRoleNotFound
		}
		return nil, fmt.Errorf("error retrieving role: %w", err)
	}
	return cr, nil
}

// GetByID retrieves a permission set by ID
func (r *CustomRoleRepository) GetByID(ctx context.Context, id int64) (*models.CustomRole, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByRole retrieves the permission set bound to a user role
func (r *CustomRoleRepository) GetByRole(ctx context.Context, role models.RoleType) (*models.CustomRole, error) {
	return r.getOne(ctx, squirrel.Eq{"role": string(role)})
}

// Create inserts a permission set
func (r *CustomRoleRepository) Create(ctx context.Context, cr *models.CustomRole) error {
	perms, err := json.Marshal(cr.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	sql, args, err := r.sb.Insert("custom_roles").
		Columns("name", "role", "permissions").
		Values(cr.Name, roleArg(cr.Role), string(perms)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create role query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&cr.ID, &cr.CreatedAt, &cr.UpdatedAt); err != nil {
		return mapCustomRoleWriteErr(fmt.Errorf("error creating role: %w", err))
	}
	return nil
}

// EnsureForRole creates the permission set bound to role unless one exists.
// It reports whether a row was inserted.
func (r *CustomRoleRepository) EnsureForRole(ctx context.Context, name string, role models.RoleType, perms map[string]bool) (bool, error) {
	raw, err := json.Marshal(perms)
	if err != nil {
		return false, fmt.Errorf("encode permissions: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO custom_roles (name, role, permissions)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		name, string(role), string(raw))
	if err != nil {
		return false, fmt.Errorf("error ensuring role %s: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Update writes name, binding and permissions
func (r *CustomRoleRepository) Update(ctx context.Context, cr *models.CustomRole) error {
	perms, err := json.Marshal(cr.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	sql, args, err := r.sb.Update("custom_roles").
		Set("name", cr.Name).
		Set("role", roleArg(cr.Role)).
		Set("permissions", string(perms)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": cr.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update role query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&cr.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCustomRoleNotFound
		}
		return mapCustomRoleWriteErr(fmt.Errorf("error updating role: %w", err))
	}
	return nil
}

// Delete removes a permission set
func (r *CustomRoleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM custom_roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCustomRoleNotFound
	}
	return nil
}
