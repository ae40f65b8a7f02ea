package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/db"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

var taxonomyColumns = []string{"id", "name", "created_at"}

// TaxonomyRepository reads and seeds categories and grades
type TaxonomyRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewTaxonomyRepository creates a new TaxonomyRepository
func NewTaxonomyRepository(conn db.DBTX) *TaxonomyRepository {
	return &TaxonomyRepository{db: conn, sb: psql}
}

func (r *TaxonomyRepository) list(ctx context.Context, table, orderBy string) ([]models.Category, error) {
	sql, args, err := r.sb.Select(taxonomyColumns...).From(table).OrderBy(orderBy).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list %s query: %w", table, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *TaxonomyRepository) get(ctx context.Context, table string, id int64) (*models.Category, error) {
	sql, args, err := r.sb.Select(taxonomyColumns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get %s query: %w", table, err)
	}

	var c models.Category
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ensure get-or-creates a row by name and reports whether it was created
func (r *TaxonomyRepository) ensure(ctx context.Context, table, name string) (int64, bool, error) {
	insertSQL, args, err := r.sb.Insert(table).
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build insert %s query: %w", table, err)
	}

	var id int64
	err = r.db.QueryRow(ctx, insertSQL, args...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	selectSQL, args, err := r.sb.Select("id").From(table).Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build look up %s query: %w", table, err)
	}
	if err := r.db.QueryRow(ctx, selectSQL, args...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to look up %s %q: %w", table, name, err)
	}
	return id, false, nil
}

// ListCategories returns all categories ordered by name
func (r *TaxonomyRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return r.list(ctx, "categories", "name ASC")
}

// GetCategory retrieves a category by ID
func (r *TaxonomyRepository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := r.get(ctx, "categories", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrCategoryNotFound
	}
	return c, err
}

// EnsureCategory get-or-creates a category by exact name
func (r *TaxonomyRepository) EnsureCategory(ctx context.Context, name string) (int64, bool, error) {
	return r.ensure(ctx, "categories", name)
}

// ListGrades returns all grades ordered by id, which is seed order
func (r *TaxonomyRepository) ListGrades(ctx context.Context) ([]models.Grade, error) {
	rows, err := r.list(ctx, "grades", "id ASC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Grade, len(rows))
	for i, c := range rows {
		out[i] = models.Grade(c)
	}
	return out, nil
}

// GetGrade retrieves a grade by ID
func (r *TaxonomyRepository) GetGrade(ctx context.Context, id int64) (*models.Grade, error) {
	c, err := r.get(ctx, "grades", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrGradeNotFound
	}
	if err != nil {
		return nil, err
	}
	g := models.Grade(*c)
	return &g, nil
}

// EnsureGrade get-or-creates a grade by exact name
func (r *TaxonomyRepository) EnsureGrade(ctx context.Context, name string) (int64, bool, error) {
	return r.ensure(ctx, "grades", name)
}
