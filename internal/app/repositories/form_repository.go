package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/db"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/dberrors"
	"github.com/yigit/questionbank/internal/pkg/logger"
)

const fieldOrderConstraint = "form_fields_form_order_key"

// FormFilter narrows a form listing
type FormFilter struct {
	ListQuery
	IsActive *bool
	Search   string
}

// FieldPlanner receives the fields already on a form (ordered) and returns
// the new fields to insert. It runs while the form row is locked.
type FieldPlanner func(existing []models.FormField) ([]models.FormField, error)

// FormRepository persists forms and their fields
type FormRepository struct {
	db db.Pool
	sb squirrel.StatementBuilderType
}

// NewFormRepository creates a new FormRepository
func NewFormRepository(pool db.Pool) *FormRepository {
	return &FormRepository{db: pool, sb: psql}
}

func (r *FormRepository) formSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"f.id", "f.title", "f.description", "f.created_by", "COALESCE(u.email, '')",
		"f.is_active", "f.created_at", "f.updated_at",
	).From("forms f").LeftJoin("users u ON u.id = f.created_by")
}

func scanForm(row pgx.Row) (*models.Form, error) {
	f := &models.Form{}
	err := row.Scan(&f.ID, &f.Title, &f.Description, &f.CreatedBy, &f.CreatorMail,
		&f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Fields = []models.FormField{}
	return f, nil
}

func encodeOptions(ft models.FieldType, opts []string) ([]byte, error) {
	if !ft.HasOptions() {
		return nil, nil
	}
	return json.Marshal(opts)
}

func insertField(ctx context.Context, q db.DBTX, sb squirrel.StatementBuilderType, field *models.FormField) error {
	opts, err := encodeOptions(field.FieldType, field.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	var optsArg interface{}
	if opts != nil {
		optsArg = string(opts)
	}

	sql, args, err := sb.Insert("form_fields").
		Columns("form_id", "label", "field_type", "is_required", "options", "display_order").
		Values(field.FormID, field.Label, string(field.FieldType), field.IsRequired, optsArg, field.Order).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert field query: %w", err)
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&field.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, fieldOrderConstraint) {
			return apperrors.NewConflictError("order", fmt.Sprintf("A field with order %d already exists on this form", field.Order))
		}
		return fmt.Errorf("error inserting field: %w", err)
	}
	return nil
}

// loadFields returns the fields of the given forms keyed by form id, ordered
func loadFields(ctx context.Context, q db.DBTX, sb squirrel.StatementBuilderType, formIDs ...int64) (map[int64][]models.FormField, error) {
	out := make(map[int64][]models.FormField, len(formIDs))
	if len(formIDs) == 0 {
		return out, nil
	}

	sql, args, err := sb.Select("id", "form_id", "label", "field_type", "is_required", "options", "display_order").
		From("form_fields").
		Where(squirrel.Eq{"form_id": formIDs}).
		OrderBy("form_id ASC", "display_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build fields query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fld  models.FormField
			ft   string
			opts []byte
		)
		if err := rows.Scan(&fld.ID, &fld.FormID, &fld.Label, &ft, &fld.IsRequired, &opts, &fld.Order); err != nil {
			return nil, fmt.Errorf("failed to scan field row: %w", err)
		}
		fld.FieldType = models.FieldType(ft)
		if len(opts) > 0 {
			if err := json.Unmarshal(opts, &fld.Options); err != nil {
				return nil, fmt.Errorf("decode options of field %d: %w", fld.ID, err)
			}
		}
		out[fld.FormID] = append(out[fld.FormID], fld)
	}
	return out, rows.Err()
}

// Create inserts the form and its fields in one transaction
func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("forms").
			Columns("title", "description", "created_by", "is_active").
			Values(form.Title, form.Description, form.CreatedBy, form.IsActive).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create form query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt); err != nil {
			return fmt.Errorf("error creating form: %w", err)
		}

		for i := range form.Fields {
			form.Fields[i].FormID = form.ID
			if err := insertField(ctx, tx, r.sb, &form.Fields[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a form with its ordered fields
func (r *FormRepository) GetByID(ctx context.Context, id int64) (*models.Form, error) {
	sql, args, err := r.formSelect().Where(squirrel.Eq{"f.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get form query: %w", err)
	}
	form, err := scanForm(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFormNotFound
		}
		return nil, fmt.Errorf("error retrieving form: %w", err)
	}

	fields, err := loadFields(ctx, r.db, r.sb, id)
	if err != nil {
		return nil, err
	}
	if fs := fields[id]; fs != nil {
		form.Fields = fs
	}
	return form, nil
}

// List returns one page of forms, newest first, with their fields
func (r *FormRepository) List(ctx context.Context, f FormFilter) ([]models.Form, int64, error) {
	where := squirrel.And{}
	if f.IsActive != nil {
		where = append(where, squirrel.Eq{"f.is_active": *f.IsActive})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, squirrel.ILike{"f.title": "%" + s + "%"})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("forms f").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count forms query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}
	if total == 0 {
		return []models.Form{}, 0, nil
	}

	sql, args, err := r.formSelect().Where(where).
		OrderBy("f.created_at DESC", "f.id DESC").
		Limit(f.Limit).Offset(f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list forms query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query forms: %w", err)
	}
	defer rows.Close()

	var (
		forms []models.Form
		ids   []int64
	)
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan form row: %w", err)
		}
		forms = append(forms, *form)
		ids = append(ids, form.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	fields, err := loadFields(ctx, r.db, r.sb, ids...)
	if err != nil {
		return nil, 0, err
	}
	for i := range forms {
		if fs := fields[forms[i].ID]; fs != nil {
			forms[i].Fields = fs
		}
	}
	return forms, total, nil
}

// Update writes title, description and is_active
func (r *FormRepository) Update(ctx context.Context, form *models.Form) error {
	sql, args, err := r.sb.Update("forms").
		Set("title", form.Title).
		Set("description", form.Description).
		Set("is_active", form.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": form.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update form query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&form.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrFormNotFound
		}
		return fmt.Errorf("error updating form: %w", err)
	}
	return nil
}

// Delete removes a form; fields and responses cascade
func (r *FormRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFormNotFound
	}
	return nil
}

// AddFields locks the form, lets plan decide the new fields from the
// existing ones and inserts them, all in one transaction.
func (r *FormRepository) AddFields(ctx context.Context, formID int64, plan FieldPlanner) ([]models.FormField, error) {
	var added []models.FormField

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM forms WHERE id = $1 FOR UPDATE`, formID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrFormNotFound
			}
			return fmt.Errorf("error locking form: %w", err)
		}

		existing, err := loadFields(ctx, tx, r.sb, formID)
		if err != nil {
			return err
		}

		fields, err := plan(existing[formID])
		if err != nil {
			return err
		}

		for i := range fields {
			fields[i].FormID = formID
			if err := insertField(ctx, tx, r.sb, &fields[i]); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE forms SET updated_at = NOW() WHERE id = $1`, formID); err != nil {
			return fmt.Errorf("error touching form: %w", err)
		}
		added = fields
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().Int64("formID", formID).Int("added", len(added)).Msg("Fields added to form")
	return added, nil
}
