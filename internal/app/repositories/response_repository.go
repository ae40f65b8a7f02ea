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

// ResponseFilter narrows a response listing. SubmittedBy scopes the query
// to one submitter; nil means every submitter.
type ResponseFilter struct {
	ListQuery
	FormID      *int64
	SubmittedBy *int64
}

// ResponseRepository persists form submissions
type ResponseRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(conn db.DBTX) *ResponseRepository {
	return &ResponseRepository{db: conn, sb: psql}
}

func (r *ResponseRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select("fr.id", "fr.form_id", "fr.submitted_by", "COALESCE(u.email, '')", "fr.responses", "fr.submitted_at").
		From("form_responses fr").
		LeftJoin("users u ON u.id = fr.submitted_by")
}

func scanResponse(row pgx.Row) (*models.FormResponse, error) {
	var (
		fr  models.FormResponse
		raw []byte
	)
	if err := row.Scan(&fr.ID, &fr.FormID, &fr.SubmittedBy, &fr.SubmitterEmail, &raw, &fr.SubmittedAt); err != nil {
		return nil, err
	}
	fr.Responses = map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fr.Responses); err != nil {
			return nil, fmt.Errorf("decode response %d: %w", fr.ID, err)
		}
	}
	return &fr, nil
}

func responseWhere(f ResponseFilter) squirrel.And {
	where := squirrel.And{}
	if f.FormID != nil {
		where = append(where, squirrel.Eq{"fr.form_id": *f.FormID})
	}
	if f.SubmittedBy != nil {
		where = append(where, squirrel.Eq{"fr.submitted_by": *f.SubmittedBy})
	}
	return where
}

// Create stores a submission verbatim
func (r *ResponseRepository) Create(ctx context.Context, fr *models.FormResponse) error {
	raw, err := json.Marshal(fr.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	sql, args, err := r.sb.Insert("form_responses").
		Columns("form_id", "submitted_by", "responses").
		Values(fr.FormID, fr.SubmittedBy, string(raw)).
		Suffix("RETURNING id, submitted_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create response query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&fr.ID, &fr.SubmittedAt); err != nil {
		if _, fk := dberrors.IsForeignKeyViolation(err); fk {
			return apperrors.ErrFormNotFound
		}
		return fmt.Errorf("error creating response: %w", err)
	}
	return nil
}

// GetByID retrieves a submission; a non-nil submittedBy restricts the
// lookup to that submitter's rows.
func (r *ResponseRepository) GetByID(ctx context.Context, id int64, submittedBy *int64) (*models.FormResponse, error) {
	where := responseWhere(ResponseFilter{SubmittedBy: submittedBy})
	where = append(where, squirrel.Eq{"fr.id": id})

	sql, args, err := r.baseSelect().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get response query: %w", err)
	}
	fr, err := scanResponse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResponseNotFound
		}
		return nil, fmt.Errorf("error retrieving response: %w", err)
	}
	return fr, nil
}

// List returns one page of submissions, newest first
func (r *ResponseRepository) List(ctx context.Context, f ResponseFilter) ([]models.FormResponse, int64, error) {
	where := responseWhere(f)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("form_responses fr").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count responses query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}
	if total == 0 {
		return []models.FormResponse{}, 0, nil
	}

	q := r.baseSelect().Where(where).OrderBy("fr.submitted_at DESC", "fr.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list responses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	out := []models.FormResponse{}
	for rows.Next() {
		fr, err := scanResponse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan response row: %w", err)
		}
		out = append(out, *fr)
	}
	return out, total, rows.Err()
}
