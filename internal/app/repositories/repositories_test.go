package repositories

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

func TestResponseWhere_ScopesSubmitter(t *testing.T) {
	form, user := int64(3), int64(9)

	sql, args, err := psql.Select("fr.id").From("form_responses fr").
		Where(responseWhere(ResponseFilter{FormID: &form, SubmittedBy: &user})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT fr.id FROM form_responses fr WHERE (fr.form_id = $1 AND fr.submitted_by = $2)", sql)
	assert.Equal(t, []interface{}{int64(3), int64(9)}, args)

	sql, _, err = psql.Select("fr.id").From("form_responses fr").
		Where(responseWhere(ResponseFilter{})).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "submitted_by")
}

func TestMapBookFKErr(t *testing.T) {
	catErr := &pgconn.PgError{Code: "23503", ConstraintName: "books_category_id_fkey"}
	gradeErr := &pgconn.PgError{Code: "23503", ConstraintName: "books_grade_id_fkey"}
	other := errors.New("boom")

	assert.ErrorIs(t, mapBookFKErr(catErr), apperrors.ErrCategoryNotFound)
	assert.ErrorIs(t, mapBookFKErr(gradeErr), apperrors.ErrGradeNotFound)
	assert.Equal(t, other, mapBookFKErr(other))
}

func TestEncodeOptions(t *testing.T) {
	raw, err := encodeOptions(models.FieldTypeSelect, []string{"a", "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))

	raw, err = encodeOptions(models.FieldTypeText, []string{"ignored"})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestBookOrderings(t *testing.T) {
	for _, key := range []string{"uploaded_at", "-uploaded_at", "title", "-title"} {
		assert.Contains(t, BookOrderings, key)
	}
	assert.Equal(t, "b.uploaded_at DESC", BookOrderings[DefaultBookOrdering])
}
