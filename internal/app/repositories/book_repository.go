package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/db"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/dberrors"
)

// BookOrderings maps the accepted ordering parameter to SQL
var BookOrderings = map[string]string{
	"uploaded_at":  "b.uploaded_at ASC",
	"-uploaded_at": "b.uploaded_at DESC",
	"title":        "b.title ASC",
	"-title":       "b.title DESC",
}

// DefaultBookOrdering is applied when no ordering is requested
const DefaultBookOrdering = "-uploaded_at"

// BookFilter narrows a book listing
type BookFilter struct {
	ListQuery
	CategoryID *int64
	GradeID    *int64
	Search     string
	Ordering   string
}

// BookRepository persists catalog entries
type BookRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(conn db.DBTX) *BookRepository {
	return &BookRepository{db: conn, sb: psql}
}

func (r *BookRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"b.id", "b.title", "b.author", "b.category_id", "c.name", "b.grade_id", "g.name",
		"b.file_path", "b.file_type", "b.file_size", "b.uploaded_by", "b.uploaded_at", "b.updated_at",
	).
		From("books b").
		Join("categories c ON c.id = b.category_id").
		Join("grades g ON g.id = b.grade_id")
}

func scanBook(row pgx.Row) (*models.Book, error) {
	b := &models.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.CategoryID, &b.CategoryName, &b.GradeID, &b.GradeName,
		&b.FilePath, &b.FileType, &b.FileSize, &b.UploadedBy, &b.UploadedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func mapBookFKErr(err error) error {
	if constraint, ok := dberrors.IsForeignKeyViolation(err); ok {
		switch {
		case strings.Contains(constraint, "category"):
			return apperrors.ErrCategoryNotFound
		case strings.Contains(constraint, "grade"):
			return apperrors.ErrGradeNotFound
		}
	}
	return err
}

// Create inserts a catalog entry
func (r *BookRepository) Create(ctx context.Context, b *models.Book) error {
	sql, args, err := r.sb.Insert("books").
		Columns("title", "author", "category_id", "grade_id", "file_path", "file_type", "file_size", "uploaded_by").
		Values(b.Title, b.Author, b.CategoryID, b.GradeID, b.FilePath, b.FileType, b.FileSize, b.UploadedBy).
		Suffix("RETURNING id, uploaded_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create book query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.UploadedAt, &b.UpdatedAt); err != nil {
		if mapped := mapBookFKErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error creating book: %w", err)
	}
	return nil
}

// GetByID retrieves a book with its category and grade names
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book query: %w", err)
	}
	b, err := scanBook(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("error retrieving book: %w", err)
	}
	return b, nil
}

// List returns one page of books matching the filter
func (r *BookRepository) List(ctx context.Context, f BookFilter) ([]models.Book, int64, error) {
	where := squirrel.And{}
	if f.CategoryID != nil {
		where = append(where, squirrel.Eq{"b.category_id": *f.CategoryID})
	}
	if f.GradeID != nil {
		where = append(where, squirrel.Eq{"b.grade_id": *f.GradeID})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"b.title": like},
			squirrel.ILike{"b.author": like},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("books b").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count books query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}
	if total == 0 {
		return []models.Book{}, 0, nil
	}

	order, ok := BookOrderings[f.Ordering]
	if !ok {
		order = BookOrderings[DefaultBookOrdering]
	}

	sql, args, err := r.baseSelect().Where(where).
		OrderBy(order, "b.id DESC").
		Limit(f.Limit).Offset(f.Offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list books query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, *b)
	}
	return books, total, rows.Err()
}

// Update writes the book metadata
func (r *BookRepository) Update(ctx context.Context, b *models.Book) error {
	sql, args, err := r.sb.Update("books").
		Set("title", b.Title).
		Set("author", b.Author).
		Set("category_id", b.CategoryID).
		Set("grade_id", b.GradeID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update book query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrBookNotFound
		}
		if mapped := mapBookFKErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error updating book: %w", err)
	}
	return nil
}

// Delete removes the row and returns the blob path it referenced
func (r *BookRepository) Delete(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.db.QueryRow(ctx, `DELETE FROM books WHERE id = $1 RETURNING file_path`, id).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrBookNotFound
		}
		return "", fmt.Errorf("error deleting book: %w", err)
	}
	return path, nil
}
