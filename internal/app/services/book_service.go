package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/app/repositories"
	"github.com/yigit/questionbank/internal/config"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/filestorage"
	"github.com/yigit/questionbank/internal/pkg/helpers"
	"github.com/yigit/questionbank/internal/pkg/metrics"
)

// sniffLen is how much of the upload mimetype inspects
const sniffLen = 3072

// UploadFile is the file part of an upload. Size is the size the client
// declared; the stored size is counted while writing.
type UploadFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// UploadBookInput carries the multipart fields of an upload
type UploadBookInput struct {
	File     *UploadFile
	Title    string
	Author   string
	Category string
	Grade    string
}

// BookService defines the library catalog operations
type BookService interface {
	UploadBook(ctx context.Context, actor *appauth.Actor, in *UploadBookInput) (*dto.BookResponse, error)
	GetBook(ctx context.Context, id int64) (*dto.BookResponse, error)
	ListBooks(ctx context.Context, filter *dto.BookFilterRequest) ([]dto.BookResponse, dto.PaginationInfo, error)
	UpdateBook(ctx context.Context, actor *appauth.Actor, id int64, req *dto.UpdateBookRequest, partial bool) (*dto.BookResponse, error)
	DeleteBook(ctx context.Context, actor *appauth.Actor, id int64) error
	PDFLink(ctx context.Context, id int64) (*dto.PDFLinkResponse, error)
	Download(ctx context.Context, id int64) (io.ReadCloser, string, error)
}

type bookServiceImpl struct {
	bookRepo     BookStore
	taxonomyRepo TaxonomyStore
	storage      filestorage.BlobStore
	authz        Authorizer
	metrics      *metrics.Metrics
	maxBytes     int64
	logger       zerolog.Logger
}

// NewBookService creates a new BookService. maxBytes <= 0 selects the default limit.
func NewBookService(
	bookRepo BookStore,
	taxonomyRepo TaxonomyStore,
	storage filestorage.BlobStore,
	authz Authorizer,
	m *metrics.Metrics,
	maxBytes int64,
	logger zerolog.Logger,
) BookService {
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	return &bookServiceImpl{
		bookRepo:     bookRepo,
		taxonomyRepo: taxonomyRepo,
		storage:      storage,
		authz:        authz,
		metrics:      m,
		maxBytes:     maxBytes,
		logger:       logger,
	}
}

func (s *bookServiceImpl) toResponse(b *models.Book) dto.BookResponse {
	return dto.FromBook(b, s.storage.URL, helpers.HumanFileSize)
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(field, fmt.Sprintf("Invalid %s id: %s", field, raw))
	}
	return id, nil
}

// detectFileType returns the upper-case extension of the sniffed type,
// falling back to the file name's own extension.
func detectFileType(head []byte, filename string) string {
	if ext := mimetype.Detect(head).Extension(); ext != "" {
		return strings.ToUpper(strings.TrimPrefix(ext, "."))
	}
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func (s *bookServiceImpl) reject(reason string, err error) error {
	s.metrics.UploadRejected(reason)
	return err
}

// UploadBook validates the multipart fields, stores the blob and records it
func (s *bookServiceImpl) UploadBook(ctx context.Context, actor *appauth.Actor, in *UploadBookInput) (*dto.BookResponse, error) {
	if in.File == nil || in.File.Open == nil {
		return nil, s.reject("missing_file", apperrors.ErrMissingFile)
	}
	if in.File.Size > s.maxBytes {
		return nil, s.reject("too_large", apperrors.ErrFileTooLarge)
	}

	required := []struct{ name, value string }{
		{"title", in.Title},
		{"author", in.Author},
		{"category", in.Category},
		{"grade", in.Grade},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, s.reject("invalid", apperrors.NewValidationError(r.name, "Missing required field: "+r.name))
		}
	}

	categoryID, err := parseID("category", in.Category)
	if err != nil {
		return nil, s.reject("invalid", err)
	}
	gradeID, err := parseID("grade", in.Grade)
	if err != nil {
		return nil, s.reject("invalid", err)
	}
	category, err := s.taxonomyRepo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, s.reject("invalid", err)
	}
	grade, err := s.taxonomyRepo.GetGrade(ctx, gradeID)
	if err != nil {
		return nil, s.reject("invalid", err)
	}

	src, err := in.File.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading upload: %w", err)
	}
	head = head[:n]
	fileType := detectFileType(head, in.File.Name)

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), src), s.maxBytes+1)
	path := filestorage.BuildBookPath(category.Name, grade.Name, in.File.Name)
	stored, written, err := s.storage.Save(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("error storing upload: %w", err)
	}
	if written > s.maxBytes {
		s.removeBlob(ctx, stored)
		return nil, s.reject("too_large", apperrors.ErrFileTooLarge)
	}

	book := &models.Book{
		Title:        strings.TrimSpace(in.Title),
		Author:       strings.TrimSpace(in.Author),
		CategoryID:   category.ID,
		CategoryName: category.Name,
		GradeID:      grade.ID,
		GradeName:    grade.Name,
		FilePath:     stored,
		FileType:     fileType,
		FileSize:     written,
		UploadedBy:   actor.UserID,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		s.removeBlob(ctx, stored)
		return nil, err
	}
	s.metrics.UploadAccepted(written)

	s.logger.Info().
		Int64("bookID", book.ID).
		Int64("uploadedBy", actor.UserID).
		Str("path", stored).
		Int64("bytes", written).
		Msg("Book uploaded")

	resp := s.toResponse(book)
	return &resp, nil
}

func (s *bookServiceImpl) removeBlob(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to remove stored file")
	}
}

// GetBook retrieves a book
func (s *bookServiceImpl) GetBook(ctx context.Context, id int64) (*dto.BookResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(book)
	return &resp, nil
}

// ListBooks returns one page of the catalog
func (s *bookServiceImpl) ListBooks(ctx context.Context, filter *dto.BookFilterRequest) ([]dto.BookResponse, dto.PaginationInfo, error) {
	ordering := filter.Ordering
	if ordering == "" {
		ordering = repositories.DefaultBookOrdering
	}
	if _, ok := repositories.BookOrderings[ordering]; !ok {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("ordering", fmt.Sprintf("Invalid ordering: %s", ordering))
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	books, total, err := s.bookRepo.List(ctx, repositories.BookFilter{
		ListQuery:  repositories.ListQuery{Offset: offset, Limit: limit},
		CategoryID: filter.Category,
		GradeID:    filter.Grade,
		Search:     filter.Search,
		Ordering:   ordering,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	out := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		out = append(out, s.toResponse(&books[i]))
	}
	return out, helpers.NewPaginationInfo(total, page, size), nil
}

func updateAction(partial bool) appauth.Action {
	if partial {
		return appauth.ActionPartialUpdate
	}
	return appauth.ActionUpdate
}

// UpdateBook changes catalog metadata; admin or uploader
func (s *bookServiceImpl) UpdateBook(ctx context.Context, actor *appauth.Actor, id int64, req *dto.UpdateBookRequest, partial bool) (*dto.BookResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, appauth.ResourceBooks, updateAction(partial), &book.UploadedBy); err != nil {
		return nil, err
	}

	if !partial {
		switch {
		case req.Title == nil:
			return nil, apperrors.NewValidationError("title", "Missing required field: title")
		case req.Author == nil:
			return nil, apperrors.NewValidationError("author", "Missing required field: author")
		case req.Category == nil:
			return nil, apperrors.NewValidationError("category", "Missing required field: category")
		case req.Grade == nil:
			return nil, apperrors.NewValidationError("grade", "Missing required field: grade")
		}
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
		if book.Title == "" {
			return nil, apperrors.NewValidationError("title", "title cannot be empty")
		}
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
		if book.Author == "" {
			return nil, apperrors.NewValidationError("author", "author cannot be empty")
		}
	}
	if req.Category != nil && *req.Category != book.CategoryID {
		category, err := s.taxonomyRepo.GetCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		book.CategoryID, book.CategoryName = category.ID, category.Name
	}
	if req.Grade != nil && *req.Grade != book.GradeID {
		grade, err := s.taxonomyRepo.GetGrade(ctx, *req.Grade)
		if err != nil {
			return nil, err
		}
		book.GradeID, book.GradeName = grade.ID, grade.Name
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	resp := s.toResponse(book)
	return &resp, nil
}

// DeleteBook removes the row and then the blob; admin or uploader
func (s *bookServiceImpl) DeleteBook(ctx context.Context, actor *appauth.Actor, id int64) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, actor, appauth.ResourceBooks, appauth.ActionDestroy, &book.UploadedBy); err != nil {
		return err
	}

	path, err := s.bookRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeBlob(ctx, path)

	s.logger.Info().Int64("bookID", id).Int64("by", actor.UserID).Msg("Book deleted")
	return nil
}

// PDFLink returns the public URL of a PDF book
func (s *bookServiceImpl) PDFLink(ctx context.Context, id int64) (*dto.PDFLinkResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(book.FileType, "PDF") {
		return nil, apperrors.ErrNotPDF
	}
	return &dto.PDFLinkResponse{PDFURL: s.storage.URL(book.FilePath)}, nil
}

// Download opens the stored blob; the caller closes the reader
func (s *bookServiceImpl) Download(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.storage.Open(ctx, book.FilePath)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) {
			return nil, "", apperrors.NewResourceNotFoundError("book file not found")
		}
		return nil, "", err
	}
	return rc, filepath.Base(book.FilePath), nil
}
