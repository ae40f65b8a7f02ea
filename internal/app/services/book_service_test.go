package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/filestorage"
	"github.com/yigit/questionbank/internal/pkg/metrics"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type bookFixture struct {
	svc     BookService
	books   *fakeBookStore
	storage *filestorage.LocalStorage
	users   *fakeUserStore
}

func newBookFixture(t *testing.T, maxBytes int64) *bookFixture {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)
	books := newFakeBookStore()
	authz := appauth.NewAuthorizer(newFakeRoleStore())
	return &bookFixture{
		svc:     NewBookService(books, newFakeTaxonomyStore(), storage, authz, metrics.New(), maxBytes, testLogger),
		books:   books,
		storage: storage,
		users:   newFakeUserStore(),
	}
}

func uploadOf(name string, data []byte, declared int64) *UploadFile {
	return &UploadFile{
		Name: name,
		Size: declared,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func validInput(file *UploadFile) *UploadBookInput {
	return &UploadBookInput{File: file, Title: "Algebra", Author: "Noether", Category: "1", Grade: "1"}
}

func (fx *bookFixture) upload(t *testing.T, actor *appauth.Actor, name string, data []byte) *dto.BookResponse {
	t.Helper()
	book, err := fx.svc.UploadBook(context.Background(), actor, validInput(uploadOf(name, data, int64(len(data)))))
	require.NoError(t, err)
	return book
}

func TestBookService_UploadStoresSanitizedPath(t *testing.T) {
	fx := newBookFixture(t, 0)
	imp := seedUser(t, fx.users, "imp@example.com", models.RoleImporter)

	book := fx.upload(t, actorFor(imp), "my book (1).pdf", samplePDF)

	assert.Equal(t, "books/mathematics/grade_1/my_book__1_.pdf", book.File)
	assert.Equal(t, "http://localhost:8080/media/books/mathematics/grade_1/my_book__1_.pdf", book.FileURL)
	assert.Equal(t, "PDF", book.FileType)
	assert.Equal(t, int64(len(samplePDF)), book.FileSize)
	assert.Equal(t, imp.ID, book.UploadedBy)
	assert.Equal(t, "Mathematics", book.CategoryName)

	rc, err := fx.storage.Open(context.Background(), book.File)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, stored)

	again := fx.upload(t, actorFor(imp), "my book (1).pdf", samplePDF)
	assert.NotEqual(t, book.File, again.File)
	assert.True(t, strings.HasPrefix(again.File, "books/mathematics/grade_1/my_book__1__"))
}

func TestBookService_UploadValidationOrder(t *testing.T) {
	fx := newBookFixture(t, 0)
	imp := actorFor(seedUser(t, fx.users, "imp@example.com", models.RoleImporter))
	ctx := context.Background()

	_, err := fx.svc.UploadBook(ctx, imp, &UploadBookInput{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrMissingFile)

	huge := validInput(uploadOf("big.pdf", samplePDF, 52428801))
	huge.Title = ""
	_, err = fx.svc.UploadBook(ctx, imp, huge)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	for _, field := range []string{"title", "author", "category", "grade"} {
		in := validInput(uploadOf("a.pdf", samplePDF, int64(len(samplePDF))))
		switch field {
		case "title":
			in.Title = ""
		case "author":
			in.Author = " "
		case "category":
			in.Category = ""
		case "grade":
			in.Grade = ""
		}
		_, err := fx.svc.UploadBook(ctx, imp, in)
		var ce *apperrors.CustomError
		require.ErrorAs(t, err, &ce, field)
		assert.Equal(t, field, ce.Field)
		assert.Equal(t, "Missing required field: "+field, ce.Message)
	}

	in := validInput(uploadOf("a.pdf", samplePDF, int64(len(samplePDF))))
	in.Category = "99"
	_, err = fx.svc.UploadBook(ctx, imp, in)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	in = validInput(uploadOf("a.pdf", samplePDF, int64(len(samplePDF))))
	in.Grade = "abc"
	_, err = fx.svc.UploadBook(ctx, imp, in)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	list, _, err := fx.svc.ListBooks(ctx, &dto.BookFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBookService_UploadCountsActualBytes(t *testing.T) {
	fx := newBookFixture(t, 16)
	imp := actorFor(seedUser(t, fx.users, "imp@example.com", models.RoleImporter))

	// the declared size lies; the stored byte count decides
	_, err := fx.svc.UploadBook(context.Background(), imp, validInput(uploadOf("big.pdf", samplePDF, 1)))
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	_, err = fx.storage.Open(context.Background(), "books/mathematics/grade_1/big.pdf")
	assert.ErrorIs(t, err, filestorage.ErrNotFound)
	assert.Empty(t, fx.books.books)
}

func TestBookService_PDFLink(t *testing.T) {
	fx := newBookFixture(t, 0)
	imp := actorFor(seedUser(t, fx.users, "imp@example.com", models.RoleImporter))
	ctx := context.Background()

	pdf := fx.upload(t, imp, "a.pdf", samplePDF)
	link, err := fx.svc.PDFLink(ctx, pdf.ID)
	require.NoError(t, err)
	assert.Equal(t, pdf.FileURL, link.PDFURL)

	txt := fx.upload(t, imp, "notes.txt", []byte("plain text notes\n"))
	assert.Equal(t, "TXT", txt.FileType)
	_, err = fx.svc.PDFLink(ctx, txt.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotPDF)

	stored, err := fx.books.GetByID(ctx, txt.ID)
	require.NoError(t, err)
	stored.FileType = "pdf"
	require.NoError(t, fx.books.Update(ctx, stored))
	_, err = fx.svc.PDFLink(ctx, txt.ID)
	assert.NoError(t, err)
}

func TestBookService_UpdateAndDeleteOwnership(t *testing.T) {
	fx := newBookFixture(t, 0)
	owner := actorFor(seedUser(t, fx.users, "owner@example.com", models.RoleImporter))
	other := actorFor(seedUser(t, fx.users, "other@example.com", models.RoleImporter))
	teacher := actorFor(seedUser(t, fx.users, "t@example.com", models.RoleTeacher))
	admin := actorFor(seedUser(t, fx.users, "admin@example.com", models.RoleAdmin))
	ctx := context.Background()

	book := fx.upload(t, owner, "a.pdf", samplePDF)

	_, err := fx.svc.UpdateBook(ctx, other, book.ID, &dto.UpdateBookRequest{Title: strPtr("Hijack")}, true)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, fx.svc.DeleteBook(ctx, teacher, book.ID), apperrors.ErrPermissionDenied)

	updated, err := fx.svc.UpdateBook(ctx, owner, book.ID, &dto.UpdateBookRequest{Title: strPtr("Geometry")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Geometry", updated.Title)
	assert.Equal(t, "Noether", updated.Author)

	_, err = fx.svc.UpdateBook(ctx, admin, book.ID, &dto.UpdateBookRequest{Title: strPtr("Only title")}, false)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	grade := int64(2)
	updated, err = fx.svc.UpdateBook(ctx, admin, book.ID, &dto.UpdateBookRequest{Grade: &grade}, true)
	require.NoError(t, err)
	assert.Equal(t, "Undergraduate", updated.GradeName)

	require.NoError(t, fx.svc.DeleteBook(ctx, owner, book.ID))
	_, err = fx.storage.Open(ctx, book.File)
	assert.ErrorIs(t, err, filestorage.ErrNotFound)
	_, err = fx.svc.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestBookService_ListAndDownload(t *testing.T) {
	fx := newBookFixture(t, 0)
	imp := actorFor(seedUser(t, fx.users, "imp@example.com", models.RoleImporter))
	ctx := context.Background()

	book := fx.upload(t, imp, "a.pdf", samplePDF)

	_, _, err := fx.svc.ListBooks(ctx, &dto.BookFilterRequest{Ordering: "author"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	cat := int64(1)
	list, page, err := fx.svc.ListBooks(ctx, &dto.BookFilterRequest{Category: &cat, Ordering: "-title"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), page.TotalItems)
	assert.Equal(t, "77.0 B", list[0].FileSizeDisplay)

	rc, name, err := fx.svc.Download(ctx, book.ID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "a.pdf", name)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)
}
