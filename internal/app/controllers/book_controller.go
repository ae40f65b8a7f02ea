package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/app/services"
	"github.com/yigit/questionbank/internal/middleware"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

const (
	// multipartOverhead leaves room for the text parts and boundaries
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// BookController handles the library catalog
type BookController struct {
	bookService services.BookService
	maxBytes    int64
	logger      zerolog.Logger
}

// NewBookController creates a new BookController
func NewBookController(bookService services.BookService, maxBytes int64, logger zerolog.Logger) *BookController {
	return &BookController{
		bookService: bookService,
		maxBytes:    maxBytes,
		logger:      logger,
	}
}

// ListBooks lists the catalog
// @Summary List books
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param category query int false "Category ID"
// @Param grade query int false "Grade ID"
// @Param search query string false "Search in title and author"
// @Param ordering query string false "uploaded_at, -uploaded_at, title or -title"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /books [get]
func (c *BookController) ListBooks(ctx *gin.Context) {
	var filter dto.BookFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	books, page, err := c.bookService.ListBooks(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, books, page)
}

// UploadBook stores an uploaded file with its catalog metadata
// @Summary Upload a book
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Book file (max 50MB)"
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param category formData int true "Category ID"
// @Param grade formData int true "Grade ID"
// @Success 201 {object} dto.APIResponse{data=dto.BookResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file, file too large or missing field"
// @Failure 404 {object} dto.ErrorResponse "Category or grade not found"
// @Router /books [post]
func (c *BookController) UploadBook(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxBytes+multipartOverhead)
	if err := ctx.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.HandleAPIError(ctx, apperrors.ErrFileTooLarge)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid multipart form"))
			return
		}
	}

	in := &services.UploadBookInput{
		Title:    ctx.PostForm("title"),
		Author:   ctx.PostForm("author"),
		Category: ctx.PostForm("category"),
		Grade:    ctx.PostForm("grade"),
	}
	if fh, err := ctx.FormFile("file"); err == nil {
		in.File = &services.UploadFile{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		}
	}

	book, err := c.bookService.UploadBook(ctx.Request.Context(), actor, in)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Book upload rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, book, "Book uploaded successfully")
}

func (c *BookController) GetBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	book, err := c.bookService.GetBook(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, book, "")
}

func (c *BookController) UpdateBook(ctx *gin.Context) {
	c.update(ctx, false)
}

func (c *BookController) PatchBook(ctx *gin.Context) {
	c.update(ctx, true)
}

func (c *BookController) update(ctx *gin.Context, partial bool) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	book, err := c.bookService.UpdateBook(ctx.Request.Context(), actor, id, &req, partial)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, book, "Book updated successfully")
}

// DeleteBook removes a book and its file
func (c *BookController) DeleteBook(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.bookService.DeleteBook(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Book deleted successfully")
}

// PDFLink returns the URL of a PDF book
// @Summary Get PDF link
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=dto.PDFLinkResponse}
// @Failure 400 {object} dto.ErrorResponse "This book is not in PDF format"
// @Router /books/{id}/pdf [get]
func (c *BookController) PDFLink(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	link, err := c.bookService.PDFLink(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, link, "")
}

// Download streams the stored file as an attachment
func (c *BookController) Download(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	rc, name, err := c.bookService.Download(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}
