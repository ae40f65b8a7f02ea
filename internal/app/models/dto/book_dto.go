package dto

import (
	"time"

	"github.com/yigit/questionbank/internal/app/models"
)

// UpdateBookRequest carries metadata changes; PUT requires every field
type UpdateBookRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author   *string `json:"author" binding:"omitempty,min=1,max=255"`
	Category *int64  `json:"category" binding:"omitempty,gt=0"`
	Grade    *int64  `json:"grade" binding:"omitempty,gt=0"`
}

// BookFilterRequest holds the book listing query
type BookFilterRequest struct {
	PageRequest
	Category *int64 `form:"category"`
	Grade    *int64 `form:"grade"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
}

// BookResponse represents a catalog entry
type BookResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        int64     `json:"category"`
	CategoryName    string    `json:"categoryName"`
	Grade           int64     `json:"grade"`
	GradeName       string    `json:"gradeName"`
	File            string    `json:"file"`
	FileURL         string    `json:"fileUrl"`
	FileType        string    `json:"fileType"`
	FileSize        int64     `json:"fileSize"`
	FileSizeDisplay string    `json:"fileSizeDisplay"`
	UploadedBy      int64     `json:"uploadedBy"`
	UploadedAt      time.Time `json:"uploadedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PDFLinkResponse is returned by the pdf sub-action
type PDFLinkResponse struct {
	PDFURL string `json:"pdf_url"`
}

// FromBook maps a book model; urlFor resolves stored paths to public URLs
// and sizeFmt renders the human-readable size.
func FromBook(b *models.Book, urlFor func(string) string, sizeFmt func(int64) string) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Category:        b.CategoryID,
		CategoryName:    b.CategoryName,
		Grade:           b.GradeID,
		GradeName:       b.GradeName,
		File:            b.FilePath,
		FileURL:         urlFor(b.FilePath),
		FileType:        b.FileType,
		FileSize:        b.FileSize,
		FileSizeDisplay: sizeFmt(b.FileSize),
		UploadedBy:      b.UploadedBy,
		UploadedAt:      b.UploadedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
