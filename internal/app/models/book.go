package models

import "time"

// Category is a flat, uniquely named book taxonomy
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Grade is a flat, uniquely named school level
type Grade struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Book is an uploaded library file with its catalog metadata
type Book struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Author       string    `json:"author" db:"author"`
	CategoryID   int64     `json:"categoryId" db:"category_id"`
	CategoryName string    `json:"categoryName,omitempty"`
	GradeID      int64     `json:"gradeId" db:"grade_id"`
	GradeName    string    `json:"gradeName,omitempty"`
	FilePath     string    `json:"filePath" db:"file_path"`
	FileType     string    `json:"fileType" db:"file_type"`
	FileSize     int64     `json:"fileSize" db:"file_size"`
	UploadedBy   int64     `json:"uploadedBy" db:"uploaded_by"`
	UploadedAt   time.Time `json:"uploadedAt" db:"uploaded_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
