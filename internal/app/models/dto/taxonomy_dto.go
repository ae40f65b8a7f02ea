package dto

import (
	"time"

	"github.com/yigit/questionbank/internal/app/models"
)

// CategoryResponse represents a book category
type CategoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GradeResponse represents a grade level
type GradeResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromCategory(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func FromGrade(g models.Grade) GradeResponse {
	return GradeResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}
