package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/pkg/cache"
)

const (
	categoriesCacheKey = "categories"
	gradesCacheKey     = "grades"
)

// TaxonomyService serves the read-only category and grade lists
type TaxonomyService interface {
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	GetCategory(ctx context.Context, id int64) (*dto.CategoryResponse, error)
	ListGrades(ctx context.Context) ([]dto.GradeResponse, error)
	GetGrade(ctx context.Context, id int64) (*dto.GradeResponse, error)
}

type taxonomyServiceImpl struct {
	repo   TaxonomyStore
	cache  *cache.Helper
	logger zerolog.Logger
}

// NewTaxonomyService creates a new TaxonomyService. A nil or disabled
// cache helper reads straight from the store.
func NewTaxonomyService(repo TaxonomyStore, c *cache.Helper, logger zerolog.Logger) TaxonomyService {
	return &taxonomyServiceImpl{repo: repo, cache: c, logger: logger}
}

// ListCategories returns every category ordered by name
func (s *taxonomyServiceImpl) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	return cache.GetOrLoad(ctx, s.cache, categoriesCacheKey, func(ctx context.Context) ([]dto.CategoryResponse, error) {
		cats, err := s.repo.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dto.CategoryResponse, 0, len(cats))
		for _, c := range cats {
			out = append(out, dto.FromCategory(c))
		}
		return out, nil
	})
}

func (s *taxonomyServiceImpl) GetCategory(ctx context.Context, id int64) (*dto.CategoryResponse, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromCategory(*c)
	return &resp, nil
}

// ListGrades returns every grade in seed order
func (s *taxonomyServiceImpl) ListGrades(ctx context.Context) ([]dto.GradeResponse, error) {
	return cache.GetOrLoad(ctx, s.cache, gradesCacheKey, func(ctx context.Context) ([]dto.GradeResponse, error) {
		grades, err := s.repo.ListGrades(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dto.GradeResponse, 0, len(grades))
		for _, g := range grades {
			out = append(out, dto.FromGrade(g))
		}
		return out, nil
	})
}

func (s *taxonomyServiceImpl) GetGrade(ctx context.Context, id int64) (*dto.GradeResponse, error) {
	g, err := s.repo.GetGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromGrade(*g)
	return &resp, nil
}
