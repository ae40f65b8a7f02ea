package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/yigit/questionbank/internal/db"
)

// psql builds Postgres ($n) placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	CustomRoleRepository *CustomRoleRepository
	FormRepository       *FormRepository
	ResponseRepository   *ResponseRepository
	BookRepository       *BookRepository
	TaxonomyRepository   *TaxonomyRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool db.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(pool),
		TokenRepository:      NewTokenRepository(pool),
		CustomRoleRepository: NewCustomRoleRepository(pool),
		FormRepository:       NewFormRepository(pool),
		ResponseRepository:   NewResponseRepository(pool),
		BookRepository:       NewBookRepository(pool),
		TaxonomyRepository:   NewTaxonomyRepository(pool),
	}
}

// ListQuery is the shared paging window of list operations
type ListQuery struct {
	Offset uint64
	Limit  uint64
}
