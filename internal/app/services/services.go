package services

import (
	"context"
	"time"

	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/repositories"
)

// Persistence contracts the services depend on. The repositories package
// provides the Postgres implementations.

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, f repositories.UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// CustomRoleStore persists permission sets
type CustomRoleStore interface {
	List(ctx context.Context) ([]models.CustomRole, error)
	GetByID(ctx context.Context, id int64) (*models.CustomRole, error)
	GetByRole(ctx context.Context, role models.RoleType) (*models.CustomRole, error)
	Create(ctx context.Context, cr *models.CustomRole) error
	Update(ctx context.Context, cr *models.CustomRole) error
	Delete(ctx context.Context, id int64) error
}

// FormStore persists forms and fields
type FormStore interface {
	Create(ctx context.Context, form *models.Form) error
	GetByID(ctx context.Context, id int64) (*models.Form, error)
	List(ctx context.Context, f repositories.FormFilter) ([]models.Form, int64, error)
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id int64) error
	AddFields(ctx context.Context, formID int64, plan repositories.FieldPlanner) ([]models.FormField, error)
}

// ResponseStore persists form submissions
type ResponseStore interface {
	Create(ctx context.Context, fr *models.FormResponse) error
	GetByID(ctx context.Context, id int64, submittedBy *int64) (*models.FormResponse, error)
	List(ctx context.Context, f repositories.ResponseFilter) ([]models.FormResponse, int64, error)
}

// BookStore persists catalog entries
type BookStore interface {
	Create(ctx context.Context, b *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, f repositories.BookFilter) ([]models.Book, int64, error)
	Update(ctx context.Context, b *models.Book) error
	Delete(ctx context.Context, id int64) (string, error)
}

// TaxonomyStore reads categories and grades
type TaxonomyStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListGrades(ctx context.Context) ([]models.Grade, error)
	GetGrade(ctx context.Context, id int64) (*models.Grade, error)
}

// Authorizer is the permission check used for object-level decisions
type Authorizer interface {
	Authorize(ctx context.Context, actor *appauth.Actor, resource appauth.Resource, action appauth.Action, owner *int64) error
}

// Services bundles every service the HTTP layer needs
type Services struct {
	Auth     AuthService
	User     UserService
	Role     RoleService
	Form     FormService
	Book     BookService
	Taxonomy TaxonomyService
}
