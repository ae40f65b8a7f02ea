package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/app/repositories"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

// In-memory stores standing in for the Postgres repositories.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) List(_ context.Context, f repositories.UserFilter) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type fakeToken struct {
	userID  int64
	expires time.Time
	revoked bool
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*fakeToken{}}
}

func (s *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = &fakeToken{userID: userID, expires: expiry}
	return nil
}

func (s *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, apperrors.ErrTokenRevoked
	case time.Now().After(t.expires):
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

func (s *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok || t.revoked {
		return apperrors.ErrTokenRevoked
	}
	t.revoked = true
	return nil
}

func (s *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (s *fakeTokenStore) active(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.userID == userID && !t.revoked {
			n++
		}
	}
	return n
}

type fakeRoleStore struct {
	mu     sync.Mutex
	nextID int64
	roles  map[int64]*models.CustomRole
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{roles: map[int64]*models.CustomRole{}}
}

func (s *fakeRoleStore) conflicts(cr *models.CustomRole) bool {
	for _, r := range s.roles {
		if r.ID == cr.ID {
			continue
		}
		if r.Name == cr.Name {
			return true
		}
		if r.Role != nil && cr.Role != nil && *r.Role == *cr.Role {
			return true
		}
	}
	return false
}

func (s *fakeRoleStore) List(_ context.Context) ([]models.CustomRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CustomRole{}
	for _, r := range s.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeRoleStore) GetByID(_ context.Context, id int64) (*models.CustomRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, apperrors.ErrCustomRoleNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRoleStore) GetByRole(_ context.Context, role models.RoleType) (*models.CustomRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Role != nil && *r.Role == role {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCustomRoleNotFound
}

func (s *fakeRoleStore) Create(_ context.Context, cr *models.CustomRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts(cr) {
		return apperrors.ErrCustomRoleExists
	}
	s.nextID++
	cr.ID = s.nextID
	cp := *cr
	s.roles[cr.ID] = &cp
	return nil
}

func (s *fakeRoleStore) Update(_ context.Context, cr *models.CustomRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[cr.ID]; !ok {
		return apperrors.ErrCustomRoleNotFound
	}
	if s.conflicts(cr) {
		return apperrors.ErrCustomRoleExists
	}
	cp := *cr
	s.roles[cr.ID] = &cp
	return nil
}

func (s *fakeRoleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return apperrors.ErrCustomRoleNotFound
	}
	delete(s.roles, id)
	return nil
}

type fakeFormStore struct {
	mu          sync.Mutex
	nextID      int64
	nextFieldID int64
	forms       map[int64]*models.Form
}

func newFakeFormStore() *fakeFormStore {
	return &fakeFormStore{forms: map[int64]*models.Form{}}
}

func cloneForm(f *models.Form) *models.Form {
	cp := *f
	cp.Fields = append([]models.FormField{}, f.Fields...)
	sort.Slice(cp.Fields, func(i, j int) bool { return cp.Fields[i].Order < cp.Fields[j].Order })
	return &cp
}

func (s *fakeFormStore) Create(_ context.Context, f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	f.ID = s.nextID
	for i := range f.Fields {
		s.nextFieldID++
		f.Fields[i].ID = s.nextFieldID
		f.Fields[i].FormID = f.ID
	}
	s.forms[f.ID] = cloneForm(f)
	return nil
}

func (s *fakeFormStore) GetByID(_ context.Context, id int64) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}
	return cloneForm(f), nil
}

func (s *fakeFormStore) List(_ context.Context, flt repositories.FormFilter) ([]models.Form, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Form{}
	for _, f := range s.forms {
		if flt.IsActive != nil && f.IsActive != *flt.IsActive {
			continue
		}
		out = append(out, *cloneForm(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeFormStore) Update(_ context.Context, f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.forms[f.ID]
	if !ok {
		return apperrors.ErrFormNotFound
	}
	existing.Title = f.Title
	existing.Description = f.Description
	existing.IsActive = f.IsActive
	return nil
}

func (s *fakeFormStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return apperrors.ErrFormNotFound
	}
	delete(s.forms, id)
	return nil
}

func (s *fakeFormStore) AddFields(_ context.Context, formID int64, plan repositories.FieldPlanner) ([]models.FormField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[formID]
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}
	fields, err := plan(cloneForm(f).Fields)
	if err != nil {
		return nil, err
	}
	for i := range fields {
		s.nextFieldID++
		fields[i].ID = s.nextFieldID
		fields[i].FormID = formID
		f.Fields = append(f.Fields, fields[i])
	}
	return fields, nil
}

type fakeResponseStore struct {
	mu        sync.Mutex
	nextID    int64
	responses []models.FormResponse
}

func (s *fakeResponseStore) Create(_ context.Context, fr *models.FormResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	fr.ID = s.nextID
	fr.SubmittedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.responses = append(s.responses, *fr)
	return nil
}

func (s *fakeResponseStore) GetByID(_ context.Context, id int64, submittedBy *int64) (*models.FormResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.responses {
		if r.ID == id && (submittedBy == nil || r.SubmittedBy == *submittedBy) {
			cp := r
			return &cp, nil
		}
	}
	return nil, apperrors.ErrResponseNotFound
}

func (s *fakeResponseStore) List(_ context.Context, f repositories.ResponseFilter) ([]models.FormResponse, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FormResponse{}
	for _, r := range s.responses {
		if f.FormID != nil && r.FormID != *f.FormID {
			continue
		}
		if f.SubmittedBy != nil && r.SubmittedBy != *f.SubmittedBy {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

type fakeBookStore struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]*models.Book
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: map[int64]*models.Book{}}
}

func (s *fakeBookStore) Create(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.UploadedAt = time.Now()
	b.UpdatedAt = b.UploadedAt
	cp := *b
	s.books[b.ID] = &cp
	return nil
}

func (s *fakeBookStore) GetByID(_ context.Context, id int64) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, apperrors.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookStore) List(_ context.Context, f repositories.BookFilter) ([]models.Book, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Book{}
	for _, b := range s.books {
		if f.CategoryID != nil && b.CategoryID != *f.CategoryID {
			continue
		}
		if f.GradeID != nil && b.GradeID != *f.GradeID {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeBookStore) Update(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[b.ID]; !ok {
		return apperrors.ErrBookNotFound
	}
	cp := *b
	s.books[b.ID] = &cp
	return nil
}

func (s *fakeBookStore) Delete(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return "", apperrors.ErrBookNotFound
	}
	delete(s.books, id)
	return b.FilePath, nil
}

type fakeTaxonomyStore struct {
	mu         sync.Mutex
	categories []models.Category
	grades     []models.Grade
	listCalls  int
}

func newFakeTaxonomyStore() *fakeTaxonomyStore {
	return &fakeTaxonomyStore{
		categories: []models.Category{{ID: 1, Name: "Mathematics"}, {ID: 2, Name: "Computer Science"}},
		grades:     []models.Grade{{ID: 1, Name: "Grade 1"}, {ID: 2, Name: "Undergraduate"}},
	}
}

func (s *fakeTaxonomyStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return append([]models.Category{}, s.categories...), nil
}

func (s *fakeTaxonomyStore) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCategoryNotFound
}

func (s *fakeTaxonomyStore) ListGrades(_ context.Context) ([]models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return append([]models.Grade{}, s.grades...), nil
}

func (s *fakeTaxonomyStore) GetGrade(_ context.Context, id int64) (*models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grades {
		if g.ID == id {
			cp := g
			return &cp, nil
		}
	}
	return nil, apperrors.ErrGradeNotFound
}
