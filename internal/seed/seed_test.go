package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type memTaxonomy struct {
	categories map[string]int64
	grades     map[string]int64
	failOn     string
}

func newMemTaxonomy() *memTaxonomy {
	return &memTaxonomy{categories: map[string]int64{}, grades: map[string]int64{}}
}

func ensureName(m map[string]int64, name string) (int64, bool) {
	if id, ok := m[name]; ok {
		return id, false
	}
	id := int64(len(m) + 1)
	m[name] = id
	return id, true
}

func (t *memTaxonomy) EnsureCategory(_ context.Context, name string) (int64, bool, error) {
	if name == t.failOn {
		return 0, false, errors.New("insert failed")
	}
	id, created := ensureName(t.categories, name)
	return id, created, nil
}

func (t *memTaxonomy) EnsureGrade(_ context.Context, name string) (int64, bool, error) {
	id, created := ensureName(t.grades, name)
	return id, created, nil
}

type memPermissionSets struct {
	byRole map[appModels.RoleType]map[string]bool
	names  map[string]bool
}

func (p *memPermissionSets) EnsureForRole(_ context.Context, name string, role appModels.RoleType, perms map[string]bool) (bool, error) {
	if p.byRole == nil {
		p.byRole = map[appModels.RoleType]map[string]bool{}
		p.names = map[string]bool{}
	}
	if _, ok := p.byRole[role]; ok || p.names[name] {
		return false, nil
	}
	p.byRole[role] = perms
	p.names[name] = true
	return true, nil
}

type memUsers struct {
	users []*appModels.User
}

func (u *memUsers) GetByEmail(_ context.Context, email string) (*appModels.User, error) {
	for _, usr := range u.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (u *memUsers) Create(_ context.Context, user *appModels.User) error {
	user.ID = int64(len(u.users) + 1)
	u.users = append(u.users, user)
	return nil
}

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	m.Run()
}

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, DefaultCategories, 17)
	assert.Len(t, DefaultGrades, 16)
}

func TestRunIsIdempotent(t *testing.T) {
	taxonomy := newMemTaxonomy()
	sets := &memPermissionSets{}
	users := &memUsers{}
	s := NewSeeder(taxonomy, sets, users, zerolog.Nop())
	admin := Admin{Email: "Admin@Example.com", Password: "change-me-now"}

	first, err := s.Run(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 17, Grades: 16, PermissionSets: 3, AdminCreated: true}, first)

	second, err := s.Run(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	assert.Len(t, taxonomy.categories, 17)
	assert.Len(t, taxonomy.grades, 16)
	assert.Len(t, sets.byRole, 3)
	require.Len(t, users.users, 1)

	created := users.users[0]
	assert.Equal(t, "admin@example.com", created.Email)
	assert.Equal(t, appModels.RoleAdmin, created.Role)
	assert.True(t, created.IsActive)
	assert.True(t, auth.CheckPassword(created.Password, "change-me-now"))
}

func TestRunBindsViewOnlyPermissionSets(t *testing.T) {
	sets := &memPermissionSets{}
	s := NewSeeder(newMemTaxonomy(), sets, &memUsers{}, zerolog.Nop())

	_, err := s.Run(context.Background(), Admin{})
	require.NoError(t, err)

	_, hasAdmin := sets.byRole[appModels.RoleAdmin]
	assert.False(t, hasAdmin)
	for _, role := range []appModels.RoleType{appModels.RoleImporter, appModels.RoleTeacher, appModels.RoleStudent} {
		perms := sets.byRole[role]
		require.NotNil(t, perms, role)
		assert.True(t, perms[appModels.PermViewForms])
		assert.False(t, perms[appModels.PermCreateForms])
		assert.False(t, perms[appModels.PermEditForms])
		assert.False(t, perms[appModels.PermDeleteForms])
	}
	assert.True(t, sets.names["Teacher Role"])
}

func TestRunSkipsAdminWithoutEmail(t *testing.T) {
	users := &memUsers{}
	res, err := NewSeeder(newMemTaxonomy(), &memPermissionSets{}, users, zerolog.Nop()).
		Run(context.Background(), Admin{})
	require.NoError(t, err)
	assert.False(t, res.AdminCreated)
	assert.Empty(t, users.users)
}

func TestRunRequiresAdminPassword(t *testing.T) {
	users := &memUsers{}
	_, err := NewSeeder(newMemTaxonomy(), &memPermissionSets{}, users, zerolog.Nop()).
		Run(context.Background(), Admin{Email: "admin@example.com"})
	require.Error(t, err)
	assert.Empty(t, users.users)
}

func TestRunContinuesPastFailures(t *testing.T) {
	taxonomy := newMemTaxonomy()
	taxonomy.failOn = "Science"

	res, err := NewSeeder(taxonomy, &memPermissionSets{}, &memUsers{}, zerolog.Nop()).
		Run(context.Background(), Admin{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "insert failed"))
	assert.Equal(t, 16, res.Categories)
	assert.Equal(t, 16, res.Grades)
}
