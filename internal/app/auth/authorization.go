package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/questionbank/internal/app/models"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
	"github.com/yigit/questionbank/internal/pkg/logger"
)

// Actor is the authenticated caller of a request
type Actor struct {
	UserID  int64
	Email   string
	Role    models.RoleType
	IsStaff bool
}

// IsAdmin reports whether the actor holds the admin role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// Resource names a guarded collection
type Resource string

const (
	ResourceUsers      Resource = "users"
	ResourceRoles      Resource = "roles"
	ResourceForms      Resource = "forms"
	ResourceResponses  Resource = "responses"
	ResourceBooks      Resource = "books"
	ResourceCategories Resource = "categories"
	ResourceGrades     Resource = "grades"
)

// Action names an operation on a resource
type Action string

const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
	ActionMe            Action = "me"
	ActionAddFields     Action = "add_fields"
	ActionPDF           Action = "pdf"
	ActionDownload      Action = "download"
	ActionExport        Action = "export"
)

// formPermissions maps form actions to permission keys; anything else
// falls back to viewing.
var formPermissions = map[Action]string{
	ActionCreate:        models.PermCreateForms,
	ActionUpdate:        models.PermEditForms,
	ActionPartialUpdate: models.PermEditForms,
	ActionAddFields:     models.PermEditForms,
	ActionDestroy:       models.PermDeleteForms,
	ActionList:          models.PermViewForms,
	ActionRetrieve:      models.PermViewForms,
}

// FormPermission returns the permission key gating a form action
func FormPermission(action Action) string {
	if p, ok := formPermissions[action]; ok {
		return p
	}
	return models.PermViewForms
}

type rule func(a *Actor) bool

func anyone(*Actor) bool { return true }

func adminOnly(a *Actor) bool { return a.IsAdmin() }

func bookUploader(a *Actor) bool {
	return a.IsAdmin() || a.Role == models.RoleImporter || a.IsStaff
}

var staticPolicy = map[Resource]map[Action]rule{
	ResourceUsers: {
		ActionList:          adminOnly,
		ActionCreate:        adminOnly,
		ActionRetrieve:      adminOnly,
		ActionUpdate:        adminOnly,
		ActionPartialUpdate: adminOnly,
		ActionDestroy:       adminOnly,
		ActionMe:            anyone,
	},
	ResourceRoles: {
		ActionList:          adminOnly,
		ActionCreate:        adminOnly,
		ActionRetrieve:      adminOnly,
		ActionUpdate:        adminOnly,
		ActionPartialUpdate: adminOnly,
		ActionDestroy:       adminOnly,
	},
	ResourceBooks: {
		ActionList:          anyone,
		ActionRetrieve:      anyone,
		ActionPDF:           anyone,
		ActionDownload:      anyone,
		ActionCreate:        bookUploader,
		ActionUpdate:        adminOnly,
		ActionPartialUpdate: adminOnly,
		ActionDestroy:       adminOnly,
	},
	ResourceCategories: {
		ActionList:     anyone,
		ActionRetrieve: anyone,
	},
	ResourceGrades: {
		ActionList:     anyone,
		ActionRetrieve: anyone,
	},
	ResourceResponses: {
		ActionCreate:   anyone,
		ActionList:     anyone,
		ActionRetrieve: anyone,
		ActionExport:   adminOnly,
	},
}

// ownerBypass lists the actions where the resource owner may act even
// when the role policy denies
var ownerBypass = map[Resource]map[Action]bool{
	ResourceBooks: {
		ActionUpdate:        true,
		ActionPartialUpdate: true,
		ActionDestroy:       true,
	},
}

// PermissionSetSource loads the permission set bound to a role
type PermissionSetSource interface {
	GetByRole(ctx context.Context, role models.RoleType) (*models.CustomRole, error)
}

// Authorizer decides whether an actor may perform an action
type Authorizer struct {
	permissionSets PermissionSetSource
}

// NewAuthorizer creates a new Authorizer
func NewAuthorizer(permissionSets PermissionSetSource) *Authorizer {
	return &Authorizer{permissionSets: permissionSets}
}

// Authorize returns nil when actor may perform action on resource.
// owner is the owning user of the target object, when there is one.
func (a *Authorizer) Authorize(ctx context.Context, actor *Actor, resource Resource, action Action, owner *int64) error {
	if actor == nil || actor.UserID == 0 {
		return apperrors.ErrUnauthorized
	}

	var (
		allowed bool
		err     error
	)
	if resource == ResourceForms {
		allowed, err = a.checkPermissionSet(ctx, actor, action)
		if err != nil {
			return err
		}
	} else {
		allowed = checkStatic(actor, resource, action)
	}

	if !allowed && owner != nil && *owner == actor.UserID && ownerBypass[resource][action] {
		allowed = true
	}

	if !allowed {
		logger.Debug().
			Int64("userID", actor.UserID).
			Str("role", string(actor.Role)).
			Str("resource", string(resource)).
			Str("action", string(action)).
			Msg("Authorization denied")
		return apperrors.NewForbiddenError("You do not have permission to perform this action")
	}
	return nil
}

func checkStatic(actor *Actor, resource Resource, action Action) bool {
	r, ok := staticPolicy[resource][action]
	return ok && r(actor)
}

func (a *Authorizer) checkPermissionSet(ctx context.Context, actor *Actor, action Action) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if a.permissionSets == nil {
		return false, nil
	}

	set, err := a.permissionSets.GetByRole(ctx, actor.Role)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load permission set for %s: %w", actor.Role, err)
	}
	return set.Allows(FormPermission(action)), nil
}
