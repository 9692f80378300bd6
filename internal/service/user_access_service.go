package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/table"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

type userBackend interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAccess(ctx context.Context, req models.SetAccessRequest) (models.SetAccessResponse, error)
}

// UsersPage is the user access table.
type UsersPage struct {
	TablePage[models.User]
	// Roles are the distinct assigned roles, for the role filter.
	Roles []string `json:"roles"`
	// Assignable are the roles an administrator may grant.
	Assignable []models.Role `json:"assignable"`
}

// UserAccessService lists users and assigns roles to those without one.
type UserAccessService struct {
	backend   userBackend
	store     StateStore
	validator *validator.Validate
	opts      TableOptions
	logger    *zap.Logger
}

// NewUserAccessService creates an instance of UserAccessService.
func NewUserAccessService(backend userBackend, store StateStore, validate *validator.Validate, opts TableOptions, logger *zap.Logger) *UserAccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserAccessService{backend: backend, store: store, validator: validate, opts: opts, logger: logger}
}

// Page fetches every user and derives the requested page.
func (s *UserAccessService) Page(ctx context.Context, change table.Change) (*UsersPage, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.view(ctx, users, change)
	if err != nil {
		return nil, err
	}
	return s.page(view), nil
}

// SetRole assigns a role to a user that has none yet. The returned page has
// the user replaced in place with what the backend sent back.
func (s *UserAccessService) SetRole(ctx context.Context, id int64, role models.Role) (*models.User, *UsersPage, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	idx := slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
	if idx < 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	target := users[idx]
	if target.Role != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already has role %s", target.Username, *target.Role))
	}

	req := models.SetAccessRequest{
		ID:       target.ID,
		Username: target.Username,
		Name:     target.Name,
		Email:    target.Email,
		Role:     role,
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid role assignment")
	}

	resp, err := s.backend.SetAccess(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	updated := resp.User
	if updated.ID == 0 {
		updated = target
		updated.Role = &role
	}
	s.logger.Info("role assigned", zap.Int64("user_id", updated.ID), zap.String("role", updated.RoleName()))

	view, err := s.view(ctx, users, table.Change{})
	if err != nil {
		return nil, nil, err
	}
	view.UpdateRecord(func(u models.User) bool { return u.ID == updated.ID }, updated)
	return &updated, s.page(view), nil
}

func (s *UserAccessService) view(ctx context.Context, users []models.User, change table.Change) (*table.View[models.User], error) {
	view := newView(table.UserColumns(), s.opts)
	st, ok := loadViewState(ctx, s.store, TableUsers, s.logger)
	restoreView(view, st, ok, s.logger)
	view.SetRecords(users)
	if err := view.Update(change); err != nil {
		return nil, err
	}
	saveViewState(ctx, s.store, TableUsers, viewState{Table: view.State()}, s.logger)
	return view, nil
}

func (s *UserAccessService) page(view *table.View[models.User]) *UsersPage {
	return &UsersPage{
		TablePage:  pageOf(view),
		Roles:      distinctRoles(view.Records()),
		Assignable: slices.Clone(models.AssignableRoles),
	}
}

func distinctRoles(users []models.User) []string {
	var roles []string
	for _, u := range users {
		if name := u.RoleName(); name != "" && !slices.Contains(roles, name) {
			roles = append(roles, name)
		}
	}
	slices.Sort(roles)
	return roles
}
