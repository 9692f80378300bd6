package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	"github.com/noah-isme/attendance-dashboard/internal/session"
	"github.com/noah-isme/attendance-dashboard/internal/table"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

func threeUsers() []models.User {
	return []models.User{
		{ID: 3, Username: "cici", Email: "cici@x.io"},
		{ID: 1, Username: "ana", Email: "ana@x.io", Role: role(models.RoleAdmin)},
		{ID: 2, Username: "budi", Email: "budi@x.io", Role: role(models.RoleUser)},
	}
}

func userIDs(users []models.User) []int64 {
	out := make([]int64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestUserAccessPageEmptyRoleFilterSortedByID(t *testing.T) {
	svc := NewUserAccessService(&backendStub{users: threeUsers()}, nil, nil, TableOptions{}, nil)

	filters := table.Filters{"role": ""}
	sort := table.Sort{Key: "id", Direction: table.Ascending}
	page, err := svc.Page(context.Background(), table.Change{Filters: &filters, Sort: &sort})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, userIDs(page.Items))
	assert.Equal(t, []string{"ADMIN", "USER"}, page.Roles)
	assert.Equal(t, models.AssignableRoles, page.Assignable)
	assert.Equal(t, 5, page.Pagination.PageSize)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Equal(t, "ADMIN", page.Rows[0]["role"])
	assert.Equal(t, "", page.Rows[2]["role"])
}

func TestUserAccessRemembersStateAndResetsPage(t *testing.T) {
	users := make([]models.User, 7)
	for i := range users {
		users[i] = models.User{ID: int64(i + 1), Username: "u"}
	}
	store := session.NewMemoryStorage()
	svc := NewUserAccessService(&backendStub{users: users}, store, nil, TableOptions{PageSizes: []int{2, 5}, DefaultPageSize: 2}, nil)
	ctx := context.Background()

	page, err := svc.Page(ctx, table.Change{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, userIDs(page.Items))

	// a later request without a page stays on page 3
	page, err = svc.Page(ctx, table.Change{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.State.Page)

	sort := table.Sort{Key: "id", Direction: table.Descending}
	page, err = svc.Page(ctx, table.Change{Sort: &sort, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.State.Page)
	assert.Equal(t, []int64{7, 6}, userIDs(page.Items))

	_, err = svc.Page(ctx, table.Change{PerPage: 7})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestUserAccessSetRole(t *testing.T) {
	backend := &backendStub{
		users:   threeUsers(),
		setResp: &models.SetAccessResponse{User: models.User{ID: 3, Username: "cici", Email: "cici@x.io", Role: role(models.RoleUser)}},
	}
	svc := NewUserAccessService(backend, nil, nil, TableOptions{}, nil)

	updated, page, err := svc.SetRole(context.Background(), 3, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "USER", updated.RoleName())
	require.Len(t, backend.setReqs, 1)
	assert.Equal(t, models.SetAccessRequest{ID: 3, Username: "cici", Email: "cici@x.io", Role: models.RoleUser}, backend.setReqs[0])

	for _, u := range page.Items {
		assert.NotNil(t, u.Role, "user %d", u.ID)
	}
}

func TestUserAccessSetRoleFallsBackWhenResponseHasNoUser(t *testing.T) {
	backend := &backendStub{users: threeUsers()}
	svc := NewUserAccessService(backend, nil, nil, TableOptions{}, nil)

	updated, _, err := svc.SetRole(context.Background(), 3, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.ID)
	assert.Equal(t, "ADMIN", updated.RoleName())
}

func TestUserAccessSetRoleRules(t *testing.T) {
	backend := &backendStub{users: threeUsers()}
	svc := NewUserAccessService(backend, nil, nil, TableOptions{}, nil)
	ctx := context.Background()

	_, _, err := svc.SetRole(ctx, 1, models.RoleUser)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, _, err = svc.SetRole(ctx, 99, models.RoleUser)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, _, err = svc.SetRole(ctx, 3, models.Role("OWNER"))
	require.Error(t, err)
	assert.Equal(t, "Role must be one of USER, ADMIN.", appErrors.FromError(err).Message)

	assert.Empty(t, backend.setReqs)
}

func TestUserAccessHugePageDoesNotPoisonState(t *testing.T) {
	store := session.NewMemoryStorage()
	svc := NewUserAccessService(&backendStub{users: threeUsers()}, store, nil, TableOptions{PageSizes: []int{5, 10}, DefaultPageSize: 5}, nil)
	ctx := context.Background()

	_, err := svc.Page(ctx, table.Change{PerPage: 10})
	require.NoError(t, err)

	var page *UsersPage
	require.NotPanics(t, func() {
		page, err = svc.Page(ctx, table.Change{Page: math.MaxInt})
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.TotalPages)

	require.NotPanics(t, func() {
		page, err = svc.Page(ctx, table.Change{})
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = svc.Page(ctx, table.Change{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}
