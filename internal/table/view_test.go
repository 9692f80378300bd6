package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard/internal/models"
)

func fiveUsers() []models.User {
	users := make([]models.User, 5)
	for i := range users {
		users[i] = models.User{ID: int64(i + 1), Username: "user", Role: role(models.RoleUser)}
	}
	return users
}

func TestViewDefaults(t *testing.T) {
	v := NewView(UserColumns(), nil, 0)
	state := v.State()
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 5, state.PerPage)
	assert.False(t, state.Sort.Active())
	assert.Empty(t, state.Filters)
	assert.Equal(t, DefaultPageSizes, v.PageSizes())
}

func TestViewPaginatesFiveRecordsByTwo(t *testing.T) {
	v := NewView(UserColumns(), []int{2, 5}, 2)
	v.SetRecords(fiveUsers())
	v.SetPage(3)

	page := v.Current()
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(5), page.Items[0].ID)
}

func TestViewResetsPageOnParameterChange(t *testing.T) {
	cases := map[string]func(v *View[models.User]){
		"filter":   func(v *View[models.User]) { v.SetFilter("username", "us") },
		"filters":  func(v *View[models.User]) { v.SetFilters(Filters{"role": "user"}) },
		"sort":     func(v *View[models.User]) { v.ToggleSort("id") },
		"set sort": func(v *View[models.User]) { v.SetSort(Sort{Key: "email", Direction: Descending}) },
		"per page": func(v *View[models.User]) { require.NoError(t, v.SetPerPage(5)) },
	}
	for name, change := range cases {
		t.Run(name, func(t *testing.T) {
			v := NewView(UserColumns(), []int{2, 5}, 2)
			v.SetRecords(fiveUsers())
			v.SetPage(3)

			change(v)

			assert.Equal(t, 1, v.State().Page)
			assert.NotEmpty(t, v.Current().Items)
		})
	}
}

func TestViewKeepsPageWhenNothingChanges(t *testing.T) {
	v := NewView(UserColumns(), []int{2, 5}, 2)
	v.SetRecords(fiveUsers())
	v.SetFilter("username", "us")
	v.SetPage(2)

	v.SetFilter("username", "us")
	require.NoError(t, v.SetPerPage(2))
	v.SetRecords(fiveUsers())

	assert.Equal(t, 2, v.State().Page)
}

func TestViewRejectsInadmissiblePageSize(t *testing.T) {
	v := NewView(UserColumns(), nil, 5)
	assert.Error(t, v.SetPerPage(7))
	assert.Equal(t, 5, v.State().PerPage)
}

func TestViewApplyKeepsRequestedPage(t *testing.T) {
	v := NewView(UserColumns(), []int{2, 5}, 2)
	v.SetRecords(fiveUsers())

	err := v.Apply(State{Filters: Filters{"role": "user"}, Sort: Sort{Key: "id", Direction: Descending}, Page: 2, PerPage: 2})
	require.NoError(t, err)

	page := v.Current()
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, []int64{3, 2}, ids(page.Items))

	assert.Error(t, v.Apply(State{Filters: Filters{"salary": "1"}}))
}

func TestViewApplyWithDroppedPageSizeKeepsFiltersAndSort(t *testing.T) {
	v := NewView(UserColumns(), []int{2, 5}, 2)
	v.SetRecords(fiveUsers())

	err := v.Apply(State{Filters: Filters{"role": "user"}, Sort: Sort{Key: "id", Direction: Descending}, Page: 2, PerPage: 10})
	require.Error(t, err)

	st := v.State()
	assert.Equal(t, Filters{"role": "user"}, st.Filters)
	assert.Equal(t, Sort{Key: "id", Direction: Descending}, st.Sort)
	assert.Equal(t, 2, st.PerPage)
	assert.Equal(t, 1, st.Page)
}

func TestViewUpdateRecord(t *testing.T) {
	v := NewView(UserColumns(), nil, 5)
	v.SetRecords([]models.User{{ID: 1}, {ID: 2}})

	ok := v.UpdateRecord(func(u models.User) bool { return u.ID == 2 }, models.User{ID: 2, Role: role(models.RoleAdmin)})
	assert.True(t, ok)
	assert.Equal(t, "ADMIN", v.Records()[1].RoleName())
	assert.False(t, v.UpdateRecord(func(u models.User) bool { return u.ID == 9 }, models.User{}))
}

func TestViewUpdateHonoursPageOnlyWithoutChanges(t *testing.T) {
	v := NewView(UserColumns(), []int{2, 5}, 2)
	v.SetRecords(fiveUsers())

	filters := Filters{"username": "us"}
	require.NoError(t, v.Update(Change{Filters: &filters, Page: 3}))
	assert.Equal(t, 1, v.State().Page, "filter changed in the same request")

	require.NoError(t, v.Update(Change{Filters: &filters, Page: 3}))
	assert.Equal(t, 3, v.State().Page)

	sort := Sort{Key: "id", Direction: Descending}
	require.NoError(t, v.Update(Change{Sort: &sort, Page: 2}))
	assert.Equal(t, 1, v.State().Page)

	require.NoError(t, v.Update(Change{PerPage: 5, Page: 2}))
	assert.Equal(t, 1, v.State().Page)

	require.NoError(t, v.Update(Change{Page: 2}))
	assert.Equal(t, 2, v.State().Page)
}

func TestViewUpdateRejectsUnknownKeys(t *testing.T) {
	v := NewView(UserColumns(), nil, 5)
	bad := Filters{"salary": "1"}
	assert.Error(t, v.Update(Change{Filters: &bad}))

	sort := Sort{Key: "salary", Direction: Ascending}
	assert.Error(t, v.Update(Change{Sort: &sort}))
	assert.Error(t, v.Update(Change{PerPage: 3}))
	assert.Equal(t, 5, v.State().PerPage)
}
