package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archetype/archetype/internal/core/criteria"
	"github.com/archetype/archetype/internal/core/users"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newUser(t *testing.T, i int, email, name string) *users.User {
	t.Helper()
	e, err := users.NewEmailAddress(email)
	require.NoError(t, err)
	n, err := users.NewFullName(name)
	require.NoError(t, err)
	return users.NewUser(users.NewUserID(), e, n, users.PasswordHashFrom("hash"), epoch.Add(time.Duration(i)*time.Hour))
}

func seed(t *testing.T, r *UserRepository) {
	t.Helper()
	people := []struct{ email, name string }{
		{"ann@example.com", "Ann Archer"},
		{"bob@test.io", "Bob Baker"},
		{"cy@example.com", "Cy Carter"},
	}
	for i, p := range people {
		require.NoError(t, r.Save(context.Background(), newUser(t, i, p.email, p.name)))
	}
}

func filters(t *testing.T, raw ...map[string]string) *criteria.Filters {
	t.Helper()
	f, err := criteria.FiltersFromValues(raw)
	require.NoError(t, err)
	return f
}

func emails(us []*users.User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Email.Value()
	}
	return out
}

func TestUserRepository_SaveAndFind(t *testing.T) {
	r := NewUserRepository(nil)
	ctx := context.Background()
	u := newUser(t, 0, "jane@example.com", "Jane Doe")
	require.NoError(t, r.Save(ctx, u))

	byID, err := r.Find(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, u.Email, byID.Email)

	byEmail, err := r.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := r.Find(ctx, users.NewUserID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_SaveRejectsDuplicateEmail(t *testing.T) {
	r := NewUserRepository(nil)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, newUser(t, 0, "jane@example.com", "Jane Doe")))

	err := r.Save(ctx, newUser(t, 1, "JANE@example.com", "Other Jane"))
	assert.ErrorIs(t, err, users.ErrUserExists)
	assert.Equal(t, 1, r.Len())
}

func TestUserRepository_SaveUpdatesInPlace(t *testing.T) {
	r := NewUserRepository(nil)
	ctx := context.Background()
	u := newUser(t, 0, "jane@example.com", "Jane Doe")
	require.NoError(t, r.Save(ctx, u))

	u.Status = users.StatusDisabled
	require.NoError(t, r.Save(ctx, u))

	got, _ := r.Find(ctx, u.ID)
	assert.Equal(t, users.StatusDisabled, got.Status)
	assert.Equal(t, 1, r.Len())
}

func TestUserRepository_Matching(t *testing.T) {
	r := NewUserRepository(nil)
	seed(t, r)
	ctx := context.Background()

	got, err := r.Matching(ctx, criteria.New(filters(t,
		map[string]string{"field": "email", "operator": "CONTAINS", "value": "example"},
	), nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"ann@example.com", "cy@example.com"}, emails(got))

	got, err = r.Matching(ctx, criteria.New(filters(t,
		map[string]string{"field": "createdAt", "operator": ">=", "value": "2024-01-01T01:00:00Z"},
		map[string]string{"field": "fullName", "operator": "NOT_CONTAINS", "value": "Bob"},
	), nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"cy@example.com"}, emails(got))

	got, err = r.Matching(ctx, criteria.New(filters(t,
		map[string]string{"field": "status", "operator": "=", "value": "ACTIVE"},
	), nil))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestUserRepository_MatchingOrdersAndPages(t *testing.T) {
	r := NewUserRepository(nil)
	for i := 0; i < 12; i++ {
		require.NoError(t, r.Save(context.Background(), newUser(t, i, fmt.Sprintf("user%02d@example.com", i), "Some User")))
	}

	order := criteria.NewOrder(criteria.NewOrderBy("createdAt"), criteria.OrderDesc)
	got, err := r.Matching(context.Background(), criteria.New(nil, &order, criteria.WithLimit(3), criteria.WithOffset(2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"user09@example.com", "user08@example.com", "user07@example.com"}, emails(got))
}

func TestUserRepository_MatchingRejectsBadValues(t *testing.T) {
	r := NewUserRepository(nil)
	seed(t, r)

	_, err := r.Matching(context.Background(), criteria.New(filters(t,
		map[string]string{"field": "createdAt", "operator": ">", "value": "last tuesday"},
	), nil))
	assert.ErrorIs(t, err, criteria.ErrInvalidValue)
	assert.True(t, criteria.IsInvalid(err))
}

func TestUserRepository_MatchingReturnsCopies(t *testing.T) {
	r := NewUserRepository(nil)
	seed(t, r)

	got, err := r.Matching(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	got[0].Status = users.StatusDisabled

	again, _ := r.Matching(context.Background(), nil)
	assert.Equal(t, users.StatusActive, again[0].Status)
}
