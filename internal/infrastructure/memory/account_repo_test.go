package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

func TestAccountRepo_CreateFindUpdateDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewAccountRepo()

	a, err := r.Create(ctx, domain.Account{Email: "A@x.io", Role: domain.RoleUser, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, "a@x.io", a.Email)
	assert.False(t, a.CreatedAt.IsZero())

	_, err = r.Create(ctx, domain.Account{Email: "a@x.io"})
	assert.True(t, domain.Is(err, domain.CodeDuplicateEmail))

	got, err := r.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	email := "b@x.io"
	updated, err := r.Update(ctx, a.ID, domain.AccountChanges{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "b@x.io", updated.Email)

	_, err = r.FindByEmail(ctx, "a@x.io")
	assert.True(t, domain.Is(err, domain.CodeNotFound))

	require.NoError(t, r.Delete(ctx, a.ID))
	_, err = r.FindByID(ctx, a.ID)
	assert.True(t, domain.Is(err, domain.CodeNotFound))
	assert.True(t, domain.Is(r.Delete(ctx, a.ID), domain.CodeNotFound))

	_, err = r.Update(ctx, 99, domain.AccountChanges{})
	assert.True(t, domain.Is(err, domain.CodeNotFound))
}

func TestAccountRepo_Update_EmailTaken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewAccountRepo()

	a, err := r.Create(ctx, domain.Account{Email: "a@x.io"})
	require.NoError(t, err)
	_, err = r.Create(ctx, domain.Account{Email: "b@x.io"})
	require.NoError(t, err)

	taken := "b@x.io"
	_, err = r.Update(ctx, a.ID, domain.AccountChanges{Email: &taken})
	assert.True(t, domain.Is(err, domain.CodeDuplicateEmail))
}

func TestAccountRepo_FindAndCount_FilterAndPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewAccountRepo()

	for i, e := range []string{"1@x.io", "2@x.io", "3@x.io", "4@x.io"} {
		role := domain.RoleUser
		if i == 0 {
			role = domain.RoleAdmin
		}
		_, err := r.Create(ctx, domain.Account{Email: e, Role: role, IsActive: i != 3})
		require.NoError(t, err)
	}

	all, total, err := r.FindAndCount(ctx, domain.AccountFilter{}, domain.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, all, 2)
	assert.Equal(t, "4@x.io", all[0].Email, "newest first")

	user := domain.RoleUser
	active := true
	got, total, err := r.FindAndCount(ctx, domain.AccountFilter{Role: &user, IsActive: &active}, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)

	empty, total, err := r.FindAndCount(ctx, domain.AccountFilter{}, domain.Page{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, empty)

	neg, total, err := r.FindAndCount(ctx, domain.AccountFilter{}, domain.Page{Limit: 100, Offset: -100})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, neg)
}
