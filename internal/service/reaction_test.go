package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
)

func newTestReactionService(store *fakeStore) *ReactionService {
	return NewReactionService(store, store, newTestAppService(store), nil, discardLogger())
}

func TestToggleThumb(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestReactionService(store)
	alice := store.seedUser("alice", model.RoleUser)
	app := store.seedApp("quiz", alice)

	delta, err := svc.ToggleThumb(ctx, alice, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, delta)
	assert.True(t, store.thumbs[[2]int64{app.ID, alice.ID}])

	delta, err = svc.ToggleThumb(ctx, alice, app.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, delta)
	assert.False(t, store.thumbs[[2]int64{app.ID, alice.ID}])
}

func TestToggleFavour(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestReactionService(store)
	alice := store.seedUser("alice", model.RoleUser)
	app := store.seedApp("quiz", alice)

	delta, err := svc.ToggleFavour(ctx, alice, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, delta)
	assert.True(t, store.favours[[2]int64{app.ID, alice.ID}])
	assert.False(t, store.thumbs[[2]int64{app.ID, alice.ID}], "favour must not touch thumbs")
}

func TestToggle_Errors(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestReactionService(store)
	alice := store.seedUser("alice", model.RoleUser)
	banned := store.seedUser("mallory", model.RoleBan)
	app := store.seedApp("quiz", alice)

	_, err := svc.ToggleThumb(ctx, nil, app.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.ToggleThumb(ctx, banned, app.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.ToggleThumb(ctx, alice, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.ToggleFavour(ctx, alice, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListMyFavourVOPage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestReactionService(store)
	alice := store.seedUser("alice", model.RoleUser)
	bob := store.seedUser("bob", model.RoleUser)
	a1 := store.seedApp("a1", alice)
	store.seedApp("a2", alice)
	b1 := store.seedApp("b1", bob)

	store.favours[[2]int64{a1.ID, bob.ID}] = true
	store.favours[[2]int64{b1.ID, bob.ID}] = true

	out, err := svc.ListMyFavourVOPage(ctx, bob, model.AppQueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, store.lastQuery.FavourUserID)
	assert.Equal(t, int64(2), out.Total)
	for _, vo := range out.Records {
		assert.True(t, vo.HasFavour)
	}

	_, err = svc.ListMyFavourVOPage(ctx, nil, model.AppQueryRequest{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.ListMyFavourVOPage(ctx, bob, model.AppQueryRequest{PageRequest: model.PageRequest{PageSize: 21}})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
