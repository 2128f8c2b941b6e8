package tokenstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/tokenstore"
)

func testToken(created time.Time, lifetime time.Duration) *model.Token {
	return &model.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		CreatedAt:    created,
		ExpiresIn:    int64(lifetime / time.Second),
		User:         "Ion.Popescu",
	}
}

func TestMemoryStore_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	token := testToken(time.Now(), time.Hour)

	require.NoError(t, store.SetToken(ctx, "Ion.Popescu", token))

	got, err := store.GetToken(ctx, "ion.popescu") // keys are case-insensitive
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token.AccessToken, got.AccessToken)
	assert.Equal(t, token.RefreshToken, got.RefreshToken)
	assert.Equal(t, token.ExpiresIn, got.ExpiresIn)
}

func TestMemoryStore_GetUnknownUser(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	got, err := store.GetToken(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_EmptyUserFails(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	err := store.SetToken(context.Background(), "  ", testToken(time.Now(), time.Hour))
	require.Error(t, err)

	var identityErr *model.IdentityError
	assert.ErrorAs(t, err, &identityErr)
}

func TestMemoryStore_ExpiredTokenRemovedOnRead(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := tokenstore.NewMemoryStore(
		tokenstore.WithClock(func() time.Time { return *clock }),
		tokenstore.WithSlidingWindow(2*time.Hour),
	)

	token := testToken(now, time.Hour)
	require.NoError(t, store.SetToken(ctx, "user", token))

	// Still there just before expiry.
	later := now.Add(time.Hour - time.Second)
	clock = &later
	got, err := store.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// Gone once the expiry elapses, and stays gone.
	expired := now.Add(time.Hour)
	clock = &expired
	got, err = store.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, got)

	fresh := now
	clock = &fresh
	got, err = store.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must be deleted, not resurrected")
}

func TestMemoryStore_SlidingWindowEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := tokenstore.NewMemoryStore(
		tokenstore.WithClock(func() time.Time { return *clock }),
		tokenstore.WithSlidingWindow(10*time.Minute),
	)

	require.NoError(t, store.SetToken(ctx, "user", testToken(now, 2*time.Hour)))

	// Reads inside the window keep the entry alive.
	step := now.Add(8 * time.Minute)
	clock = &step
	got, err := store.GetToken(ctx, "user")
	require.NoError(t, err)
	require.NotNil(t, got)

	step2 := step.Add(8 * time.Minute)
	clock = &step2
	got, err = store.GetToken(ctx, "user")
	require.NoError(t, err)
	require.NotNil(t, got)

	// An idle stretch longer than the window evicts it even though the token
	// itself is still valid.
	idle := step2.Add(11 * time.Minute)
	clock = &idle
	got, err = store.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_RemoveToken(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.SetToken(ctx, "user", testToken(time.Now(), time.Hour)))
	require.NoError(t, store.RemoveToken(ctx, "USER"))

	got, err := store.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_HasValidToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := tokenstore.NewMemoryStore(
		tokenstore.WithClock(func() time.Time { return *clock }),
		tokenstore.WithSlidingWindow(2*time.Hour),
	)

	ok, err := store.HasValidToken(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetToken(ctx, "user", testToken(now, time.Hour)))
	ok, err = store.HasValidToken(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)

	// Inside the validity margin the token is retained but not valid for use.
	margin := now.Add(time.Hour - model.ValidityMargin/2)
	clock = &margin
	ok, err = store.HasValidToken(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.GetToken(ctx, "user")
	require.NoError(t, err)
	assert.NotNil(t, got, "token inside the margin window stays retrievable for refresh")
}
