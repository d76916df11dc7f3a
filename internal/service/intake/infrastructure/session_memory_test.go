package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost/internal/service/intake/domain"
)

func TestInMemorySessionStore_PutGetDel(t *testing.T) {
	store := NewInMemorySessionStore(time.Minute)
	ctx := context.Background()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	s := domain.NewSession("u1")
	s.ChoosePlatform("instagram")
	require.NoError(t, store.Put(ctx, s, 0))

	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StepPlatformChosen, got.Step)

	require.NoError(t, store.Del(ctx, "u1"))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemorySessionStore_TTLExpiry(t *testing.T) {
	store := NewInMemorySessionStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.NewSession("u1"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemorySessionStore_SessionsAreIsolatedByUser(t *testing.T) {
	store := NewInMemorySessionStore(time.Minute)
	ctx := context.Background()

	a := domain.NewSession("a")
	a.ChoosePlatform("instagram")
	b := domain.NewSession("b")
	b.ChoosePlatform("tiktok")
	require.NoError(t, store.Put(ctx, a, 0))
	require.NoError(t, store.Put(ctx, b, 0))

	gotA, err := store.Get(ctx, "a")
	require.NoError(t, err)
	gotB, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "instagram", gotA.Platform)
	assert.Equal(t, "tiktok", gotB.Platform)
}
