package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestRememberLoadsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	calls := 0
	load := func(dest *category) func() error {
		return func() error {
			calls++
			*dest = category{ID: 1, Name: "Books"}
			return nil
		}
	}

	var first category
	require.NoError(t, Remember(ctx, store, "category:1", time.Minute, &first, load(&first)))
	var second category
	require.NoError(t, Remember(ctx, store, "category:1", time.Minute, &second, load(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Books", second.Name)
}

func TestRememberPropagatesLoadError(t *testing.T) {
	store := NewMemoryStore()
	var c category
	err := Remember(context.Background(), store, "category:9", time.Minute, &c, func() error {
		return errors.New("boom")
	})
	require.Error(t, err)

	hit, err := store.Get(context.Background(), "category:9", &c)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", category{ID: 2}, time.Second))

	var c category
	hit, _ := store.Get(ctx, "k", &c)
	assert.True(t, hit)

	now = now.Add(2 * time.Second)
	hit, _ = store.Get(ctx, "k", &c)
	assert.False(t, hit)
}

func TestForgetRemovesKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "a", 1, 0))
	require.NoError(t, store.Set(ctx, "b", 2, 0))

	Forget(ctx, store, "a", "b")

	var n int
	hit, _ := store.Get(ctx, "a", &n)
	assert.False(t, hit)
}
