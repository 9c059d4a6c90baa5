package cache

import (
	"context"
	"testing"
	"time"

	"audiochan/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGenreCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUGenreCache(4, time.Minute)

	_, ok := c.Get(ctx, "dubstep")
	assert.False(t, ok)

	genre := &model.Genre{ID: 8, Name: "Dubstep", Slug: "dubstep"}
	c.Set(ctx, "dubstep", genre)
	genre.Name = "mutated"

	got, ok := c.Get(ctx, "dubstep")
	require.True(t, ok)
	assert.Equal(t, "Dubstep", got.Name)

	c.Set(ctx, "missing", nil)
	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestLRUGenreCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewLRUGenreCache(4, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "8", &model.Genre{ID: 8})
	c.SetAll(ctx, []model.Genre{{ID: 8}})

	now = now.Add(2 * time.Minute)
	_, ok := c.Get(ctx, "8")
	assert.False(t, ok)
	_, ok = c.GetAll(ctx)
	assert.False(t, ok)
}

func TestLRUGenreCacheEvictsAndFlushes(t *testing.T) {
	ctx := context.Background()
	c := NewLRUGenreCache(2, time.Minute)

	c.Set(ctx, "a", &model.Genre{ID: 1})
	c.Set(ctx, "b", &model.Genre{ID: 2})
	c.Set(ctx, "c", &model.Genre{ID: 3})

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	n, err := c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, ok = c.Get(ctx, "c")
	assert.False(t, ok)
}

func TestTieredGenreCacheBackfills(t *testing.T) {
	ctx := context.Background()
	fast := NewLRUGenreCache(8, time.Minute)
	slow := NewLRUGenreCache(8, time.Minute)
	tiered := NewTieredGenreCache(fast, slow)

	slow.Set(ctx, "rock", &model.Genre{ID: 21, Slug: "rock"})
	slow.SetAll(ctx, []model.Genre{{ID: 21, Slug: "rock"}})

	got, ok := tiered.Get(ctx, "rock")
	require.True(t, ok)
	assert.EqualValues(t, 21, got.ID)

	got, ok = fast.Get(ctx, "rock")
	require.True(t, ok)
	assert.Equal(t, "rock", got.Slug)

	all, ok := tiered.GetAll(ctx)
	require.True(t, ok)
	assert.Len(t, all, 1)
	_, ok = fast.GetAll(ctx)
	assert.True(t, ok)

	n, err := tiered.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	_, ok = tiered.Get(ctx, "rock")
	assert.False(t, ok)
}
