package genre

import (
	"context"
	"errors"
	"testing"
	"time"

	"audiochan/cache"
	"audiochan/core/result"
	"audiochan/model"
	"audiochan/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenreRepo struct {
	genres []model.Genre
	calls  int
	err    error
}

func (f *fakeGenreRepo) GetByID(_ context.Context, id int64) (*model.Genre, error) {
	f.calls++
	for _, g := range f.genres {
		if g.ID == id {
			g := g
			return &g, f.err
		}
	}
	return nil, f.err
}

func (f *fakeGenreRepo) GetBySlug(_ context.Context, slug string) (*model.Genre, error) {
	f.calls++
	for _, g := range f.genres {
		if g.Slug == slug {
			g := g
			return &g, f.err
		}
	}
	return nil, f.err
}

func (f *fakeGenreRepo) List(_ context.Context) ([]model.Genre, error) {
	f.calls++
	return f.genres, f.err
}

func (f *fakeGenreRepo) ListByPopularity(_ context.Context) ([]repository.GenreCount, error) {
	f.calls++
	out := make([]repository.GenreCount, len(f.genres))
	for i, g := range f.genres {
		out[len(out)-1-i] = repository.GenreCount{Genre: g, AudioCount: int64(i)}
	}
	return out, f.err
}

func newRepo() *fakeGenreRepo {
	return &fakeGenreRepo{genres: []model.Genre{
		{ID: 8, Name: "Dubstep", Slug: "dubstep"},
		{ID: 21, Name: "Rock", Slug: "rock"},
	}}
}

func TestKey(t *testing.T) {
	id, slug := Key(" 8 ")
	assert.EqualValues(t, 8, id)
	assert.Empty(t, slug)

	id, slug = Key(" DubStep ")
	assert.Zero(t, id)
	assert.Equal(t, "dubstep", slug)

	id, slug = Key("-3")
	assert.Zero(t, id)
	assert.Equal(t, "-3", slug)
}

func TestGetByIDOrSlug(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newRepo(), nil)

	g, err := svc.Get(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, "dubstep", g.Slug)

	g, err = svc.Get(ctx, "ROCK")
	require.NoError(t, err)
	assert.EqualValues(t, 21, g.ID)

	g, err = svc.Get(ctx, "polka")
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = svc.Get(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestGetUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	svc := NewService(repo, cache.NewLRUGenreCache(16, time.Minute))

	for i := 0; i < 3; i++ {
		g, err := svc.Get(ctx, "dubstep")
		require.NoError(t, err)
		assert.EqualValues(t, 8, g.ID)
	}
	assert.Equal(t, 1, repo.calls)

	for i := 0; i < 2; i++ {
		_, err := svc.Get(ctx, "polka")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.calls)

	for i := 0; i < 2; i++ {
		genres, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, genres, 2)
	}
	assert.Equal(t, 4, repo.calls)
}

func TestLookupNotFound(t *testing.T) {
	svc := NewService(newRepo(), nil)

	_, err := svc.Lookup(context.Background(), "polka")
	assert.True(t, result.Is(err, result.KindNotFound))
}

func TestGetWrapsRepositoryErrors(t *testing.T) {
	repo := newRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo, nil)

	_, err := svc.Get(context.Background(), "rock")
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.err)
	assert.Equal(t, result.KindInternal, result.KindOf(err))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPopularity, ParseSort(" Popularity "))
	assert.Equal(t, SortAlphabetically, ParseSort("alphabetically"))
	assert.Equal(t, SortAlphabetically, ParseSort(""))
	assert.Equal(t, SortAlphabetically, ParseSort("newest"))
}

func TestPopularBypassesCache(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	svc := NewService(repo, cache.NewLRUGenreCache(16, time.Minute))

	for i := 0; i < 2; i++ {
		genres, err := svc.Popular(ctx)
		require.NoError(t, err)
		require.Len(t, genres, 2)
		assert.Equal(t, "rock", genres[0].Slug)
		assert.EqualValues(t, 1, genres[0].AudioCount)
	}
	assert.Equal(t, 2, repo.calls)

	repo.err = errors.New("db down")
	_, err := svc.Popular(ctx)
	assert.ErrorIs(t, err, repo.err)
}
