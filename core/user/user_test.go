package user

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"

	"audiochan/core/picture"
	"audiochan/core/result"
	"audiochan/internal/testdb"
	"audiochan/model"
	"audiochan/repository"
	"audiochan/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	store repository.Store
	blobs *storage.MemoryStore
	alice *model.User
	bob   *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testdb.New(t)
	store := repository.NewGormStore(gdb)
	blobs := storage.NewMemoryStore("http://cdn.test")
	return &fixture{
		svc:   NewService(store, blobs, picture.NewUploader(blobs, 0)),
		store: store,
		blobs: blobs,
		alice: testdb.User(t, gdb, "alice"),
		bob:   testdb.User(t, gdb, "bob"),
	}
}

func pngData(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSetFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetFollow(ctx, f.alice.ID, "alice", true)
	assert.True(t, result.Is(err, result.KindForbidden))

	_, err = f.svc.SetFollow(ctx, f.alice.ID, "nobody", true)
	assert.True(t, result.Is(err, result.KindNotFound))

	_, err = f.svc.SetFollow(ctx, 0, "bob", true)
	assert.True(t, result.Is(err, result.KindUnauthorized))

	for i := 0; i < 2; i++ {
		state, err := f.svc.SetFollow(ctx, f.alice.ID, " BOB ", true)
		require.NoError(t, err)
		assert.True(t, state)
	}
	ok, err := f.svc.IsFollowing(ctx, f.alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	followers, err := f.svc.Followers(ctx, "bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, followers.Items, 1)
	assert.Equal(t, "alice", followers.Items[0].Username)

	followings, err := f.svc.Followings(ctx, "alice", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followings.Total)

	state, err := f.svc.SetFollow(ctx, f.alice.ID, "bob", false)
	require.NoError(t, err)
	assert.False(t, state)
	ok, err = f.svc.IsFollowing(ctx, f.alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Follows().Add(ctx, f.alice.ID, f.bob.ID))
	for uploadID, public := range map[string]bool{"up-pub": true, "up-priv": false} {
		a, err := model.NewAudio(uploadID, "x.mp3", 10, 10, f.bob.ID)
		require.NoError(t, err)
		a.IsPublic = public
		require.NoError(t, f.store.Audios().Create(ctx, a))
	}

	profile, err := f.svc.GetProfile(ctx, f.alice.ID, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.EqualValues(t, 1, profile.AudioCount)
	assert.EqualValues(t, 1, profile.FollowerCount)
	assert.Zero(t, profile.FollowingCount)
	assert.True(t, profile.IsFollowing)
	assert.Empty(t, profile.PictureURL)

	own, err := f.svc.GetProfile(ctx, f.bob.ID, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, own.AudioCount)
	assert.False(t, own.IsFollowing)

	_, err = f.svc.GetProfile(ctx, 0, "")
	assert.True(t, result.Is(err, result.KindNotFound))
}

func TestUpdatePictureReplacesOldBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.UpdatePicture(ctx, f.alice.ID, pngData(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "http://cdn.test/pictures/users/"))
	u, err := f.store.Users().GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	firstKey := u.Picture

	_, err = f.svc.UpdatePicture(ctx, f.alice.ID, pngData(t))
	require.NoError(t, err)
	u, err = f.store.Users().GetByID(ctx, f.alice.ID)
	require.NoError(t, err)

	assert.NotEqual(t, firstKey, u.Picture)
	assert.Equal(t, []string{firstKey}, f.blobs.Deleted())
	assert.Equal(t, []string{u.Picture}, f.blobs.Keys())

	profile, err := f.svc.GetProfile(ctx, 0, "alice")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/"+u.Picture, profile.PictureURL)

	_, err = f.svc.UpdatePicture(ctx, 0, pngData(t))
	assert.True(t, result.Is(err, result.KindUnauthorized))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Users().Create(ctx, &model.User{Username: "Robert"}))

	found, err := f.svc.Search(ctx, "OB", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.Total)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "bob", found.Items[0].Username)
	assert.Equal(t, "robert", found.Items[1].Username)

	found, err = f.svc.Search(ctx, "nobody", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, found.Total)
	assert.Empty(t, found.Items)
}
