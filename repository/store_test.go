package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"audiochan/internal/testdb"
	"audiochan/model"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (Store, *gorm.DB) {
	gdb := testdb.New(t)
	return NewGormStore(gdb), gdb
}

func createAudio(t *testing.T, s Repositories, owner int64, title string, public bool, age int, genre *model.Genre, tags ...string) *model.Audio {
	t.Helper()
	ctx := context.Background()
	audio, err := model.NewAudio(fmt.Sprintf("upload-%s", title), title+".mp3", 1024, 60, owner)
	require.NoError(t, err)
	audio.IsPublic = public
	audio.CreatedAt = base.Add(-time.Duration(age) * time.Hour)
	audio.UpdateGenre(genre)
	audio.Tags, err = s.Tags().Upsert(ctx, tags)
	require.NoError(t, err)
	require.NoError(t, s.Audios().Create(ctx, audio))
	return audio
}

func TestAudioCreateAndGet(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	dubstep := testdb.Genre(t, gdb, "dubstep")

	created := createAudio(t, store, alice.ID, "song", true, 0, dubstep, "rock", "chill")

	got, err := store.Audios().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "song", got.Title)
	assert.Equal(t, ".mp3", got.FileExt)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)
	require.NotNil(t, got.Genre)
	assert.Equal(t, "dubstep", got.Genre.Slug)
	assert.ElementsMatch(t, []string{"rock", "chill"}, got.TagIDs())

	missing, err := store.Audios().GetByID(ctx, created.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTxRollbackDiscardsWrites(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	createAudio(t, tx, alice.ID, "song", true, 0, nil, "rock")
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Rollback())

	assert.Zero(t, testdb.Count(t, gdb, "audios"))
	assert.Zero(t, testdb.Count(t, gdb, "audio_tags"))
	assert.Zero(t, testdb.Count(t, gdb, "tags"))
}

func TestTxCommitThenRollbackIsNoop(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	createAudio(t, tx, alice.ID, "song", true, 0, nil)
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())
	assert.ErrorIs(t, tx.Commit(), ErrTxDone)

	assert.EqualValues(t, 1, testdb.Count(t, gdb, "audios"))
}

func TestAudioUpdateAndReplaceTags(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	audio := createAudio(t, store, alice.ID, "song", true, 0, nil, "a", "b")

	audio.UpdateTitle("renamed")
	require.NoError(t, store.Audios().Update(ctx, audio))

	tags, err := store.Tags().Upsert(ctx, []string{"b", "c"})
	require.NoError(t, err)
	require.NoError(t, store.Audios().ReplaceTags(ctx, audio, tags))

	got, err := store.Audios().GetByID(ctx, audio.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.ElementsMatch(t, []string{"b", "c"}, got.TagIDs())

	require.NoError(t, store.Audios().ReplaceTags(ctx, got, nil))
	got, err = store.Audios().GetByID(ctx, audio.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.EqualValues(t, 3, testdb.Count(t, gdb, "tags"))
}

func TestAudioDeleteRemovesLinks(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	bob := testdb.User(t, gdb, "bob")
	audio := createAudio(t, store, alice.ID, "song", true, 0, nil, "rock")
	require.NoError(t, store.Favorites().Add(ctx, audio.ID, bob.ID))

	deleted, err := store.Audios().Delete(ctx, audio.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Zero(t, testdb.Count(t, gdb, "audios"))
	assert.Zero(t, testdb.Count(t, gdb, "audio_tags"))
	assert.Zero(t, testdb.Count(t, gdb, "favorite_audios"))
	assert.EqualValues(t, 1, testdb.Count(t, gdb, "tags"))

	deleted, err = store.Audios().Delete(ctx, audio.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAudioListFilters(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	bob := testdb.User(t, gdb, "bob")
	dubstep := testdb.Genre(t, gdb, "dubstep")

	a1 := createAudio(t, store, alice.ID, "a1", true, 3, dubstep, "rock")
	a2 := createAudio(t, store, alice.ID, "a2", false, 2, nil)
	a3 := createAudio(t, store, bob.ID, "a3", true, 1, nil, "chill")
	require.NoError(t, store.Favorites().Add(ctx, a1.ID, bob.ID))
	require.NoError(t, store.Follows().Add(ctx, bob.ID, alice.ID))

	ids := func(f AudioFilter) ([]int64, int64) {
		audios, total, err := store.Audios().List(ctx, f)
		require.NoError(t, err)
		out := make([]int64, 0, len(audios))
		for _, a := range audios {
			out = append(out, a.ID)
		}
		return out, total
	}

	got, total := ids(AudioFilter{})
	assert.Equal(t, []int64{a3.ID, a1.ID}, got)
	assert.EqualValues(t, 2, total)

	got, _ = ids(AudioFilter{ViewerID: alice.ID})
	assert.Equal(t, []int64{a3.ID, a2.ID, a1.ID}, got)

	got, _ = ids(AudioFilter{Username: "ALICE"})
	assert.Equal(t, []int64{a1.ID}, got)

	got, _ = ids(AudioFilter{GenreSlug: "dubstep"})
	assert.Equal(t, []int64{a1.ID}, got)

	got, _ = ids(AudioFilter{GenreID: dubstep.ID})
	assert.Equal(t, []int64{a1.ID}, got)

	got, _ = ids(AudioFilter{Tags: []string{"chill", "jazz"}})
	assert.Equal(t, []int64{a3.ID}, got)

	got, _ = ids(AudioFilter{ViewerID: bob.ID, FollowerID: bob.ID})
	assert.Equal(t, []int64{a1.ID}, got)

	got, _ = ids(AudioFilter{ViewerID: bob.ID, FavoritedBy: bob.ID})
	assert.Equal(t, []int64{a1.ID}, got)

	got, _ = ids(AudioFilter{SortByFavorites: true})
	assert.Equal(t, []int64{a1.ID, a3.ID}, got)

	got, total = ids(AudioFilter{Offset: 1, Limit: 1})
	assert.Equal(t, []int64{a1.ID}, got)
	assert.EqualValues(t, 2, total)

	count, err := store.Audios().CountByUser(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	count, err = store.Audios().CountByUser(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestAudioRandomRespectsVisibility(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")

	got, err := store.Audios().Random(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	private := createAudio(t, store, alice.ID, "secret", false, 0, nil)

	got, err = store.Audios().Random(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Audios().Random(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, private.ID, got.ID)
}

func TestUploadExtensions(t *testing.T) {
	store, gdb := newStore(t)
	alice := testdb.User(t, gdb, "alice")
	audio := createAudio(t, store, alice.ID, "song", true, 0, nil)

	found, err := store.Audios().UploadExtensions(context.Background(), []string{audio.UploadID, "orphan"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{audio.UploadID: ".mp3"}, found)

	found, err = store.Audios().UploadExtensions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAudioCreateRejectsClaimedUploadID(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	bob := testdb.User(t, gdb, "bob")
	first := createAudio(t, store, alice.ID, "song", true, 0, nil)

	again, err := model.NewAudio(first.UploadID, "other.mp3", 10, 10, bob.ID)
	require.NoError(t, err)
	err = store.Audios().Create(ctx, again)

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.EqualValues(t, 1, testdb.Count(t, gdb, "audios"))
}

func TestAudioListSearchesTitles(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	night := createAudio(t, store, alice.ID, "Night_Drive", true, 2, nil)
	createAudio(t, store, alice.ID, "NightXDrive", true, 1, nil)
	createAudio(t, store, alice.ID, "Morning", true, 0, nil)

	audios, total, err := store.Audios().List(ctx, AudioFilter{Query: " night_"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, audios, 1)
	assert.Equal(t, night.ID, audios[0].ID)

	_, total, err = store.Audios().List(ctx, AudioFilter{Query: "NIGHT"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = store.Audios().List(ctx, AudioFilter{Query: "100%"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTagUpsertIsIdempotent(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()

	_, err := store.Tags().Upsert(ctx, []string{"rock", "pop"})
	require.NoError(t, err)
	tags, err := store.Tags().Upsert(ctx, []string{"pop", "jazz"})
	require.NoError(t, err)

	assert.Equal(t, "pop", tags[0].ID)
	assert.EqualValues(t, 3, testdb.Count(t, gdb, "tags"))

	all, err := store.Tags().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGenreLookups(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	g, err := store.Genres().GetBySlug(ctx, "drum-n-bass")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Drum & Bass", g.Name)

	byID, err := store.Genres().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g, byID)

	missing, err := store.Genres().GetBySlug(ctx, "polka")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.Genres().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alternative Rock", all[0].Name)
}

func TestGenresByPopularity(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	dubstep := testdb.Genre(t, gdb, "dubstep")
	dnb := testdb.Genre(t, gdb, "drum-n-bass")
	createAudio(t, store, alice.ID, "a", true, 0, dubstep)
	createAudio(t, store, alice.ID, "b", false, 0, dubstep)
	createAudio(t, store, alice.ID, "c", true, 0, dnb)
	createAudio(t, store, alice.ID, "d", true, 0, nil)

	genres, err := store.Genres().ListByPopularity(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(genres), 3)

	assert.Equal(t, "dubstep", genres[0].Slug)
	assert.EqualValues(t, 2, genres[0].AudioCount)
	assert.Equal(t, "drum-n-bass", genres[1].Slug)
	assert.EqualValues(t, 1, genres[1].AudioCount)
	assert.Equal(t, "Alternative Rock", genres[2].Name)
	assert.Zero(t, genres[2].AudioCount)
}

func TestUserRepository(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	u := &model.User{Username: " Alice "}
	require.NoError(t, store.Users().Create(ctx, u))
	assert.Equal(t, "alice", u.Username)

	err := store.Users().Create(ctx, &model.User{Username: "ALICE"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := store.Users().GetByUsername(ctx, "AliCe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, store.Users().UpdatePicture(ctx, u.ID, "pictures/users/1/x/picture.jpg"))
	got, err = store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "pictures/users/1/x/picture.jpg", got.Picture)

	none, err := store.Users().GetByUsername(ctx, "  ")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserSearch(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	testdb.User(t, gdb, "dj_max")
	testdb.User(t, gdb, "djxmax")
	testdb.User(t, gdb, "maxine")
	testdb.User(t, gdb, "bob")

	users, total, err := store.Users().Search(ctx, " MAX", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 3)
	assert.Equal(t, "dj_max", users[0].Username)

	users, total, err = store.Users().Search(ctx, "j_", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "dj_max", users[0].Username)

	users, total, err = store.Users().Search(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, users, 2)
	assert.Equal(t, "dj_max", users[0].Username)
}

func TestFollowsAndFavoritesAreIdempotent(t *testing.T) {
	store, gdb := newStore(t)
	ctx := context.Background()
	alice := testdb.User(t, gdb, "alice")
	bob := testdb.User(t, gdb, "bob")
	carol := testdb.User(t, gdb, "carol")
	audio := createAudio(t, store, alice.ID, "song", true, 0, nil)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Follows().Add(ctx, bob.ID, alice.ID))
		require.NoError(t, store.Favorites().Add(ctx, audio.ID, bob.ID))
	}
	require.NoError(t, store.Follows().Add(ctx, carol.ID, alice.ID))

	followers, total, err := store.Follows().Followers(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)

	followings, total, err := store.Follows().Followings(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "alice", followings[0].Username)

	n, err := store.Favorites().CountByAudio(ctx, audio.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, store.Follows().Remove(ctx, bob.ID, alice.ID))
	require.NoError(t, store.Follows().Remove(ctx, bob.ID, alice.ID))
	ok, err := store.Follows().Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = store.Follows().CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = store.Follows().CountFollowings(ctx, carol.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, store.Favorites().Remove(ctx, audio.ID, bob.ID))
	ok, err = store.Favorites().Exists(ctx, audio.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1045}))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
}
