package db

import (
	"path/filepath"
	"testing"

	"audiochan/config"
	"audiochan/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestInitMigratesAndSeedsOnce(t *testing.T) {
	gdb, err := Open(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	require.NoError(t, Init(gdb))

	var genres []model.Genre
	require.NoError(t, gdb.Order("id").Find(&genres).Error)
	require.Len(t, genres, len(DefaultGenres))
	assert.Equal(t, "alternative-rock", genres[0].Slug)

	n, err := SeedGenres(gdb)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, m := range model.AllModels() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
	assert.True(t, gdb.Migrator().HasTable("audio_tags"))
}
