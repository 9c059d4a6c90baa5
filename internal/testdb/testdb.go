// Package testdb opens migrated SQLite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"audiochan/config"
	"audiochan/db"
	"audiochan/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated, seeded database in a temporary file that is
// closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "audiochan.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Init(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// User inserts a user.
func User(t testing.TB, gdb *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// Genre loads a seeded genre by slug.
func Genre(t testing.TB, gdb *gorm.DB, slug string) *model.Genre {
	t.Helper()
	var g model.Genre
	require.NoError(t, gdb.Where("slug = ?", slug).First(&g).Error)
	return &g
}

// Count returns the number of rows in table.
func Count(t testing.TB, gdb *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Table(table).Count(&n).Error)
	return n
}
