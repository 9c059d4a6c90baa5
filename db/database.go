package db

import (
	"errors"
	"fmt"

	"audiochan/logger"
	"audiochan/model"

	"gorm.io/gorm"
)

// DefaultGenres is the genre catalogue seeded into an empty database.
var DefaultGenres = []model.Genre{
	{Name: "Alternative Rock", Slug: "alternative-rock"},
	{Name: "Ambient", Slug: "ambient"},
	{Name: "Classical", Slug: "classical"},
	{Name: "Country", Slug: "country"},
	{Name: "Deep House", Slug: "deep-house"},
	{Name: "Disco", Slug: "disco"},
	{Name: "Drum & Bass", Slug: "drum-n-bass"},
	{Name: "Dubstep", Slug: "dubstep"},
	{Name: "Electronic", Slug: "electronic"},
	{Name: "Folk", Slug: "folk"},
	{Name: "House", Slug: "house"},
	{Name: "Indie", Slug: "indie"},
	{Name: "Jazz & Blue", Slug: "jazz-n-blue"},
	{Name: "Latin", Slug: "latin"},
	{Name: "Metal", Slug: "metal"},
	{Name: "Miscellaneous", Slug: "misc"},
	{Name: "Piano", Slug: "piano"},
	{Name: "Pop", Slug: "pop"},
	{Name: "R&B & Soul", Slug: "rnb-n-soul"},
	{Name: "Reggae", Slug: "reggae"},
	{Name: "Rock", Slug: "rock"},
	{Name: "Soundtrack", Slug: "soundtrack"},
	{Name: "Techno", Slug: "techno"},
	{Name: "Trance", Slug: "trance"},
	{Name: "Trap", Slug: "trap"},
	{Name: "World", Slug: "world"},
}

// Migrate creates or updates every table.
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}
	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Info("Models migrated successfully")
	return nil
}

// SeedGenres inserts DefaultGenres when the genres table is empty and
// reports how many rows were written.
func SeedGenres(gdb *gorm.DB) (int, error) {
	var count int64
	if err := gdb.Model(&model.Genre{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	genres := make([]model.Genre, len(DefaultGenres))
	copy(genres, DefaultGenres)
	if err := gdb.Create(&genres).Error; err != nil {
		return 0, fmt.Errorf("seed genres: %w", err)
	}
	logger.Info("Seeded genres", logger.Int("count", len(genres)))
	return len(genres), nil
}

// Init migrates and seeds.
func Init(gdb *gorm.DB) error {
	if err := Migrate(gdb); err != nil {
		return err
	}
	_, err := SeedGenres(gdb)
	return err
}
