package repository

import (
	"context"

	"audiochan/model"

	"gorm.io/gorm"
)

// GenreCount is a genre with the number of audios filed under it.
type GenreCount struct {
	model.Genre
	AudioCount int64 `json:"count"`
}

// GenreRepository is the genre data access interface. Lookups return
// nil, nil when the genre does not exist.
type GenreRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Genre, error)
	GetBySlug(ctx context.Context, slug string) (*model.Genre, error)
	// List orders genres by name.
	List(ctx context.Context) ([]model.Genre, error)
	// ListByPopularity orders genres by audio count, busiest first, then
	// by name.
	ListByPopularity(ctx context.Context) ([]GenreCount, error)
}

type gormGenreRepository struct {
	db *gorm.DB
}

func NewGormGenreRepository(db *gorm.DB) GenreRepository {
	return &gormGenreRepository{db: db}
}

func (r *gormGenreRepository) GetByID(ctx context.Context, id int64) (*model.Genre, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *gormGenreRepository) GetBySlug(ctx context.Context, slug string) (*model.Genre, error) {
	return r.first(r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *gormGenreRepository) List(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	err := r.db.WithContext(ctx).Order("name").Find(&genres).Error
	return genres, err
}

func (r *gormGenreRepository) ListByPopularity(ctx context.Context) ([]GenreCount, error) {
	var genres []GenreCount
	err := r.db.WithContext(ctx).Table("genres").
		Select("genres.id, genres.name, genres.slug, COUNT(audios.id) AS audio_count").
		Joins("LEFT JOIN audios ON audios.genre_id = genres.id").
		Group("genres.id, genres.name, genres.slug").
		Order("audio_count DESC").
		Order("genres.name").
		Scan(&genres).Error
	return genres, err
}

func (r *gormGenreRepository) first(q *gorm.DB) (*model.Genre, error) {
	var genre model.Genre
	if err := q.First(&genre).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &genre, nil
}
