package repository

import (
	"context"

	"audiochan/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository is the tag data access interface.
type TagRepository interface {
	// Upsert makes sure every id exists and returns the tags in input order.
	Upsert(ctx context.Context, ids []string) ([]model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
}

type gormTagRepository struct {
	db *gorm.DB
}

func NewGormTagRepository(db *gorm.DB) TagRepository {
	return &gormTagRepository{db: db}
}

func (r *gormTagRepository) Upsert(ctx context.Context, ids []string) ([]model.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tags := make([]model.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, model.Tag{ID: id})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *gormTagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("id").Find(&tags).Error
	return tags, err
}
