package repository

import (
	"context"

	"audiochan/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository stores audio favorites. Add and Remove are idempotent.
type FavoriteRepository interface {
	Add(ctx context.Context, audioID, userID int64) error
	Remove(ctx context.Context, audioID, userID int64) error
	Exists(ctx context.Context, audioID, userID int64) (bool, error)
	CountByAudio(ctx context.Context, audioID int64) (int64, error)
}

// FollowRepository stores follow edges. Add and Remove are idempotent.
type FollowRepository interface {
	Add(ctx context.Context, observerID, targetID int64) error
	Remove(ctx context.Context, observerID, targetID int64) error
	Exists(ctx context.Context, observerID, targetID int64) (bool, error)
	CountFollowers(ctx context.Context, targetID int64) (int64, error)
	CountFollowings(ctx context.Context, observerID int64) (int64, error)
	Followers(ctx context.Context, targetID int64, offset, limit int) ([]model.User, int64, error)
	Followings(ctx context.Context, observerID int64, offset, limit int) ([]model.User, int64, error)
}

type gormFavoriteRepository struct {
	db *gorm.DB
}

func NewGormFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

func (r *gormFavoriteRepository) Add(ctx context.Context, audioID, userID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.FavoriteAudio{AudioID: audioID, UserID: userID}).Error
}

func (r *gormFavoriteRepository) Remove(ctx context.Context, audioID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("audio_id = ? AND user_id = ?", audioID, userID).
		Delete(&model.FavoriteAudio{}).Error
}

func (r *gormFavoriteRepository) Exists(ctx context.Context, audioID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FavoriteAudio{}).
		Where("audio_id = ? AND user_id = ?", audioID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormFavoriteRepository) CountByAudio(ctx context.Context, audioID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FavoriteAudio{}).
		Where("audio_id = ?", audioID).
		Count(&count).Error
	return count, err
}

type gormFollowRepository struct {
	db *gorm.DB
}

func NewGormFollowRepository(db *gorm.DB) FollowRepository {
	return &gormFollowRepository{db: db}
}

func (r *gormFollowRepository) Add(ctx context.Context, observerID, targetID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.FollowedUser{ObserverID: observerID, TargetID: targetID}).Error
}

func (r *gormFollowRepository) Remove(ctx context.Context, observerID, targetID int64) error {
	return r.db.WithContext(ctx).
		Where("observer_id = ? AND target_id = ?", observerID, targetID).
		Delete(&model.FollowedUser{}).Error
}

func (r *gormFollowRepository) Exists(ctx context.Context, observerID, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FollowedUser{}).
		Where("observer_id = ? AND target_id = ?", observerID, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormFollowRepository) CountFollowers(ctx context.Context, targetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FollowedUser{}).
		Where("target_id = ?", targetID).
		Count(&count).Error
	return count, err
}

func (r *gormFollowRepository) CountFollowings(ctx context.Context, observerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FollowedUser{}).
		Where("observer_id = ?", observerID).
		Count(&count).Error
	return count, err
}

func (r *gormFollowRepository) Followers(ctx context.Context, targetID int64, offset, limit int) ([]model.User, int64, error) {
	return r.users(ctx, "users.id IN (SELECT observer_id FROM followed_users WHERE target_id = ?)", targetID, offset, limit)
}

func (r *gormFollowRepository) Followings(ctx context.Context, observerID int64, offset, limit int) ([]model.User, int64, error) {
	return r.users(ctx, "users.id IN (SELECT target_id FROM followed_users WHERE observer_id = ?)", observerID, offset, limit)
}

func (r *gormFollowRepository) users(ctx context.Context, cond string, id int64, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where(cond, id).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.db.WithContext(ctx).Where(cond, id).Order("users.username")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var users []model.User
	err := q.Find(&users).Error
	return users, total, err
}
