package repository

import (
	"context"
	"strings"

	"audiochan/model"

	"gorm.io/gorm"
)

// UserRepository is the user data access interface. Users normally come
// from the identity service; Create backs the "user create" command.
type UserRepository interface {
	// Create lower-cases the username and returns ErrDuplicate when it is
	// taken.
	Create(ctx context.Context, user *model.User) error
	// GetByID returns nil, nil when the user does not exist.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePicture(ctx context.Context, id int64, picture string) error
	// Search pages through users whose username contains query, ordered by
	// username. A blank query matches everyone.
	Search(ctx context.Context, query string, offset, limit int) ([]model.User, int64, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *model.User) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *gormUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, nil
	}
	return r.first(r.db.WithContext(ctx).Where("username = ?", username))
}

func (r *gormUserRepository) UpdatePicture(ctx context.Context, id int64, picture string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("picture", picture).Error
}

func (r *gormUserRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if query = strings.ToLower(strings.TrimSpace(query)); query != "" {
		q = q.Where("username LIKE ? ESCAPE '!'", "%"+escapeLike(query)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.User
	err := q.Order("username").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *gormUserRepository) first(q *gorm.DB) (*model.User, error) {
	var user model.User
	if err := q.First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
