package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrTxDone is returned by Commit on a finished transaction.
var ErrTxDone = errors.New("transaction already finished")

// Repositories groups the data accessors. The same set is available on the
// Store and on a Tx; accessors obtained from a Tx run inside it.
type Repositories interface {
	Audios() AudioRepository
	Tags() TagRepository
	Genres() GenreRepository
	Users() UserRepository
	Favorites() FavoriteRepository
	Follows() FollowRepository
}

// Store is the entry point to persistence.
type Store interface {
	Repositories
	// Begin starts a unit of work.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an explicit unit of work. Rollback after Commit is a no-op, so
// callers can always defer it.
type Tx interface {
	Repositories
	Commit() error
	Rollback() error
}

type repositories struct {
	db *gorm.DB
}

func (r repositories) Audios() AudioRepository       { return &gormAudioRepository{db: r.db} }
func (r repositories) Tags() TagRepository           { return &gormTagRepository{db: r.db} }
func (r repositories) Genres() GenreRepository       { return &gormGenreRepository{db: r.db} }
func (r repositories) Users() UserRepository         { return &gormUserRepository{db: r.db} }
func (r repositories) Favorites() FavoriteRepository { return &gormFavoriteRepository{db: r.db} }
func (r repositories) Follows() FollowRepository     { return &gormFollowRepository{db: r.db} }

type gormStore struct {
	repositories
}

// NewGormStore creates a Store over db.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{repositories{db: db}}
}

func (s *gormStore) Begin(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormTx{repositories: repositories{db: tx}}, nil
}

type gormTx struct {
	repositories
	done bool
}

func (t *gormTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *gormTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.db.Rollback().Error; err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
