package repository

import (
	"context"
	"strings"

	"audiochan/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AudioFilter narrows audio listings. Zero values disable a filter.
type AudioFilter struct {
	ViewerID        int64  // private audios are only listed for their owner
	Query           string // case-insensitive title substring
	UserID          int64
	Username        string
	GenreID         int64
	GenreSlug       string
	Tags            []string // matches audios carrying any of them
	FollowerID      int64    // audios of users FollowerID follows
	FavoritedBy     int64
	SortByFavorites bool
	Offset          int
	Limit           int
}

// AudioRepository is the audio data access interface.
type AudioRepository interface {
	// Create returns ErrDuplicate when the upload id is already claimed.
	Create(ctx context.Context, audio *model.Audio) error
	// GetByID loads the audio with owner, genre, tags and favorites.
	// Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Audio, error)
	Update(ctx context.Context, audio *model.Audio) error
	ReplaceTags(ctx context.Context, audio *model.Audio, tags []model.Tag) error
	UpdatePicture(ctx context.Context, id int64, picture string) error
	// Delete removes the row with its tag links and favorites.
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter AudioFilter) ([]model.Audio, int64, error)
	Random(ctx context.Context, viewerID int64) (*model.Audio, error)
	CountByUser(ctx context.Context, userID int64, viewerID int64) (int64, error)
	// UploadExtensions maps each claimed id among ids to its row's file
	// extension. Unclaimed ids are absent.
	UploadExtensions(ctx context.Context, ids []string) (map[string]string, error)
}

type gormAudioRepository struct {
	db *gorm.DB
}

// NewGormAudioRepository creates a GORM audio repository.
func NewGormAudioRepository(db *gorm.DB) AudioRepository {
	return &gormAudioRepository{db: db}
}

func (r *gormAudioRepository) Create(ctx context.Context, audio *model.Audio) error {
	err := r.db.WithContext(ctx).Omit("User", "Genre", "Favorited").Create(audio).Error
	if IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

func (r *gormAudioRepository) GetByID(ctx context.Context, id int64) (*model.Audio, error) {
	var audio model.Audio
	err := r.preloaded(r.db.WithContext(ctx)).First(&audio, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

func (r *gormAudioRepository) Update(ctx context.Context, audio *model.Audio) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(audio).Error
}

func (r *gormAudioRepository) ReplaceTags(ctx context.Context, audio *model.Audio, tags []model.Tag) error {
	assoc := r.db.WithContext(ctx).Model(audio).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

func (r *gormAudioRepository) UpdatePicture(ctx context.Context, id int64, picture string) error {
	return r.db.WithContext(ctx).Model(&model.Audio{}).
		Where("id = ?", id).
		Update("picture", picture).Error
}

func (r *gormAudioRepository) Delete(ctx context.Context, id int64) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM audio_tags WHERE audio_id = ?", id).Error; err != nil {
		return false, err
	}
	if err := db.Where("audio_id = ?", id).Delete(&model.FavoriteAudio{}).Error; err != nil {
		return false, err
	}
	res := db.Delete(&model.Audio{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *gormAudioRepository) List(ctx context.Context, filter AudioFilter) ([]model.Audio, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Model(&model.Audio{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, filter)
	if filter.SortByFavorites {
		q = q.Order("(SELECT COUNT(*) FROM favorite_audios fa WHERE fa.audio_id = audios.id) DESC")
	}
	q = q.Order("audios.created_at DESC").Order("audios.id DESC")
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var audios []model.Audio
	if err := r.preloaded(q).Find(&audios).Error; err != nil {
		return nil, 0, err
	}
	return audios, total, nil
}

func (r *gormAudioRepository) Random(ctx context.Context, viewerID int64) (*model.Audio, error) {
	var audio model.Audio
	err := r.preloaded(r.filtered(ctx, AudioFilter{ViewerID: viewerID})).
		Order(randomOrder(r.db)).
		Take(&audio).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

func (r *gormAudioRepository) CountByUser(ctx context.Context, userID int64, viewerID int64) (int64, error) {
	var count int64
	err := r.filtered(ctx, AudioFilter{UserID: userID, ViewerID: viewerID}).
		Model(&model.Audio{}).
		Count(&count).Error
	return count, err
}

func (r *gormAudioRepository) UploadExtensions(ctx context.Context, ids []string) (map[string]string, error) {
	found := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []struct {
		UploadID string
		FileExt  string
	}
	err := r.db.WithContext(ctx).Model(&model.Audio{}).
		Select("upload_id", "file_ext").
		Where("upload_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		found[row.UploadID] = row.FileExt
	}
	return found, nil
}

// filtered returns a fresh query over audios with every filter applied.
func (r *gormAudioRepository) filtered(ctx context.Context, f AudioFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Table("audios").
		Where("(audios.is_public = ? OR audios.user_id = ?)", true, f.ViewerID)

	if query := strings.ToLower(strings.TrimSpace(f.Query)); query != "" {
		q = q.Where("LOWER(audios.title) LIKE ? ESCAPE '!'", "%"+escapeLike(query)+"%")
	}
	if f.UserID > 0 {
		q = q.Where("audios.user_id = ?", f.UserID)
	}
	if username := strings.ToLower(strings.TrimSpace(f.Username)); username != "" {
		q = q.Where("audios.user_id IN (SELECT id FROM users WHERE username = ?)", username)
	}
	if f.GenreID > 0 {
		q = q.Where("audios.genre_id = ?", f.GenreID)
	} else if slug := strings.ToLower(strings.TrimSpace(f.GenreSlug)); slug != "" {
		q = q.Where("audios.genre_id IN (SELECT id FROM genres WHERE slug = ?)", slug)
	}
	if len(f.Tags) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM audio_tags atg WHERE atg.audio_id = audios.id AND atg.tag_id IN ?)", f.Tags)
	}
	if f.FollowerID > 0 {
		q = q.Where("audios.user_id IN (SELECT target_id FROM followed_users WHERE observer_id = ?)", f.FollowerID)
	}
	if f.FavoritedBy > 0 {
		q = q.Where("audios.id IN (SELECT audio_id FROM favorite_audios WHERE user_id = ?)", f.FavoritedBy)
	}
	return q
}

func (r *gormAudioRepository) preloaded(q *gorm.DB) *gorm.DB {
	return q.Preload("User").Preload("Genre").Preload("Tags").Preload("Favorited")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern escaped by '!'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func randomOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
