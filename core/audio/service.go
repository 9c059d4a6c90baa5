// Package audio keeps audio rows and their blobs consistent across the
// upload, update and delete lifecycle.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"audiochan/core/genre"
	"audiochan/core/picture"
	"audiochan/core/result"
	"audiochan/core/upload"
	"audiochan/logger"
	"audiochan/model"
	"audiochan/repository"
	"audiochan/storage"
)

// Config holds the upload limits.
type Config struct {
	MaxFileSize  int64
	ContentTypes []string // empty accepts any audio/* type
}

// Service coordinates the database and blob storage for audios. Every
// operation takes the caller id explicitly; zero means anonymous.
type Service struct {
	store        repository.Store
	blobs        storage.BlobStore
	genres       *genre.Service
	pictures     *picture.Uploader
	metrics      *Metrics
	cfg          Config
	allowedTypes map[string]struct{}
}

// NewService wires the coordinator. metrics may be nil.
func NewService(store repository.Store, blobs storage.BlobStore, genres *genre.Service,
	pictures *picture.Uploader, metrics *Metrics, cfg Config) *Service {
	allowed := make(map[string]struct{}, len(cfg.ContentTypes))
	for _, ct := range cfg.ContentTypes {
		allowed[strings.ToLower(strings.TrimSpace(ct))] = struct{}{}
	}
	return &Service{
		store:        store,
		blobs:        blobs,
		genres:       genres,
		pictures:     pictures,
		metrics:      metrics,
		cfg:          cfg,
		allowedTypes: allowed,
	}
}

// Create registers an uploaded file. The blob must exist and carry the
// caller's id in its signed upload metadata. Once that is proven, any
// failure other than a lost race for the upload id deletes the blob again
// before returning.
func (s *Service) Create(ctx context.Context, callerID int64, req CreateRequest) (*View, error) {
	if callerID <= 0 {
		return nil, result.Unauthorized("")
	}
	tags, err := s.validateCreate(req)
	if err != nil {
		s.metrics.record(OutcomeRejected)
		return nil, err
	}

	audio, err := model.NewAudio(req.UploadID, req.FileName, req.FileSize, req.Duration, callerID)
	if err != nil {
		s.metrics.record(OutcomeRejected)
		return nil, result.BadRequest(err.Error())
	}
	audio.UpdateTitle(req.Title)
	audio.Description = req.Description
	audio.UpdatePublicStatus(req.IsPublic)
	audio.IsLoop = req.IsLoop

	if err := s.resolveGenre(ctx, audio, req.Genre); err != nil {
		s.recordFailure(err)
		return nil, err
	}

	key := storage.AudioKey(audio.UploadID, audio.FileExt)
	if err := s.verifyUpload(ctx, callerID, key); err != nil {
		s.recordFailure(err)
		return nil, err
	}

	if err := s.persistNew(ctx, audio, tags); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.record(OutcomeRejected)
			return nil, result.BadRequest("Audio has already been created.")
		}
		logger.Warn("Audio create failed after upload verification",
			logger.Int64("userId", callerID),
			logger.String("uploadId", audio.UploadID),
			logger.ErrorField(err))
		if storage.DeleteBestEffort(ctx, s.blobs, "audio create failed", key) > 0 {
			s.metrics.record(OutcomeCleanupFailed)
		}
		s.recordFailure(err)
		return nil, err
	}

	s.metrics.record(OutcomeCreated)
	logger.Info("Audio created",
		logger.Int64("audioId", audio.ID),
		logger.Int64("userId", callerID),
		logger.String("uploadId", audio.UploadID))

	if owner, err := s.store.Users().GetByID(ctx, callerID); err != nil {
		logger.Warn("Owner lookup failed", logger.Int64("userId", callerID), logger.ErrorField(err))
	} else {
		audio.User = owner
	}
	view := NewView(audio, callerID, s.blobs)
	return &view, nil
}

// resolveGenre applies the requested genre. Blank input leaves it unset.
func (s *Service) resolveGenre(ctx context.Context, audio *model.Audio, input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	g, err := s.genres.Get(ctx, input)
	if err != nil {
		return err
	}
	if g == nil {
		return result.BadRequest("Genre does not exist.")
	}
	audio.UpdateGenre(g)
	return nil
}

// verifyUpload checks that key exists and was uploaded through a URL
// issued to callerID. Another user's blob reads as missing.
func (s *Service) verifyUpload(ctx context.Context, callerID int64, key string) error {
	info, err := s.blobs.Stat(ctx, key)
	if err != nil {
		return fmt.Errorf("verify upload %s: %w", key, err)
	}
	if info == nil {
		return result.BadRequest("Cannot find audio in storage.")
	}
	if info.Metadata[upload.MetaUserID] != strconv.FormatInt(callerID, 10) {
		logger.Warn("Upload belongs to another user",
			logger.Int64("userId", callerID),
			logger.String("key", key),
			logger.String("owner", info.Metadata[upload.MetaUserID]))
		return result.BadRequest("Cannot find audio in storage.")
	}
	return nil
}

// persistNew writes the row with its tags in one transaction. Nothing is
// left behind when it fails.
func (s *Service) persistNew(ctx context.Context, audio *model.Audio, tags []string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if audio.Tags, err = tx.Tags().Upsert(ctx, tags); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	if err := tx.Audios().Create(ctx, audio); err != nil {
		return fmt.Errorf("save audio: %w", err)
	}
	return tx.Commit()
}

func (s *Service) recordFailure(err error) {
	if result.KindOf(err) == result.KindInternal {
		s.metrics.record(OutcomeFailed)
		return
	}
	s.metrics.record(OutcomeRejected)
}

// Update edits metadata in the database only.
func (s *Service) Update(ctx context.Context, callerID, audioID int64, req UpdateRequest) (*View, error) {
	audio, err := s.loadOwned(ctx, callerID, audioID)
	if err != nil {
		return nil, err
	}
	tags, err := s.validateUpdate(req)
	if err != nil {
		return nil, err
	}

	if req.Genre != nil {
		if err := s.resolveGenre(ctx, audio, *req.Genre); err != nil {
			return nil, err
		}
	}
	if req.Title != nil {
		audio.UpdateTitle(*req.Title)
	}
	audio.UpdateDescription(req.Description)
	audio.UpdatePublicStatus(req.IsPublic)
	audio.UpdateLoop(req.IsLoop)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if len(tags) > 0 {
		saved, err := tx.Tags().Upsert(ctx, tags)
		if err != nil {
			return nil, fmt.Errorf("save tags: %w", err)
		}
		if err := tx.Audios().ReplaceTags(ctx, audio, saved); err != nil {
			return nil, fmt.Errorf("replace tags: %w", err)
		}
	}
	if err := tx.Audios().Update(ctx, audio); err != nil {
		return nil, fmt.Errorf("update audio %d: %w", audio.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	view := NewView(audio, callerID, s.blobs)
	return &view, nil
}

// UpdatePicture replaces the audio's picture and returns its URL.
func (s *Service) UpdatePicture(ctx context.Context, callerID, audioID int64, imageData string) (string, error) {
	audio, err := s.loadOwned(ctx, callerID, audioID)
	if err != nil {
		return "", err
	}

	key, err := s.pictures.Replace(ctx, picture.ReplaceRequest{
		Kind:     storage.AudioPicture,
		EntityID: audio.ID,
		Data:     imageData,
		OldKey:   audio.Picture,
		Commit: func(ctx context.Context, newKey string) error {
			tx, err := s.store.Begin(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = tx.Rollback() }()
			if err := tx.Audios().UpdatePicture(ctx, audio.ID, newKey); err != nil {
				return fmt.Errorf("update audio picture: %w", err)
			}
			return tx.Commit()
		},
	})
	if err != nil {
		return "", err
	}
	return s.blobs.URL(key), nil
}

// Delete removes the row, then its blobs. Blob failures are logged and
// never returned since the row is already gone.
func (s *Service) Delete(ctx context.Context, callerID, audioID int64) error {
	audio, err := s.loadOwned(ctx, callerID, audioID)
	if err != nil {
		return err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	deleted, err := tx.Audios().Delete(ctx, audio.ID)
	if err != nil {
		return fmt.Errorf("delete audio %d: %w", audio.ID, err)
	}
	if !deleted {
		return result.NotFound("")
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.metrics.record(OutcomeDeleted)
	logger.Info("Audio deleted",
		logger.Int64("audioId", audio.ID),
		logger.Int64("userId", callerID),
		logger.String("uploadId", audio.UploadID))

	keys := []string{storage.AudioKey(audio.UploadID, audio.FileExt)}
	if audio.Picture != "" {
		keys = append(keys, audio.Picture)
	}
	if storage.DeleteBestEffort(ctx, s.blobs, "audio deleted", keys...) > 0 {
		s.metrics.record(OutcomeCleanupFailed)
	}
	return nil
}

// loadOwned fetches an audio the caller may modify.
func (s *Service) loadOwned(ctx context.Context, callerID, audioID int64) (*model.Audio, error) {
	if callerID <= 0 {
		return nil, result.Unauthorized("")
	}
	audio, err := s.store.Audios().GetByID(ctx, audioID)
	if err != nil {
		return nil, fmt.Errorf("load audio %d: %w", audioID, err)
	}
	if audio == nil {
		return nil, result.NotFound("")
	}
	if !audio.CanModify(callerID) {
		return nil, result.Forbidden("")
	}
	return audio, nil
}
