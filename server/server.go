package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"audiochan/cache"
	"audiochan/config"
	"audiochan/core/audio"
	"audiochan/core/auth"
	"audiochan/core/genre"
	"audiochan/core/picture"
	"audiochan/core/upload"
	"audiochan/core/user"
	"audiochan/db"
	"audiochan/logger"
	"audiochan/repository"
	"audiochan/storage"

	"github.com/prometheus/client_golang/prometheus"
)

const genreLRUSize = 256

// Start wires the application from cfg and serves until SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, 0)
	if err != nil {
		return err
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := db.Init(gdb); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	genreCache := cache.GenreCache(cache.NewLRUGenreCache(genreLRUSize, cfg.GenreCacheTTL))
	if cfg.RedisEnabled() {
		client, err := cache.ConnectRedis(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.CloseRedis()
		genreCache = cache.NewTieredGenreCache(genreCache, cache.NewRedisGenreCache(client, cfg.GenreCacheTTL))
	}

	blobs, err := storage.Open(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	metrics, err := audio.NewMetrics("", prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	store := repository.NewGormStore(gdb)
	genres := genre.NewService(store.Genres(), genreCache)
	pictures := picture.NewUploader(blobs, cfg.ImageMaxFileSize)
	handler := NewHandler(
		audio.NewService(store, blobs, genres, pictures, metrics, audio.Config{
			MaxFileSize:  cfg.AudioMaxFileSize,
			ContentTypes: cfg.AudioContentTypes,
		}),
		user.NewService(store, blobs, pictures),
		genres,
		upload.NewIssuer(blobs, upload.Options{
			Expiry:       cfg.UploadURLExpiry,
			ContentTypes: cfg.AudioContentTypes,
		}),
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(handler, tokens, prometheus.DefaultGatherer),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return Run(ctx, srv)
}

// Run serves srv until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
