package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"porosity-hmi/internal/analysis"
	"porosity-hmi/internal/config"
	"porosity-hmi/internal/logger"
	"porosity-hmi/internal/repository/sqlite"
	"porosity-hmi/internal/route"
	"porosity-hmi/internal/service/imagestore"
	"porosity-hmi/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	cache      *imagestore.RedisCache
	hubService *websocket.HubService
	server     *http.Server
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Sync()
		return nil, err
	}

	deps := route.Dependencies{
		Config:   cfg,
		Logger:   log,
		Cameras:  sqlite.NewCameraRepository(db),
		Triggers: sqlite.NewTriggerRepository(db),
		Images:   sqlite.NewImageRepository(db),
		Defects:  sqlite.NewDefectRepository(db),
		Regions:  sqlite.NewRegionRepository(db),
		Parts:    sqlite.NewPartRepository(db),
	}

	store := analysis.NewRepositoryStore(deps.Images, deps.Defects, deps.Regions, cfg.Analysis.ActiveRegionsOnly)
	deps.Analyzer = analysis.NewService(store, cfg, log)

	a := &App{config: cfg, logger: log, db: db}

	var opts []imagestore.Option
	if cfg.ImageAccess.Protocol == "ftp" && cfg.ImageAccess.FTP.CacheEnabled {
		if cache := connectCache(cfg, log); cache != nil {
			a.cache = cache
			opts = append(opts, imagestore.WithCache(cache))
		}
	}
	deps.Loader = imagestore.NewService(cfg, log, opts...)

	a.hubService = websocket.NewHubService(cfg, log)
	deps.Hub = a.hubService

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      route.SetupRoutes(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// connectCache returns a reachable Redis cache, or nil so downloads go uncached.
func connectCache(cfg *config.Config, log *logger.Logger) *imagestore.RedisCache {
	cache := imagestore.NewRedisCache(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		log.Warning("Redis at %s unavailable, image cache disabled: %v", cfg.Redis.Addr, err)
		_ = cache.Close()
		return nil
	}
	log.Info("Image cache connected to Redis at %s", cfg.Redis.Addr)
	return cache
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	go a.hubService.Run(ctx)

	a.logger.Info("Porosity HMI server listening on :%d", a.config.Server.Port)
	a.logger.Info("Database: %s", a.config.Database.Path)
	a.logger.Info("Image access: %s (fallback %s)", a.config.ImageAccess.Protocol, a.config.ImageAccess.FallbackPath)
	a.logger.Info("Pixel density: %.4f px/mm", a.config.Analysis.PixelDensity)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Close releases the database, cache and log files.
func (a *App) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
	a.logger.Sync()
}
