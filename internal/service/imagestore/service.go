package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"porosity-hmi/internal/config"
	"porosity-hmi/internal/logger"
	"porosity-hmi/internal/model"
)

// Service loads image bytes from local disk or FTP, according to image_access.protocol.
// FTP downloads go through the cache when one is set, and a failed download falls
// back to local resolution.
type Service struct {
	protocol     string
	fallbackPath string
	fetcher      Fetcher
	cache        Cache
	retry        retryConfig
	logger       *logger.Logger
}

type Option func(*Service)

// WithFetcher replaces the FTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithCache sets the cache for remote downloads. A nil cache disables caching.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithRetryDelay overrides the first backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		s.retry.BaseDelay = d
	}
}

func NewService(config *config.Config, logger *logger.Logger, opts ...Option) *Service {
	ia := config.ImageAccess
	s := &Service{
		protocol:     ia.Protocol,
		fallbackPath: ia.FallbackPath,
		retry:        defaultRetryConfig(ia.FTP.MaxRetries),
		logger:       logger,
	}
	if ia.Protocol == "ftp" {
		s.fetcher = NewFTPFetcher(ia.FTP)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL is the API path that serves the image bytes.
func URL(image *model.Image) string {
	if image == nil || image.ID == 0 {
		return ""
	}
	return fmt.Sprintf("/api/images/%d/file", image.ID)
}

// Load returns the bytes of the image file.
func (s *Service) Load(ctx context.Context, image *model.Image) ([]byte, error) {
	if image == nil || image.Path == nil || *image.Path == "" {
		return nil, ErrImageNotFound
	}
	imagePath := *image.Path

	if s.protocol == "ftp" && s.fetcher != nil {
		data, err := s.loadRemote(ctx, imagePath)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warning("FTP access failed, trying fallback: %v", err)
	}

	return s.loadLocal(imagePath)
}

func (s *Service) loadRemote(ctx context.Context, imagePath string) ([]byte, error) {
	key := CacheKey(imagePath)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warning("Image cache read failed for %s: %v", imagePath, err)
		} else if data != nil {
			return data, nil
		}
	}

	data, err := withRetry(ctx, s.retry, func() ([]byte, error) {
		return s.fetcher.Fetch(ctx, imagePath)
	}, func(attempt int, err error) {
		s.logger.Warning("FTP retry %d/%d for %s after error: %v", attempt, s.retry.MaxRetries, imagePath, err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s over FTP: %w: %w", imagePath, ErrImageAccess, err)
	}
	s.logger.Info("Downloaded image from FTP: %s", imagePath)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warning("Image cache write failed for %s: %v", imagePath, err)
		}
	}
	return data, nil
}

func (s *Service) loadLocal(imagePath string) ([]byte, error) {
	resolved, err := s.ResolveLocal(imagePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", resolved, ErrImageAccess, err)
	}
	return data, nil
}

// ResolveLocal maps a stored image path to an existing local file.
// Absolute paths are used as is; relative paths are joined with the fallback path.
// An absolute path that is missing is retried as its base name under the fallback path.
func (s *Service) ResolveLocal(imagePath string) (string, error) {
	if imagePath == "" {
		return "", ErrImageNotFound
	}

	cleaned := filepath.Clean(imagePath)
	var candidate string
	if filepath.IsAbs(cleaned) {
		candidate = cleaned
	} else {
		if s.fallbackPath == "" {
			s.logger.Error("Relative image path %s but fallback_path is not configured", imagePath)
			return "", ErrImageNotFound
		}
		candidate = filepath.Join(s.fallbackPath, cleaned)
	}

	if isFile(candidate) {
		return candidate, nil
	}
	s.logger.Warning("Image file not found at resolved path: %s", candidate)

	if filepath.IsAbs(cleaned) && s.fallbackPath != "" {
		alt := filepath.Join(s.fallbackPath, filepath.Base(cleaned))
		if isFile(alt) {
			return alt, nil
		}
		s.logger.Error("Alternative path also not found: %s", alt)
	}
	return "", fmt.Errorf("%s: %w", imagePath, ErrImageNotFound)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
