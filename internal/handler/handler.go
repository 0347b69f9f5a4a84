// Package handler holds the gin handlers of the HMI API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/analysis"
	"porosity-hmi/internal/annotate"
	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
	"porosity-hmi/internal/service/imagestore"
)

// Analyzer runs region analysis on stored images.
type Analyzer interface {
	AnalyzeImageDefectsWithRegions(ctx context.Context, imageID int64, pixelDensity float64) (*dto.AnalysisReport, error)
	AnalyzeBatch(ctx context.Context, imageIDs []int64, pixelDensity float64) ([]*dto.AnalysisReport, error)
	PixelDensity() float64
}

// ImageLoader returns the bytes of an image file.
type ImageLoader interface {
	Load(ctx context.Context, image *model.Image) ([]byte, error)
}

// Broadcaster pushes messages to connected viewers.
type Broadcaster interface {
	BroadcastJSON(v any) error
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrNotFound), errors.Is(err, imagestore.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrInvalidParameter), errors.Is(err, repository.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrInvalidGeometry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, annotate.ErrUnavailable):
		return http.StatusNotImplemented
	case errors.Is(err, imagestore.ErrImageAccess):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"detail": ...}. Internal errors are recorded on the context
// for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		detail = "Internal server error"
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Detail: detail})
}

func abortWith(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Detail: detail})
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWith(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// atoiDefault parses s or returns def when s is empty or malformed.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// pixelDensity reads the optional pixel_density query parameter.
func pixelDensity(c *gin.Context, analyzer Analyzer) (float64, bool) {
	raw := c.Query("pixel_density")
	if raw == "" {
		return analyzer.PixelDensity(), true
	}
	pd, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		abortWith(c, http.StatusBadRequest, "pixel_density must be a number")
		return 0, false
	}
	return pd, true
}

// StatusHandler reports that the API is up.
func StatusHandler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "online",
			"api_version":   version,
			"documentation": "/api",
		})
	}
}
