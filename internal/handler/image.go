package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/annotate"
	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/logger"
	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
)

// ListImagesHandler returns the images of trigger_id, or of the latest trigger when none is given.
func ListImagesHandler(images repository.ImageRepository, triggers repository.TriggerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var triggerID int64
		if raw := c.Query("trigger_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				abortWith(c, http.StatusBadRequest, "trigger_id must be an integer")
				return
			}
			triggerID = id
		} else {
			latest, err := triggers.GetLatest(ctx)
			if err != nil {
				respondError(c, err)
				return
			}
			if latest == nil {
				c.JSON(http.StatusOK, []model.Image{})
				return
			}
			triggerID = latest.ID
		}

		list, err := images.GetByTrigger(ctx, triggerID)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []model.Image{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// LatestImagesHandler returns the latest image of every camera.
func LatestImagesHandler(images repository.ImageRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := images.GetLatestDetails(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []dto.ImageDetail{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// ImageDetailHandler returns one image with trigger, camera and defect context.
func ImageDetailHandler(images repository.ImageRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := images.GetDetail(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if detail == nil {
			abortWith(c, http.StatusNotFound, "Image not found")
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// ImageFileHandler serves the image bytes through the configured image access.
func ImageFileHandler(images repository.ImageRepository, loader ImageLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		img, err := images.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if img == nil {
			abortWith(c, http.StatusNotFound, "Image not found")
			return
		}

		data, err := loader.Load(c.Request.Context(), img)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Cache-Control", "max-age=3600")
		c.Data(http.StatusOK, http.DetectContentType(data), data)
	}
}

// ImageAnalysisHandler runs region analysis for one image and pushes the summary to viewers.
func ImageAnalysisHandler(analyzer Analyzer, hub Broadcaster, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		pd, ok := pixelDensity(c, analyzer)
		if !ok {
			return
		}

		report, err := analyzer.AnalyzeImageDefectsWithRegions(c.Request.Context(), id, pd)
		if err != nil {
			respondError(c, err)
			return
		}
		publish(hub, logger, report)
		c.JSON(http.StatusOK, report)
	}
}

// BatchAnalysisHandler analyzes several images in one call.
func BatchAnalysisHandler(analyzer Analyzer, hub Broadcaster, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.BatchAnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		pd := analyzer.PixelDensity()
		if req.PixelDensity != nil {
			pd = *req.PixelDensity
		}

		reports, err := analyzer.AnalyzeBatch(c.Request.Context(), req.ImageIDs, pd)
		if err != nil {
			respondError(c, err)
			return
		}
		for _, r := range reports {
			publish(hub, logger, r)
		}
		c.JSON(http.StatusOK, dto.BatchAnalysisResponse{Reports: reports})
	}
}

// AnnotatedImageHandler renders the analysis onto the image as a JPEG.
func AnnotatedImageHandler(images repository.ImageRepository, regions repository.RegionRepository,
	loader ImageLoader, analyzer Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		pd, ok := pixelDensity(c, analyzer)
		if !ok {
			return
		}

		report, err := analyzer.AnalyzeImageDefectsWithRegions(ctx, id, pd)
		if err != nil {
			respondError(c, err)
			return
		}
		img, err := images.GetByID(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if img == nil {
			abortWith(c, http.StatusNotFound, "Image not found")
			return
		}
		all, err := regions.GetByCamera(ctx, img.CameraID, false)
		if err != nil {
			respondError(c, err)
			return
		}
		data, err := loader.Load(ctx, img)
		if err != nil {
			respondError(c, err)
			return
		}

		out, err := annotate.Render(data, report, analyzedRegions(all, report))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/jpeg", out)
	}
}

// analyzedRegions keeps the regions that appear in the report.
func analyzedRegions(all []model.Region, report *dto.AnalysisReport) []model.Region {
	seen := make(map[int64]bool, len(report.Regions))
	for _, r := range report.Regions {
		seen[r.RegionID] = true
	}
	out := make([]model.Region, 0, len(report.Regions))
	for _, r := range all {
		if seen[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func publish(hub Broadcaster, logger *logger.Logger, report *dto.AnalysisReport) {
	if hub == nil || report == nil {
		return
	}
	if err := hub.BroadcastJSON(report.Summary()); err != nil {
		logger.Warning("Failed to broadcast analysis of image %d: %v", report.ImageID, err)
	}
}
