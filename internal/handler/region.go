package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/analysis"
	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/logger"
	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
)

// CameraRegionsHandler lists the regions of a camera. active_only defaults to true.
func CameraRegionsHandler(cameras repository.CameraRepository, regions repository.RegionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		serial := c.Param("camera")

		activeOnly := true
		if raw := c.Query("active_only"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				abortWith(c, http.StatusBadRequest, "active_only must be a boolean")
				return
			}
			activeOnly = v
		}

		cam, err := cameras.GetBySerial(ctx, serial)
		if err != nil {
			respondError(c, err)
			return
		}
		if cam == nil {
			abortWith(c, http.StatusNotFound, "Camera not found")
			return
		}

		list, err := regions.GetByCamera(ctx, serial, activeOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []model.Region{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetRegionHandler returns one region by storage id.
func GetRegionHandler(regions repository.RegionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		region, ok := loadRegion(c, regions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, region)
	}
}

// CreateRegionHandler stores a new region after checking its camera, part and geometry.
func CreateRegionHandler(cameras repository.CameraRepository, parts repository.PartRepository,
	regions repository.RegionRepository, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req dto.RegionCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		cam, err := cameras.GetBySerial(ctx, req.CameraID)
		if err != nil {
			respondError(c, err)
			return
		}
		if cam == nil {
			abortWith(c, http.StatusNotFound, "Camera not found")
			return
		}
		if !checkPart(c, parts, req.PartNumber) {
			return
		}

		region := req.ToModel()
		if err := analysis.ValidateRegion(*region); err != nil {
			respondError(c, err)
			return
		}
		if _, err := regions.Insert(ctx, region); err != nil {
			respondError(c, err)
			return
		}

		logger.Info("Created region %s on camera %s", region.RegionID, region.CameraID)
		c.JSON(http.StatusCreated, region)
	}
}

// UpdateRegionHandler applies a partial update to a region.
func UpdateRegionHandler(parts repository.PartRepository, regions repository.RegionRepository, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		region, ok := loadRegion(c, regions)
		if !ok {
			return
		}

		var req dto.RegionUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if req.PartNumber != nil && !samePart(region.PartNumber, req.PartNumber) {
			if !checkPart(c, parts, req.PartNumber) {
				return
			}
		}

		req.Apply(region)
		if err := analysis.ValidateRegion(*region); err != nil {
			respondError(c, err)
			return
		}
		if err := regions.Update(c.Request.Context(), region); err != nil {
			respondError(c, err)
			return
		}

		logger.Info("Updated region %d (%s)", region.ID, region.RegionID)
		c.JSON(http.StatusOK, region)
	}
}

// DeleteRegionHandler removes a region.
func DeleteRegionHandler(regions repository.RegionRepository, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		deleted, err := regions.Delete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !deleted {
			abortWith(c, http.StatusNotFound, "Region not found")
			return
		}

		logger.Info("Deleted region %d", id)
		c.JSON(http.StatusOK, true)
	}
}

func loadRegion(c *gin.Context, regions repository.RegionRepository) (*model.Region, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	region, err := regions.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if region == nil {
		abortWith(c, http.StatusNotFound, "Region not found")
		return nil, false
	}
	return region, true
}

// checkPart aborts with 404 when a non-empty part number has no part information.
func checkPart(c *gin.Context, parts repository.PartRepository, partNumber *string) bool {
	if partNumber == nil || *partNumber == "" {
		return true
	}
	exists, err := partExists(c.Request.Context(), parts, *partNumber)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !exists {
		abortWith(c, http.StatusNotFound, "Part not found")
		return false
	}
	return true
}

func partExists(ctx context.Context, parts repository.PartRepository, jobNum string) (bool, error) {
	p, err := parts.GetByJobNum(ctx, jobNum)
	return p != nil, err
}

func samePart(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
