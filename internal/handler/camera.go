package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/repository"
	"porosity-hmi/internal/service/imagestore"
)

// ListCamerasHandler lists cameras, optionally by group_id, paged with skip/limit.
func ListCamerasHandler(cameras repository.CameraRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.Query("group_id"); raw != "" {
			groupID, err := strconv.Atoi(raw)
			if err != nil {
				abortWith(c, http.StatusBadRequest, "group_id must be an integer")
				return
			}
			list, err := cameras.GetByGroup(c.Request.Context(), groupID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
			return
		}

		skip := atoiDefault(c.Query("skip"), 0)
		limit := atoiDefault(c.Query("limit"), 100)
		if skip < 0 {
			skip = 0
		}
		list, err := cameras.GetAll(c.Request.Context(), skip, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetCameraHandler returns one camera by serial number.
func GetCameraHandler(cameras repository.CameraRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cam, err := cameras.GetBySerial(c.Request.Context(), c.Param("serial"))
		if err != nil {
			respondError(c, err)
			return
		}
		if cam == nil {
			abortWith(c, http.StatusNotFound, "Camera not found")
			return
		}
		c.JSON(http.StatusOK, cam)
	}
}

// CameraLatestHandler returns the latest image of a camera with its defect count.
func CameraLatestHandler(cameras repository.CameraRepository, images repository.ImageRepository,
	defects repository.DefectRepository, triggers repository.TriggerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		serial := c.Param("serial")

		cam, err := cameras.GetBySerial(ctx, serial)
		if err != nil {
			respondError(c, err)
			return
		}
		if cam == nil {
			abortWith(c, http.StatusNotFound, "Camera not found")
			return
		}

		status := dto.CameraLatestStatus{SerialNumber: serial}
		img, err := images.GetLatestByCamera(ctx, serial)
		if err != nil {
			respondError(c, err)
			return
		}
		if img == nil {
			c.JSON(http.StatusOK, status)
			return
		}

		count, err := defects.CountByImageID(ctx, img.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		url := imagestore.URL(img)
		status.LatestImageID = &img.ID
		status.LatestImageURL = &url
		status.DefectCount = count
		status.HasDefects = count > 0

		if img.TriggerID != nil {
			trigger, err := triggers.GetByID(ctx, *img.TriggerID)
			if err != nil {
				respondError(c, err)
				return
			}
			if trigger != nil {
				status.Timestamp = trigger.Timestamp
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
