package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
)

// fallbackImageSize is used to normalize defects of images stored without dimensions.
const fallbackImageSize = 5120

// DefectsByImageHandler returns the defects of an image with normalized coordinates.
func DefectsByImageHandler(images repository.ImageRepository, defects repository.DefectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, list, ok := imageDefects(c, images, defects)
		if !ok {
			return
		}
		w, h := imageSize(img)
		out := make([]dto.DefectNormalized, 0, len(list))
		for _, d := range list {
			out = append(out, dto.NewDefectNormalized(d, w, h))
		}
		c.JSON(http.StatusOK, out)
	}
}

// DefectsYOLOHandler exports the defects of an image as YOLO label lines.
func DefectsYOLOHandler(images repository.ImageRepository, defects repository.DefectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, list, ok := imageDefects(c, images, defects)
		if !ok {
			return
		}
		w, h := imageSize(img)
		c.String(http.StatusOK, YOLOLabels(list, w, h))
	}
}

// YOLOLabels formats defects as "class x_center y_center width height" lines, scaled to 0-1.
// The class is the numeric defect type, or 0 when the type is not a number.
func YOLOLabels(defects []model.Defect, imageWidth, imageHeight int) string {
	lines := make([]string, 0, len(defects))
	for _, d := range defects {
		n := dto.NewDefectNormalized(d, imageWidth, imageHeight).Normalized
		lines = append(lines, fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
			classID(d.Type), n.XCenter, n.YCenter, n.Width, n.Height))
	}
	return strings.Join(lines, "\n")
}

func classID(defectType *string) int {
	if defectType == nil {
		return 0
	}
	id, err := strconv.Atoi(strings.TrimSpace(*defectType))
	if err != nil {
		return 0
	}
	return id
}

func imageSize(img *model.Image) (int, int) {
	w, h := fallbackImageSize, fallbackImageSize
	if img.Width != nil && *img.Width > 0 {
		w = *img.Width
	}
	if img.Height != nil && *img.Height > 0 {
		h = *img.Height
	}
	return w, h
}

func imageDefects(c *gin.Context, images repository.ImageRepository, defects repository.DefectRepository) (*model.Image, []model.Defect, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, nil, false
	}
	img, err := images.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	if img == nil {
		abortWith(c, http.StatusNotFound, "Image not found")
		return nil, nil, false
	}
	list, err := defects.GetByImageID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return img, list, true
}

// DefectStatisticsHandler returns defect totals by type, disposition and camera.
func DefectStatisticsHandler(defects repository.DefectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := defects.GetStatistics(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GetDefectHandler returns one defect.
func GetDefectHandler(defects repository.DefectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		d, err := defects.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if d == nil {
			abortWith(c, http.StatusNotFound, "Defect not found")
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// UpdateDefectHandler sets the disposition of a defect.
func UpdateDefectHandler(defects repository.DefectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req dto.DefectUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		d, err := defects.UpdateDisposition(c.Request.Context(), id, req.Disposition, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		if d == nil {
			abortWith(c, http.StatusNotFound, "Defect not found")
			return
		}
		c.JSON(http.StatusOK, d)
	}
}
