package dto

import (
	"time"

	"porosity-hmi/internal/model"
)

// NormalizedBox holds center/size coordinates scaled to 0-1 by the image dimensions.
type NormalizedBox struct {
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// DefectNormalized is a defect with coordinates ready for frontend rendering.
type DefectNormalized struct {
	ID          int64          `json:"id"`
	ImageID     int64          `json:"image_id"`
	Normalized  NormalizedBox  `json:"normalized"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Confidence  *float64       `json:"confidence"`
	Type        *string        `json:"type"`
	Disposition *string        `json:"disposition"`
	Metadata    map[string]any `json:"metadata"`
}

// NewDefectNormalized scales a defect by the image size.
func NewDefectNormalized(d model.Defect, imageWidth, imageHeight int) DefectNormalized {
	w, h := float64(imageWidth), float64(imageHeight)
	c := d.Center()
	return DefectNormalized{
		ID:      d.ID,
		ImageID: d.ImageID,
		Normalized: NormalizedBox{
			XCenter: c[0] / w,
			YCenter: c[1] / h,
			Width:   float64(d.Width) / w,
			Height:  float64(d.Height) / h,
		},
		X:           d.X,
		Y:           d.Y,
		Width:       d.Width,
		Height:      d.Height,
		Confidence:  d.Confidence,
		Type:        d.Type,
		Disposition: d.Disposition,
		Metadata:    d.Metadata,
	}
}

// DefectUpdate is the PATCH body for a defect disposition.
type DefectUpdate struct {
	Disposition string  `json:"disposition" binding:"required"`
	Notes       *string `json:"notes"`
}

// DefectStatistics summarises all stored defects.
type DefectStatistics struct {
	TotalDefects         int            `json:"total_defects"`
	DefectsByType        map[string]int `json:"defects_by_type"`
	DefectsByDisposition map[string]int `json:"defects_by_disposition"`
	DefectsByCamera      map[string]int `json:"defects_by_camera"`
}

// ImageDetail is an image with trigger, camera and defect context.
type ImageDetail struct {
	model.Image
	TriggerTimestamp *time.Time `json:"trigger_timestamp"`
	TriggerPart      *string    `json:"trigger_part"`
	CameraGroup      *int       `json:"camera_group"`
	DefectCount      int        `json:"defect_count"`
}

// CameraLatestStatus is the most recent state of one camera.
type CameraLatestStatus struct {
	SerialNumber   string     `json:"serial_number"`
	LatestImageID  *int64     `json:"latest_image_id"`
	LatestImageURL *string    `json:"latest_image_url"`
	HasDefects     bool       `json:"has_defects"`
	DefectCount    int        `json:"defect_count"`
	Timestamp      *time.Time `json:"timestamp"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
