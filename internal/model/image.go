package model

// Image represents a captured image record.
type Image struct {
	ID           int64   `json:"id"`
	TriggerID    *int64  `json:"trigger_id"`
	Width        *int    `json:"width"`
	Height       *int    `json:"height"`
	CameraID     string  `json:"camera_id"`
	MediaID      *string `json:"media_id"`
	Path         *string `json:"image"` // local or remote path to the image bytes
	EtherChecked *bool   `json:"ether_checked"`
}
