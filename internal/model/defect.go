package model

import (
	"time"

	"github.com/paulmach/orb"
)

// Defect is one porosity detection on an image, in pixel space.
type Defect struct {
	ID              int64          `json:"id"`
	ImageID         int64          `json:"image_id"`
	X               int            `json:"x"`
	Y               int            `json:"y"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	Confidence      *float64       `json:"confidence"`
	Type            *string        `json:"type"`
	Hand            *string        `json:"hand"`
	USSReviewed     *bool          `json:"uss_reviewed"`
	SystemGenerated *bool          `json:"system_generated"`
	Disposition     *string        `json:"disposition"`
	DispositionedAt *time.Time     `json:"dispositioned_at"`
	Mode            *string        `json:"mode"`
	Metadata        map[string]any `json:"metadata"`
}

// Center returns the center of the bounding box. Division is not truncated.
func (d Defect) Center() orb.Point {
	return orb.Point{
		float64(d.X) + float64(d.Width)/2,
		float64(d.Y) + float64(d.Height)/2,
	}
}
