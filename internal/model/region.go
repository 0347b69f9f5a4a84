package model

import (
	"time"

	"github.com/paulmach/orb"
)

// PolygonPoint is one polygon vertex in image pixel space.
type PolygonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a user-drawn inspection zone on one camera's view with its failure thresholds.
// An empty Polygon covers the whole image.
type Region struct {
	ID                 int64          `json:"id"`
	CameraID           string         `json:"camera_id"`
	RegionID           string         `json:"region_id"` // human label, unique per camera
	SizeThreshold      float64        `json:"size_threshold"`
	DensityThreshold   int            `json:"density_threshold"`
	ProximityThreshold float64        `json:"proximity_threshold"`
	Polygon            []PolygonPoint `json:"polygon"`
	PartNumber         *string        `json:"part_number"`
	Description        *string        `json:"description"`
	Active             bool           `json:"active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Ring converts the polygon to an orb ring. The ring is left open; closure is implicit.
func (r Region) Ring() orb.Ring {
	ring := make(orb.Ring, len(r.Polygon))
	for i, p := range r.Polygon {
		ring[i] = orb.Point{p.X, p.Y}
	}
	return ring
}
