package dto

import "porosity-hmi/internal/model"

// RegionCreate is the POST body for a new region.
type RegionCreate struct {
	CameraID           string               `json:"camera_id" binding:"required"`
	RegionID           string               `json:"region_id" binding:"required"`
	SizeThreshold      float64              `json:"size_threshold" binding:"required,gt=0"`
	DensityThreshold   int                  `json:"density_threshold" binding:"required,min=1"`
	ProximityThreshold float64              `json:"proximity_threshold" binding:"required,gt=0"`
	Polygon            []model.PolygonPoint `json:"polygon" binding:"required,min=3"`
	PartNumber         *string              `json:"part_number"`
	Description        *string              `json:"description"`
	Active             *bool                `json:"active"`
}

// ToModel builds the region to insert. Active defaults to true.
func (c RegionCreate) ToModel() *model.Region {
	active := true
	if c.Active != nil {
		active = *c.Active
	}
	return &model.Region{
		CameraID:           c.CameraID,
		RegionID:           c.RegionID,
		SizeThreshold:      c.SizeThreshold,
		DensityThreshold:   c.DensityThreshold,
		ProximityThreshold: c.ProximityThreshold,
		Polygon:            c.Polygon,
		PartNumber:         c.PartNumber,
		Description:        c.Description,
		Active:             active,
	}
}

// RegionUpdate is the PUT body; nil fields are left unchanged.
type RegionUpdate struct {
	SizeThreshold      *float64             `json:"size_threshold" binding:"omitempty,gt=0"`
	DensityThreshold   *int                 `json:"density_threshold" binding:"omitempty,min=1"`
	ProximityThreshold *float64             `json:"proximity_threshold" binding:"omitempty,gt=0"`
	Polygon            []model.PolygonPoint `json:"polygon" binding:"omitempty,min=3"`
	PartNumber         *string              `json:"part_number"`
	Description        *string              `json:"description"`
	Active             *bool                `json:"active"`
}

// Apply copies the set fields onto r.
func (u RegionUpdate) Apply(r *model.Region) {
	if u.SizeThreshold != nil {
		r.SizeThreshold = *u.SizeThreshold
	}
	if u.DensityThreshold != nil {
		r.DensityThreshold = *u.DensityThreshold
	}
	if u.ProximityThreshold != nil {
		r.ProximityThreshold = *u.ProximityThreshold
	}
	if u.Polygon != nil {
		r.Polygon = u.Polygon
	}
	if u.PartNumber != nil {
		r.PartNumber = u.PartNumber
	}
	if u.Description != nil {
		r.Description = u.Description
	}
	if u.Active != nil {
		r.Active = *u.Active
	}
}
