package dto

import "encoding/json"

// FailReason says why a defect is a true fail. The zero value means it is not one.
type FailReason string

const (
	FailReasonNone    FailReason = ""
	FailReasonSize    FailReason = "Size"
	FailReasonDensity FailReason = "Density"
)

// MarshalJSON writes null for FailReasonNone.
func (r FailReason) MarshalJSON() ([]byte, error) {
	if r == FailReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts null as FailReasonNone.
func (r *FailReason) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = FailReasonNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = FailReason(s)
	return nil
}

// AnalyzedDefect is a defect evaluated against one region.
// ClusterMembers holds indices into the same region's AnalyzedDefects.
type AnalyzedDefect struct {
	ID             int64      `json:"id"`
	X              int        `json:"x"`
	Y              int        `json:"y"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	WidthMM        float64    `json:"width_mm"`
	HeightMM       float64    `json:"height_mm"`
	AreaMM         float64    `json:"area_mm"`
	IsTrueFail     bool       `json:"is_true_fail"`
	FailReason     FailReason `json:"fail_reason"`
	ClusterMembers []int      `json:"cluster_members"`
}

// RegionAnalysis is the result for one region of an image.
type RegionAnalysis struct {
	RegionID        int64            `json:"region_id"`
	RegionName      string           `json:"region_name"`
	DefectCount     int              `json:"defect_count"`
	FailureCount    int              `json:"failure_count"`
	HasFailures     bool             `json:"has_failures"`
	AnalyzedDefects []AnalyzedDefect `json:"analyzed_defects"`
}

// OverallAnalysis aggregates all regions of an image.
type OverallAnalysis struct {
	HasFailures  bool     `json:"has_failures"`
	TotalDefects int      `json:"total_defects"`
	TotalFails   int      `json:"total_fails"`
	FailRegions  []string `json:"fail_regions"`
}

// AnalysisReport is the full region analysis of one image.
type AnalysisReport struct {
	ImageID         int64            `json:"image_id"`
	CameraID        string           `json:"camera_id"`
	DefectCount     int              `json:"defect_count"`
	Regions         []RegionAnalysis `json:"regions"`
	OverallAnalysis OverallAnalysis  `json:"overall_analysis"`
}

// AnalysisSummary is pushed to websocket viewers after every analysis.
type AnalysisSummary struct {
	Type         string   `json:"type"`
	ImageID      int64    `json:"image_id"`
	CameraID     string   `json:"camera_id"`
	HasFailures  bool     `json:"has_failures"`
	TotalDefects int      `json:"total_defects"`
	TotalFails   int      `json:"total_fails"`
	FailRegions  []string `json:"fail_regions"`
}

// Summary condenses a report for broadcast.
func (r *AnalysisReport) Summary() AnalysisSummary {
	return AnalysisSummary{
		Type:         "analysis",
		ImageID:      r.ImageID,
		CameraID:     r.CameraID,
		HasFailures:  r.OverallAnalysis.HasFailures,
		TotalDefects: r.OverallAnalysis.TotalDefects,
		TotalFails:   r.OverallAnalysis.TotalFails,
		FailRegions:  r.OverallAnalysis.FailRegions,
	}
}

// BatchAnalysisRequest asks for several images at once.
type BatchAnalysisRequest struct {
	ImageIDs     []int64  `json:"image_ids" binding:"required,min=1"`
	PixelDensity *float64 `json:"pixel_density"`
}

// BatchAnalysisResponse keeps reports in request order.
type BatchAnalysisResponse struct {
	Reports []*AnalysisReport `json:"reports"`
}
