//go:build !gocv
// +build !gocv

package annotate

import (
	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

// Render is unavailable without OpenCV.
func Render(img []byte, report *dto.AnalysisReport, regions []model.Region) ([]byte, error) {
	return nil, ErrUnavailable
}
