// Package annotate draws region polygons and analysis results onto inspection images.
package annotate

import (
	"errors"
	"fmt"
	"image/color"

	"porosity-hmi/internal/dto"
)

// ErrUnavailable is returned when the binary was built without OpenCV.
var ErrUnavailable = errors.New("image annotation requires a build with the gocv tag")

var (
	regionColor  = color.RGBA{R: 0, G: 160, B: 255, A: 0}
	passColor    = color.RGBA{R: 0, G: 200, B: 0, A: 0}
	sizeColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	densityColor = color.RGBA{R: 255, G: 140, B: 0, A: 0}
)

func defectColor(d dto.AnalyzedDefect) color.RGBA {
	switch d.FailReason {
	case dto.FailReasonSize:
		return sizeColor
	case dto.FailReasonDensity:
		return densityColor
	default:
		return passColor
	}
}

func defectLabel(d dto.AnalyzedDefect) string {
	if !d.IsTrueFail {
		return fmt.Sprintf("%.1fx%.1fmm", d.WidthMM, d.HeightMM)
	}
	return fmt.Sprintf("%s %.1fx%.1fmm", d.FailReason, d.WidthMM, d.HeightMM)
}
