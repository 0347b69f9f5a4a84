//go:build gocv
// +build gocv

package annotate

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

// Render draws every region outline and each analyzed defect box, colored by
// fail reason, and returns the result as JPEG.
func Render(img []byte, report *dto.AnalysisReport, regions []model.Region) ([]byte, error) {
	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image: empty result")
	}

	for _, r := range regions {
		n := len(r.Polygon)
		for i := 0; i < n; i++ {
			p1, p2 := r.Polygon[i], r.Polygon[(i+1)%n]
			gocv.Line(&mat, image.Pt(int(p1.X), int(p1.Y)), image.Pt(int(p2.X), int(p2.Y)), regionColor, 2)
		}
		if n > 0 {
			pt := image.Pt(int(r.Polygon[0].X), int(r.Polygon[0].Y)-8)
			if err := gocv.PutText(&mat, r.RegionID, pt, gocv.FontHersheySimplex, 0.8, regionColor, 2); err != nil {
				return nil, fmt.Errorf("failed to draw text: %v", err)
			}
		}
	}

	for _, ra := range report.Regions {
		for _, d := range ra.AnalyzedDefects {
			c := defectColor(d)
			rect := image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
			if err := gocv.Rectangle(&mat, rect, c, 2); err != nil {
				return nil, fmt.Errorf("failed to draw rectangle: %v", err)
			}
			if err := gocv.PutText(&mat, defectLabel(d), image.Pt(d.X, d.Y-5), gocv.FontHersheySimplex, 0.5, c, 1); err != nil {
				return nil, fmt.Errorf("failed to draw text: %v", err)
			}
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
