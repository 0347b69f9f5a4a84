package analysis

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"porosity-hmi/internal/model"
)

// PointInPolygon reports whether pt lies inside ring using horizontal ray casting.
// The ring is closed implicitly. An edge counts as crossed when pt.Y is in
// (minY, maxY] of the edge and pt.X is at or left of the crossing; horizontal
// edges never count. For an axis-aligned rectangle this puts the max-x and max-y
// sides inside and the min sides outside.
func PointInPolygon(pt orb.Point, ring orb.Ring) bool {
	n := len(ring)
	if n == 0 {
		return false
	}

	x, y := pt[0], pt[1]
	inside := false
	p1 := ring[0]
	for i := 1; i <= n; i++ {
		p2 := ring[i%n]
		if y > math.Min(p1[1], p2[1]) && y <= math.Max(p1[1], p2[1]) && x <= math.Max(p1[0], p2[0]) {
			// y strictly above one end rules out a horizontal edge here
			xinters := (y-p1[1])*(p2[0]-p1[0])/(p2[1]-p1[1]) + p1[0]
			if p1[0] == p2[0] || x <= xinters {
				inside = !inside
			}
		}
		p1 = p2
	}
	return inside
}

// FilterDefectsByRegion keeps the defects whose center lies inside the region polygon,
// preserving order. An empty polygon matches the whole image and returns defects as is.
func FilterDefectsByRegion(defects []model.Defect, region model.Region) ([]model.Defect, error) {
	if len(region.Polygon) == 0 {
		return defects, nil
	}
	if err := validatePolygon(region); err != nil {
		return nil, err
	}

	ring := region.Ring()
	bound := ring.Bound()

	filtered := make([]model.Defect, 0, len(defects))
	for _, d := range defects {
		c := d.Center()
		if !bound.Contains(c) {
			continue
		}
		if PointInPolygon(c, ring) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// ValidateRegion checks the polygon and the thresholds of a region.
func ValidateRegion(region model.Region) error {
	if err := validatePolygon(region); err != nil {
		return err
	}
	return validateThresholds(region)
}

func validatePolygon(region model.Region) error {
	n := len(region.Polygon)
	if n == 0 {
		return nil
	}
	if n < 3 {
		return fmt.Errorf("region %q: polygon has %d points, need at least 3: %w", region.RegionID, n, ErrInvalidGeometry)
	}
	for _, p := range region.Polygon {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("region %q: polygon point (%v, %v) is not finite: %w", region.RegionID, p.X, p.Y, ErrInvalidGeometry)
		}
	}
	if planar.Area(region.Ring()) == 0 {
		return fmt.Errorf("region %q: polygon has zero area: %w", region.RegionID, ErrInvalidGeometry)
	}
	return nil
}

func validateThresholds(region model.Region) error {
	if !(region.SizeThreshold > 0) || math.IsInf(region.SizeThreshold, 1) {
		return fmt.Errorf("region %q: size_threshold must be positive, got %v: %w", region.RegionID, region.SizeThreshold, ErrInvalidGeometry)
	}
	if !(region.ProximityThreshold > 0) || math.IsInf(region.ProximityThreshold, 1) {
		return fmt.Errorf("region %q: proximity_threshold must be positive, got %v: %w", region.RegionID, region.ProximityThreshold, ErrInvalidGeometry)
	}
	if region.DensityThreshold < 1 {
		return fmt.Errorf("region %q: density_threshold must be at least 1, got %d: %w", region.RegionID, region.DensityThreshold, ErrInvalidGeometry)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
