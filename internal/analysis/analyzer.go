package analysis

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

// DefaultSpatialIndexMinDefects is the defect count from which the neighbour
// search switches from a plain scan to a k-d tree.
const DefaultSpatialIndexMinDefects = 64

type Options struct {
	// SpatialIndexMinDefects enables the k-d tree at this many defects. Zero disables it.
	SpatialIndexMinDefects int
}

type Option func(*Options)

// WithSpatialIndexMinDefects sets the k-d tree cut-over. Zero or less keeps the plain scan.
func WithSpatialIndexMinDefects(n int) Option {
	return func(o *Options) {
		o.SpatialIndexMinDefects = n
	}
}

func buildOptions(opts []Option) Options {
	o := Options{SpatialIndexMinDefects: DefaultSpatialIndexMinDefects}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AnalyzeDefectsWithRegion decides which of the region-filtered defects are true fails.
//
// A defect fails by size when its larger side in mm reaches the region's size threshold.
// Every defect that did not fail by size is then checked in index order, including
// defects already pulled into an earlier cluster: if it has at least
// DensityThreshold-1 neighbours within the proximity threshold it fails by density,
// lists those neighbours as cluster members, and pulls each neighbour into the cluster
// with a back-link. A neighbour that already failed keeps its reason.
// This is not a transitive closure.
func AnalyzeDefectsWithRegion(defects []model.Defect, region model.Region, pixelDensity float64, opts ...Option) ([]dto.AnalyzedDefect, error) {
	if err := validatePixelDensity(pixelDensity); err != nil {
		return nil, err
	}
	if err := validateThresholds(region); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	analyzed := make([]dto.AnalyzedDefect, len(defects))
	sizeFailed := make([]bool, len(defects))
	centers := make([]orb.Point, len(defects))

	for i, d := range defects {
		widthMM := float64(d.Width) / pixelDensity
		heightMM := float64(d.Height) / pixelDensity

		analyzed[i] = dto.AnalyzedDefect{
			ID:             d.ID,
			X:              d.X,
			Y:              d.Y,
			Width:          d.Width,
			Height:         d.Height,
			WidthMM:        widthMM,
			HeightMM:       heightMM,
			AreaMM:         widthMM * heightMM,
			ClusterMembers: []int{},
		}
		if math.Max(widthMM, heightMM) >= region.SizeThreshold {
			analyzed[i].IsTrueFail = true
			analyzed[i].FailReason = dto.FailReasonSize
			sizeFailed[i] = true
		}
		centers[i] = d.Center()
	}

	finder := newNeighborFinder(centers, pixelDensity, region.ProximityThreshold, o.SpatialIndexMinDefects)
	for i := range analyzed {
		if sizeFailed[i] {
			continue
		}

		nearby := finder.within(i)
		if len(nearby)+1 < region.DensityThreshold {
			continue
		}

		// back-links from earlier clusters are a subset of nearby
		analyzed[i].IsTrueFail = true
		analyzed[i].FailReason = dto.FailReasonDensity
		analyzed[i].ClusterMembers = nearby

		for _, j := range nearby {
			if !analyzed[j].IsTrueFail {
				analyzed[j].IsTrueFail = true
				analyzed[j].FailReason = dto.FailReasonDensity
			}
			if !slices.Contains(analyzed[j].ClusterMembers, i) {
				analyzed[j].ClusterMembers = append(analyzed[j].ClusterMembers, i)
			}
		}
	}

	return analyzed, nil
}

// validatePixelDensity rejects a calibration that is not a finite positive number.
func validatePixelDensity(pixelDensity float64) error {
	if !(pixelDensity > 0) || math.IsInf(pixelDensity, 1) {
		return fmt.Errorf("pixel density must be positive and finite, got %v: %w", pixelDensity, ErrInvalidParameter)
	}
	return nil
}

// countFailures returns how many analyzed defects are true fails.
func countFailures(analyzed []dto.AnalyzedDefect) int {
	n := 0
	for _, d := range analyzed {
		if d.IsTrueFail {
			n++
		}
	}
	return n
}
