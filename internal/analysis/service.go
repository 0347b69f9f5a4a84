package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"porosity-hmi/internal/config"
	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/logger"
)

// Service runs region analysis for stored images. It holds no per-call state,
// so one Service serves concurrent requests.
type Service struct {
	store        Store
	pixelDensity float64
	workers      int
	opts         []Option
	logger       *logger.Logger
}

func NewService(store Store, config *config.Config, logger *logger.Logger) *Service {
	workers := config.Analysis.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:        store,
		pixelDensity: config.Analysis.PixelDensity,
		workers:      workers,
		opts:         []Option{WithSpatialIndexMinDefects(config.Analysis.SpatialIndexMinDefects)},
		logger:       logger,
	}
}

// PixelDensity is the calibration used when a caller supplies none.
func (s *Service) PixelDensity() float64 {
	return s.pixelDensity
}

// AnalyzeImageDefectsWithRegions analyzes every region of the image's camera, in the
// order the store returns them. Any region error fails the whole report.
func (s *Service) AnalyzeImageDefectsWithRegions(ctx context.Context, imageID int64, pixelDensity float64) (*dto.AnalysisReport, error) {
	if err := validatePixelDensity(pixelDensity); err != nil {
		return nil, err
	}

	image, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %d: %w", imageID, err)
	}
	if image == nil {
		return nil, fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}

	defects, err := s.store.GetDefectsByImage(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load defects for image %d: %w", imageID, err)
	}
	regions, err := s.store.GetRegionsByCamera(ctx, image.CameraID)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions for camera %s: %w", image.CameraID, err)
	}

	report := &dto.AnalysisReport{
		ImageID:     image.ID,
		CameraID:    image.CameraID,
		DefectCount: len(defects),
		Regions:     make([]dto.RegionAnalysis, 0, len(regions)),
		OverallAnalysis: dto.OverallAnalysis{
			TotalDefects: len(defects),
			FailRegions:  []string{},
		},
	}

	for _, region := range regions {
		if err := ValidateRegion(region); err != nil {
			return nil, err
		}

		inRegion, err := FilterDefectsByRegion(defects, region)
		if err != nil {
			return nil, err
		}
		analyzed, err := AnalyzeDefectsWithRegion(inRegion, region, pixelDensity, s.opts...)
		if err != nil {
			return nil, err
		}

		failures := countFailures(analyzed)
		ra := dto.RegionAnalysis{
			RegionID:        region.ID,
			RegionName:      region.RegionID,
			DefectCount:     len(inRegion),
			FailureCount:    failures,
			HasFailures:     failures > 0,
			AnalyzedDefects: analyzed,
		}
		report.Regions = append(report.Regions, ra)

		report.OverallAnalysis.TotalFails += failures
		if ra.HasFailures {
			report.OverallAnalysis.HasFailures = true
			report.OverallAnalysis.FailRegions = append(report.OverallAnalysis.FailRegions, region.RegionID)
		}
	}

	s.logger.Info("Analyzed image %d (camera %s): %d defects, %d regions, %d fails",
		image.ID, image.CameraID, len(defects), len(regions), report.OverallAnalysis.TotalFails)
	return report, nil
}

// AnalyzeBatch analyzes several images concurrently and returns the reports in input order.
// The first error cancels the remaining work.
func (s *Service) AnalyzeBatch(ctx context.Context, imageIDs []int64, pixelDensity float64) ([]*dto.AnalysisReport, error) {
	reports := make([]*dto.AnalysisReport, len(imageIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range imageIDs {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := s.AnalyzeImageDefectsWithRegions(ctx, id, pixelDensity)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
