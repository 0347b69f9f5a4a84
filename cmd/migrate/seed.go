package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"porosity-hmi/internal/analysis"
	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
	"porosity-hmi/internal/repository/sqlite"
)

// fixture is the seed file layout. Trigger and image ids are kept so defects and
// images can reference them.
type fixture struct {
	Cameras  []model.Camera          `json:"cameras"`
	Parts    []model.PartInformation `json:"parts"`
	Triggers []model.Trigger         `json:"triggers"`
	Images   []model.Image           `json:"images"`
	Defects  []model.Defect          `json:"defects"`
	Regions  []model.Region          `json:"regions"`
}

type seedCounts struct {
	Cameras, Parts, Triggers, Images, Defects, Regions int
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &fx, nil
}

// seed inserts the fixture. Regions are validated first; existing region labels are skipped.
func seed(ctx context.Context, db *sqlite.DB, fx *fixture) (seedCounts, error) {
	var counts seedCounts

	for _, r := range fx.Regions {
		if err := analysis.ValidateRegion(r); err != nil {
			return counts, err
		}
	}

	cameras := sqlite.NewCameraRepository(db)
	for i := range fx.Cameras {
		if err := cameras.Upsert(ctx, &fx.Cameras[i]); err != nil {
			return counts, err
		}
		counts.Cameras++
	}

	parts := sqlite.NewPartRepository(db)
	for i := range fx.Parts {
		if _, err := parts.Upsert(ctx, &fx.Parts[i]); err != nil {
			return counts, err
		}
		counts.Parts++
	}

	triggers := sqlite.NewTriggerRepository(db)
	for i := range fx.Triggers {
		if _, err := triggers.Insert(ctx, &fx.Triggers[i]); err != nil {
			return counts, err
		}
		counts.Triggers++
	}

	images := sqlite.NewImageRepository(db)
	for i := range fx.Images {
		if _, err := images.Insert(ctx, &fx.Images[i]); err != nil {
			return counts, err
		}
		counts.Images++
	}

	if len(fx.Defects) > 0 {
		if err := sqlite.NewDefectRepository(db).InsertBatch(ctx, fx.Defects); err != nil {
			return counts, err
		}
		counts.Defects = len(fx.Defects)
	}

	regions := sqlite.NewRegionRepository(db)
	for i := range fx.Regions {
		_, err := regions.Insert(ctx, &fx.Regions[i])
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Printf("⚠️  Skipping region %s on %s: already exists\n", fx.Regions[i].RegionID, fx.Regions[i].CameraID)
			continue
		}
		if err != nil {
			return counts, err
		}
		counts.Regions++
	}

	return counts, nil
}
