package analysis

import (
	"context"

	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
)

// Store is the read access the analysis needs.
// GetImage returns nil, nil when the image does not exist.
type Store interface {
	GetImage(ctx context.Context, imageID int64) (*model.Image, error)
	GetDefectsByImage(ctx context.Context, imageID int64) ([]model.Defect, error)
	GetRegionsByCamera(ctx context.Context, cameraID string) ([]model.Region, error)
}

// RepositoryStore reads through the repositories.
// With ActiveOnly set, inactive regions are left out of every analysis.
type RepositoryStore struct {
	Images     repository.ImageRepository
	Defects    repository.DefectRepository
	Regions    repository.RegionRepository
	ActiveOnly bool
}

func NewRepositoryStore(images repository.ImageRepository, defects repository.DefectRepository, regions repository.RegionRepository, activeOnly bool) *RepositoryStore {
	return &RepositoryStore{
		Images:     images,
		Defects:    defects,
		Regions:    regions,
		ActiveOnly: activeOnly,
	}
}

func (s *RepositoryStore) GetImage(ctx context.Context, imageID int64) (*model.Image, error) {
	return s.Images.GetByID(ctx, imageID)
}

func (s *RepositoryStore) GetDefectsByImage(ctx context.Context, imageID int64) ([]model.Defect, error) {
	return s.Defects.GetByImageID(ctx, imageID)
}

func (s *RepositoryStore) GetRegionsByCamera(ctx context.Context, cameraID string) ([]model.Region, error) {
	return s.Regions.GetByCamera(ctx, cameraID, s.ActiveOnly)
}
