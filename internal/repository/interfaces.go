package repository

import (
	"context"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

// Read methods return nil, nil when the record does not exist.

// CameraRepository defines the interface for camera data operations.
type CameraRepository interface {
	// Create operations
	Upsert(ctx context.Context, cam *model.Camera) error

	// Read operations
	GetBySerial(ctx context.Context, serial string) (*model.Camera, error)
	GetAll(ctx context.Context, skip, limit int) ([]model.Camera, error)
	GetByGroup(ctx context.Context, groupID int) ([]model.Camera, error)
}

// TriggerRepository defines the interface for trigger data operations.
type TriggerRepository interface {
	Insert(ctx context.Context, t *model.Trigger) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Trigger, error)
	GetLatest(ctx context.Context) (*model.Trigger, error)
}

// ImageRepository defines the interface for image data operations.
type ImageRepository interface {
	// Create operations
	Insert(ctx context.Context, img *model.Image) (int64, error)

	// Read operations
	GetByID(ctx context.Context, id int64) (*model.Image, error)
	GetByTrigger(ctx context.Context, triggerID int64) ([]model.Image, error)
	GetLatestByCamera(ctx context.Context, cameraID string) (*model.Image, error)
	GetDetail(ctx context.Context, id int64) (*dto.ImageDetail, error)
	GetLatestDetails(ctx context.Context) ([]dto.ImageDetail, error)
}

// DefectRepository defines the interface for defect data operations.
type DefectRepository interface {
	// Create operations
	Insert(ctx context.Context, d *model.Defect) (int64, error)
	InsertBatch(ctx context.Context, defects []model.Defect) error

	// Read operations
	GetByID(ctx context.Context, id int64) (*model.Defect, error)
	GetByImageID(ctx context.Context, imageID int64) ([]model.Defect, error)
	CountByImageID(ctx context.Context, imageID int64) (int, error)
	GetStatistics(ctx context.Context) (*dto.DefectStatistics, error)

	// Update operations
	UpdateDisposition(ctx context.Context, id int64, disposition string, notes *string) (*model.Defect, error)
}

// RegionRepository defines the interface for region data operations.
type RegionRepository interface {
	// Create operations
	Insert(ctx context.Context, r *model.Region) (int64, error)

	// Read operations
	GetByID(ctx context.Context, id int64) (*model.Region, error)
	GetByLabel(ctx context.Context, cameraID, label string) (*model.Region, error)
	GetByCamera(ctx context.Context, cameraID string, activeOnly bool) ([]model.Region, error)

	// Update operations
	Update(ctx context.Context, r *model.Region) error

	// Delete operations
	Delete(ctx context.Context, id int64) (bool, error)
}

// PartRepository defines the interface for part information operations.
type PartRepository interface {
	Upsert(ctx context.Context, p *model.PartInformation) (int64, error)
	GetByJobNum(ctx context.Context, jobNum string) (*model.PartInformation, error)
}
