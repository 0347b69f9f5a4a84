package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
)

const regionColumns = `id, camera_id, region_id, size_threshold, density_threshold, proximity_threshold,
	polygon, part_number, active, description, created_at, updated_at`

// RegionRepository implements repository.RegionRepository for SQLite.
type RegionRepository struct {
	db *DB
}

// NewRegionRepository creates a new SQLite region repository.
func NewRegionRepository(db *DB) *RegionRepository {
	return &RegionRepository{db: db}
}

// Insert adds a region and sets its ID and timestamps.
// A second region with the same label on a camera returns repository.ErrDuplicate.
func (r *RegionRepository) Insert(ctx context.Context, region *model.Region) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	polygon, err := encodePolygon(region.Polygon)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO regions (camera_id, region_id, size_threshold, density_threshold, proximity_threshold,
			polygon, part_number, active, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, region.CameraID, region.RegionID, region.SizeThreshold, region.DensityThreshold, region.ProximityThreshold,
		polygon, region.PartNumber, region.Active, region.Description, now, now)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("region %q on camera %s: %w", region.RegionID, region.CameraID, repository.ErrDuplicate)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert region: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get region id: %w", err)
	}
	region.ID = id
	region.CreatedAt = now
	region.UpdatedAt = now
	return id, nil
}

// GetByID retrieves a region by its storage ID.
func (r *RegionRepository) GetByID(ctx context.Context, id int64) (*model.Region, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.get(ctx, `SELECT `+regionColumns+` FROM regions WHERE id = ?`, id)
}

// GetByLabel retrieves a region by camera and human label.
func (r *RegionRepository) GetByLabel(ctx context.Context, cameraID, label string) (*model.Region, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.get(ctx, `SELECT `+regionColumns+` FROM regions WHERE camera_id = ? AND region_id = ?`, cameraID, label)
}

// GetByCamera lists a camera's regions by ID. With activeOnly, inactive regions are left out.
func (r *RegionRepository) GetByCamera(ctx context.Context, cameraID string, activeOnly bool) ([]model.Region, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT ` + regionColumns + ` FROM regions WHERE camera_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Conn().QueryContext(ctx, query, cameraID)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	regions := []model.Region{}
	for rows.Next() {
		region, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, *region)
	}
	return regions, rows.Err()
}

// Update writes every mutable field of region and refreshes UpdatedAt.
func (r *RegionRepository) Update(ctx context.Context, region *model.Region) error {
	r.db.Lock()
	defer r.db.Unlock()

	polygon, err := encodePolygon(region.Polygon)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.Conn().ExecContext(ctx, `
		UPDATE regions SET size_threshold = ?, density_threshold = ?, proximity_threshold = ?,
			polygon = ?, part_number = ?, active = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, region.SizeThreshold, region.DensityThreshold, region.ProximityThreshold,
		polygon, region.PartNumber, region.Active, region.Description, now, region.ID)
	if err != nil {
		return fmt.Errorf("failed to update region: %w", err)
	}
	region.UpdatedAt = now
	return nil
}

// Delete removes a region and reports whether it existed.
func (r *RegionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete region: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete region: %w", err)
	}
	return n > 0, nil
}

func (r *RegionRepository) get(ctx context.Context, query string, args ...any) (*model.Region, error) {
	region, err := scanRegion(r.db.Conn().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return region, nil
}

func scanRegion(s scanner) (*model.Region, error) {
	var region model.Region
	var polygon string
	if err := s.Scan(&region.ID, &region.CameraID, &region.RegionID, &region.SizeThreshold,
		&region.DensityThreshold, &region.ProximityThreshold, &polygon, &region.PartNumber,
		&region.Active, &region.Description, &region.CreatedAt, &region.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(polygon), &region.Polygon); err != nil {
		return nil, fmt.Errorf("failed to decode region polygon: %w", err)
	}
	return &region, nil
}

func encodePolygon(polygon []model.PolygonPoint) (string, error) {
	if polygon == nil {
		polygon = []model.PolygonPoint{}
	}
	data, err := json.Marshal(polygon)
	if err != nil {
		return "", fmt.Errorf("failed to encode region polygon: %w", err)
	}
	return string(data), nil
}
