package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

const imageColumns = `i.id, i.trigger_id, i.width, i.height, i.camera_id, i.media_id, i.path, i.ether_checked`

// ImageRepository implements repository.ImageRepository for SQLite.
type ImageRepository struct {
	db *DB
}

// NewImageRepository creates a new SQLite image repository.
func NewImageRepository(db *DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Insert adds a new image record to the database. A non-zero ID is kept.
func (r *ImageRepository) Insert(ctx context.Context, img *model.Image) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var id any
	if img.ID != 0 {
		id = img.ID
	}
	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO images (id, trigger_id, width, height, camera_id, media_id, path, ether_checked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, img.TriggerID, img.Width, img.Height, img.CameraID, img.MediaID, img.Path, img.EtherChecked)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image: %w", err)
	}

	return result.LastInsertId()
}

// GetByID retrieves an image by its ID.
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*model.Image, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	img, err := scanImage(r.db.Conn().QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images i WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// GetByTrigger retrieves the images taken for one trigger.
func (r *ImageRepository) GetByTrigger(ctx context.Context, triggerID int64) ([]model.Image, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT `+imageColumns+` FROM images i WHERE i.trigger_id = ? ORDER BY i.id
	`, triggerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	images := []model.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// GetLatestByCamera retrieves the most recent image of a camera.
func (r *ImageRepository) GetLatestByCamera(ctx context.Context, cameraID string) (*model.Image, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	img, err := scanImage(r.db.Conn().QueryRowContext(ctx, `
		SELECT `+imageColumns+` FROM images i WHERE i.camera_id = ? ORDER BY i.id DESC LIMIT 1
	`, cameraID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest image: %w", err)
	}
	return img, nil
}

const imageDetailQuery = `
	SELECT ` + imageColumns + `, t.timestamp, t.part, c.group_id,
		(SELECT COUNT(*) FROM defects d WHERE d.image_id = i.id)
	FROM images i
	LEFT JOIN triggers t ON t.id = i.trigger_id
	LEFT JOIN cameras c ON c.serial_number = i.camera_id
`

// GetDetail retrieves an image with its trigger, camera group and defect count.
func (r *ImageRepository) GetDetail(ctx context.Context, id int64) (*dto.ImageDetail, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	detail, err := scanImageDetail(r.db.Conn().QueryRowContext(ctx, imageDetailQuery+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image detail: %w", err)
	}
	return detail, nil
}

// GetLatestDetails returns the newest image of every camera.
func (r *ImageRepository) GetLatestDetails(ctx context.Context) ([]dto.ImageDetail, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, imageDetailQuery+`
		WHERE i.id IN (SELECT MAX(id) FROM images GROUP BY camera_id)
		ORDER BY i.camera_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest images: %w", err)
	}
	defer rows.Close()

	details := []dto.ImageDetail{}
	for rows.Next() {
		detail, err := scanImageDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image detail: %w", err)
		}
		details = append(details, *detail)
	}
	return details, rows.Err()
}

func scanImage(s scanner) (*model.Image, error) {
	var img model.Image
	if err := s.Scan(&img.ID, &img.TriggerID, &img.Width, &img.Height, &img.CameraID,
		&img.MediaID, &img.Path, &img.EtherChecked); err != nil {
		return nil, err
	}
	return &img, nil
}

func scanImageDetail(s scanner) (*dto.ImageDetail, error) {
	var d dto.ImageDetail
	img := &d.Image
	if err := s.Scan(&img.ID, &img.TriggerID, &img.Width, &img.Height, &img.CameraID,
		&img.MediaID, &img.Path, &img.EtherChecked,
		&d.TriggerTimestamp, &d.TriggerPart, &d.CameraGroup, &d.DefectCount); err != nil {
		return nil, err
	}
	return &d, nil
}
