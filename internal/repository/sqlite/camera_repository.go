package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"porosity-hmi/internal/model"
)

// CameraRepository implements repository.CameraRepository for SQLite.
type CameraRepository struct {
	db *DB
}

// NewCameraRepository creates a new SQLite camera repository.
func NewCameraRepository(db *DB) *CameraRepository {
	return &CameraRepository{db: db}
}

// Upsert inserts a camera or replaces the one with the same serial number.
func (r *CameraRepository) Upsert(ctx context.Context, cam *model.Camera) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO cameras (serial_number, group_id, sub_group, ip)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(serial_number) DO UPDATE SET
			group_id = excluded.group_id,
			sub_group = excluded.sub_group,
			ip = excluded.ip
	`, cam.SerialNumber, cam.GroupID, cam.SubGroup, cam.IP)
	if err != nil {
		return fmt.Errorf("failed to upsert camera: %w", err)
	}
	return nil
}

// GetBySerial retrieves a camera by its serial number.
func (r *CameraRepository) GetBySerial(ctx context.Context, serial string) (*model.Camera, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var cam model.Camera
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT serial_number, group_id, sub_group, ip
		FROM cameras WHERE serial_number = ?
	`, serial).Scan(&cam.SerialNumber, &cam.GroupID, &cam.SubGroup, &cam.IP)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera: %w", err)
	}
	return &cam, nil
}

// GetAll lists cameras ordered by serial number.
func (r *CameraRepository) GetAll(ctx context.Context, skip, limit int) ([]model.Camera, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx, `
		SELECT serial_number, group_id, sub_group, ip
		FROM cameras ORDER BY serial_number LIMIT ? OFFSET ?
	`, limit, skip)
}

// GetByGroup lists the cameras of one group.
func (r *CameraRepository) GetByGroup(ctx context.Context, groupID int) ([]model.Camera, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.query(ctx, `
		SELECT serial_number, group_id, sub_group, ip
		FROM cameras WHERE group_id = ? ORDER BY serial_number
	`, groupID)
}

func (r *CameraRepository) query(ctx context.Context, query string, args ...any) ([]model.Camera, error) {
	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	cameras := []model.Camera{}
	for rows.Next() {
		var cam model.Camera
		if err := rows.Scan(&cam.SerialNumber, &cam.GroupID, &cam.SubGroup, &cam.IP); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, cam)
	}
	return cameras, rows.Err()
}
