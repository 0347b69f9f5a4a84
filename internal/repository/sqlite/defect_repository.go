package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

const defectColumns = `id, image_id, x, y, width, height, confidence, type, hand, uss_reviewed,
	system_generated, disposition, dispositioned_at, mode, metadata`

const insertDefect = `
	INSERT INTO defects (image_id, x, y, width, height, confidence, type, hand, uss_reviewed,
		system_generated, disposition, dispositioned_at, mode, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// DefectRepository implements repository.DefectRepository for SQLite.
type DefectRepository struct {
	db *DB
}

// NewDefectRepository creates a new SQLite defect repository.
func NewDefectRepository(db *DB) *DefectRepository {
	return &DefectRepository{db: db}
}

// Insert adds a new defect record to the database.
func (r *DefectRepository) Insert(ctx context.Context, d *model.Defect) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	args, err := defectArgs(d)
	if err != nil {
		return 0, err
	}
	result, err := r.db.Conn().ExecContext(ctx, insertDefect, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert defect: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple defects in a single transaction.
func (r *DefectRepository) InsertBatch(ctx context.Context, defects []model.Defect) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertDefect)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range defects {
		args, err := defectArgs(&defects[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert defect: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a defect by its ID.
func (r *DefectRepository) GetByID(ctx context.Context, id int64) (*model.Defect, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.getByID(ctx, r.db.Conn(), id)
}

// GetByImageID retrieves all defects for an image in insertion order.
func (r *DefectRepository) GetByImageID(ctx context.Context, imageID int64) ([]model.Defect, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT `+defectColumns+` FROM defects WHERE image_id = ? ORDER BY id
	`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query defects: %w", err)
	}
	defer rows.Close()

	defects := []model.Defect{}
	for rows.Next() {
		d, err := scanDefect(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan defect: %w", err)
		}
		defects = append(defects, *d)
	}

	return defects, rows.Err()
}

// CountByImageID returns how many defects an image has.
func (r *DefectRepository) CountByImageID(ctx context.Context, imageID int64) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM defects WHERE image_id = ?`, imageID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count defects: %w", err)
	}
	return count, nil
}

// UpdateDisposition sets the disposition and its timestamp. Non-empty notes are
// kept in the metadata under disposition_notes. Returns nil, nil for an unknown defect.
func (r *DefectRepository) UpdateDisposition(ctx context.Context, id int64, disposition string, notes *string) (*model.Defect, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	d, err := r.getByID(ctx, tx, id)
	if err != nil || d == nil {
		return nil, err
	}

	now := time.Now()
	d.Disposition = &disposition
	d.DispositionedAt = &now
	if notes != nil && *notes != "" {
		if d.Metadata == nil {
			d.Metadata = map[string]any{}
		}
		d.Metadata["disposition_notes"] = *notes
	}

	metadata, err := encodeJSON(d.Metadata)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE defects SET disposition = ?, dispositioned_at = ?, metadata = ? WHERE id = ?
	`, d.Disposition, d.DispositionedAt, metadata, id); err != nil {
		return nil, fmt.Errorf("failed to update defect disposition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit defect disposition: %w", err)
	}
	return d, nil
}

// GetStatistics counts defects by type, disposition and camera. Null keys are skipped.
func (r *DefectRepository) GetStatistics(ctx context.Context) (*dto.DefectStatistics, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &dto.DefectStatistics{}
	if err := r.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM defects`).Scan(&stats.TotalDefects); err != nil {
		return nil, fmt.Errorf("failed to count defects: %w", err)
	}

	var err error
	if stats.DefectsByType, err = r.countBy(ctx, `
		SELECT type, COUNT(*) FROM defects WHERE type IS NOT NULL GROUP BY type
	`); err != nil {
		return nil, err
	}
	if stats.DefectsByDisposition, err = r.countBy(ctx, `
		SELECT disposition, COUNT(*) FROM defects WHERE disposition IS NOT NULL GROUP BY disposition
	`); err != nil {
		return nil, err
	}
	if stats.DefectsByCamera, err = r.countBy(ctx, `
		SELECT i.camera_id, COUNT(*) FROM defects d
		JOIN images i ON i.id = d.image_id
		GROUP BY i.camera_id
	`); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *DefectRepository) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query defect statistics: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan defect statistics: %w", err)
		}
		if key != "" {
			counts[key] = count
		}
	}
	return counts, rows.Err()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *DefectRepository) getByID(ctx context.Context, q queryer, id int64) (*model.Defect, error) {
	d, err := scanDefect(q.QueryRowContext(ctx, `SELECT `+defectColumns+` FROM defects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get defect: %w", err)
	}
	return d, nil
}

func defectArgs(d *model.Defect) ([]any, error) {
	metadata, err := encodeJSON(d.Metadata)
	if err != nil {
		return nil, err
	}
	return []any{d.ImageID, d.X, d.Y, d.Width, d.Height, d.Confidence, d.Type, d.Hand, d.USSReviewed,
		d.SystemGenerated, d.Disposition, d.DispositionedAt, d.Mode, metadata}, nil
}

func scanDefect(s scanner) (*model.Defect, error) {
	var d model.Defect
	var metadata sql.NullString
	if err := s.Scan(&d.ID, &d.ImageID, &d.X, &d.Y, &d.Width, &d.Height, &d.Confidence, &d.Type,
		&d.Hand, &d.USSReviewed, &d.SystemGenerated, &d.Disposition, &d.DispositionedAt, &d.Mode,
		&metadata); err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &d.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode defect metadata: %w", err)
		}
	}
	return &d, nil
}

// encodeJSON returns nil for a nil value so the column stays NULL.
func encodeJSON(v any) (any, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if m == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return string(data), nil
}
