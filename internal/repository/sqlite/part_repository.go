package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"porosity-hmi/internal/model"
)

// PartRepository implements repository.PartRepository for SQLite.
type PartRepository struct {
	db *DB
}

// NewPartRepository creates a new SQLite part information repository.
func NewPartRepository(db *DB) *PartRepository {
	return &PartRepository{db: db}
}

// Upsert inserts part information or updates the row with the same job number.
func (r *PartRepository) Upsert(ctx context.Context, p *model.PartInformation) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var id int64
	err := r.db.Conn().QueryRowContext(ctx, `
		INSERT INTO part_information (model, part_name, part_number, packout_amount, length, job_num)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_num) DO UPDATE SET
			model = excluded.model,
			part_name = excluded.part_name,
			part_number = excluded.part_number,
			packout_amount = excluded.packout_amount,
			length = excluded.length
		RETURNING id
	`, p.Model, p.PartName, p.PartNumber, p.PackoutAmount, p.Length, p.JobNum).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert part information: %w", err)
	}
	return id, nil
}

// GetByJobNum retrieves part information by its job number.
func (r *PartRepository) GetByJobNum(ctx context.Context, jobNum string) (*model.PartInformation, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var p model.PartInformation
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, model, part_name, part_number, packout_amount, length, job_num
		FROM part_information WHERE job_num = ?
	`, jobNum).Scan(&p.ID, &p.Model, &p.PartName, &p.PartNumber, &p.PackoutAmount, &p.Length, &p.JobNum)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get part information: %w", err)
	}
	return &p, nil
}
