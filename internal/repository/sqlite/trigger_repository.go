package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"porosity-hmi/internal/model"
)

// TriggerRepository implements repository.TriggerRepository for SQLite.
type TriggerRepository struct {
	db *DB
}

// NewTriggerRepository creates a new SQLite trigger repository.
func NewTriggerRepository(db *DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

// Insert adds a trigger. A non-zero ID is kept so fixtures can reference it.
func (r *TriggerRepository) Insert(ctx context.Context, t *model.Trigger) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var id any
	if t.ID != 0 {
		id = t.ID
	}
	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO triggers (id, timestamp, label, part_instance, belt, part)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, t.Timestamp, t.Label, t.PartInstance, t.Belt, t.Part)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trigger: %w", err)
	}
	return result.LastInsertId()
}

// GetByID retrieves a trigger by its ID.
func (r *TriggerRepository) GetByID(ctx context.Context, id int64) (*model.Trigger, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.get(ctx, `
		SELECT id, timestamp, label, part_instance, belt, part
		FROM triggers WHERE id = ?
	`, id)
}

// GetLatest retrieves the trigger with the highest ID.
func (r *TriggerRepository) GetLatest(ctx context.Context) (*model.Trigger, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.get(ctx, `
		SELECT id, timestamp, label, part_instance, belt, part
		FROM triggers ORDER BY id DESC LIMIT 1
	`)
}

func (r *TriggerRepository) get(ctx context.Context, query string, args ...any) (*model.Trigger, error) {
	var t model.Trigger
	err := r.db.Conn().QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.Timestamp, &t.Label, &t.PartInstance, &t.Belt, &t.Part)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trigger: %w", err)
	}
	return &t, nil
}
