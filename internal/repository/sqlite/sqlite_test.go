package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"porosity-hmi/internal/model"
	"porosity-hmi/internal/repository"
)

// ========================================
// Test Setup Helpers
// ========================================

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	cameras  *CameraRepository
	triggers *TriggerRepository
	images   *ImageRepository
	defects  *DefectRepository
	regions  *RegionRepository
	parts    *PartRepository
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	return &fixture{
		cameras:  NewCameraRepository(db),
		triggers: NewTriggerRepository(db),
		images:   NewImageRepository(db),
		defects:  NewDefectRepository(db),
		regions:  NewRegionRepository(db),
		parts:    NewPartRepository(db),
	}
}

// Compile-time interface checks.
var (
	_ repository.CameraRepository  = (*CameraRepository)(nil)
	_ repository.TriggerRepository = (*TriggerRepository)(nil)
	_ repository.ImageRepository   = (*ImageRepository)(nil)
	_ repository.DefectRepository  = (*DefectRepository)(nil)
	_ repository.RegionRepository  = (*RegionRepository)(nil)
	_ repository.PartRepository    = (*PartRepository)(nil)
)

// ========================================
// Database Tests
// ========================================

func TestDatabase_CreatesFileAndDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "poro.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestDatabase_MigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "poro.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

// ========================================
// Camera / Trigger / Part Tests
// ========================================

func TestCameraRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cameras.Upsert(ctx, &model.Camera{SerialNumber: "B2", GroupID: ptr(1)}))
	require.NoError(t, f.cameras.Upsert(ctx, &model.Camera{SerialNumber: "A1", GroupID: ptr(2), IP: ptr("10.0.0.5")}))
	require.NoError(t, f.cameras.Upsert(ctx, &model.Camera{SerialNumber: "C3", GroupID: ptr(1)}))

	cam, err := f.cameras.GetBySerial(ctx, "A1")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", *cam.IP)
	require.Nil(t, cam.SubGroup)

	missing, err := f.cameras.GetBySerial(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	all, err := f.cameras.GetAll(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "A1", all[0].SerialNumber)

	page, err := f.cameras.GetAll(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "B2", page[0].SerialNumber)

	group, err := f.cameras.GetByGroup(ctx, 1)
	require.NoError(t, err)
	require.Len(t, group, 2)

	// upsert replaces
	require.NoError(t, f.cameras.Upsert(ctx, &model.Camera{SerialNumber: "A1", GroupID: ptr(1)}))
	cam, err = f.cameras.GetBySerial(ctx, "A1")
	require.NoError(t, err)
	require.Equal(t, 1, *cam.GroupID)
	require.Nil(t, cam.IP)
}

func TestTriggerRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	latest, err := f.triggers.GetLatest(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)

	ts := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	id1, err := f.triggers.Insert(ctx, &model.Trigger{Timestamp: &ts, Part: ptr("39MC")})
	require.NoError(t, err)
	id2, err := f.triggers.Insert(ctx, &model.Trigger{ID: 50})
	require.NoError(t, err)
	require.Equal(t, int64(50), id2)

	got, err := f.triggers.GetByID(ctx, id1)
	require.NoError(t, err)
	require.True(t, ts.Equal(*got.Timestamp))
	require.Equal(t, "39MC", *got.Part)

	latest, err = f.triggers.GetLatest(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(50), latest.ID)
	require.Nil(t, latest.Timestamp)
}

func TestPartRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parts.Upsert(ctx, &model.PartInformation{JobNum: "39MC", PartName: ptr("head")})
	require.NoError(t, err)

	again, err := f.parts.Upsert(ctx, &model.PartInformation{JobNum: "39MC", PartName: ptr("block")})
	require.NoError(t, err)
	require.Equal(t, id, again)

	p, err := f.parts.GetByJobNum(ctx, "39MC")
	require.NoError(t, err)
	require.Equal(t, "block", *p.PartName)

	p, err = f.parts.GetByJobNum(ctx, "00XX")
	require.NoError(t, err)
	require.Nil(t, p)
}
