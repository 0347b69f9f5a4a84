package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"porosity-hmi/internal/model"
)

func seedImages(t *testing.T, f *fixture) (triggerID int64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.cameras.Upsert(ctx, &model.Camera{SerialNumber: "CAM-1", GroupID: ptr(3)}))
	require.NoError(t, f.cameras.Upsert(ctx, &model.Camera{SerialNumber: "CAM-2"}))

	ts := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	old, err := f.triggers.Insert(ctx, &model.Trigger{Timestamp: &ts, Part: ptr("39MC")})
	require.NoError(t, err)
	triggerID, err = f.triggers.Insert(ctx, &model.Trigger{Timestamp: &ts, Part: ptr("40MC")})
	require.NoError(t, err)

	for _, img := range []model.Image{
		{TriggerID: &old, CameraID: "CAM-1", Path: ptr("a/1.jpg")},
		{TriggerID: &old, CameraID: "CAM-2", Path: ptr("a/2.jpg")},
		{TriggerID: &triggerID, CameraID: "CAM-1", Path: ptr("b/1.jpg"), Width: ptr(4000), Height: ptr(3000)},
		{TriggerID: &triggerID, CameraID: "CAM-2", Path: ptr("b/2.jpg"), EtherChecked: ptr(true)},
	} {
		img := img
		_, err := f.images.Insert(ctx, &img)
		require.NoError(t, err)
	}
	return triggerID
}

func TestImageRepository_GetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedImages(t, f)

	img, err := f.images.GetByID(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "CAM-1", img.CameraID)
	require.Equal(t, 4000, *img.Width)
	require.Equal(t, "b/1.jpg", *img.Path)
	require.Nil(t, img.MediaID)

	img, err = f.images.GetByID(ctx, 99)
	require.NoError(t, err)
	require.Nil(t, img)
}

func TestImageRepository_ByTriggerAndLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	triggerID := seedImages(t, f)

	images, err := f.images.GetByTrigger(ctx, triggerID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, int64(3), images[0].ID)

	latest, err := f.images.GetLatestByCamera(ctx, "CAM-2")
	require.NoError(t, err)
	require.Equal(t, int64(4), latest.ID)
	require.True(t, *latest.EtherChecked)

	none, err := f.images.GetLatestByCamera(ctx, "CAM-9")
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestImageRepository_Details(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedImages(t, f)

	require.NoError(t, f.defects.InsertBatch(ctx, []model.Defect{
		{ImageID: 3, X: 1, Y: 1, Width: 5, Height: 5},
		{ImageID: 3, X: 9, Y: 9, Width: 5, Height: 5},
	}))

	detail, err := f.images.GetDetail(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 2, detail.DefectCount)
	require.Equal(t, "40MC", *detail.TriggerPart)
	require.Equal(t, 3, *detail.CameraGroup)
	require.NotNil(t, detail.TriggerTimestamp)

	missing, err := f.images.GetDetail(ctx, 42)
	require.NoError(t, err)
	require.Nil(t, missing)

	latest, err := f.images.GetLatestDetails(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, int64(3), latest[0].ID)
	require.Equal(t, 2, latest[0].DefectCount)
	require.Equal(t, int64(4), latest[1].ID)
	require.Nil(t, latest[1].CameraGroup)
}
