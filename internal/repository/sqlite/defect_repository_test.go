package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"porosity-hmi/internal/model"
)

func TestDefectRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedImages(t, f)

	id, err := f.defects.Insert(ctx, &model.Defect{
		ImageID: 1, X: 10, Y: 20, Width: 30, Height: 40,
		Confidence: ptr(0.87), Type: ptr("porosity"), SystemGenerated: ptr(true),
		Metadata: map[string]any{"source": "line-2"},
	})
	require.NoError(t, err)

	d, err := f.defects.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 30, d.Width)
	require.InDelta(t, 0.87, *d.Confidence, 1e-12)
	require.Equal(t, "porosity", *d.Type)
	require.True(t, *d.SystemGenerated)
	require.Nil(t, d.USSReviewed)
	require.Equal(t, "line-2", d.Metadata["source"])

	missing, err := f.defects.GetByID(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDefectRepository_GetByImageIDKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedImages(t, f)

	require.NoError(t, f.defects.InsertBatch(ctx, []model.Defect{
		{ImageID: 2, X: 300, Width: 1, Height: 1},
		{ImageID: 2, X: 100, Width: 1, Height: 1},
		{ImageID: 1, X: 5, Width: 1, Height: 1},
		{ImageID: 2, X: 200, Width: 1, Height: 1},
	}))

	defects, err := f.defects.GetByImageID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, defects, 3)
	require.Equal(t, []int{300, 100, 200}, []int{defects[0].X, defects[1].X, defects[2].X})

	count, err := f.defects.CountByImageID(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	none, err := f.defects.GetByImageID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestDefectRepository_UpdateDisposition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedImages(t, f)

	id, err := f.defects.Insert(ctx, &model.Defect{ImageID: 1, Width: 3, Height: 3})
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	d, err := f.defects.UpdateDisposition(ctx, id, "scrap", ptr("cluster near bore"))
	require.NoError(t, err)
	require.Equal(t, "scrap", *d.Disposition)
	require.Equal(t, "cluster near bore", d.Metadata["disposition_notes"])

	stored, err := f.defects.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "scrap", *stored.Disposition)
	require.True(t, stored.DispositionedAt.After(before))
	require.Equal(t, "cluster near bore", stored.Metadata["disposition_notes"])

	// no notes leaves metadata alone
	d, err = f.defects.UpdateDisposition(ctx, id, "accept", nil)
	require.NoError(t, err)
	require.Equal(t, "accept", *d.Disposition)
	require.Equal(t, "cluster near bore", d.Metadata["disposition_notes"])

	d, err = f.defects.UpdateDisposition(ctx, 12345, "accept", nil)
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestDefectRepository_Statistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedImages(t, f)

	require.NoError(t, f.defects.InsertBatch(ctx, []model.Defect{
		{ImageID: 1, Width: 1, Height: 1, Type: ptr("porosity"), Disposition: ptr("scrap")},
		{ImageID: 2, Width: 1, Height: 1, Type: ptr("porosity")},
		{ImageID: 3, Width: 1, Height: 1, Type: ptr("crack"), Disposition: ptr("accept")},
		{ImageID: 3, Width: 1, Height: 1},
	}))

	stats, err := f.defects.GetStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalDefects)
	require.Equal(t, map[string]int{"porosity": 2, "crack": 1}, stats.DefectsByType)
	require.Equal(t, map[string]int{"scrap": 1, "accept": 1}, stats.DefectsByDisposition)
	require.Equal(t, map[string]int{"CAM-1": 3, "CAM-2": 1}, stats.DefectsByCamera)
}
