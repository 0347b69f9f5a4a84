package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"porosity-hmi/internal/dto"
	"porosity-hmi/internal/model"
)

const defaultDensity = 95 / 7.9375

func wholeImage(size, proximity float64, density int) model.Region {
	return model.Region{
		ID:                 1,
		RegionID:           "whole",
		SizeThreshold:      size,
		DensityThreshold:   density,
		ProximityThreshold: proximity,
	}
}

func TestAnalyze_SizeThresholdLiteral(t *testing.T) {
	defects := []model.Defect{{ID: 1, X: 0, Y: 0, Width: 120, Height: 60}}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(8, 1, 5), defaultDensity)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 10.026, got[0].WidthMM, 0.001)
	require.InDelta(t, 5.013, got[0].HeightMM, 0.001)
	require.InDelta(t, got[0].WidthMM*got[0].HeightMM, got[0].AreaMM, 1e-12)
	require.True(t, got[0].IsTrueFail)
	require.Equal(t, dto.FailReasonSize, got[0].FailReason)
	require.Empty(t, got[0].ClusterMembers)

	got, err = AnalyzeDefectsWithRegion(defects, wholeImage(15, 1, 5), defaultDensity)
	require.NoError(t, err)
	require.False(t, got[0].IsTrueFail)
	require.Equal(t, dto.FailReasonNone, got[0].FailReason)
}

func TestAnalyze_SizeThresholdIsInclusive(t *testing.T) {
	// 80px at 10px/mm is exactly 8mm
	defects := []model.Defect{{ID: 1, Width: 20, Height: 80}}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(8, 1, 5), 10)
	require.NoError(t, err)
	require.True(t, got[0].IsTrueFail)
	require.Equal(t, dto.FailReasonSize, got[0].FailReason)
}

func TestAnalyze_DensitySymmetry(t *testing.T) {
	// centers at (10,10), (20,10), (15,18); all within 2mm at 10px/mm
	defects := []model.Defect{
		{ID: 11, X: 5, Y: 5, Width: 10, Height: 10},
		{ID: 12, X: 15, Y: 5, Width: 10, Height: 10},
		{ID: 13, X: 10, Y: 13, Width: 10, Height: 10},
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 2, 2), 10)
	require.NoError(t, err)

	for i, d := range got {
		require.True(t, d.IsTrueFail, "defect %d", i)
		require.Equal(t, dto.FailReasonDensity, d.FailReason)
		for j := range got {
			if j != i {
				require.Contains(t, d.ClusterMembers, j)
			}
		}
		require.NotContains(t, d.ClusterMembers, i)
	}
}

func TestAnalyze_ClusterMembersHaveNoDuplicates(t *testing.T) {
	defects := make([]model.Defect, 5)
	for i := range defects {
		defects[i] = model.Defect{ID: int64(i), X: i * 3, Y: 0, Width: 4, Height: 4}
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 10, 2), 10)
	require.NoError(t, err)
	for _, d := range got {
		seen := map[int]bool{}
		for _, m := range d.ClusterMembers {
			require.False(t, seen[m], "duplicate member %d", m)
			seen[m] = true
		}
		require.Len(t, d.ClusterMembers, 4)
	}
}

func TestAnalyze_DensityBelowThreshold(t *testing.T) {
	defects := []model.Defect{
		{ID: 1, X: 0, Y: 0, Width: 10, Height: 10},
		{ID: 2, X: 5, Y: 0, Width: 10, Height: 10},
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 5, 3), 10)
	require.NoError(t, err)
	for _, d := range got {
		require.False(t, d.IsTrueFail)
		require.Empty(t, d.ClusterMembers)
	}
}

func TestAnalyze_ProximityIsInclusive(t *testing.T) {
	// centers 30px apart, 3mm at 10px/mm
	defects := []model.Defect{
		{ID: 1, X: 0, Y: 0, Width: 10, Height: 10},
		{ID: 2, X: 30, Y: 0, Width: 10, Height: 10},
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 3, 2), 10)
	require.NoError(t, err)
	require.True(t, got[0].IsTrueFail)
	require.True(t, got[1].IsTrueFail)

	got, err = AnalyzeDefectsWithRegion(defects, wholeImage(100, 2.99, 2), 10)
	require.NoError(t, err)
	require.False(t, got[0].IsTrueFail)
	require.False(t, got[1].IsTrueFail)
}

func TestAnalyze_SizeFailCountsTowardCluster(t *testing.T) {
	defects := []model.Defect{
		{ID: 1, X: 0, Y: 0, Width: 200, Height: 200}, // 20mm, size fail
		{ID: 2, X: 90, Y: 90, Width: 20, Height: 20}, // same center
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(10, 5, 2), 10)
	require.NoError(t, err)

	require.Equal(t, dto.FailReasonSize, got[0].FailReason)
	require.Equal(t, []int{1}, got[0].ClusterMembers)

	require.Equal(t, dto.FailReasonDensity, got[1].FailReason)
	require.Equal(t, []int{0}, got[1].ClusterMembers)
}

func TestAnalyze_ChainIsNotTransitive(t *testing.T) {
	// A-B and B-C are 4mm apart, A-C 8mm; proximity 5mm; three needed
	defects := []model.Defect{
		{ID: 1, X: 0, Y: 0, Width: 10, Height: 10},
		{ID: 2, X: 40, Y: 0, Width: 10, Height: 10},
		{ID: 3, X: 80, Y: 0, Width: 10, Height: 10},
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 5, 3), 10)
	require.NoError(t, err)

	// only B has enough neighbours itself; A and C are pulled in through B
	require.Equal(t, []int{0, 2}, got[1].ClusterMembers)
	require.Equal(t, []int{1}, got[0].ClusterMembers)
	require.Equal(t, []int{1}, got[2].ClusterMembers)
	for _, d := range got {
		require.True(t, d.IsTrueFail)
		require.Equal(t, dto.FailReasonDensity, d.FailReason)
	}
}

func TestAnalyze_BackLinkedDefectCanStillCentreACluster(t *testing.T) {
	// four centers 4mm apart on a line; proximity 5mm; three needed
	defects := []model.Defect{
		{ID: 1, X: 0, Y: 0, Width: 10, Height: 10},
		{ID: 2, X: 40, Y: 0, Width: 10, Height: 10},
		{ID: 3, X: 80, Y: 0, Width: 10, Height: 10},
		{ID: 4, X: 120, Y: 0, Width: 10, Height: 10},
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 5, 3), 10)
	require.NoError(t, err)

	// index 1 clusters 0 and 2; index 2 was only back-linked, so it is checked
	// on its own and pulls in index 3, which alone has one neighbour
	require.Equal(t, []int{1}, got[0].ClusterMembers)
	require.Equal(t, []int{0, 2}, got[1].ClusterMembers)
	require.Equal(t, []int{1, 3}, got[2].ClusterMembers)
	require.Equal(t, []int{2}, got[3].ClusterMembers)
	for i, d := range got {
		require.True(t, d.IsTrueFail, "defect %d", i)
		require.Equal(t, dto.FailReasonDensity, d.FailReason)
	}

	// reversed order gives the same fails: the cluster membership is
	// order dependent, the fail set here is not
	reversed := []model.Defect{defects[3], defects[2], defects[1], defects[0]}
	got, err = AnalyzeDefectsWithRegion(reversed, wholeImage(100, 5, 3), 10)
	require.NoError(t, err)
	require.Equal(t, 4, countFailures(got))
}

func TestAnalyze_SizeFailedDefectIsNeverACentre(t *testing.T) {
	// index 0 fails on size and has two neighbours, but is not checked for density;
	// index 1 sees only index 0 and stays clean
	defects := []model.Defect{
		{ID: 1, X: 0, Y: 0, Width: 100, Height: 100},  // 10mm, center (50,50)
		{ID: 2, X: 75, Y: 45, Width: 10, Height: 10}, // center (80,50), 3mm away
		{ID: 3, X: 15, Y: 45, Width: 10, Height: 10}, // center (20,50), 3mm away
	}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(8, 4, 3), 10)
	require.NoError(t, err)

	require.Equal(t, dto.FailReasonSize, got[0].FailReason)
	require.Empty(t, got[0].ClusterMembers)
	require.False(t, got[1].IsTrueFail)
	require.False(t, got[2].IsTrueFail)
}

func TestAnalyze_DensityThresholdOneFailsIsolatedDefects(t *testing.T) {
	defects := []model.Defect{{ID: 1, Width: 5, Height: 5}}

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(100, 1, 1), 10)
	require.NoError(t, err)
	require.True(t, got[0].IsTrueFail)
	require.Equal(t, dto.FailReasonDensity, got[0].FailReason)
	require.Empty(t, got[0].ClusterMembers)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	got, err := AnalyzeDefectsWithRegion(nil, wholeImage(1, 1, 1), 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAnalyze_InvalidPixelDensity(t *testing.T) {
	for _, pd := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		_, err := AnalyzeDefectsWithRegion(nil, wholeImage(1, 1, 1), pd)
		require.ErrorIs(t, err, ErrInvalidParameter, "pixel density %v", pd)
	}
}

func TestAnalyze_InvalidThresholds(t *testing.T) {
	_, err := AnalyzeDefectsWithRegion(nil, wholeImage(0, 1, 1), 10)
	require.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = AnalyzeDefectsWithRegion(nil, wholeImage(1, 0, 1), 10)
	require.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = AnalyzeDefectsWithRegion(nil, wholeImage(1, 1, 0), 10)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestAnalyze_FailureCountMatchesFlags(t *testing.T) {
	defects := randomDefects(rand.New(rand.NewSource(7)), 60, 400)

	got, err := AnalyzeDefectsWithRegion(defects, wholeImage(3, 2, 3), 10)
	require.NoError(t, err)

	n := 0
	for _, d := range got {
		if d.IsTrueFail {
			n++
		}
		if d.IsTrueFail {
			require.NotEqual(t, dto.FailReasonNone, d.FailReason)
		} else {
			require.Equal(t, dto.FailReasonNone, d.FailReason)
		}
	}
	require.Equal(t, n, countFailures(got))
}

func TestAnalyze_SpatialIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 2, 65, 300} {
		defects := randomDefects(rng, n, 1000)
		for _, region := range []model.Region{
			wholeImage(4, 1.5, 2),
			wholeImage(6, 3, 4),
			wholeImage(100, 0.5, 1),
		} {
			scanned, err := AnalyzeDefectsWithRegion(defects, region, defaultDensity, WithSpatialIndexMinDefects(0))
			require.NoError(t, err)
			indexed, err := AnalyzeDefectsWithRegion(defects, region, defaultDensity, WithSpatialIndexMinDefects(1))
			require.NoError(t, err)
			require.Equal(t, scanned, indexed, "n=%d region=%+v", n, region)
		}
	}
}

func TestNeighborFinder_IndexMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	defects := randomDefects(rng, 200, 500)
	// duplicate centers must both be reported
	defects = append(defects, defects[0], defects[1])

	scan := newNeighborFinder(centersOf(defects), 10, 4, 0)
	index := newNeighborFinder(centersOf(defects), 10, 4, 1)
	require.IsType(t, &linearScan{}, scan)
	require.IsType(t, &centerIndex{}, index)

	for i := range defects {
		require.Equal(t, scan.within(i), index.within(i), "defect %d", i)
	}
}

func randomDefects(rng *rand.Rand, n, extent int) []model.Defect {
	defects := make([]model.Defect, n)
	for i := range defects {
		defects[i] = model.Defect{
			ID:     int64(i + 1),
			X:      rng.Intn(extent),
			Y:      rng.Intn(extent),
			Width:  1 + rng.Intn(60),
			Height: 1 + rng.Intn(60),
		}
	}
	return defects
}

func centersOf(defects []model.Defect) []orb.Point {
	centers := make([]orb.Point, len(defects))
	for i, d := range defects {
		centers[i] = d.Center()
	}
	return centers
}
