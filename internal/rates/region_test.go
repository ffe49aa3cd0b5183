package rates

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegionRates_RejectsMismatchedSize(t *testing.T) {
	_, err := NewRegionRates([]Region{{End: 9, Gamma: 1}}, 20)
	assert.ErrorIs(t, err, ErrInvalidGamma)
}

func TestNewRegionRates_EmptyRegionsRequiresZeroSize(t *testing.T) {
	r, err := NewRegionRates(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, r.Regions())

	_, err = NewRegionRates(nil, 5)
	assert.ErrorIs(t, err, ErrInvalidGamma)
}

func TestGammaAt_ReturnsRegionContainingPosition(t *testing.T) {
	r, err := NewRegionRates([]Region{
		{End: 4, Gamma: 1.0},
		{End: 9, Gamma: 2.0},
		{End: 14, Gamma: 0.5},
	}, 15)
	require.NoError(t, err)

	for p, want := range map[int]float64{0: 1.0, 4: 1.0, 5: 2.0, 9: 2.0, 10: 0.5, 14: 0.5} {
		assert.Equal(t, want, r.GammaAt(p), "position %d", p)
	}
}

// bruteForceRegionIndex re-derives the region index for p by a linear scan,
// independent of RegionIndex's binary search.
func bruteForceRegionIndex(regions []Region, p int) int {
	start := 0
	for i, reg := range regions {
		if p >= start && p <= reg.End {
			return i
		}
		start = reg.End + 1
	}
	return -1
}

// table_in_regions: a histogram of many positions bucketed by region index
// must equal a brute-force count, for both uniform and non-uniform region
// widths.
func TestRegionIndex_MatchesBruteForceHistogram(t *testing.T) {
	regions := []Region{
		{End: 9, Gamma: 1},
		{End: 49, Gamma: 1},
		{End: 54, Gamma: 1},
		{End: 199, Gamma: 1},
	}
	r, err := NewRegionRates(regions, 200)
	require.NoError(t, err)

	histogram := make([]int, len(regions))
	bruteForce := make([]int, len(regions))
	rng := rand.New(rand.NewSource(42))
	const trials = 5000
	for i := 0; i < trials; i++ {
		p := rng.Intn(200)
		histogram[r.RegionIndex(p)]++
		bruteForce[bruteForceRegionIndex(regions, p)]++
	}
	assert.Equal(t, bruteForce, histogram)
}

func TestRangeSumWeights_MatchesGammaAtPerPosition(t *testing.T) {
	r, err := NewRegionRates([]Region{
		{End: 4, Gamma: 1.0},
		{End: 9, Gamma: 3.0},
	}, 10)
	require.NoError(t, err)

	weights := r.RangeSumWeights(2, 7)
	require.Len(t, weights, 6)
	for i, p := 0, 2; p <= 7; i, p = i+1, p+1 {
		assert.Equal(t, r.GammaAt(p), weights[i])
	}
}

func TestUpdate_PositiveDeltaGrowsContainingAndShiftsLater(t *testing.T) {
	r, err := NewRegionRates([]Region{
		{End: 4, Gamma: 1},
		{End: 9, Gamma: 2},
	}, 10)
	require.NoError(t, err)

	r.Update(2, 3) // insert 3 bases inside the first region
	assert.Equal(t, []Region{{End: 7, Gamma: 1}, {End: 12, Gamma: 2}}, r.Regions())
}

func TestUpdate_NegativeDeltaShrinksAndDropsEmptiedRegions(t *testing.T) {
	r, err := NewRegionRates([]Region{
		{End: 2, Gamma: 1},
		{End: 5, Gamma: 2},
		{End: 9, Gamma: 3},
	}, 10)
	require.NoError(t, err)

	r.Update(0, -3) // delete the entire first region
	assert.Equal(t, []Region{{End: 2, Gamma: 2}, {End: 6, Gamma: 3}}, r.Regions())
}

func TestClone_IsIndependent(t *testing.T) {
	r, err := NewRegionRates([]Region{{End: 9, Gamma: 1}}, 10)
	require.NoError(t, err)

	clone := r.Clone()
	clone.Update(5, 2)
	assert.Equal(t, []Region{{End: 9, Gamma: 1}}, r.Regions())
	assert.Equal(t, []Region{{End: 11, Gamma: 1}}, clone.Regions())
}
