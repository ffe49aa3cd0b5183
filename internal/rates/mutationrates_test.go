package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnaevolve/dnaevolve/internal/refgenome"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

func testVarChrom(bases string) *varchrom.VarChrom {
	ref := &refgenome.RefChrom{Name: "chr1", Bases: bases}
	return varchrom.New(ref)
}

func TestRateAt_ReturnsRateTimesGamma(t *testing.T) {
	vc := testVarChrom("TCAG")
	regions, err := NewRegionRates([]Region{{End: 3, Gamma: 2}}, 4)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions) // T=1,C=2,A=3,G=4

	r, err := mr.RateAt(vc, 0) // base T
	require.NoError(t, err)
	assert.Equal(t, 2.0, r) // 1 * gamma(2)

	r, err = mr.RateAt(vc, 3) // base G
	require.NoError(t, err)
	assert.Equal(t, 8.0, r) // 4 * gamma(2)
}

func TestSubDelta_IsDifferenceOfRates(t *testing.T) {
	vc := testVarChrom("T")
	regions, err := NewRegionRates([]Region{{End: 0, Gamma: 1}}, 1)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions)

	delta, err := mr.SubDelta(vc, 0, 'G')
	require.NoError(t, err)
	assert.Equal(t, 3.0, delta) // q[G] - q[T] = 4 - 1
}

func TestInsDelta_SumsInsertedBaseRates(t *testing.T) {
	regions, err := NewRegionRates([]Region{{End: 0, Gamma: 2}}, 1)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions)

	delta := mr.InsDelta(0, "TC") // (1+2) * gamma(2)
	assert.Equal(t, 6.0, delta)
}

func TestDelDelta_IsNegativeSumOfRemovedRates(t *testing.T) {
	vc := testVarChrom("TCAG")
	regions, err := NewRegionRates([]Region{{End: 3, Gamma: 1}}, 4)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions)

	delta, err := mr.DelDelta(vc, 1, 2) // removes C, A: -(2+3)
	require.NoError(t, err)
	assert.Equal(t, -5.0, delta)
}

// After mutate returns delta, the full-chromosome total rate must equal
// the pre-mutation total plus delta, within tight tolerance.
func TestTotalRate_AgreesWithDeltaAcrossASubstitution(t *testing.T) {
	vc := testVarChrom("TCAG")
	regions, err := NewRegionRates([]Region{{End: 3, Gamma: 1}}, 4)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions)

	before, err := mr.TotalRate(vc, 0, vc.Size()-1, false)
	require.NoError(t, err)

	delta, err := mr.SubDelta(vc, 0, 'G')
	require.NoError(t, err)
	require.NoError(t, vc.ApplySubstitution('G', 0))

	after, err := mr.TotalRate(vc, 0, vc.Size()-1, false)
	require.NoError(t, err)

	assert.InDelta(t, before+delta, after, 1e-9)
}

func TestTotalRate_RangedMatchesFullWhenRangeIsWholeChromosome(t *testing.T) {
	vc := testVarChrom("TCAGTCAG")
	regions, err := NewRegionRates([]Region{{End: 7, Gamma: 1.5}}, 8)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions)

	full, err := mr.TotalRate(vc, 0, 0, false)
	require.NoError(t, err)
	ranged, err := mr.TotalRate(vc, 0, vc.Size()-1, true)
	require.NoError(t, err)
	assert.Equal(t, full, ranged)
	assert.False(t, math.IsNaN(full))
}

func TestClone_MutationRatesIsIndependent(t *testing.T) {
	regions, err := NewRegionRates([]Region{{End: 3, Gamma: 1}}, 4)
	require.NoError(t, err)
	mr := NewMutationRates([4]float64{1, 2, 3, 4}, regions)

	clone := mr.Clone()
	clone.Regions.Update(0, 2)
	assert.Equal(t, []Region{{End: 3, Gamma: 1}}, mr.Regions.Regions())
	assert.Equal(t, []Region{{End: 5, Gamma: 1}}, clone.Regions.Regions())
}
