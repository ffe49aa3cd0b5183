package evolve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

func testSampler(t *testing.T) *MutationSampler {
	t.Helper()
	ms, err := NewMutationSampler(validParams())
	require.NoError(t, err)
	return ms
}

func testChromAndRates(t *testing.T, bases string) (*varchrom.VarChrom, *rates.MutationRates, *MutationSampler) {
	t.Helper()
	ref := &refgenome.RefChrom{Name: "chr1", Bases: bases}
	vc := varchrom.New(ref)
	regions, err := rates.NewRegionRates([]rates.Region{{End: len(bases) - 1, Gamma: 1}}, len(bases))
	require.NoError(t, err)
	ms := testSampler(t)
	return vc, ms.NewRates(regions), ms
}

func TestMutate_RateChangeMatchesTotalRateDelta(t *testing.T) {
	vc, mr, ms := testChromAndRates(t, "ACGTACGTACGTACGTACGT")
	src := prng.New(11, 22)

	before, err := mr.TotalRate(vc, 0, vc.Size()-1, false)
	require.NoError(t, err)

	rateChange, err := ms.Mutate(vc, mr, src)
	require.NoError(t, err)

	after, err := mr.TotalRate(vc, 0, vc.Size()-1, false)
	require.NoError(t, err)

	assert.InDelta(t, before+rateChange, after, 1e-6*math.Max(1, math.Abs(after)))
}

func TestMutate_SizeInvariantHoldsAfterManyMutations(t *testing.T) {
	vc, mr, ms := testChromAndRates(t, "ACGTACGTACGTACGTACGTACGTACGTACGT")
	src := prng.New(3, 5)
	for i := 0; i < 200; i++ {
		_, err := ms.Mutate(vc, mr, src)
		require.NoError(t, err)
		assert.Equal(t, vc.Size(), vc.Ref().Size()+sizeDelta(vc))
		if vc.Size() > 0 {
			assert.Equal(t, vc.Size()-1, mr.Regions.Regions()[len(mr.Regions.Regions())-1].End)
		}
	}
}

func sizeDelta(vc *varchrom.VarChrom) int {
	total := 0
	for _, m := range vc.Mutations() {
		total += m.SizeModifier
	}
	return total
}

func TestMutateRange_DeletionClampsAtEnd(t *testing.T) {
	// Repeated mutations restricted to a narrow range never push the
	// range's end more than one below start (end == start-1 marks an
	// exhausted range).
	vc, mr, ms := testChromAndRates(t, "ACGTACGTACGTACGTACGT")
	src := prng.New(42, 7)
	end := 3
	for i := 0; i < 50 && end >= 0; i++ {
		_, newEnd, err := ms.MutateRange(vc, mr, 0, end, src)
		require.NoError(t, err)
		end = newEnd
		assert.GreaterOrEqual(t, end, -1)
	}
}

func TestMutateRange_EmptyRangeIsNoop(t *testing.T) {
	vc, mr, ms := testChromAndRates(t, "ACGT")
	rateChange, end, err := ms.MutateRange(vc, mr, 2, 1, prng.New(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rateChange)
	assert.Equal(t, 1, end)
}
