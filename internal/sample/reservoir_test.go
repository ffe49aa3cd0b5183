package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

func newTestChrom(t *testing.T, bases string) (*varchrom.VarChrom, *rates.MutationRates) {
	t.Helper()
	ref := &refgenome.RefChrom{Name: "chr1", Bases: bases}
	vc := varchrom.New(ref)
	regions, err := rates.NewRegionRates([]rates.Region{{End: len(bases) - 1, Gamma: 1}}, len(bases))
	require.NoError(t, err)
	mr := rates.NewMutationRates([4]float64{1, 1, 1, 1}, regions)
	return vc, mr
}

func TestSamplePosition_WithinWindow(t *testing.T) {
	vc, mr := newTestChrom(t, "ACGTACGTACGT")
	src := prng.New(1, 2)
	for i := 0; i < 50; i++ {
		p, err := SamplePosition(vc, mr, 2, 8, src)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 2)
		assert.LessOrEqual(t, p, 8)
	}
}

func TestSamplePosition_NoWeightErrors(t *testing.T) {
	ref := &refgenome.RefChrom{Name: "chr1", Bases: "ACGT"}
	vc := varchrom.New(ref)
	regions, err := rates.NewRegionRates([]rates.Region{{End: 3, Gamma: 1}}, 4)
	require.NoError(t, err)
	mr := rates.NewMutationRates([4]float64{0, 0, 0, 0}, regions)

	_, err = SamplePosition(vc, mr, 0, 3, prng.New(1, 1))
	assert.ErrorIs(t, err, ErrNoWeight)
}

func TestChunkReservoirSampler_WithinWindowAndChunkCapped(t *testing.T) {
	vc, mr := newTestChrom(t, "ACGTACGTACGTACGTACGT")
	crs := NewChunkReservoirSampler(5)
	src := prng.New(9, 9)
	for i := 0; i < 50; i++ {
		p, err := crs.Sample(vc, mr, 0, 19, src)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 19)
	}
}

func TestChunkReservoirSampler_ChunkLargerThanWindow(t *testing.T) {
	vc, mr := newTestChrom(t, "ACGT")
	crs := NewChunkReservoirSampler(100)
	p, err := crs.Sample(vc, mr, 0, 3, prng.New(3, 3))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p, 0)
	assert.LessOrEqual(t, p, 3)
}
