package evolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
)

func TestDriver_RunAllEvolvesEveryChromosome(t *testing.T) {
	ms := testSampler(t)
	pe, err := NewPhyloEvolver(caterpillarTree(), ms, []string{"t0", "t1", "t2", "t3"})
	require.NoError(t, err)
	driver := NewDriver(pe)

	jobs := make(chan ChromJob, 3)
	chroms := []string{"chr1", "chr2", "chr3"}
	for i, name := range chroms {
		ref := &refgenome.RefChrom{Name: name, Bases: "ACGTACGTACGTACGTACGTACGT"}
		jobs <- ChromJob{
			Seq:          i,
			Ref:          ref,
			GammaRegions: []rates.Region{{End: ref.Size() - 1, Gamma: 1}},
			Src:          prng.NewFromChromIndex(7, i),
		}
	}
	close(jobs)

	results := driver.RunAll(jobs, 2, nil)

	seen := map[int]bool{}
	err = OrderedCollect(results, func(r ChromResult) error {
		assert.NoError(t, r.Err)
		assert.Len(t, r.Tips, 4)
		seen[r.Seq] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestDriver_RunAllStopsOnAbort(t *testing.T) {
	ms := testSampler(t)
	pe, err := NewPhyloEvolver(caterpillarTree(), ms, []string{"t0", "t1", "t2", "t3"})
	require.NoError(t, err)
	driver := NewDriver(pe)

	jobs := make(chan ChromJob, 1)
	ref := &refgenome.RefChrom{Name: "chr1", Bases: "ACGTACGTACGTACGT"}
	jobs <- ChromJob{Seq: 0, Ref: ref, GammaRegions: []rates.Region{{End: ref.Size() - 1, Gamma: 1}}, Src: prng.New(1, 1)}
	close(jobs)

	results := driver.RunAll(jobs, 1, func() bool { return true })

	var got ChromResult
	err = OrderedCollect(results, func(r ChromResult) error {
		got = r
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, got.Err, ErrInterrupted)
}
