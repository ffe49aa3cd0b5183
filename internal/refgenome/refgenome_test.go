package refgenome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChroms() []*RefChrom {
	return []*RefChrom{
		{Name: "chr1", Bases: "ACGT"},
		{Name: "chr2", Bases: "TTTTGG"},
	}
}

func TestNew_SumsTotalSize(t *testing.T) {
	g := New(testChroms())
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 10, g.TotalSize())
}

func TestChrom_ReturnsByIndexInOrder(t *testing.T) {
	g := New(testChroms())
	assert.Equal(t, "chr1", g.Chrom(0).Name)
	assert.Equal(t, "chr2", g.Chrom(1).Name)
}

func TestRefChrom_SizeAndAt(t *testing.T) {
	c := &RefChrom{Name: "chr1", Bases: "ACGT"}
	assert.Equal(t, 4, c.Size())
	assert.Equal(t, byte('A'), c.At(0))
	assert.Equal(t, byte('T'), c.At(3))
}

func TestNameIndex_FindsExistingChromosome(t *testing.T) {
	g := New(testChroms())
	idx, err := g.NameIndex("chr2")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestNameIndex_ErrorsOnUnknownName(t *testing.T) {
	g := New(testChroms())
	_, err := g.NameIndex("chrX")
	assert.Error(t, err)
}

func TestSetMerged_RecordsOldNames(t *testing.T) {
	g := New(testChroms())
	assert.False(t, g.Merged())

	g.SetMerged([]string{"chr1", "chr2"})
	assert.True(t, g.Merged())
	assert.Equal(t, []string{"chr1", "chr2"}, g.OldNames())
}
