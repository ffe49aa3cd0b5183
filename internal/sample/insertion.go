package sample

import "github.com/dnaevolve/dnaevolve/internal/prng"

// InsertionStringSampler draws the inserted bases for an insertion event,
// each position independently from a stationary nucleotide distribution,
// via the same alias-table machinery as TypeSampler.
type InsertionStringSampler struct {
	table aliasTable
}

// NewInsertionStringSampler builds a sampler from per-base weights ordered
// T,C,A,G.
func NewInsertionStringSampler(piTCAG [4]float64) *InsertionStringSampler {
	return &InsertionStringSampler{table: buildAliasTable(normalize(piTCAG[:]))}
}

// Sample fills buf with len(buf) independently-drawn bases.
func (s *InsertionStringSampler) Sample(buf []byte, src prng.Source) {
	for i := range buf {
		buf[i] = nucBases[s.table.draw(src)]
	}
}
