// Package vcfio ingests VCF variant records and converts them into
// mutation.Mutation values seeding a VarChrom's initial state, ahead of
// phylogenetic evolution.
//
// Uses a gzip-detecting, buffered line scanner with header handling,
// generalized from an annotation-oriented Variant shape to the engine's
// (chrom_index, ref_pos, ref_bases, haplotype) record shape.
package vcfio

import "github.com/dnaevolve/dnaevolve/internal/mutation"

// Record is one (chrom_index, ref_pos, ref_bases, haplotype) tuple ready
// for conversion to a Mutation. RefPos is 0-based.
type Record struct {
	ChromIndex int
	RefPos     int
	RefBases   string
	Haplotype  string
}

// ToMutation converts one Record to the Mutation it represents:
//   - if len(haplotype) >= len(ref): a single mutation with
//     old_pos = new_pos = ref_pos, inserted = haplotype,
//     size_modifier = len(haplotype) - len(ref).
//   - otherwise: a pure deletion with old_pos = new_pos = ref_pos + 1,
//     size_modifier = len(haplotype) - len(ref), inserted = "".
func (r Record) ToMutation() mutation.Mutation {
	delta := len(r.Haplotype) - len(r.RefBases)
	if delta >= 0 {
		return mutation.Mutation{SizeModifier: delta, RefPos: r.RefPos, VarPos: r.RefPos, Inserted: r.Haplotype}
	}
	return mutation.Mutation{SizeModifier: delta, RefPos: r.RefPos + 1, VarPos: r.RefPos + 1, Inserted: ""}
}

// ToMutations converts a slice of Records, in order. Callers are
// responsible for ensuring the resulting list is sorted and non-
// overlapping before passing it to varchrom.NewFromMutations (VCF
// ingestion ordering is the collaborator's contract, not the core's).
func ToMutations(records []Record) []mutation.Mutation {
	out := make([]mutation.Mutation, len(records))
	for i, r := range records {
		out[i] = r.ToMutation()
	}
	return out
}
