// Package mutation defines a single substitution/insertion/deletion event
// anchored at a reference position, with its corresponding variant-axis
// position.
package mutation

// Mutation is one substitution, insertion, or deletion relative to a
// reference chromosome.
//
// SizeModifier is 0 for a substitution, +k for an insertion of k bases
// beyond the anchor, and -k for a deletion of k bases.
//
// Inserted holds the single replacement base for a substitution, the
// inserted run for an insertion, and is empty for a deletion.
type Mutation struct {
	SizeModifier int
	RefPos       int
	VarPos       int
	Inserted     string
}

// NewSubstitution builds a substitution mutation.
func NewSubstitution(refPos, varPos int, base byte) Mutation {
	return Mutation{SizeModifier: 0, RefPos: refPos, VarPos: varPos, Inserted: string(base)}
}

// NewInsertion builds an insertion mutation.
func NewInsertion(refPos, varPos int, bases string) Mutation {
	return Mutation{SizeModifier: len(bases), RefPos: refPos, VarPos: varPos, Inserted: bases}
}

// NewDeletion builds a deletion mutation of the given size (size > 0).
func NewDeletion(refPos, varPos, size int) Mutation {
	return Mutation{SizeModifier: -size, RefPos: refPos, VarPos: varPos}
}

// IsSubstitution reports whether m is a substitution.
func (m Mutation) IsSubstitution() bool { return m.SizeModifier == 0 }

// IsInsertion reports whether m is an insertion.
func (m Mutation) IsInsertion() bool { return m.SizeModifier > 0 }

// IsDeletion reports whether m is a deletion.
func (m Mutation) IsDeletion() bool { return m.SizeModifier < 0 }

// DeletionSize returns the number of reference bases this deletion removes,
// or 0 if m is not a deletion.
func (m Mutation) DeletionSize() int {
	if m.SizeModifier >= 0 {
		return 0
	}
	return -m.SizeModifier
}

// RefEnd returns the last reference position this mutation's deletion span
// covers ([RefPos, RefEnd]). Only meaningful for deletions.
func (m Mutation) RefEnd() int {
	return m.RefPos + m.DeletionSize() - 1
}

// Before reports whether m is entirely before other on the reference axis,
// accounting for m's deletion span if any. Two mutations for which neither
// Before nor After holds are considered overlapping.
func (m Mutation) Before(other Mutation) bool {
	if m.IsDeletion() {
		return m.RefEnd() < other.RefPos
	}
	return m.RefPos < other.RefPos
}

// After reports whether m is entirely after other on the reference axis,
// accounting for other's deletion span if any.
func (m Mutation) After(other Mutation) bool {
	if other.IsDeletion() {
		return m.RefPos > other.RefEnd()
	}
	return m.RefPos > other.RefPos
}
