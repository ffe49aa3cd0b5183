// Package varchrom implements the variant chromosome: a reference
// chromosome plus an ordered, non-overlapping list of mutations, answering
// character-at-position and substring queries without materializing a
// full sequence.
//
// Grounded on original_source/src/sequence_classes.h's VarSequence, with
// a sorted-slice + sort.Search lookup idiom for the mutation index.
package varchrom

import (
	"sort"

	"github.com/dnaevolve/dnaevolve/internal/mutation"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
)

// VarChrom is one haploid variant chromosome: a non-owning reference to a
// RefChrom plus a sorted, non-overlapping deque of mutations.
type VarChrom struct {
	ref       *refgenome.RefChrom
	mutations []mutation.Mutation
	curSize   int
}

// New creates an empty VarChrom tied to ref (no mutations yet).
func New(ref *refgenome.RefChrom) *VarChrom {
	return &VarChrom{ref: ref, curSize: ref.Size()}
}

// NewFromMutations creates a VarChrom from a caller-supplied mutation list
// that is already sorted by VarPos and non-overlapping (e.g. one produced
// by internal/vcfio from known variants), rather than built up one
// apply_* call at a time.
func NewFromMutations(ref *refgenome.RefChrom, muts []mutation.Mutation) *VarChrom {
	cp := make([]mutation.Mutation, len(muts))
	copy(cp, muts)
	size := ref.Size()
	for _, m := range cp {
		size += m.SizeModifier
	}
	return &VarChrom{ref: ref, mutations: cp, curSize: size}
}

// Ref returns the reference chromosome this variant is evolved against.
func (v *VarChrom) Ref() *refgenome.RefChrom {
	return v.ref
}

// Size returns the current chromosome length: ref.Size() + sum(SizeModifier).
func (v *VarChrom) Size() int {
	return v.curSize
}

// Mutations returns the sorted mutation list. Callers must not mutate it.
func (v *VarChrom) Mutations() []mutation.Mutation {
	return v.mutations
}

// Clone returns a deep copy of v, suitable for forking at a phylogeny node.
func (v *VarChrom) Clone() *VarChrom {
	muts := make([]mutation.Mutation, len(v.mutations))
	copy(muts, v.mutations)
	return &VarChrom{ref: v.ref, mutations: muts, curSize: v.curSize}
}

// sentinelIdx is returned by MutIndexAt when no mutation has VarPos <= p.
func (v *VarChrom) sentinelIdx() int {
	return len(v.mutations)
}

// MutIndexAt returns the index of the last mutation with VarPos <= p, or
// the sentinel (mutation count) if none exists.
func (v *VarChrom) MutIndexAt(p int) int {
	n := len(v.mutations)
	hi := sort.Search(n, func(i int) bool { return v.mutations[i].VarPos > p })
	if hi == 0 {
		return n
	}
	return hi - 1
}

// refPosAt computes the reference position that variant position p maps
// to, given mutIdx = MutIndexAt(p) (the last mutation at/before p, or the
// sentinel). Only valid when p is not strictly inside an insertion's
// inserted span (callers dealing with deletion blowup special-case that).
func (v *VarChrom) refPosAt(p, mutIdx int) int {
	if mutIdx == v.sentinelIdx() {
		return p
	}
	m := v.mutations[mutIdx]
	o := p - m.VarPos
	switch {
	case m.IsInsertion():
		k := m.SizeModifier
		return m.RefPos + (o - k)
	case m.IsDeletion():
		return m.RefPos + m.DeletionSize() + o
	default: // substitution
		return m.RefPos + o
	}
}

// charAtMutIdx resolves the base at variant position p given the
// controlling mutation index (sentinel if p precedes every mutation).
func (v *VarChrom) charAtMutIdx(p, mutIdx int) byte {
	if mutIdx == v.sentinelIdx() {
		return v.ref.At(p)
	}
	m := v.mutations[mutIdx]
	o := p - m.VarPos
	switch {
	case m.IsSubstitution():
		if o == 0 {
			return m.Inserted[0]
		}
		return v.ref.At(m.RefPos + o)
	case m.IsInsertion():
		k := m.SizeModifier
		if o < k {
			return m.Inserted[o]
		}
		return v.ref.At(m.RefPos + (o - k))
	default: // deletion
		return v.ref.At(m.RefPos + m.DeletionSize() + o)
	}
}

// CharAt returns the base at variant position p.
func (v *VarChrom) CharAt(p int) (byte, error) {
	if p < 0 || p >= v.curSize {
		return 0, ErrOutOfRange
	}
	return v.charAtMutIdx(p, v.MutIndexAt(p)), nil
}

// Substring writes length bases starting at variant position start into
// out, advancing *hintIdx as a forward cursor into the mutation list.
// Pass hintIdx=new(int) (zero value) on the first call for a chromosome;
// subsequent calls with increasing start reuse the same hint for O(1)
// amortized advancement instead of a fresh binary search each time.
func (v *VarChrom) Substring(out []byte, start, length int, hintIdx *int) error {
	if length == 0 {
		return nil
	}
	if start < 0 || length < 0 || start+length > v.curSize {
		return ErrOutOfRange
	}
	n := len(v.mutations)
	hi := *hintIdx
	if hi <= 0 || hi > n || v.mutations[hi-1].VarPos > start {
		hi = sort.Search(n, func(i int) bool { return v.mutations[i].VarPos > start })
	}
	for i := 0; i < length; i++ {
		p := start + i
		for hi < n && v.mutations[hi].VarPos <= p {
			hi++
		}
		idx := n
		if hi > 0 {
			idx = hi - 1
		}
		out[i] = v.charAtMutIdx(p, idx)
	}
	*hintIdx = hi
	return nil
}

// GetSeqFull materializes the full variant sequence. Intended for tests
// and small chromosomes; production code should prefer Substring.
func (v *VarChrom) GetSeqFull() string {
	out := make([]byte, v.curSize)
	hint := 0
	_ = v.Substring(out, 0, v.curSize, &hint)
	return string(out)
}

// insertSorted inserts m into the mutation slice at the position
// immediately following the last mutation with VarPos <= m.VarPos.
func (v *VarChrom) insertSorted(m mutation.Mutation) int {
	pos := 0
	idx := v.MutIndexAt(m.VarPos)
	if idx != v.sentinelIdx() {
		pos = idx + 1
	}
	v.mutations = append(v.mutations, mutation.Mutation{})
	copy(v.mutations[pos+1:], v.mutations[pos:])
	v.mutations[pos] = m
	return pos
}

// shiftFrom adds delta to VarPos for every mutation at or after index from.
func (v *VarChrom) shiftFrom(from, delta int) {
	for i := from; i < len(v.mutations); i++ {
		v.mutations[i].VarPos += delta
	}
}

// ApplySubstitution replaces the base at variant position p with base.
func (v *VarChrom) ApplySubstitution(base byte, p int) error {
	if p < 0 || p >= v.curSize {
		return ErrOutOfRange
	}
	idx := v.MutIndexAt(p)
	if idx != v.sentinelIdx() {
		m := v.mutations[idx]
		o := p - m.VarPos
		switch {
		case m.IsSubstitution() && o == 0:
			m.Inserted = string(base)
			v.mutations[idx] = m
			return nil
		case m.IsInsertion() && o < m.SizeModifier:
			b := []byte(m.Inserted)
			b[o] = base
			m.Inserted = string(b)
			v.mutations[idx] = m
			return nil
		}
	}
	refPos := v.refPosAt(p, idx)
	v.insertSorted(mutation.NewSubstitution(refPos, p, base))
	return nil
}

// ApplyInsertion inserts bases immediately before variant position p.
func (v *VarChrom) ApplyInsertion(bases string, p int) error {
	if p < 0 || p > v.curSize {
		return ErrOutOfRange
	}
	if len(bases) == 0 {
		return nil
	}
	idx := v.MutIndexAt(p)
	if idx != v.sentinelIdx() {
		m := v.mutations[idx]
		if o := p - m.VarPos; m.IsInsertion() && o < m.SizeModifier {
			// p lies inside an existing insertion's run: splice into it.
			m.Inserted = m.Inserted[:o] + bases + m.Inserted[o:]
			m.SizeModifier += len(bases)
			v.mutations[idx] = m
			v.shiftFrom(idx+1, len(bases))
			v.curSize += len(bases)
			return nil
		}
	}
	refPos := v.refPosAt(p, idx)
	pos := v.insertSorted(mutation.NewInsertion(refPos, p, bases))
	v.shiftFrom(pos+1, len(bases))
	v.curSize += len(bases)
	return nil
}

// ApplyDeletion removes size bases starting at variant position p,
// absorbing ("blowing up") any mutation whose span the deletion touches:
// substitutions and wholly-contained insertions are removed, a
// partially-overlapped insertion has its tail truncated, and an adjacent
// or overlapping deletion is merged into the new one. The deletion is
// clamped to the end of the chromosome rather than erroring.
func (v *VarChrom) ApplyDeletion(size, p int) error {
	if p < 0 || p > v.curSize {
		return ErrOutOfRange
	}
	if size <= 0 || p == v.curSize {
		return nil
	}
	if maxSize := v.curSize - p; size > maxSize {
		size = maxSize
	}

	idx := v.MutIndexAt(p)

	var refPos0 int
	if idx != v.sentinelIdx() {
		m := v.mutations[idx]
		spanEnd := m.VarPos + m.SizeModifier - 1
		if m.IsInsertion() && p > m.VarPos && p <= spanEnd {
			// Partial overlap from the left: truncate the insertion's
			// tail, and the deletion's reference anchor continues from
			// wherever the (untouched) reference resumes after it.
			refPos0 = m.RefPos
			truncated := p - m.VarPos
			removedTail := m.SizeModifier - truncated
			m.Inserted = m.Inserted[:truncated]
			m.SizeModifier = truncated
			v.mutations[idx] = m
			v.applyDeletionSweep(p, size, idx+1, refPos0, removedTail)
			return nil
		}
		if p == m.VarPos {
			// The sweep swallows (or merges) every mutation at p, so the
			// new deletion starts at the first one's own anchor.
			first := idx
			for first > 0 && v.mutations[first-1].VarPos == p {
				first--
			}
			refPos0 = v.mutations[first].RefPos
		} else {
			refPos0 = v.refPosAt(p, idx)
		}
	} else {
		refPos0 = p
	}
	v.applyDeletionSweep(p, size, 0, refPos0, 0)
	return nil
}

// applyDeletionSweep performs the forward scan that swallows touched
// mutations, starting the scan at searchFrom (mutations before it are
// left untouched). preRemovedVar accounts for variant width already
// removed by a tail truncation performed by the caller.
func (v *VarChrom) applyDeletionSweep(p, size, searchFrom, refPos0, preRemovedVar int) {
	n := len(v.mutations)
	scanIdx := searchFrom
	for scanIdx < n && v.mutations[scanIdx].VarPos < p {
		scanIdx++
	}
	firstTouched := scanIdx

	pos := p + preRemovedVar
	refRemaining := size
	varRemoved := preRemovedVar
	mergedDelRefLen := 0

	for refRemaining > 0 {
		if scanIdx >= n || v.mutations[scanIdx].VarPos > pos {
			refRemaining--
			pos++
			varRemoved++
			continue
		}
		m := v.mutations[scanIdx]
		switch {
		case m.IsSubstitution():
			varRemoved++
			refRemaining--
			pos++
			scanIdx++
		case m.IsInsertion():
			varRemoved += m.SizeModifier
			pos += m.SizeModifier
			scanIdx++
		default: // deletion
			mergedDelRefLen += m.DeletionSize()
			scanIdx++
		}
	}

	newMut := mutation.NewDeletion(refPos0, p, size+mergedDelRefLen)

	head := append([]mutation.Mutation{}, v.mutations[:firstTouched]...)
	rest := append([]mutation.Mutation{}, v.mutations[scanIdx:]...)
	v.mutations = append(head, append([]mutation.Mutation{newMut}, rest...)...)

	v.shiftFrom(len(head)+1, -varRemoved)
	v.curSize -= varRemoved
}

// Merge combines other's mutations into v (v's `+=` operator), requiring
// that the two variant chromosomes' mutation lists are strictly before or
// strictly after one another on the reference axis: other's mutations are
// appended when they lie after v's, and placed in front (shifting v's
// variant positions by other's size change) when they lie before. Grounded on
// VarSequence::operator+= in sequence_classes.h.
func (v *VarChrom) Merge(other *VarChrom) error {
	if len(other.mutations) == 0 {
		return nil
	}
	if len(v.mutations) == 0 {
		v.mutations = append([]mutation.Mutation{}, other.mutations...)
		v.curSize = other.curSize
		return nil
	}

	diff := other.curSize - other.ref.Size()
	otherFirst := other.mutations[0]
	otherLast := other.mutations[len(other.mutations)-1]
	vFirst := v.mutations[0]
	vLast := v.mutations[len(v.mutations)-1]

	switch {
	case otherLast.Before(vFirst):
		for i := range v.mutations {
			v.mutations[i].VarPos += diff
		}
		merged := make([]mutation.Mutation, 0, len(other.mutations)+len(v.mutations))
		merged = append(merged, other.mutations...)
		merged = append(merged, v.mutations...)
		v.mutations = merged
		v.curSize += diff
	case otherFirst.After(vLast):
		shift := v.curSize - v.ref.Size()
		for _, m := range other.mutations {
			m.VarPos += shift
			v.mutations = append(v.mutations, m)
		}
		v.curSize += diff
	default:
		return ErrOverlapping
	}
	return nil
}
