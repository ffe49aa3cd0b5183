// Package refgenome holds the immutable reference genome: a sequence of
// named chromosomes that every variant chromosome is evolved against.
package refgenome

import "fmt"

// RefChrom is one immutable reference chromosome. Bases are ASCII over
// {A,C,G,T,N}, already normalized and soft-mask-stripped by the ingestion
// collaborator (internal/fastaio).
type RefChrom struct {
	Name  string
	Bases string
}

// Size returns the byte length of the chromosome.
func (c *RefChrom) Size() int {
	return len(c.Bases)
}

// At returns the base at reference position p.
func (c *RefChrom) At(p int) byte {
	return c.Bases[p]
}

// RefGenome is an ordered, owning list of reference chromosomes. Every
// VarChrom holds a non-owning *RefChrom pointer into one of these; the
// RefGenome's lifetime must enclose every variant chromosome built from it.
type RefGenome struct {
	chroms    []*RefChrom
	totalSize int
	merged    bool
	oldNames  []string
}

// New builds a RefGenome from chromosomes in order.
func New(chroms []*RefChrom) *RefGenome {
	g := &RefGenome{chroms: chroms}
	for _, c := range chroms {
		g.totalSize += c.Size()
	}
	return g
}

// Len returns the number of chromosomes.
func (g *RefGenome) Len() int {
	return len(g.chroms)
}

// Chrom returns the chromosome at idx.
func (g *RefGenome) Chrom(idx int) *RefChrom {
	return g.chroms[idx]
}

// Chroms returns the underlying chromosome slice. Callers must not mutate it.
func (g *RefGenome) Chroms() []*RefChrom {
	return g.chroms
}

// TotalSize returns the cached sum of all chromosome sizes.
func (g *RefGenome) TotalSize() int {
	return g.totalSize
}

// Merged reports whether this genome was produced by concatenating
// chromosomes end-to-end. The merge operation itself lives in a separate
// collaborator; this field is data-model state that collaborator
// populates.
func (g *RefGenome) Merged() bool {
	return g.merged
}

// OldNames returns the original chromosome names preserved across a merge,
// if any.
func (g *RefGenome) OldNames() []string {
	return g.oldNames
}

// SetMerged marks this genome as merged, recording the original names.
// Called by the (out-of-scope) merge collaborator, not by the engine.
func (g *RefGenome) SetMerged(oldNames []string) {
	g.merged = true
	g.oldNames = oldNames
}

// NameIndex returns the chromosome index for a given name, or an error if
// no chromosome by that name exists.
func (g *RefGenome) NameIndex(name string) (int, error) {
	for i, c := range g.chroms {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("refgenome: no chromosome named %q", name)
}
