package evolve

import (
	"fmt"
	"math"

	"github.com/dnaevolve/dnaevolve/internal/mutation"
	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/refgenome"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

// Edge is one parent->child branch of a phylogeny.
type Edge struct {
	Parent int
	Child  int
}

// Phylogeny is a tree given as parent->child edges plus per-edge branch
// lengths and leaf labels, the wire shape an internal/newick parser
// produces.
type Phylogeny struct {
	NumNodes      int
	Edges         []Edge
	BranchLengths []float64 // aligned with Edges
	LeafLabels    map[int]string
}

type childEdge struct {
	child   int
	edgeIdx int
}

// PhyloEvolver walks a phylogeny's edges, forking a VarChrom per node, and
// advances each branch by its length using a MutationSampler.
type PhyloEvolver struct {
	tree         *Phylogeny
	sampler      *MutationSampler
	children     [][]childEdge
	root         int
	slotForNode  map[int]int
	orderedTips  []string
}

// NewPhyloEvolver builds a driver from a phylogeny, a configured
// MutationSampler template, and the caller's desired tip output order
// (spp_order). Every leaf in tree must have exactly one match in
// orderedTipLabels and vice versa, or ErrLabelMismatch is returned.
func NewPhyloEvolver(tree *Phylogeny, sampler *MutationSampler, orderedTipLabels []string) (*PhyloEvolver, error) {
	children := make([][]childEdge, tree.NumNodes)
	isChild := make([]bool, tree.NumNodes)
	for i, e := range tree.Edges {
		if e.Parent < 0 || e.Parent >= tree.NumNodes || e.Child < 0 || e.Child >= tree.NumNodes {
			return nil, fmt.Errorf("%w: edge %d references node outside [0,%d)", ErrInvalidModel, i, tree.NumNodes)
		}
		children[e.Parent] = append(children[e.Parent], childEdge{child: e.Child, edgeIdx: i})
		isChild[e.Child] = true
	}

	root := -1
	for i := 0; i < tree.NumNodes; i++ {
		if !isChild[i] {
			if root != -1 {
				return nil, fmt.Errorf("%w: phylogeny has more than one root candidate (%d and %d)", ErrInvalidModel, root, i)
			}
			root = i
		}
	}
	if root == -1 {
		return nil, fmt.Errorf("%w: phylogeny has no root (every node has a parent)", ErrInvalidModel)
	}

	labelToNode := make(map[string]int, len(tree.LeafLabels))
	for node, label := range tree.LeafLabels {
		if len(children[node]) != 0 {
			return nil, fmt.Errorf("%w: node %d has a leaf label but is not a leaf", ErrInvalidModel, node)
		}
		labelToNode[label] = node
	}

	leafCount := 0
	for n := 0; n < tree.NumNodes; n++ {
		if len(children[n]) == 0 {
			leafCount++
		}
	}
	if leafCount != len(orderedTipLabels) {
		return nil, fmt.Errorf("%w: phylogeny has %d leaves but %d ordered tip labels", ErrLabelMismatch, leafCount, len(orderedTipLabels))
	}

	slotForNode := make(map[int]int, len(orderedTipLabels))
	for slot, label := range orderedTipLabels {
		node, ok := labelToNode[label]
		if !ok {
			return nil, fmt.Errorf("%w: ordered tip label %q not found in phylogeny", ErrLabelMismatch, label)
		}
		slotForNode[node] = slot
	}

	return &PhyloEvolver{
		tree:        tree,
		sampler:     sampler,
		children:    children,
		root:        root,
		slotForNode: slotForNode,
		orderedTips: orderedTipLabels,
	}, nil
}

// Run evolves one chromosome over the full phylogeny, starting from an
// empty VarChrom at the root, and returns the evolved VarChrom for every
// tip in orderedTipLabels order. should_abort may be nil (never aborts);
// when it fires mid-walk, the partially filled result and ErrInterrupted
// are both returned: every mutation applied so far remains fully applied.
func (pe *PhyloEvolver) Run(ref *refgenome.RefChrom, gammaRegions []rates.Region, src prng.Source, shouldAbort func() bool) ([]*varchrom.VarChrom, error) {
	return pe.RunSeeded(ref, nil, gammaRegions, src, shouldAbort)
}

// RunSeeded behaves like Run but starts the root's VarChrom from
// seedMutations (e.g. VCF-ingested variants, via varchrom.NewFromMutations)
// instead of an empty chromosome. A nil seedMutations is equivalent to Run.
func (pe *PhyloEvolver) RunSeeded(ref *refgenome.RefChrom, seedMutations []mutation.Mutation, gammaRegions []rates.Region, src prng.Source, shouldAbort func() bool) ([]*varchrom.VarChrom, error) {
	if shouldAbort == nil {
		shouldAbort = func() bool { return false }
	}
	regions, err := rates.NewRegionRates(gammaRegions, ref.Size())
	if err != nil {
		return nil, err
	}
	mr := pe.sampler.NewRates(regions)
	var vc *varchrom.VarChrom
	if seedMutations != nil {
		vc = varchrom.NewFromMutations(ref, seedMutations)
	} else {
		vc = varchrom.New(ref)
	}

	result := make([]*varchrom.VarChrom, len(pe.orderedTips))
	err = pe.dfs(pe.root, vc, mr, src, shouldAbort, result)
	return result, err
}

func (pe *PhyloEvolver) dfs(node int, vc *varchrom.VarChrom, mr *rates.MutationRates, src prng.Source, shouldAbort func() bool, result []*varchrom.VarChrom) error {
	for _, ch := range pe.children[node] {
		if shouldAbort() {
			return ErrInterrupted
		}
		childVC := vc.Clone()
		childMR := mr.Clone()
		branchLen := pe.tree.BranchLengths[ch.edgeIdx]
		if err := pe.evolveBranch(childVC, childMR, branchLen, src); err != nil {
			return err
		}
		if len(pe.children[ch.child]) == 0 {
			if slot, ok := pe.slotForNode[ch.child]; ok {
				result[slot] = childVC
			}
			continue
		}
		if err := pe.dfs(ch.child, childVC, childMR, src, shouldAbort, result); err != nil {
			return err
		}
	}
	return nil
}

// evolveBranch advances vc/mr along one branch: the branch "clock" is a
// sum of exponential waiting times drawn against the chromosome's current
// total mutation rate (an exponential race), stopping once the
// accumulated time exceeds branchLength.
func (pe *PhyloEvolver) evolveBranch(vc *varchrom.VarChrom, mr *rates.MutationRates, branchLength float64, src prng.Source) error {
	var elapsed float64
	for {
		totalRate, err := mr.TotalRate(vc, 0, vc.Size()-1, false)
		if err != nil {
			return err
		}
		if totalRate <= 0 {
			return nil
		}
		u := src.Uniform01()
		if u <= 0 {
			u = math.SmallestNonzeroFloat64
		}
		elapsed += -math.Log(u) / totalRate
		if elapsed > branchLength {
			return nil
		}
		if _, err := pe.sampler.Mutate(vc, mr, src); err != nil {
			return err
		}
	}
}

// RunRange evolves one chromosome restricted to a fixed [start, end]
// subrange ("recombination" mode), so independent subranges can be
// evolved in parallel. Deletions are clamped at end rather than crossing
// it.
func (pe *PhyloEvolver) RunRange(ref *refgenome.RefChrom, gammaRegions []rates.Region, start, end int, src prng.Source, shouldAbort func() bool) ([]*varchrom.VarChrom, error) {
	if shouldAbort == nil {
		shouldAbort = func() bool { return false }
	}
	regions, err := rates.NewRegionRates(gammaRegions, ref.Size())
	if err != nil {
		return nil, err
	}
	mr := pe.sampler.NewRates(regions)
	vc := varchrom.New(ref)

	result := make([]*varchrom.VarChrom, len(pe.orderedTips))
	err = pe.dfsRange(pe.root, vc, mr, start, end, src, shouldAbort, result)
	return result, err
}

func (pe *PhyloEvolver) dfsRange(node int, vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source, shouldAbort func() bool, result []*varchrom.VarChrom) error {
	for _, ch := range pe.children[node] {
		if shouldAbort() {
			return ErrInterrupted
		}
		childVC := vc.Clone()
		childMR := mr.Clone()
		branchLen := pe.tree.BranchLengths[ch.edgeIdx]
		childEnd, err := pe.evolveBranchRange(childVC, childMR, branchLen, start, end, src)
		if err != nil {
			return err
		}
		if len(pe.children[ch.child]) == 0 {
			if slot, ok := pe.slotForNode[ch.child]; ok {
				result[slot] = childVC
			}
			continue
		}
		if err := pe.dfsRange(ch.child, childVC, childMR, start, childEnd, src, shouldAbort, result); err != nil {
			return err
		}
	}
	return nil
}

func (pe *PhyloEvolver) evolveBranchRange(vc *varchrom.VarChrom, mr *rates.MutationRates, branchLength float64, start, end int, src prng.Source) (int, error) {
	curEnd := end
	var elapsed float64
	for {
		if curEnd < start {
			return curEnd, nil
		}
		totalRate, err := mr.TotalRate(vc, start, curEnd, true)
		if err != nil {
			return curEnd, err
		}
		if totalRate <= 0 {
			return curEnd, nil
		}
		u := src.Uniform01()
		if u <= 0 {
			u = math.SmallestNonzeroFloat64
		}
		elapsed += -math.Log(u) / totalRate
		if elapsed > branchLength {
			return curEnd, nil
		}
		_, newEnd, err := pe.sampler.MutateRange(vc, mr, start, curEnd, src)
		if err != nil {
			return curEnd, err
		}
		curEnd = newEnd
	}
}
