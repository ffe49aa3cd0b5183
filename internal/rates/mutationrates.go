package rates

import "github.com/dnaevolve/dnaevolve/internal/varchrom"

// nucBases is the canonical nucleotide order used to build the 256-entry
// rate lookup table (mirrors mevo::bases in the original source).
const nucBases = "TCAG"

// MutationRates combines a per-base rate vector q[T,C,A,G] (all other
// bytes zero) with gamma regions. It does not hold a back-reference to
// a VarChrom; the variant state is passed as a
// parameter at query time to avoid a cyclic ownership between the variant
// chromosome and its rate model.
type MutationRates struct {
	q       [256]float64
	Regions *RegionRates
}

// NewMutationRates builds a MutationRates from stationary per-base rates
// (ordered T,C,A,G) and a gamma-region model.
func NewMutationRates(qTCAG [4]float64, regions *RegionRates) *MutationRates {
	mr := &MutationRates{Regions: regions}
	for i := 0; i < 4; i++ {
		mr.q[nucBases[i]] = qTCAG[i]
	}
	return mr
}

// Clone returns a deep copy, suitable for forking at a phylogeny node.
func (mr *MutationRates) Clone() *MutationRates {
	return &MutationRates{q: mr.q, Regions: mr.Regions.Clone()}
}

// RateAt returns q[base_at(p)] * gamma_at(p).
func (mr *MutationRates) RateAt(vc *varchrom.VarChrom, p int) (float64, error) {
	c, err := vc.CharAt(p)
	if err != nil {
		return 0, err
	}
	return mr.q[c] * mr.Regions.GammaAt(p), nil
}

// SubDelta returns the change in total rate from substituting the base at
// p with newBase.
func (mr *MutationRates) SubDelta(vc *varchrom.VarChrom, p int, newBase byte) (float64, error) {
	c, err := vc.CharAt(p)
	if err != nil {
		return 0, err
	}
	gamma := mr.Regions.GammaAt(p)
	return gamma * (mr.q[newBase] - mr.q[c]), nil
}

// InsDelta returns the change in total rate from inserting bases
// immediately before position p.
func (mr *MutationRates) InsDelta(p int, bases string) float64 {
	gamma := mr.Regions.GammaAt(p)
	var sum float64
	for i := 0; i < len(bases); i++ {
		sum += mr.q[bases[i]]
	}
	return gamma * sum
}

// DelDelta returns the change in total rate (always <= 0) from deleting
// size bases starting at position p.
func (mr *MutationRates) DelDelta(vc *varchrom.VarChrom, p, size int) (float64, error) {
	var sum float64
	for i := p; i < p+size; i++ {
		r, err := mr.RateAt(vc, i)
		if err != nil {
			return 0, err
		}
		sum += r
	}
	return -sum, nil
}

// TotalRate sums the rate over vc. If ranged is false, the whole
// chromosome is summed; otherwise only [start, end].
func (mr *MutationRates) TotalRate(vc *varchrom.VarChrom, start, end int, ranged bool) (float64, error) {
	if !ranged {
		start, end = 0, vc.Size()-1
	}
	if end < start {
		return 0, nil
	}
	n := end - start + 1
	buf := make([]byte, n)
	hint := 0
	if err := vc.Substring(buf, start, n, &hint); err != nil {
		return 0, err
	}
	weights := mr.Regions.RangeSumWeights(start, end)
	var total float64
	for i, c := range buf {
		total += mr.q[c] * weights[i]
	}
	return total, nil
}
