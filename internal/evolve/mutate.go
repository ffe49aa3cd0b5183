package evolve

import (
	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

// Mutate draws and applies one mutation over the whole chromosome,
// returning the resulting change in total mutation rate.
func (ms *MutationSampler) Mutate(vc *varchrom.VarChrom, mr *rates.MutationRates, src prng.Source) (float64, error) {
	rateChange, _, err := ms.mutateRange(vc, mr, 0, vc.Size()-1, src)
	return rateChange, err
}

// MutateRange draws and applies one mutation restricted to [start, end],
// returning the rate change and the updated end (shifted by any indel's
// length, per the "recombination" subrange mode). If the returned end is
// less than start, the subrange is exhausted and the caller must stop.
func (ms *MutationSampler) MutateRange(vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source) (float64, int, error) {
	return ms.mutateRange(vc, mr, start, end, src)
}

func (ms *MutationSampler) mutateRange(vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source) (float64, int, error) {
	if end < start {
		return 0, end, nil
	}

	p, err := ms.reservoir.Sample(vc, mr, start, end, src)
	if err != nil {
		return 0, end, err
	}
	c, err := vc.CharAt(p)
	if err != nil {
		return 0, end, err
	}
	m, err := ms.typeSampler.Sample(c, src)
	if err != nil {
		return 0, end, err
	}

	switch {
	case m.Length == 0:
		rateChange, err := mr.SubDelta(vc, p, m.TargetBase)
		if err != nil {
			return 0, end, err
		}
		if err := vc.ApplySubstitution(m.TargetBase, p); err != nil {
			return 0, end, err
		}
		return rateChange, end, nil

	case m.Length > 0:
		bases := make([]byte, m.Length)
		ms.insSampler.Sample(bases, src)
		insBases := string(bases)
		rateChange := mr.InsDelta(p, insBases)
		if err := vc.ApplyInsertion(insBases, p); err != nil {
			return 0, end, err
		}
		mr.Regions.Update(p, m.Length)
		return rateChange, end + m.Length, nil

	default:
		size := -m.Length
		if maxSize := end - p + 1; size > maxSize {
			size = maxSize
		}
		if size <= 0 {
			return 0, end, nil
		}
		rateChange, err := mr.DelDelta(vc, p, size)
		if err != nil {
			return 0, end, err
		}
		if err := vc.ApplyDeletion(size, p); err != nil {
			return 0, end, err
		}
		mr.Regions.Update(p, -size)
		return rateChange, end - size, nil
	}
}
