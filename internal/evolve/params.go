// Package evolve composes the position/type/string samplers into single
// mutation draws and drives a phylogeny's branches to produce evolved
// variant genomes.
//
// Grounded on original_source/src/mevo.h and mutator_subs.h (the
// substitution-rate/indel-rate composition and the branch-length
// stopping rule), with a worker-pool + OrderedCollect pattern driving
// the chromosome-parallel driver.
package evolve

import (
	"fmt"
	"math"

	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/sample"
)

// nucBases is the canonical nucleotide order (T,C,A,G) used across the
// engine's rate tables.
const nucBases = "TCAG"

// transitionPair reports whether bases i and j (TCAG indices) are a TN93
// transition pair: T<->C (pyrimidines) or A<->G (purines).
func transitionPair(i, j int) bool {
	pyrimidines := i <= 1 && j <= 1 // T=0, C=1
	purines := i >= 2 && j >= 2     // A=2, G=3
	return pyrimidines || purines
}

// Params is the model parameter surface for a MutationSampler template,
// independent of any one chromosome's length or gamma regions: the
// per-chromosome gamma region list is supplied separately, at evolution
// time, via rates.NewRegionRates.
type Params struct {
	PiTCAG [4]float64 // stationary nucleotide frequencies, order T,C,A,G; must sum to 1

	// TN93-style substitution rate scalars.
	Alpha1 float64 // pyrimidine transition rate class (T<->C)
	Alpha2 float64 // purine transition rate class (A<->G)
	Beta   float64 // transversion rate class
	Xi     float64 // overall substitution rate scalar

	Psi               float64   // overall insertion/deletion rate scaling
	InsertionLengths  []int     // length classes, e.g. {1,2,3,...}
	DeletionLengths   []int
	RelInsertionRates []float64 // relative rate per length class, same order as InsertionLengths
	RelDeletionRates  []float64 // relative rate per length class, same order as DeletionLengths

	ChunkSize int // reservoir chunk size; <= 0 selects the plain (unchunked) reservoir
}

// Validate checks Params for the invariants construction must enforce
// eagerly: no negative or non-finite rates, and pi_tcag sums to 1.
func (p Params) Validate() error {
	for i, v := range p.PiTCAG {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: pi_tcag[%d]=%v is negative or non-finite", ErrInvalidModel, i, v)
		}
	}
	var piSum float64
	for _, v := range p.PiTCAG {
		piSum += v
	}
	if math.Abs(piSum-1) > 1e-6 {
		return fmt.Errorf("%w: pi_tcag sums to %v, want 1", ErrInvalidModel, piSum)
	}
	for name, v := range map[string]float64{"alpha1": p.Alpha1, "alpha2": p.Alpha2, "beta": p.Beta, "xi": p.Xi, "psi": p.Psi} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v is negative or non-finite", ErrInvalidModel, name, v)
		}
	}
	if len(p.InsertionLengths) != len(p.RelInsertionRates) {
		return fmt.Errorf("%w: %d insertion lengths but %d relative rates", ErrInvalidModel, len(p.InsertionLengths), len(p.RelInsertionRates))
	}
	if len(p.DeletionLengths) != len(p.RelDeletionRates) {
		return fmt.Errorf("%w: %d deletion lengths but %d relative rates", ErrInvalidModel, len(p.DeletionLengths), len(p.RelDeletionRates))
	}
	for _, v := range append(append([]float64{}, p.RelInsertionRates...), p.RelDeletionRates...) {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: relative indel rate %v is negative or non-finite", ErrInvalidModel, v)
		}
	}
	return nil
}

// buildRateMatrix derives the 4x(3+|ins|+|del|) TypeSampler rate matrix
// and the raw per-base total-rate vector q[T,C,A,G] from Params, following
// a TN93-style substitution model (target-base-frequency-weighted
// transition/transversion classes) plus a flat, base-independent
// insertion/deletion rate block scaled by psi.
func buildRateMatrix(p Params) (matrix [4][]float64, q [4]float64) {
	nCols := 3 + len(p.InsertionLengths) + len(p.DeletionLengths)
	for i := 0; i < 4; i++ {
		row := make([]float64, 0, nCols)
		var rowTotal float64
		for j := 0; j < 4; j++ {
			if j == i {
				continue
			}
			class := p.Beta
			if transitionPair(i, j) {
				if j <= 1 {
					class = p.Alpha1
				} else {
					class = p.Alpha2
				}
			}
			rate := class * p.PiTCAG[j] * p.Xi
			row = append(row, rate)
			rowTotal += rate
		}
		for _, rel := range p.RelInsertionRates {
			rate := p.Psi * rel
			row = append(row, rate)
			rowTotal += rate
		}
		for _, rel := range p.RelDeletionRates {
			rate := p.Psi * rel
			row = append(row, rate)
			rowTotal += rate
		}
		matrix[i] = row
		q[i] = rowTotal
	}
	return matrix, q
}

// MutationSampler composes the reservoir position sampler, the
// alias-table type sampler, and the insertion-string sampler into
// single mutation draws. It holds only chromosome-independent
// model parameters; callers build a rates.MutationRates per chromosome
// via NewRates and pass it to Mutate/MutateRange explicitly, so the same
// template is safely shared read-only across parallel chromosome workers.
type MutationSampler struct {
	q           [4]float64
	typeSampler *sample.TypeSampler
	insSampler  *sample.InsertionStringSampler
	reservoir   sample.PositionSampler
}

// NewMutationSampler validates params and builds a MutationSampler
// template.
func NewMutationSampler(p Params) (*MutationSampler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	matrix, q := buildRateMatrix(p)
	typeSampler, err := sample.NewTypeSampler(matrix, p.InsertionLengths, p.DeletionLengths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	var reservoir sample.PositionSampler
	if p.ChunkSize > 0 {
		reservoir = sample.NewChunkReservoirSampler(p.ChunkSize)
	} else {
		reservoir = sample.PlainReservoirSampler{}
	}
	return &MutationSampler{
		q:           q,
		typeSampler: typeSampler,
		insSampler:  sample.NewInsertionStringSampler(p.PiTCAG),
		reservoir:   reservoir,
	}, nil
}

// NewRates builds a rates.MutationRates for one chromosome's gamma
// regions, using this template's per-base rate vector.
func (ms *MutationSampler) NewRates(regions *rates.RegionRates) *rates.MutationRates {
	return rates.NewMutationRates(ms.q, regions)
}
