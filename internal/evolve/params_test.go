package evolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Params {
	return Params{
		PiTCAG:            [4]float64{0.2, 0.3, 0.25, 0.25},
		Alpha1:            2.0,
		Alpha2:            1.5,
		Beta:              0.5,
		Xi:                1.0,
		Psi:               0.1,
		InsertionLengths:  []int{1, 2},
		DeletionLengths:   []int{1, 2, 3},
		RelInsertionRates: []float64{0.7, 0.3},
		RelDeletionRates:  []float64{0.5, 0.3, 0.2},
		ChunkSize:         0,
	}
}

func TestParams_ValidateAcceptsWellFormedParams(t *testing.T) {
	assert.NoError(t, validParams().Validate())
}

func TestParams_ValidateRejectsBadPiSum(t *testing.T) {
	p := validParams()
	p.PiTCAG = [4]float64{0.5, 0.5, 0.5, 0.5}
	assert.ErrorIs(t, p.Validate(), ErrInvalidModel)
}

func TestParams_ValidateRejectsNegativeRate(t *testing.T) {
	p := validParams()
	p.Beta = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidModel)
}

func TestParams_ValidateRejectsMismatchedLengths(t *testing.T) {
	p := validParams()
	p.RelInsertionRates = []float64{1}
	assert.ErrorIs(t, p.Validate(), ErrInvalidModel)
}

func TestNewMutationSampler_BuildsFromValidParams(t *testing.T) {
	ms, err := NewMutationSampler(validParams())
	require.NoError(t, err)
	assert.NotNil(t, ms)
}

func TestNewMutationSampler_RejectsInvalidParams(t *testing.T) {
	p := validParams()
	p.Xi = -1
	_, err := NewMutationSampler(p)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestBuildRateMatrix_NoSelfTransitionMass(t *testing.T) {
	p := validParams()
	matrix, q := buildRateMatrix(p)
	for i := range matrix {
		// 3 substitution columns + 2 insertion + 3 deletion = 8.
		assert.Len(t, matrix[i], 8)
		var sum float64
		for _, v := range matrix[i] {
			sum += v
		}
		assert.InDelta(t, q[i], sum, 1e-9)
	}
}
