package sample

import (
	"math"

	"github.com/dnaevolve/dnaevolve/internal/prng"
	"github.com/dnaevolve/dnaevolve/internal/rates"
	"github.com/dnaevolve/dnaevolve/internal/varchrom"
)

// aResKey computes Efraimidis-Spirakis's A-Res priority key u^(1/w) for a
// weight w, guarding against log(0)/pow(0,...) when the PRNG draws exactly
// zero (vanishingly rare for a 64-bit generator, but not impossible).
func aResKey(u, w float64) float64 {
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return math.Pow(u, 1/w)
}

// SamplePosition runs weighted reservoir sampling (algorithm A-Res) over
// every variant position in [start, end], weighted by the per-site
// mutation rate, and returns the chosen position. O(N) in the window
// width; ErrNoWeight if every position in the window has zero rate.
func SamplePosition(vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source) (int, error) {
	best, bestKey := -1, math.Inf(-1)
	for p := start; p <= end; p++ {
		w, err := mr.RateAt(vc, p)
		if err != nil {
			return 0, err
		}
		if w <= 0 {
			continue
		}
		key := aResKey(src.Uniform01(), w)
		if key > bestKey {
			bestKey, best = key, p
		}
	}
	if best == -1 {
		return 0, ErrNoWeight
	}
	return best, nil
}

// PositionSampler draws a mutation position over a window, weighted by
// mutation rate. Implemented by PlainReservoirSampler and
// ChunkReservoirSampler.
type PositionSampler interface {
	Sample(vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source) (int, error)
}

// PlainReservoirSampler is the unchunked A-Res reservoir, an O(window
// width) PositionSampler.
type PlainReservoirSampler struct{}

// Sample runs weighted reservoir sampling over the full [start, end]
// window.
func (PlainReservoirSampler) Sample(vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source) (int, error) {
	return SamplePosition(vc, mr, start, end, src)
}

// ChunkReservoirSampler amortizes SamplePosition's O(N) cost over large
// chromosomes: it first draws a fixed-size chunk of candidate positions
// without replacement via Vitter's Algorithm D, then runs A-Res over just
// that chunk. The chunk size is capped to the window width so it never
// requests more distinct indices than exist.
type ChunkReservoirSampler struct {
	chunkSize int
	n2N       float64
	alpha     float64
}

// NewChunkReservoirSampler builds a chunked sampler with the given target
// chunk size, using Vitter's recommended thresholds.
func NewChunkReservoirSampler(chunkSize int) *ChunkReservoirSampler {
	return &ChunkReservoirSampler{chunkSize: chunkSize, n2N: DefaultN2N, alpha: DefaultAlpha}
}

// Sample draws min(chunkSize, windowWidth) candidate positions from
// [start, end] via Vitter's Algorithm D, then returns the A-Res winner
// among them weighted by mutation rate.
func (c *ChunkReservoirSampler) Sample(vc *varchrom.VarChrom, mr *rates.MutationRates, start, end int, src prng.Source) (int, error) {
	width := end - start + 1
	if width <= 0 {
		return 0, ErrNoWeight
	}
	chunk := c.chunkSize
	if chunk > width {
		chunk = width
	}
	rel := VitterD(chunk, width, src, c.n2N, c.alpha)

	best, bestKey := -1, math.Inf(-1)
	for _, r := range rel {
		p := start + r
		w, err := mr.RateAt(vc, p)
		if err != nil {
			return 0, err
		}
		if w <= 0 {
			continue
		}
		key := aResKey(src.Uniform01(), w)
		if key > bestKey {
			bestKey, best = key, p
		}
	}
	if best == -1 {
		return 0, ErrNoWeight
	}
	return best, nil
}
