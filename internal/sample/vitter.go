// Package sample implements the weighted reservoir position sampler,
// Vitter's Algorithm D for sampling without replacement, the alias-table
// mutation-type sampler, and the insertion-string sampler.
//
// Grounded on original_source/src/vitter_algorithms.h (Algorithm D's
// dispatch and its D1/D2 sub-procedures).
package sample

import (
	"math"

	"github.com/dnaevolve/dnaevolve/internal/prng"
)

// DefaultN2N and DefaultAlpha are Vitter's recommended thresholds: n2N
// selects between methods D1 and D2; alpha tunes D1's rejection-sampling
// acceptance region.
const (
	DefaultN2N  = 50.0
	DefaultAlpha = 0.8
)

// VitterD draws n strictly increasing, distinct indices from [0, N)
// without storing the population, per Vitter (1984). Dispatches between
// the accelerated proposal method D1 (sparse regime, n^2/N <= n2N) and the
// direct recurrence method D2 (dense regime, n^2/N > n2N).
func VitterD(n, N int, src prng.Source, n2N, alpha float64) []int {
	if n <= 0 || N <= 0 {
		return nil
	}
	if n > N {
		n = N
	}
	samples := make([]int, n)
	ind := 0
	current := -1
	remN, remn := N, n

	if float64(remn*remn)/float64(remN) > n2N {
		for remn > 1 {
			s := algorithmD2S(remn, remN, src, alpha)
			current += s + 1
			samples[ind] = current
			ind++
			remn--
			remN -= s + 1
		}
		if remn == 1 {
			s := int(src.Uniform01() * float64(remN))
			current += s + 1
			samples[ind] = current
			ind++
		}
	} else {
		for remn > 0 {
			s := algorithmD1S(remn, remN, src, alpha)
			current += s + 1
			samples[ind] = current
			ind++
			remn--
			remN -= s + 1
		}
	}
	return samples
}

// logSkipPMF returns log P(S=s) for the exact skip distribution when
// selecting n records without replacement from a population of N:
// P(S=s) = C(N-s-1, n-1) / C(N, n).
func logSkipPMF(s, n, N int) float64 {
	lg := func(x float64) float64 {
		v, _ := math.Lgamma(x)
		return v
	}
	return math.Log(float64(n)) +
		lg(float64(N-s)) - lg(float64(N-s-n+1)) +
		lg(float64(N-n+1)) - lg(float64(N+1))
}

// algorithmD1S generates the next skip for the sparse regime (large
// expected skip): propose a candidate from the continuous relaxation of
// the skip distribution (whose CDF is exactly 1-(1-x/N)^n), then
// accept/reject against the exact discrete mass, scaled by alpha.
func algorithmD1S(n, N int, src prng.Source, alpha float64) int {
	nf, Nf := float64(n), float64(N)
	for {
		u := src.Uniform01()
		x := Nf * (1 - math.Pow(u, 1/nf))
		s := int(x)
		if s < 0 {
			s = 0
		}
		if s > N-n {
			continue
		}
		logProposal := math.Log(nf/Nf) + (nf-1)*math.Log1p(-x/Nf)
		ratio := math.Exp(logSkipPMF(s, n, N) - logProposal)
		if ratio > 1 {
			ratio = 1
		}
		if src.Uniform01() < alpha*ratio+(1-alpha) {
			return s
		}
	}
}

// algorithmD2S generates the next skip for the dense regime (small
// expected skip) by walking the exact recurrence
// p(s) = p(s-1) * (N-s-n+1)/(N-s) forward from s=0, which converges
// quickly when the expected skip N/(n+1) is small.
func algorithmD2S(n, N int, src prng.Source, alpha float64) int {
	_ = alpha // unused in the direct method; kept for signature parity with D1
	u := src.Uniform01()
	p := float64(n) / float64(N)
	cum := p
	s := 0
	for cum < u && s < N-n {
		s++
		p *= float64(N-s-n+1) / float64(N-s)
		cum += p
	}
	return s
}
