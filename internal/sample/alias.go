package sample

import "github.com/dnaevolve/dnaevolve/internal/prng"

// aliasTable is Walker's alias method: O(1) sampling from a discrete
// distribution after an O(n) setup, built via the Vose variant of the
// classic sweep (small/large worklists).
type aliasTable struct {
	prob  []float64
	alias []int
}

// buildAliasTable constructs an alias table from a probability vector
// that must already sum to 1 (see normalize).
func buildAliasTable(p []float64) aliasTable {
	n := len(p)
	scaled := make([]float64, n)
	for i, v := range p {
		scaled[i] = v * float64(n)
	}

	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, v := range scaled {
		if v < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	prob := make([]float64, n)
	alias := make([]int, n)
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		prob[s] = scaled[s]
		alias[s] = l
		scaled[l] = scaled[l] + scaled[s] - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	for len(large) > 0 {
		l := large[len(large)-1]
		large = large[:len(large)-1]
		prob[l] = 1
	}
	for len(small) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		prob[s] = 1
	}
	return aliasTable{prob: prob, alias: alias}
}

// draw samples one category in O(1).
func (t aliasTable) draw(src prng.Source) int {
	n := len(t.prob)
	i := int(src.Uniform01() * float64(n))
	if i >= n {
		i = n - 1
	}
	if src.Uniform01() < t.prob[i] {
		return i
	}
	return t.alias[i]
}

// normalize rescales v to sum to 1. Returns an all-zero vector if v sums
// to <= 0; buildAliasTable then gives every category prob 1, so draws
// from such a row are uniform over the categories.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	out := make([]float64, len(v))
	if sum <= 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / sum
	}
	return out
}
