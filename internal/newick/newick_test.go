package newick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaterpillarTree(t *testing.T) {
	tree, err := Parse("((t0:0.1,t1:0.1):0.2,(t2:0.1,t3:0.1):0.2);")
	require.NoError(t, err)

	assert.Equal(t, 7, tree.NumNodes)
	require.Len(t, tree.Edges, 6)
	require.Len(t, tree.BranchLengths, 6)

	assert.Equal(t, map[int]string{2: "t0", 3: "t1", 5: "t2", 6: "t3"}, tree.LeafLabels)

	// Every leaf label's node id must appear exactly once as a Child.
	childSet := map[int]bool{}
	for _, e := range tree.Edges {
		childSet[e.Child] = true
	}
	for tip := range tree.LeafLabels {
		assert.True(t, childSet[tip], "tip node %d missing from edge list", tip)
	}

	// Branch lengths line up positionally with edges: the (t0,t1) cherry's
	// two pendant edges both have length 0.1.
	for i, e := range tree.Edges {
		if e.Child == 2 || e.Child == 3 {
			assert.InDelta(t, 0.1, tree.BranchLengths[i], 1e-12)
		}
	}
}

func TestParseSingleLeaf(t *testing.T) {
	tree, err := Parse("t0;")
	require.NoError(t, err)
	assert.Equal(t, 1, tree.NumNodes)
	assert.Empty(t, tree.Edges)
	assert.Equal(t, map[int]string{0: "t0"}, tree.LeafLabels)
}

func TestParseIgnoresInternalLabelsAndRootBranchLength(t *testing.T) {
	tree, err := Parse("((A:1,B:1)anc:2,C:3):0;")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{2: "A", 3: "B", 4: "C"}, tree.LeafLabels)
	require.Len(t, tree.Edges, 4)
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"(A:1,B:1",       // missing closing paren
		"(A:1,B:1))",     // trailing garbage
		"(A:1,B:x);",     // invalid branch length
		"(,B:1);",        // missing leaf label
	}
	for _, s := range cases {
		_, err := Parse(s)
		assert.Error(t, err, "expected error for input %q", s)
	}
}

func TestParseWhitespaceTolerant(t *testing.T) {
	tree, err := Parse("  ( A:1 , B:2 ) ; ")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "A", 2: "B"}, tree.LeafLabels)
}
