// Package newick parses Newick-format phylogeny strings into the edge
// list / branch lengths / tip labels that evolve.PhyloEvolver consumes.
// This parser is itself out of the sampling/evolution core's scope; it is
// a small ingestion collaborator.
//
// Hand-rolled scanner style: no parser-combinator library, just a
// cursor over the input string and small scanning helpers.
package newick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dnaevolve/dnaevolve/internal/evolve"
)

type parser struct {
	s             string
	pos           int
	nodes         int
	edges         []evolve.Edge
	branchLengths []float64
	leafLabels    map[int]string
}

// Parse parses one Newick tree string (a single top-level clade,
// optionally semicolon-terminated) into a Phylogeny.
func Parse(s string) (*evolve.Phylogeny, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")

	p := &parser{s: s, leafLabels: map[int]string{}}
	if _, err := p.parseClade(); err != nil {
		return nil, err
	}
	if _, err := p.parseOptionalBranchLength(); err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("newick: unexpected trailing input at byte %d: %q", p.pos, p.s[p.pos:])
	}

	return &evolve.Phylogeny{
		NumNodes:      p.nodes,
		Edges:         p.edges,
		BranchLengths: p.branchLengths,
		LeafLabels:    p.leafLabels,
	}, nil
}

func (p *parser) newNode() int {
	id := p.nodes
	p.nodes++
	return id
}

// parseClade parses one subtree at the current cursor position: either a
// parenthesized list of children followed by an optional internal label,
// or a bare leaf label. It does not consume the branch length that
// follows the clade; the caller (the parent clade, or Parse at the top
// level) does that.
func (p *parser) parseClade() (int, error) {
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		node := p.newNode()
		for {
			child, err := p.parseClade()
			if err != nil {
				return 0, err
			}
			branchLen, err := p.parseOptionalBranchLength()
			if err != nil {
				return 0, err
			}
			p.edges = append(p.edges, evolve.Edge{Parent: node, Child: child})
			p.branchLengths = append(p.branchLengths, branchLen)

			if p.pos >= len(p.s) {
				return 0, fmt.Errorf("newick: unexpected end of input inside clade starting at node %d", node)
			}
			switch p.s[p.pos] {
			case ',':
				p.pos++
				continue
			case ')':
				p.pos++
			default:
				return 0, fmt.Errorf("newick: expected ',' or ')' at byte %d, found %q", p.pos, p.s[p.pos])
			}
			break
		}
		p.parseLabel() // internal node label, discarded: only leaf labels are tip labels
		return node, nil
	}

	node := p.newNode()
	label := p.parseLabel()
	if label == "" {
		return 0, fmt.Errorf("newick: expected a leaf label at byte %d", p.pos)
	}
	p.leafLabels[node] = label
	return node, nil
}

// parseLabel consumes characters up to the next Newick structural
// character (or end of input) and returns them trimmed of whitespace.
func (p *parser) parseLabel() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '(', ')', ',', ':', ';':
			return strings.TrimSpace(p.s[start:p.pos])
		}
		p.pos++
	}
	return strings.TrimSpace(p.s[start:p.pos])
}

// parseOptionalBranchLength consumes a leading ":<float>" if present.
func (p *parser) parseOptionalBranchLength() (float64, error) {
	if p.pos >= len(p.s) || p.s[p.pos] != ':' {
		return 0, nil
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ',', ')', ';':
			goto parseNum
		}
		p.pos++
	}
parseNum:
	numStr := strings.TrimSpace(p.s[start:p.pos])
	v, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("newick: invalid branch length %q at byte %d: %w", numStr, start, err)
	}
	return v, nil
}
