// Package fastaio ingests reference chromosomes from FASTA (gzip-aware,
// line-wrapped, multi-record) files and an optional FAI random-access
// index, and writes evolved chromosomes back out to FASTA.
//
// Uses a gzip-aware buffered-scanner idiom, generalized from
// per-transcript CDS sequences to whole named chromosomes.
package fastaio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dnaevolve/dnaevolve/internal/refgenome"
)

// normalizeBase uppercases b and maps anything outside {A,C,G,T,N} to N,
// so a loaded chromosome's bases field contains only [ACGTN] even when
// the source FASTA carries soft-masked (lowercase) or IUPAC-ambiguous
// characters.
func normalizeBase(b byte) byte {
	switch b {
	case 'a':
		return 'A'
	case 'c':
		return 'C'
	case 'g':
		return 'G'
	case 't':
		return 'T'
	case 'n':
		return 'N'
	case 'A', 'C', 'G', 'T', 'N':
		return b
	default:
		return 'N'
	}
}

func normalizeBases(s string) string {
	b := []byte(s)
	for i, c := range b {
		b[i] = normalizeBase(c)
	}
	return string(b)
}

// Load reads a whole FASTA file (transparently gzip-decompressed if path
// ends in .gz) into a RefGenome, preserving record order.
func Load(path string) (*refgenome.RefGenome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fastaio: open %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("fastaio: open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return parse(reader)
}

func parse(reader io.Reader) (*refgenome.RefGenome, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024) // chromosomes can have very long lines if unwrapped

	var chroms []*refgenome.RefChrom
	var name string
	var seq strings.Builder

	flush := func() {
		if name != "" {
			chroms = append(chroms, &refgenome.RefChrom{Name: name, Bases: normalizeBases(seq.String())})
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			name = headerName(line)
			seq.Reset()
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fastaio: scan: %w", err)
	}
	return refgenome.New(chroms), nil
}

// headerName extracts the chromosome name from a ">name description..."
// header line.
func headerName(line string) string {
	header := strings.TrimPrefix(line, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		return header[:idx]
	}
	return header
}
