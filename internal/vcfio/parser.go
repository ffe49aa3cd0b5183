package vcfio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dnaevolve/dnaevolve/internal/refgenome"
)

// Parser reads variant lines from a VCF file, transparently handling
// gzip compression, and resolves each line's chromosome name against a
// RefGenome to produce Records. Multi-allelic lines emit one Record per
// ALT allele (this collaborator does not resolve per-sample genotype
// phasing; each ALT is treated as a haploid haplotype candidate).
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	genome     *refgenome.RefGenome
}

// NewParser opens path (plain or gzip-compressed VCF) and reads its
// header, resolving chromosome names against genome.
func NewParser(path string, genome *refgenome.RefGenome) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vcfio: open %s: %w", path, err)
	}

	p := &Parser{file: file, genome: genome}

	magic := make([]byte, 2)
	if _, err := file.Read(magic); err != nil {
		file.Close()
		return nil, fmt.Errorf("vcfio: read magic bytes: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("vcfio: seek: %w", err)
	}

	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("vcfio: open gzip reader: %w", err)
		}
		p.gzipReader = gz
		p.reader = bufio.NewReader(gz)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.skipHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Parser) skipHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("read header: %v", err)}
		}
		p.lineNumber++
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			return nil
		}
		return &ParseError{Line: p.lineNumber, Message: "expected #CHROM header line"}
	}
	return &ParseError{Line: p.lineNumber, Message: "no #CHROM header line found"}
}

// Next returns the Records derived from the next data line, or nil, nil
// at end of file.
func (p *Parser) Next() ([]Record, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("read line: %v", err)}
	}
	p.lineNumber++
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return p.Next()
	}
	return p.parseLine(line)
}

func (p *Parser) parseLine(line string) ([]Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("expected at least 5 columns, found %d", len(fields))}
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid position: %s", fields[1])}
	}
	chromName := normalizeChrom(fields[0])
	chromIdx, err := p.genome.NameIndex(chromName)
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
	}

	ref := fields[3]
	alts := strings.Split(fields[4], ",")
	records := make([]Record, 0, len(alts))
	for _, alt := range alts {
		if alt == "." {
			continue
		}
		records = append(records, Record{
			ChromIndex: chromIdx,
			RefPos:     pos - 1, // VCF POS is 1-based; the engine's ref_pos is 0-based
			RefBases:   ref,
			Haplotype:  alt,
		})
	}
	return records, nil
}

// normalizeChrom strips a leading "chr" prefix, matching common reference
// genome naming.
func normalizeChrom(name string) string {
	if len(name) > 3 && strings.HasPrefix(name, "chr") {
		return name[3:]
	}
	return name
}

// Close closes the parser and its underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError reports a VCF parsing failure with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcfio: parse error at line %d: %s", e.Line, e.Message)
}
