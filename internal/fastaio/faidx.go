package fastaio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dnaevolve/dnaevolve/internal/refgenome"
)

// FAIRecord is one samtools-faidx index line: name, sequence length, byte
// offset of the first base, bases per line, and bytes per line (bases
// plus line terminator).
type FAIRecord struct {
	Name      string
	Length    int64
	Offset    int64
	LineBases int64
	LineWidth int64
}

// chunkSize bounds a single ReadAt call so a large random-access read is
// serviced in bounded-memory chunks rather than one huge allocation.
const chunkSize = 4 * 1024 * 1024

// RandomAccessReader reads arbitrary [start,end) chromosome slices out of
// a FAI-indexed FASTA file without loading the whole file into memory,
// using the index's newline-aware offset arithmetic.
type RandomAccessReader struct {
	f     *os.File
	index map[string]FAIRecord
	order []string
}

// OpenIndexed opens fastaPath and its sibling fastaPath+".fai" index.
func OpenIndexed(fastaPath string) (*RandomAccessReader, error) {
	f, err := os.Open(fastaPath)
	if err != nil {
		return nil, fmt.Errorf("fastaio: open %s: %w", fastaPath, err)
	}
	faiFile, err := os.Open(fastaPath + ".fai")
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fastaio: open FAI index: %w", err)
	}
	defer faiFile.Close()

	index, order, err := parseFAI(faiFile)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &RandomAccessReader{f: f, index: index, order: order}, nil
}

// Close releases the underlying file handle.
func (r *RandomAccessReader) Close() error {
	return r.f.Close()
}

func parseFAI(r *os.File) (map[string]FAIRecord, []string, error) {
	index := make(map[string]FAIRecord)
	var order []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 5 {
			return nil, nil, fmt.Errorf("fastaio: malformed FAI line %q", scanner.Text())
		}
		length, err1 := strconv.ParseInt(fields[1], 10, 64)
		offset, err2 := strconv.ParseInt(fields[2], 10, 64)
		lineBases, err3 := strconv.ParseInt(fields[3], 10, 64)
		lineWidth, err4 := strconv.ParseInt(fields[4], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, nil, fmt.Errorf("fastaio: malformed FAI numeric fields in %q", scanner.Text())
		}
		index[fields[0]] = FAIRecord{Name: fields[0], Length: length, Offset: offset, LineBases: lineBases, LineWidth: lineWidth}
		order = append(order, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("fastaio: scan FAI: %w", err)
	}
	return index, order, nil
}

// ChromNames returns indexed chromosome names in FAI file order.
func (r *RandomAccessReader) ChromNames() []string {
	return r.order
}

// ChromLength returns the indexed length of a chromosome.
func (r *RandomAccessReader) ChromLength(name string) (int64, bool) {
	rec, ok := r.index[name]
	return rec.Length, ok
}

// byteOffset computes the file offset of 0-based reference position pos
// within rec, accounting for the line-wrap newline bytes.
func byteOffset(rec FAIRecord, pos int64) int64 {
	lineIdx := pos / rec.LineBases
	col := pos % rec.LineBases
	return rec.Offset + lineIdx*rec.LineWidth + col
}

// ReadRange returns the normalized bases in [start, end) (0-based,
// half-open) for the named chromosome, reading the underlying file in
// chunkSize-bounded chunks. Per-slice raw byte count is length +
// length/line_bases + 1 to cover embedded newlines.
func (r *RandomAccessReader) ReadRange(name string, start, end int64) (string, error) {
	rec, ok := r.index[name]
	if !ok {
		return "", fmt.Errorf("fastaio: no FAI entry for chromosome %q", name)
	}
	length := end - start
	if length <= 0 {
		return "", nil
	}
	if end > rec.Length {
		return "", fmt.Errorf("fastaio: range [%d,%d) exceeds chromosome %q length %d", start, end, name, rec.Length)
	}

	rawLen := length + length/rec.LineBases + 1
	raw := make([]byte, 0, rawLen)
	pos := byteOffset(rec, start)
	remaining := rawLen
	for remaining > 0 {
		n := int64(chunkSize)
		if n > remaining {
			n = remaining
		}
		chunk := make([]byte, n)
		read, err := r.f.ReadAt(chunk, pos)
		chunk = chunk[:read]
		raw = append(raw, chunk...)
		if err != nil {
			break // EOF at the tail of the file is expected for the last record
		}
		pos += int64(read)
		remaining -= int64(read)
		if read == 0 {
			break
		}
	}

	out := make([]byte, 0, length)
	for _, b := range raw {
		if b == '\n' || b == '\r' {
			continue
		}
		out = append(out, normalizeBase(b))
		if int64(len(out)) == length {
			break
		}
	}
	return string(out), nil
}

// LoadIndexedChroms builds a RefGenome from a subset of names (or every
// indexed chromosome, in FAI file order, when names is empty) using
// RandomAccessReader, without materializing the rest of a large indexed
// FASTA file.
func LoadIndexedChroms(fastaPath string, names []string) (*refgenome.RefGenome, error) {
	r, err := OpenIndexed(fastaPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if len(names) == 0 {
		names = r.ChromNames()
	}

	chroms := make([]*refgenome.RefChrom, 0, len(names))
	for _, name := range names {
		length, ok := r.ChromLength(name)
		if !ok {
			return nil, fmt.Errorf("fastaio: no FAI entry for chromosome %q", name)
		}
		bases, err := r.ReadRange(name, 0, length)
		if err != nil {
			return nil, err
		}
		chroms = append(chroms, &refgenome.RefChrom{Name: name, Bases: bases})
	}
	return refgenome.New(chroms), nil
}
