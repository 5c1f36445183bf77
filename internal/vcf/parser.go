// Package vcf reads structural variants from PURPLE/GRIDSS style VCF files.
package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxLineLength bounds a single VCF line; breakend INFO fields with inserted
// sequence can run well past bufio's default.
const maxLineLength = 16 << 20

// Parser reads records from an SV VCF.
type Parser struct {
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
	header  []string
	samples []string
}

// NewParser opens path, plain or gzipped, and reads its header.
func NewParser(path string) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p, err := newParser(f)
	if err != nil {
		p.Close()
		f.Close()
		return nil, err
	}
	p.closers = append(p.closers, f)
	return p, nil
}

// NewParserFromReader reads a VCF from r. Gzipped input is detected.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p, err := newParser(r)
	if err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func newParser(r io.Reader) (*Parser, error) {
	p := &Parser{}

	br := bufio.NewReader(r)
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return p, fmt.Errorf("create gzip reader: %w", err)
		}
		p.closers = append(p.closers, gz)
		r = gz
	} else {
		r = br
	}

	p.scanner = bufio.NewScanner(r)
	p.scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return p, p.readHeader()
}

func (p *Parser) readHeader() error {
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimRight(p.scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "##"):
			p.header = append(p.header, line)
		case strings.HasPrefix(line, "#CHROM"):
			p.header = append(p.header, line)
			if cols := strings.Split(line, "\t"); len(cols) > 9 {
				p.samples = cols[9:]
			}
			return nil
		default:
			return &ParseError{Line: p.line, Message: "expected #CHROM header line"}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	return &ParseError{Line: p.line, Message: "no #CHROM header line found"}
}

// Next returns the next record, or nil, nil at end of input.
func (p *Parser) Next() (*Record, error) {
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimRight(p.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return p.parseRecord(line)
	}
	if err := p.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: p.line + 1, Message: "line too long"}
		}
		return nil, fmt.Errorf("read record line: %w", err)
	}
	return nil, nil
}

func (p *Parser) parseRecord(line string) (*Record, error) {
	cols := strings.SplitN(line, "\t", 9)
	if len(cols) < 8 {
		return nil, &ParseError{
			Line:    p.line,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(cols)),
		}
	}

	pos, err := strconv.ParseInt(cols[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{Line: p.line, Message: fmt.Sprintf("invalid position: %s", cols[1])}
	}

	return &Record{
		Line:   p.line,
		Chrom:  cols[0],
		Pos:    pos,
		ID:     cols[2],
		Ref:    cols[3],
		Alt:    cols[4],
		Filter: cols[6],
		Info:   parseInfo(cols[7]),
	}, nil
}

// parseInfo splits an INFO column. Flags map to "".
func parseInfo(info string) map[string]string {
	fields := make(map[string]string)
	if info == "." {
		return fields
	}
	for _, kv := range strings.Split(info, ";") {
		if kv != "" {
			k, v, _ := strings.Cut(kv, "=")
			fields[k] = v
		}
	}
	return fields
}

// Header returns the meta lines and the #CHROM line.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns the genotype column names, nil when there are none.
func (p *Parser) SampleNames() []string {
	return p.samples
}

// LineNumber returns the number of lines read so far.
func (p *Parser) LineNumber() int {
	return p.line
}

// Close releases the gzip stream and the file, if any.
func (p *Parser) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// ParseError is a malformed line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
