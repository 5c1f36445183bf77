package vcf

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/vibe-linx/internal/sv"
)

var (
	breakendRegex       = regexp.MustCompile(`^(.*)([\[\]])(.+)[\[\]](.*)$`)
	singleBreakendRegex = regexp.MustCompile(`^(([.].*)|(.*[.]))$`)
)

// ErrUnmatchedMate is returned when a paired breakend's mate is missing.
var ErrUnmatchedMate = errors.New("breakend mate not found")

// LoadSample reads the passing SVs of a VCF file into a sample, each SV in
// its own cluster. An empty sampleID takes the last sample column's name.
func LoadSample(path, sampleID string) (*sv.Sample, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	s, err := ReadSample(p, sampleID)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}

// ReadSample reads the remaining records of p into a sample.
func ReadSample(p *Parser, sampleID string) (*sv.Sample, error) {
	if sampleID == "" {
		names := p.SampleNames()
		if len(names) == 0 {
			return nil, fmt.Errorf("no sample id given and no sample columns in header")
		}
		sampleID = names[len(names)-1]
	}

	b := &sampleBuilder{unmatched: make(map[string]*Record)}
	for {
		r, err := p.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			break
		}
		if !r.IsPass() {
			continue
		}
		if err := b.add(r); err != nil {
			return nil, err
		}
	}

	if len(b.unmatched) > 0 {
		ids := make([]string, 0, len(b.unmatched))
		for id := range b.unmatched {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return nil, fmt.Errorf("%s: %w", strings.Join(ids, ","), ErrUnmatchedMate)
	}

	sample := &sv.Sample{ID: sampleID, SVs: b.svs}
	for i, s := range b.svs {
		sample.Clusters = append(sample.Clusters, sv.NewCluster(i, string(s.Type), []*sv.SV{s}, nil))
	}
	return sample, nil
}

type sampleBuilder struct {
	svs       []*sv.SV
	unmatched map[string]*Record // paired breakends awaiting their mate, by record id
}

func (b *sampleBuilder) add(r *Record) error {
	switch {
	case strings.HasPrefix(r.Alt, "<"):
		s, err := b.symbolic(r)
		if err != nil {
			return err
		}
		b.svs = append(b.svs, s)
	case singleBreakendRegex.MatchString(r.Alt):
		b.svs = append(b.svs, b.single(r))
	case breakendRegex.MatchString(r.Alt):
		mate := r.MateID()
		if mate == "" {
			return &ParseError{Line: r.Line, Message: fmt.Sprintf("breakend %s has no mate id", r.ID)}
		}
		first, ok := b.unmatched[mate]
		if !ok {
			b.unmatched[r.ID] = r
			return nil
		}
		delete(b.unmatched, mate)
		b.svs = append(b.svs, b.paired(first, r))
	default:
		return &ParseError{Line: r.Line, Message: fmt.Sprintf("unsupported ALT %q", r.Alt)}
	}
	return nil
}

func (b *sampleBuilder) nextID() int {
	return len(b.svs)
}

// paired builds an SV from two breakend records. The first record's ALT
// gives both orientations.
func (b *sampleBuilder) paired(first, second *Record) *sv.SV {
	m := breakendRegex.FindStringSubmatch(first.Alt)

	// The local orientation comes from the anchoring bases, the remote one
	// from the bracket direction.
	var startOrientation, endOrientation int8 = -1, -1
	if m[1] != "" {
		startOrientation = 1
	}
	if m[2] == "]" {
		endOrientation = 1
	}

	var inserted string
	switch {
	case len(m[1]) > 1:
		inserted = m[1][1:]
	case m[1] == "" && len(m[4]) > 1:
		inserted = m[4][:len(m[4])-1]
	}
	if inserted == "" {
		inserted = first.Info[InfoInsSeq]
	}

	start := sv.NewBreakend(first.NormalizeChrom(), first.Pos, startOrientation, copyNumberLowSide(first, 0, nil))
	end := sv.NewBreakend(second.NormalizeChrom(), second.Pos, endOrientation, copyNumberLowSide(first, 1, second))

	t := sv.BND
	if start.Chromosome == end.Chromosome {
		switch {
		case startOrientation == endOrientation:
			t = sv.INV
		case startOrientation == -1:
			t = sv.DUP
		case inserted != "" && abs(end.Position-start.Position) <= 1:
			t = sv.INS
		default:
			t = sv.DEL
		}
	}
	return sv.New(b.nextID(), t, junctionCopyNumber(first), start, end)
}

func (b *sampleBuilder) single(r *Record) *sv.SV {
	var orientation int8 = 1
	if strings.HasPrefix(r.Alt, ".") {
		orientation = -1
	}

	t := sv.SGL
	inferred := r.HasFlag(InfoInferred)
	if inferred {
		t = sv.INF
	}
	start := sv.NewBreakend(r.NormalizeChrom(), r.Pos, orientation, copyNumberLowSide(r, 0, nil))
	s := sv.New(b.nextID(), t, junctionCopyNumber(r), start, nil)
	s.InferredSGL = inferred
	return s
}

// symbolic builds an SV from a <DEL>, <DUP>, <INS> or <INV> record.
func (b *sampleBuilder) symbolic(r *Record) (*sv.SV, error) {
	name, _, _ := strings.Cut(strings.Trim(r.Alt, "<>"), ":")
	t, err := sv.ParseType(name)
	if err != nil {
		return nil, &ParseError{Line: r.Line, Message: err.Error()}
	}

	var startOrientation, endOrientation int8
	switch t {
	case sv.DEL, sv.INS:
		startOrientation, endOrientation = 1, -1
	case sv.DUP:
		startOrientation, endOrientation = -1, 1
	case sv.INV:
		switch {
		case r.HasFlag(InfoInv3):
			startOrientation, endOrientation = 1, 1
		case r.HasFlag(InfoInv5):
			startOrientation, endOrientation = -1, -1
		default:
			return nil, &ParseError{Line: r.Line, Message: "INV without INV3 or INV5"}
		}
	default:
		return nil, &ParseError{Line: r.Line, Message: fmt.Sprintf("unsupported symbolic ALT %q", r.Alt)}
	}

	endPos, err := strconv.ParseInt(r.Info[InfoEnd], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: r.Line, Message: fmt.Sprintf("invalid END: %q", r.Info[InfoEnd])}
	}

	chrom := r.NormalizeChrom()
	start := sv.NewBreakend(chrom, r.Pos, startOrientation, copyNumberLowSide(r, 0, nil))
	end := sv.NewBreakend(chrom, endPos, endOrientation, copyNumberLowSide(r, 1, nil))
	return sv.New(b.nextID(), t, junctionCopyNumber(r), start, end), nil
}

// copyNumberLowSide is the breakend copy number less its change, read at
// index i of r or at index 0 of the mate record.
func copyNumberLowSide(r *Record, i int, mate *Record) float64 {
	cn, okCN := r.Float(InfoCopyNumber, i)
	change, okChange := r.Float(InfoCopyNumberChange, i)
	if (!okCN || !okChange) && mate != nil {
		cn, okCN = mate.Float(InfoCopyNumber, 0)
		change, okChange = mate.Float(InfoCopyNumberChange, 0)
	}
	if !okCN || !okChange {
		return 0
	}
	return cn - change
}

func junctionCopyNumber(r *Record) float64 {
	if jcn, ok := r.Float(InfoJCN, 0); ok {
		return jcn
	}
	jcn, _ := r.Float(InfoPloidy, 0)
	return jcn
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
