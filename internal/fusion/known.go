package fusion

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// KnownType classifies a gene pair against the known fusion list.
type KnownType string

const (
	KnownNone            KnownType = "NONE"
	KnownPair            KnownType = "KNOWN_PAIR"
	KnownPromiscuous5    KnownType = "PROMISCUOUS_5"
	KnownPromiscuous3    KnownType = "PROMISCUOUS_3"
	KnownPromiscuousBoth KnownType = "PROMISCUOUS_BOTH"
	KnownIGPair          KnownType = "IG_KNOWN_PAIR"
	KnownIGPromiscuous   KnownType = "IG_PROMISCUOUS"
	KnownExonDelDup      KnownType = "EXON_DEL_DUP"
)

// AllowSuspectChains reports whether fusions of this type are kept even when
// their chain is long or a transcript is terminated.
func AllowSuspectChains(t KnownType) bool {
	switch t {
	case KnownPair, KnownExonDelDup, KnownIGPair, KnownIGPromiscuous:
		return true
	}
	return false
}

type genePair struct{ five, three string }

// KnownFusions is the known fusion list. The zero value classifies every
// pair as KnownNone.
type KnownFusions struct {
	pairs         map[genePair]KnownType
	promiscuous5  map[string]bool
	promiscuous3  map[string]bool
	igPromiscuous map[string]bool
}

// NewKnownFusions creates an empty list.
func NewKnownFusions() *KnownFusions {
	return &KnownFusions{
		pairs:         make(map[genePair]KnownType),
		promiscuous5:  make(map[string]bool),
		promiscuous3:  make(map[string]bool),
		igPromiscuous: make(map[string]bool),
	}
}

// Add registers one entry. Promiscuous types ignore the partner gene.
func (k *KnownFusions) Add(t KnownType, fiveGene, threeGene string) error {
	switch t {
	case KnownPair, KnownIGPair, KnownExonDelDup:
		k.pairs[genePair{fiveGene, threeGene}] = t
	case KnownPromiscuous5:
		k.promiscuous5[fiveGene] = true
	case KnownPromiscuous3:
		k.promiscuous3[threeGene] = true
	case KnownIGPromiscuous:
		k.igPromiscuous[fiveGene] = true
	default:
		return fmt.Errorf("unknown fusion type %q", t)
	}
	return nil
}

// Classify returns the known type of the fusion of upGene's 5' end to
// downGene's 3' end.
func (k *KnownFusions) Classify(upGene, downGene string) KnownType {
	if k == nil || k.pairs == nil {
		return KnownNone
	}
	if t, ok := k.pairs[genePair{upGene, downGene}]; ok {
		return t
	}
	if k.igPromiscuous[upGene] {
		return KnownIGPromiscuous
	}

	p5, p3 := k.promiscuous5[upGene], k.promiscuous3[downGene]
	switch {
	case p5 && p3:
		return KnownPromiscuousBoth
	case p5:
		return KnownPromiscuous5
	case p3:
		return KnownPromiscuous3
	}
	return KnownNone
}

// Len returns the number of entries.
func (k *KnownFusions) Len() int {
	return len(k.pairs) + len(k.promiscuous5) + len(k.promiscuous3) + len(k.igPromiscuous)
}

// LoadKnownFusions loads a known fusion TSV, gzipped when the path ends in .gz.
func LoadKnownFusions(path string) (*KnownFusions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open known fusions: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return ParseKnownFusions(reader)
}

// ParseKnownFusions reads a TSV with Type, FiveGene and ThreeGene columns.
func ParseKnownFusions(r io.Reader) (*KnownFusions, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("known fusions: empty file")
	}

	cols := map[string]int{"Type": -1, "FiveGene": -1, "ThreeGene": -1}
	for i, col := range strings.Split(scanner.Text(), "\t") {
		if _, ok := cols[col]; ok {
			cols[col] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("known fusions: missing %q column", name)
		}
	}

	k := NewKnownFusions()
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		get := func(name string) string {
			if idx := cols[name]; idx < len(fields) {
				return strings.TrimSpace(fields[idx])
			}
			return ""
		}
		if err := k.Add(KnownType(get("Type")), get("FiveGene"), get("ThreeGene")); err != nil {
			return nil, fmt.Errorf("known fusions line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading known fusions: %w", err)
	}
	return k, nil
}
