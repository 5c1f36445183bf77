package vcf

import (
	"strconv"
	"strings"
)

// INFO keys read from PURPLE annotated SV VCFs.
const (
	InfoSVType           = "SVTYPE"
	InfoEnd              = "END"
	InfoMateID           = "MATEID"
	InfoParID            = "PARID"
	InfoInferred         = "INFERRED"
	InfoInv3             = "INV3"
	InfoInv5             = "INV5"
	InfoInsSeq           = "SVINSSEQ"
	InfoJCN              = "PURPLE_JCN"
	InfoPloidy           = "PURPLE_PLOIDY" // older PURPLE name of the junction copy number
	InfoCopyNumber       = "PURPLE_CN"
	InfoCopyNumberChange = "PURPLE_CN_CHANGE"
)

// Record is one VCF data line.
type Record struct {
	Line   int
	Chrom  string // Chromosome name (e.g., "12", "chr12")
	Pos    int64  // 1-based genomic position
	ID     string
	Ref    string
	Alt    string
	Filter string
	Info   map[string]string
}

// IsPass reports whether the record passed all filters.
func (r *Record) IsPass() bool {
	return r.Filter == "PASS" || r.Filter == "."
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *Record) NormalizeChrom() string {
	return strings.TrimPrefix(r.Chrom, "chr")
}

// HasFlag reports whether the INFO key is present.
func (r *Record) HasFlag(key string) bool {
	_, ok := r.Info[key]
	return ok
}

// MateID returns the id of the record's mate breakend, if any.
func (r *Record) MateID() string {
	if id := r.Info[InfoMateID]; id != "" {
		return id
	}
	return r.Info[InfoParID]
}

// Floats parses a comma-separated numeric INFO value. Missing values are
// returned as nil.
func (r *Record) Floats(key string) []float64 {
	v, ok := r.Info[key]
	if !ok || v == "" || v == "." {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil
		}
		out = append(out, f)
	}
	return out
}

// Float returns the value at index i of a numeric INFO list.
func (r *Record) Float(key string, i int) (float64, bool) {
	vals := r.Floats(key)
	if i >= len(vals) {
		return 0, false
	}
	return vals[i], true
}
