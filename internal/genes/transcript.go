// Package genes models the genes and transcripts touched by an SV breakend.
package genes

import "fmt"

// StopCodonLength is excluded from a transcript's total coding bases.
const StopCodonLength = 3

// RegionType describes where a breakend falls within a transcript.
type RegionType string

const (
	RegionUpstream   RegionType = "Upstream"   // 5' of the transcript, beyond the promoter
	RegionPromoter   RegionType = "Promoter"   // before exon 1, within the pre-gene distance
	RegionExonic     RegionType = "Exonic"     // inside an exon
	RegionIntronic   RegionType = "Intronic"   // between two exons
	RegionDownstream RegionType = "Downstream" // 3' of the transcript
)

// CodingType describes the breakend's position relative to the coding region.
type CodingType string

const (
	CodingNone  CodingType = "NonCoding"
	Coding5PUTR CodingType = "5P_UTR"
	CodingCDS   CodingType = "Coding"
	Coding3PUTR CodingType = "3P_UTR"
)

// Transcript is one transcript as seen from one breakend. All fields are fixed
// once the transcript is added to its gene.
type Transcript struct {
	TransID     string // Transcript stable ID
	BioType     string // Transcript biotype
	IsCanonical bool   // Canonical transcript of the gene

	ExonUpstream        int // Rank of the exon 5' of the breakend, 0 in the promoter
	ExonUpstreamPhase   int // End phase of the upstream exon
	ExonDownstream      int // Rank of the exon 3' of the breakend
	ExonDownstreamPhase int // Start phase of the downstream exon
	ExonMax             int // Exon count

	CodingBases      int64 // Coding bases 5' of the breakend
	TotalCodingBases int64 // Coding bases excluding the stop codon

	TranscriptStart int64
	TranscriptEnd   int64
	CodingStart     int64 // 0 if non-coding
	CodingEnd       int64 // 0 if non-coding

	gene *GeneAnnotation
}

// TranscriptKey identifies a transcript at one breakend side.
type TranscriptKey struct {
	SvID    int
	IsStart bool
	TransID string
}

// Gene returns the gene annotation owning the transcript.
func (t *Transcript) Gene() *GeneAnnotation {
	return t.gene
}

// Key returns the transcript's breakend-side key.
func (t *Transcript) Key() TranscriptKey {
	return TranscriptKey{SvID: t.gene.SvID, IsStart: t.gene.IsStart, TransID: t.TransID}
}

// GeneName returns the parent gene symbol.
func (t *Transcript) GeneName() string {
	return t.gene.GeneName
}

// IsUpstream reports whether the breakend keeps the 5' part of the transcript.
func (t *Transcript) IsUpstream() bool {
	return t.gene.IsUpstream()
}

// IsExonic reports whether the breakend lies within an exon.
func (t *Transcript) IsExonic() bool {
	return t.ExonUpstream > 0 && t.ExonUpstream == t.ExonDownstream
}

// IsIntronic reports whether the breakend lies between two consecutive exons.
func (t *Transcript) IsIntronic() bool {
	return t.ExonUpstream > 0 && t.ExonDownstream-t.ExonUpstream == 1
}

// IsPromoter reports whether the breakend lies upstream of exon 1.
func (t *Transcript) IsPromoter() bool {
	return t.ExonUpstream == 0 && t.ExonDownstream == 1
}

// IsCoding reports whether the transcript has a coding region.
func (t *Transcript) IsCoding() bool {
	return t.CodingStart > 0 && t.CodingEnd > 0
}

// RegionType classifies the breakend position within the transcript.
func (t *Transcript) RegionType() RegionType {
	switch {
	case t.IsExonic():
		return RegionExonic
	case t.IsIntronic():
		return RegionIntronic
	case t.IsPromoter():
		return RegionPromoter
	case t.ExonUpstream > 0 && t.ExonDownstream <= 0:
		return RegionDownstream
	default:
		return RegionUpstream
	}
}

// CodingType classifies the breakend position relative to the coding region.
func (t *Transcript) CodingType() CodingType {
	switch {
	case t.TotalCodingBases == 0:
		return CodingNone
	case t.CodingBases == 0:
		return Coding5PUTR
	case t.CodingBases == t.TotalCodingBases:
		return Coding3PUTR
	default:
		return CodingCDS
	}
}

// PreCoding reports whether the breakend lies before the coding region.
func (t *Transcript) PreCoding() bool {
	return t.CodingType() == Coding5PUTR
}

// PostCoding reports whether the breakend lies after the coding region.
func (t *Transcript) PostCoding() bool {
	return t.CodingType() == Coding3PUTR
}

func (t *Transcript) String() string {
	return fmt.Sprintf("%s:%s exons(%d-%d)", t.gene.GeneName, t.TransID, t.ExonUpstream, t.ExonDownstream)
}
