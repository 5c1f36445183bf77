// Package ensembl provides the reference gene and transcript annotation used to
// place SV breakends in genes.
package ensembl

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID          string // Transcript ID (e.g., ENST00000311936)
	GeneID      string // Parent gene ID
	GeneName    string // Parent gene symbol
	Chrom       string // Chromosome
	Start       int64  // Transcript start (1-based)
	End         int64  // Transcript end (1-based, inclusive)
	Strand      int8   // +1 or -1
	Biotype     string // Transcript biotype
	IsCanonical bool   // Ensembl canonical flag
	Exons       []Exon // Exons ordered by genomic start
	CDSStart    int64  // CDS start (genomic, 1-based), 0 if non-coding
	CDSEnd      int64  // CDS end (genomic, 1-based), 0 if non-coding
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number     int   // Exon rank in transcription order (1-based)
	Start      int64 // Genomic start (1-based)
	End        int64 // Genomic end (1-based, inclusive)
	PhaseStart int   // Ensembl phase at the exon's 5' boundary, -1 if non-coding
	PhaseEnd   int   // Ensembl phase at the exon's 3' boundary, -1 if non-coding
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSStart > 0 && t.CDSEnd > 0
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// CodingOverlap returns the number of coding bases of the exon.
func (t *Transcript) CodingOverlap(e *Exon) int64 {
	if !t.IsProteinCoding() {
		return 0
	}
	lo := max(e.Start, t.CDSStart)
	hi := min(e.End, t.CDSEnd)
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// TotalCodingBases returns the coding length of the transcript, stop codon included.
func (t *Transcript) TotalCodingBases() int64 {
	var total int64
	for i := range t.Exons {
		total += t.CodingOverlap(&t.Exons[i])
	}
	return total
}

// FindExon returns the exon containing the given genomic position, or nil if not in an exon.
func (t *Transcript) FindExon(pos int64) *Exon {
	lo, hi := 0, len(t.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		switch {
		case pos < e.Start:
			hi = mid - 1
		case pos > e.End:
			lo = mid + 1
		default:
			return e
		}
	}
	return nil
}
