package ensembl

// Gene represents a genomic region with associated transcripts.
type Gene struct {
	ID            string        // Gene identifier (e.g., ENSG00000133703)
	Name          string        // Gene symbol (e.g., KRAS)
	Chrom         string        // Chromosome
	Start         int64         // Gene start position (1-based)
	End           int64         // Gene end position (1-based, inclusive)
	Strand        int8          // +1 (forward) or -1 (reverse)
	Biotype       string        // Gene biotype (e.g., protein_coding)
	KaryotypeBand string        // Cytoband, e.g. p36.33
	Transcripts   []*Transcript // Associated transcripts
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// UpstreamRange returns the gene span with its 5' boundary extended by distance bases.
func (g *Gene) UpstreamRange(distance int64) (start, end int64) {
	if g.Strand == -1 {
		return g.Start, g.End + distance
	}
	return g.Start - distance, g.End
}

// CanonicalTranscript returns the canonical transcript or nil.
func (g *Gene) CanonicalTranscript() *Transcript {
	for _, t := range g.Transcripts {
		if t.IsCanonical {
			return t
		}
	}
	return nil
}
