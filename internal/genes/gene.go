package genes

// GeneAnnotation is a gene overlapping one side of an SV.
type GeneAnnotation struct {
	SvID          int
	IsStart       bool
	GeneID        string // Gene stable ID
	GeneName      string
	Strand        int8
	Chromosome    string
	Position      int64
	Orientation   int8
	KaryotypeBand string

	transcripts []*Transcript
}

// IsUpstream reports whether the breakend keeps the 5' end of the gene.
func (g *GeneAnnotation) IsUpstream() bool {
	return int(g.Strand)*int(g.Orientation) > 0
}

// Transcripts returns the gene's transcripts at this breakend.
func (g *GeneAnnotation) Transcripts() []*Transcript {
	return g.transcripts
}

// Canonical returns the canonical transcript or nil.
func (g *GeneAnnotation) Canonical() *Transcript {
	for _, t := range g.transcripts {
		if t.IsCanonical {
			return t
		}
	}
	return nil
}

// AddTranscript takes ownership of t and normalises its coding counts: the
// stop codon is removed from the total and coding bases never exceed it.
func (g *GeneAnnotation) AddTranscript(t *Transcript) *Transcript {
	if t.TotalCodingBases > StopCodonLength {
		t.TotalCodingBases -= StopCodonLength
	} else {
		t.TotalCodingBases = 0
	}
	t.CodingBases = min(t.CodingBases, t.TotalCodingBases)
	t.gene = g
	g.transcripts = append(g.transcripts, t)
	return t
}
