package genes

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/ensembl"
)

// DefaultPreGeneDistance is how far upstream of a transcript a breakend still
// counts as being in its promoter.
const DefaultPreGeneDistance = 10000

// Annotator places breakends in the genes of an ensembl cache.
type Annotator struct {
	cache           *ensembl.Cache
	preGeneDistance int64
	onlyGenes       map[string]bool
	logger          *zap.Logger
}

// NewAnnotator creates an annotator using the default promoter distance.
func NewAnnotator(c *ensembl.Cache) *Annotator {
	return &Annotator{
		cache:           c,
		preGeneDistance: DefaultPreGeneDistance,
		logger:          zap.NewNop(),
	}
}

// SetPreGeneDistance sets the promoter distance in bases.
func (a *Annotator) SetPreGeneDistance(distance int64) {
	a.preGeneDistance = distance
}

// RestrictTo limits annotation to the named genes. An empty list removes the
// restriction.
func (a *Annotator) RestrictTo(names []string) {
	if len(names) == 0 {
		a.onlyGenes = nil
		return
	}
	a.onlyGenes = make(map[string]bool, len(names))
	for _, n := range names {
		a.onlyGenes[n] = true
	}
}

// SetLogger sets the logger.
func (a *Annotator) SetLogger(logger *zap.Logger) {
	a.logger = logger
}

// Annotate returns one GeneAnnotation per gene touched by the breakend.
// Genes where no transcript is touched are left out.
func (a *Annotator) Annotate(svID int, isStart bool, chrom string, pos int64, orientation int8) []*GeneAnnotation {
	var result []*GeneAnnotation
	for _, g := range a.cache.FindGenes(chrom, pos, a.preGeneDistance) {
		if a.onlyGenes != nil && !a.onlyGenes[g.Name] {
			continue
		}

		gene := &GeneAnnotation{
			SvID:          svID,
			IsStart:       isStart,
			GeneID:        g.ID,
			GeneName:      g.Name,
			Strand:        g.Strand,
			Chromosome:    chrom,
			Position:      pos,
			Orientation:   orientation,
			KaryotypeBand: g.KaryotypeBand,
		}
		for _, t := range g.Transcripts {
			if tr := a.transcriptAt(t, pos); tr != nil {
				gene.AddTranscript(tr)
			}
		}
		if len(gene.transcripts) == 0 {
			continue
		}
		result = append(result, gene)
	}

	if len(result) > 0 {
		a.logger.Debug("breakend annotated",
			zap.Int("sv", svID),
			zap.Bool("start", isStart),
			zap.String("chrom", chrom),
			zap.Int64("pos", pos),
			zap.Int("genes", len(result)))
	}
	return result
}

// transcriptAt builds the breakend view of t, or nil when pos lies beyond the
// transcript's 3' end or further upstream than the promoter distance.
func (a *Annotator) transcriptAt(t *ensembl.Transcript, pos int64) *Transcript {
	if len(t.Exons) == 0 {
		return nil
	}

	forward := t.Strand != -1
	var upstreamGap int64
	switch {
	case forward && pos > t.End, !forward && pos < t.Start:
		return nil
	case forward && pos < t.Start:
		upstreamGap = t.Start - pos
	case !forward && pos > t.End:
		upstreamGap = pos - t.End
	}
	if upstreamGap > a.preGeneDistance {
		return nil
	}

	tr := &Transcript{
		TransID:          t.ID,
		BioType:          t.Biotype,
		IsCanonical:      t.IsCanonical,
		ExonMax:          len(t.Exons),
		TotalCodingBases: t.TotalCodingBases(),
		TranscriptStart:  t.Start,
		TranscriptEnd:    t.End,
		CodingStart:      t.CDSStart,
		CodingEnd:        t.CDSEnd,
	}

	exons := transcriptionOrder(t)
	if upstreamGap > 0 {
		tr.ExonUpstream = 0
		tr.ExonUpstreamPhase = -1
		tr.ExonDownstream = exons[0].Number
		tr.ExonDownstreamPhase = exons[0].PhaseStart
		return tr
	}

	// Walk 5' to 3', summing coding bases until the exon at or after pos.
	for i, e := range exons {
		beyond := forward && e.Start > pos || !forward && e.End < pos
		if beyond && i == 0 {
			tr.ExonUpstreamPhase = -1
			tr.ExonDownstream = e.Number
			tr.ExonDownstreamPhase = e.PhaseStart
			return tr
		}
		if beyond {
			prev := exons[i-1]
			tr.ExonUpstream = prev.Number
			tr.ExonUpstreamPhase = prev.PhaseEnd
			tr.ExonDownstream = e.Number
			tr.ExonDownstreamPhase = e.PhaseStart
			return tr
		}

		if pos >= e.Start && pos <= e.End {
			tr.ExonUpstream = e.Number
			tr.ExonDownstream = e.Number
			tr.ExonUpstreamPhase = e.PhaseEnd
			tr.ExonDownstreamPhase = e.PhaseStart
			tr.CodingBases += partialCoding(t, e, pos)
			return tr
		}

		tr.CodingBases += t.CodingOverlap(e)
	}

	// Inside the transcript bounds but past the last exon cannot happen for
	// well-formed data; treat it as 3' of the final exon.
	last := exons[len(exons)-1]
	a.logger.Warn("breakend past final exon", zap.String("transcript", t.ID), zap.Int64("pos", pos))
	tr.ExonUpstream = last.Number
	tr.ExonUpstreamPhase = last.PhaseEnd
	tr.ExonDownstream = -1
	tr.ExonDownstreamPhase = -1
	return tr
}

// transcriptionOrder returns the exons 5' to 3'.
func transcriptionOrder(t *ensembl.Transcript) []*ensembl.Exon {
	n := len(t.Exons)
	exons := make([]*ensembl.Exon, n)
	for i := range t.Exons {
		if t.Strand == -1 {
			exons[n-1-i] = &t.Exons[i]
		} else {
			exons[i] = &t.Exons[i]
		}
	}
	return exons
}

// partialCoding counts the coding bases of e lying 5' of pos, pos included.
func partialCoding(t *ensembl.Transcript, e *ensembl.Exon, pos int64) int64 {
	part := *e
	if t.Strand == -1 {
		part.Start = pos
	} else {
		part.End = pos
	}
	return t.CodingOverlap(&part)
}
