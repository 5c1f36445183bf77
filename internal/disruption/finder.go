// Package disruption decides which transcripts touched by SV breakends are
// structurally disrupted.
package disruption

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/ensembl"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

// Config holds disruption options.
type Config struct {
	// MaxNonDisruptedChainLength caps the chain length walked when looking
	// for a return to the same intron.
	MaxNonDisruptedChainLength int64
}

// DefaultConfig returns the default options.
func DefaultConfig() Config {
	return Config{MaxNonDisruptedChainLength: 5000}
}

// Finder marks transcripts disruptive or not. A Finder is read-only once its
// disruption genes are set and may serve concurrent runs.
type Finder struct {
	cache   *ensembl.Cache
	cfg     Config
	geneIDs map[string]bool
	logger  *zap.Logger
}

// NewFinder creates a finder over the reference annotation.
func NewFinder(c *ensembl.Cache, cfg Config) *Finder {
	return &Finder{
		cache:   c,
		cfg:     cfg,
		geneIDs: make(map[string]bool),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (f *Finder) SetLogger(logger *zap.Logger) {
	f.logger = logger
}

// AddDisruptionGenes registers genes, by name, whose disruptions are
// reported. It returns the number of names found in the annotation.
func (f *Finder) AddDisruptionGenes(names []string) int {
	found := 0
	for _, name := range names {
		g := f.cache.GeneByName(name)
		if g == nil {
			f.logger.Debug("disruption gene not in annotation", zap.String("gene", name))
			continue
		}
		f.geneIDs[g.ID] = true
		found++
	}
	return found
}

// AddDisruptionGeneID registers a gene by stable ID.
func (f *Finder) AddDisruptionGeneID(id string) {
	f.geneIDs[id] = true
}

// MatchesDisruptionGene reports whether disruptions of g are reported.
func (f *Finder) MatchesDisruptionGene(g *genes.GeneAnnotation) bool {
	return f.geneIDs[g.GeneID]
}

// PairTraversesGene reports whether the section spanned by the pair crosses
// a splice acceptor of a gene on the given strand (0 for either).
func (f *Finder) PairTraversesGene(p *sv.LinkedPair, fusionDirection int8, precodingUpstream bool) bool {
	return f.cache.SpanCrossesSpliceAcceptor(p.Chromosome(), p.Lower().Position, p.Upper().Position, fusionDirection, precodingUpstream)
}

// MarkTranscriptsDisruptive resolves every transcript touched by the SVs.
// Each call starts from scratch, so repeated calls give equal results.
func (f *Finder) MarkTranscriptsDisruptive(svs []*sv.SV) *Resolved {
	r := newResolved(svs)

	for _, s := range svs {
		f.markSV(r, s)

		if s.InferredSGL {
			for _, g := range s.Genes(true) {
				for _, t := range g.Transcripts() {
					r.state(t).disruptive = false
				}
			}
		}
	}

	f.findReportable(r, svs)
	return r
}

func (f *Finder) markSV(r *Resolved, s *sv.SV) {
	genesStart := s.Genes(true)
	genesEnd := s.Genes(false)
	if len(genesStart) == 0 && len(genesEnd) == 0 {
		return
	}

	cluster := s.Cluster()
	isLINE := cluster != nil && cluster.ResolvedType == sv.ResolvedTypeLINE

	for _, isStart := range []bool{true, false} {
		b := s.Breakend(isStart)
		if b == nil {
			continue
		}
		cn := undisruptedCopyNumber(b)
		for _, g := range b.Genes() {
			for _, t := range g.Transcripts() {
				r.state(t).undisruptedCN = cn
			}

			// A LINE insertion into an intron only adds a non-disruptive shard.
			if isLINE {
				for _, t := range g.Transcripts() {
					if t.IsIntronic() && r.IsDisruptive(t) {
						f.markNonDisruptive(r, t, ReasonLINE)
					}
				}
			}
		}
	}

	if s.IsSGL() {
		return
	}

	if s.IsSimpleType() {
		f.markSimpleSV(r, s, genesStart, genesEnd)
	}

	var chains []*sv.Chain
	if cluster != nil {
		chains = cluster.ChainsWith(s)
	}

	for _, isStart := range []bool{true, false} {
		b := s.Breakend(isStart)
		transList := r.disrupted(b.Genes())
		if len(transList) == 0 {
			continue
		}

		// A templated insertion wholly inside an intron, flanked by non-genic
		// breakends, leaves the transcript intact.
		otherNonGenic := len(s.Genes(!isStart)) == 0
		for _, pair := range b.Links() {
			otherBreakend := pair.Other(b)
			otherSV := otherBreakend.SV()
			otherTrans := r.disrupted(otherBreakend.Genes())
			otherSVOtherNonGenic := len(otherSV.Genes(!otherBreakend.IsStart())) == 0

			if otherNonGenic && otherSVOtherNonGenic {
				if f.markMatching(r, transList, otherTrans, ReasonIntronicSection) {
					f.logger.Debug("pair fully intronic", zap.Stringer("pair", pair), zap.Int64("length", pair.Length()))
					transList = r.keepDisruptive(transList)
				}
			}
		}

		if len(transList) == 0 {
			continue
		}
		for _, ch := range chains {
			var step sv.Step
			transList, step = f.checkChainReturn(r, b, ch, transList)
			f.logger.Debug("chain walk",
				zap.Int("sv", s.ID),
				zap.Bool("start", isStart),
				zap.Int("chain", ch.ID),
				zap.Stringer("outcome", step))
		}
	}
}

// markSimpleSV handles DEL, DUP and INS whose breakends fall in the same gene.
func (f *Finder) markSimpleSV(r *Resolved, s *sv.SV, genesStart, genesEnd []*genes.GeneAnnotation) {
	for _, gs := range genesStart {
		var ge *genes.GeneAnnotation
		for _, g := range genesEnd {
			if g.GeneID == gs.GeneID {
				ge = g
				break
			}
		}
		if ge == nil {
			continue
		}

		if s.Type == sv.DUP {
			upTrans := ge.Transcripts()
			if gs.IsUpstream() {
				upTrans = gs.Transcripts()
			}
			downTrans := gs.Transcripts()
			if !ge.IsUpstream() {
				downTrans = ge.Transcripts()
			}
			f.markExonOneDup(r, upTrans, downTrans)
		}

		f.markMatching(r, gs.Transcripts(), ge.Transcripts(), ReasonSimpleSV)
	}
}

// markExonOneDup handles a DUP around exon 1, which has no splice acceptor
// and so leaves the transcript unchanged.
func (f *Finder) markExonOneDup(r *Resolved, upTrans, downTrans []*genes.Transcript) {
	for _, up := range upTrans {
		down := findTranscript(downTrans, up.TransID)
		if down == nil {
			continue
		}
		if up.ExonUpstream == 1 && down.ExonDownstream <= 2 && !up.IsExonic() {
			f.markNonDisruptive(r, up, ReasonSimpleSV)
			f.markNonDisruptive(r, down, ReasonSimpleSV)
		}
	}
}

// markMatching marks both copies of each transcript found in the two lists
// in the same intron. It reports whether any matched.
func (f *Finder) markMatching(r *Resolved, list1, list2 []*genes.Transcript, reason string) bool {
	found := false
	for _, t1 := range list1 {
		t2 := findTranscript(list2, t1.TransID)
		if t2 == nil {
			continue
		}
		if t1.ExonUpstream == t2.ExonUpstream && !t1.IsExonic() && !t2.IsExonic() {
			found = true
			f.markNonDisruptive(r, t1, reason)
			f.markNonDisruptive(r, t2, reason)
		}
	}
	return found
}

// checkChainReturn walks the chain away from b looking for a breakend that
// comes back into the same intron with the opposite orientation, without
// crossing a splice acceptor on the way.
func (f *Finder) checkChainReturn(r *Resolved, b *sv.Breakend, ch *sv.Chain, transList []*genes.Transcript) ([]*genes.Transcript, sv.Step) {
	cur, ok := ch.CursorFrom(b)
	if !ok {
		return transList, sv.StepChainEnd
	}
	startIndex := cur.Index()

	var chainLength int64
	for {
		var step sv.Step
		cur, step = cur.Advance()
		if step == sv.StepChainEnd {
			return transList, step
		}

		link, err := cur.Link()
		if err != nil {
			f.logger.Error("chain walk", zap.Int("chain", ch.ID), zap.Error(err))
			return transList, sv.StepChainEnd
		}

		if f.PairTraversesGene(link, 0, false) {
			return transList, sv.StepGeneCrossed
		}

		chainLength += link.Length()
		if chainLength > f.cfg.MaxNonDisruptedChainLength {
			return transList, sv.StepChainEnd
		}

		next, err := cur.Exit()
		if err != nil || next == nil {
			continue
		}
		if next.Orientation == b.Orientation || next.Chromosome != b.Chromosome {
			continue
		}

		otherTrans := r.disrupted(next.Genes())
		if len(otherTrans) == 0 {
			continue
		}

		links := abs(cur.Index() - startIndex)
		reason := fmt.Sprintf("%s;%d-%d", ReasonSameIntron, links, chainLength)
		if f.markMatching(r, transList, otherTrans, reason) {
			transList = r.keepDisruptive(transList)
			f.logger.Debug("breakends return to same intron",
				zap.Stringer("breakend", b),
				zap.Stringer("next", next),
				zap.Int("chain", ch.ID),
				zap.Int("links", links),
				zap.Int64("length", chainLength))
			if len(transList) == 0 {
				return transList, sv.StepContinue
			}
		}
	}
}

func (f *Finder) markNonDisruptive(r *Resolved, t *genes.Transcript, reason string) {
	r.state(t).disruptive = false

	key := t.Key()
	if _, seen := r.reasons[key]; seen {
		return
	}
	if !t.IsCanonical || !f.MatchesDisruptionGene(t.Gene()) {
		return
	}

	f.logger.Debug("excluding disruption",
		zap.String("gene", t.GeneName()),
		zap.Int("sv", t.Gene().SvID),
		zap.String("reason", reason))
	r.reasons[key] = reason
	r.excluded = append(r.excluded, t)
}

func (f *Finder) findReportable(r *Resolved, svs []*sv.SV) {
	for _, s := range svs {
		for _, isStart := range []bool{true, false} {
			if !isStart && s.IsSGL() {
				continue
			}
			for _, g := range s.Genes(isStart) {
				if !f.MatchesDisruptionGene(g) {
					continue
				}
				for _, t := range g.Transcripts() {
					if !t.IsCanonical || !r.IsDisruptive(t) {
						continue
					}
					f.logger.Debug("transcript disrupted",
						zap.Int("sv", s.ID),
						zap.String("gene", g.GeneName),
						zap.String("transcript", t.TransID),
						zap.Float64("undisruptedCN", r.UndisruptedCopyNumber(t)))
					r.reportable = append(r.reportable, t)
				}
			}
		}
	}
}

// disrupted returns the still disruptive transcripts of the genes.
func (r *Resolved) disrupted(gs []*genes.GeneAnnotation) []*genes.Transcript {
	var list []*genes.Transcript
	for _, g := range gs {
		for _, t := range g.Transcripts() {
			if r.IsDisruptive(t) {
				list = append(list, t)
			}
		}
	}
	return list
}

func (r *Resolved) keepDisruptive(list []*genes.Transcript) []*genes.Transcript {
	kept := list[:0]
	for _, t := range list {
		if r.IsDisruptive(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

func undisruptedCopyNumber(b *sv.Breakend) float64 {
	cn := b.CopyNumberLowSide
	if db := b.DBLink(); db != nil && db.Length() < 0 {
		cn -= db.Other(b).SV().JCN
	}
	return cn
}

func findTranscript(list []*genes.Transcript, id string) *genes.Transcript {
	for _, t := range list {
		if t.TransID == id {
			return t
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
