package fusion

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/genes"
)

// Validator decides which transcript pairs form fusions and which of them
// are reported.
type Validator interface {
	// FindFusions pairs every upstream gene of one list with every
	// downstream gene of the other.
	FindFusions(genes1, genes2 []*genes.GeneAnnotation, resolved *disruption.Resolved, setReportable bool) []*GeneFusion
	// SetReportableGeneFusions marks at most one fusion of the list reportable.
	SetReportableGeneFusions(fusions []*GeneFusion, resolved *disruption.Resolved)
	// DetermineReportableFusion returns the highest priority fusion, or nil.
	DetermineReportableFusion(fusions []*GeneFusion, resolved *disruption.Resolved, requireReportable bool) *GeneFusion
	// CouldBeReportable reports whether a fusion meets the reporting criteria.
	CouldBeReportable(f *GeneFusion, resolved *disruption.Resolved) bool
}

// FinderConfig holds fusion validity options.
type FinderConfig struct {
	RequirePhaseMatch bool
}

// Finder is the default Validator, backed by a known fusion list. It is
// read-only after construction.
type Finder struct {
	known  *KnownFusions
	cfg    FinderConfig
	logger *zap.Logger
}

// NewFinder creates a finder. A nil known list classifies every pair as
// KnownNone.
func NewFinder(known *KnownFusions, cfg FinderConfig) *Finder {
	if known == nil {
		known = NewKnownFusions()
	}
	return &Finder{known: known, cfg: cfg, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (f *Finder) SetLogger(logger *zap.Logger) {
	f.logger = logger
}

// Known returns the known fusion list.
func (f *Finder) Known() *KnownFusions {
	return f.known
}

// FindFusions implements Validator.
func (f *Finder) FindFusions(genes1, genes2 []*genes.GeneAnnotation, resolved *disruption.Resolved, setReportable bool) []*GeneFusion {
	var fusions []*GeneFusion
	for _, g1 := range genes1 {
		for _, g2 := range genes2 {
			if g1.IsUpstream() == g2.IsUpstream() {
				continue
			}
			up, down := g1, g2
			if !up.IsUpstream() {
				up, down = g2, g1
			}

			known := f.known.Classify(up.GeneName, down.GeneName)
			if up.GeneID == down.GeneID && known != KnownExonDelDup {
				continue
			}

			for _, upTrans := range up.Transcripts() {
				for _, downTrans := range down.Transcripts() {
					fusion := f.checkTranscripts(upTrans, downTrans)
					if fusion == nil {
						continue
					}
					fusion.KnownType = known
					fusions = append(fusions, fusion)
				}
			}
		}
	}

	if setReportable && len(fusions) > 0 {
		f.SetReportableGeneFusions(fusions, resolved)
	}
	return fusions
}

// checkTranscripts returns the fusion of up's 5' part to down's 3' part, or
// nil when the pair cannot fuse.
func (f *Finder) checkTranscripts(up, down *genes.Transcript) *GeneFusion {
	if !fusableCoding(up) || up.IsPromoter() || !fusableCoding(down) {
		return nil
	}

	fusion := &GeneFusion{Up: up, Down: down}
	switch {
	case up.IsExonic() && down.IsExonic():
		fusion.Exonic = true
		if up.CodingType() == genes.CodingCDS && down.CodingType() == genes.CodingCDS {
			fusion.PhaseMatched = up.CodingBases%3 == (down.CodingBases-1)%3
		}
	case up.IsExonic() || down.IsExonic():
		return nil
	default:
		fusion.PhaseMatched = up.ExonUpstreamPhase == down.ExonDownstreamPhase
	}

	if f.cfg.RequirePhaseMatch && !fusion.PhaseMatched {
		return nil
	}
	return fusion
}

func fusableCoding(t *genes.Transcript) bool {
	ct := t.CodingType()
	return ct == genes.CodingCDS || ct == genes.Coding5PUTR
}

// CouldBeReportable implements Validator.
func (f *Finder) CouldBeReportable(fusion *GeneFusion, resolved *disruption.Resolved) bool {
	if !fusion.PhaseMatched || fusion.KnownType == KnownNone || fusion.KnownType == "" {
		return false
	}
	if !fusion.Up.IsCanonical || !fusion.Down.IsCanonical {
		return false
	}
	if !resolved.IsDisruptive(fusion.Up) || !resolved.IsDisruptive(fusion.Down) {
		return false
	}
	if fusion.IsTerminated() {
		return false
	}
	if a := fusion.Annotations; a != nil && a.Chain != nil && !a.Chain.ValidTraversal {
		return false
	}
	return true
}

// SetReportableGeneFusions implements Validator.
func (f *Finder) SetReportableGeneFusions(fusions []*GeneFusion, resolved *disruption.Resolved) {
	if top := f.DetermineReportableFusion(fusions, resolved, true); top != nil {
		top.Reportable = true
		f.logger.Debug("reportable fusion", zap.String("fusion", top.String()), zap.String("known", string(top.KnownType)))
	}
}

// DetermineReportableFusion implements Validator.
func (f *Finder) DetermineReportableFusion(fusions []*GeneFusion, resolved *disruption.Resolved, requireReportable bool) *GeneFusion {
	var best *GeneFusion
	var bestReportable bool
	for _, fusion := range fusions {
		reportable := f.CouldBeReportable(fusion, resolved)
		if requireReportable && !reportable {
			continue
		}
		if best == nil || higherPriority(fusion, reportable, best, bestReportable) {
			best, bestReportable = fusion, reportable
		}
	}
	return best
}

// higherPriority reports whether a outranks b.
func higherPriority(a *GeneFusion, aReportable bool, b *GeneFusion, bReportable bool) bool {
	if aReportable != bReportable {
		return aReportable
	}
	if a.PhaseMatched != b.PhaseMatched {
		return a.PhaseMatched
	}
	if ra, rb := knownRank(a.KnownType), knownRank(b.KnownType); ra != rb {
		return ra < rb
	}
	if a.IsTerminated() != b.IsTerminated() {
		return !a.IsTerminated()
	}

	la, lenA := chainSize(a)
	lb, lenB := chainSize(b)
	if la != lb {
		return la < lb
	}
	if lenA != lenB {
		return lenA < lenB
	}

	if a.Up.IsCanonical != b.Up.IsCanonical {
		return a.Up.IsCanonical
	}
	if a.Down.IsCanonical != b.Down.IsCanonical {
		return a.Down.IsCanonical
	}
	if pa, pb := proteinCoding(a), proteinCoding(b); pa != pb {
		return pa
	}
	if a.Up.CodingBases != b.Up.CodingBases {
		return a.Up.CodingBases > b.Up.CodingBases
	}
	if a.Up.TransID != b.Up.TransID {
		return a.Up.TransID < b.Up.TransID
	}
	return a.Down.TransID < b.Down.TransID
}

var knownRanks = map[KnownType]int{
	KnownPair:            0,
	KnownIGPair:          1,
	KnownIGPromiscuous:   2,
	KnownExonDelDup:      3,
	KnownPromiscuousBoth: 4,
	KnownPromiscuous5:    5,
	KnownPromiscuous3:    6,
}

func knownRank(t KnownType) int {
	if r, ok := knownRanks[t]; ok {
		return r
	}
	return len(knownRanks)
}

// chainSize returns the link count and length, zero for single-SV fusions.
func chainSize(f *GeneFusion) (int, int64) {
	if f.Annotations == nil || f.Annotations.Chain == nil {
		return 0, 0
	}
	return f.Annotations.Chain.Links, f.Annotations.Chain.Length
}

func proteinCoding(f *GeneFusion) bool {
	return f.Up.BioType == "protein_coding" && f.Down.BioType == "protein_coding"
}
