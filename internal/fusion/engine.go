package fusion

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

// Rejection reasons for chained fusion candidates.
const (
	RejectInvalidTraversal = "InvalidTraversal"
	RejectLongChain        = "LongChain"
	RejectTerminated       = "Terminated"
)

// Traverser checks whether a chain link crosses a splice acceptor.
type Traverser interface {
	PairTraversesGene(p *sv.LinkedPair, fusionDirection int8, precodingUpstream bool) bool
}

// Config holds fusion engine options.
type Config struct {
	MaxChainLength       int64    // Longest chain section a fusion may span
	RestrictedGenes      []string // When set, only these genes may fuse
	LogReportableOnly    bool     // Keep reportable fusions only
	LogRepeatedGenePairs bool     // Allow several unique fusions per gene pair
}

// DefaultConfig returns the default options.
func DefaultConfig() Config {
	return Config{MaxChainLength: 100000}
}

// Rejected is a chained candidate that failed validation.
type Rejected struct {
	Fusion  *GeneFusion
	Reason  string
	ChainID int
}

// Result is the outcome of one fusion run.
type Result struct {
	Fusions  []*GeneFusion // All accepted fusions
	Unique   []*GeneFusion // One fusion per gene pair and SV
	Rejected []Rejected
}

// Engine finds fusions over a disrupted SV graph. It keeps no per-run state
// and may serve concurrent runs.
type Engine struct {
	validator  Validator
	traverser  Traverser
	cfg        Config
	restricted map[string]bool
	logger     *zap.Logger
}

// NewEngine creates an engine.
func NewEngine(v Validator, t Traverser, cfg Config) *Engine {
	e := &Engine{validator: v, traverser: t, cfg: cfg, logger: zap.NewNop()}
	if len(cfg.RestrictedGenes) > 0 {
		e.restricted = make(map[string]bool, len(cfg.RestrictedGenes))
		for _, name := range cfg.RestrictedGenes {
			e.restricted[name] = true
		}
	}
	return e
}

// SetLogger sets the logger.
func (e *Engine) SetLogger(logger *zap.Logger) {
	e.logger = logger
}

// Run finds single-SV and chained fusions. The disruption state must come
// from the same SVs.
func (e *Engine) Run(resolved *disruption.Resolved, svs []*sv.SV, clusters []*sv.Cluster) Result {
	var res Result
	rejected := newRejectLog()

	for _, s := range svs {
		res.Fusions = append(res.Fusions, e.singleSVFusions(resolved, s)...)
	}

	for _, c := range clusters {
		if c.SVCount() <= 1 || len(c.Chains) == 0 {
			continue
		}
		res.Fusions = append(res.Fusions, e.clusterFusions(resolved, c, rejected)...)
	}

	res.Unique = e.extractUniqueFusions(res.Fusions, resolved)
	res.Rejected = rejected.list

	e.logger.Debug("fusion run complete",
		zap.Int("fusions", len(res.Fusions)),
		zap.Int("unique", len(res.Unique)),
		zap.Int("rejected", len(res.Rejected)))
	return res
}

func (e *Engine) singleSVFusions(resolved *disruption.Resolved, s *sv.SV) []*GeneFusion {
	if s.IsSGL() {
		return nil
	}
	c := s.Cluster()
	if c != nil && c.SVCount() > 1 && c.FindChain(s) != nil {
		return nil
	}

	genesStart := e.filterGenes(s.Genes(true))
	genesEnd := e.filterGenes(s.Genes(false))
	if len(genesStart) == 0 || len(genesEnd) == 0 {
		return nil
	}

	var kept []*GeneFusion
	for _, f := range e.validator.FindFusions(genesStart, genesEnd, resolved, true) {
		if e.cfg.LogReportableOnly && !f.Reportable {
			continue
		}
		f.Annotations = clusterAnnotations(c)
		kept = append(kept, f)
	}
	return kept
}

func clusterAnnotations(c *sv.Cluster) *Annotations {
	if c == nil {
		return &Annotations{ClusterID: -1, ClusterCount: 1}
	}
	return &Annotations{ClusterID: c.ID, ClusterCount: c.SVCount(), ResolvedType: c.ResolvedType}
}

func (e *Engine) filterGenes(list []*genes.GeneAnnotation) []*genes.GeneAnnotation {
	if e.restricted == nil {
		return list
	}
	var kept []*genes.GeneAnnotation
	for _, g := range list {
		if e.restricted[g.GeneName] {
			kept = append(kept, g)
		}
	}
	return kept
}

// clusterFusions walks every chain of the cluster and then marks one
// reportable fusion per gene pair.
func (e *Engine) clusterFusions(resolved *disruption.Resolved, c *sv.Cluster, rejected *rejectLog) []*GeneFusion {
	var fusions []*GeneFusion
	for _, ch := range c.Chains {
		fusions = e.chainFusions(resolved, c, ch, fusions, rejected)
	}
	if len(fusions) == 0 {
		return nil
	}

	var order []string
	byName := make(map[string][]*GeneFusion)
	for _, f := range fusions {
		name := f.Name()
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], f)
	}
	for _, name := range order {
		e.validator.SetReportableGeneFusions(byName[name], resolved)
	}

	if !e.cfg.LogReportableOnly {
		return fusions
	}
	var kept []*GeneFusion
	for _, f := range fusions {
		if f.Reportable {
			kept = append(kept, f)
		}
	}
	return kept
}

// chainFusions tests every breakend pair facing each other along the chain:
// the lower breakend opens a section at link i and the upper one closes it at
// link j, with links i..j-1 traversed in between.
func (e *Engine) chainFusions(resolved *disruption.Resolved, c *sv.Cluster, ch *sv.Chain, fusions []*GeneFusion, rejected *rejectLog) []*GeneFusion {
	links := ch.Links()
	n := len(links)

	for i := 0; i <= n; i++ {
		var lower *sv.Breakend
		if i < n {
			lower = links[i].First().Other()
		} else {
			lower = links[n-1].Second()
		}
		if lower == nil {
			e.logger.Debug("chain lower breakend missing", zap.Int("chain", ch.ID), zap.Int("index", i))
			continue
		}
		lowerGenes := e.filterGenes(lower.Genes())
		if len(lowerGenes) == 0 {
			continue
		}

		var traversed []*sv.LinkedPair
		for j := i; j <= n; j++ {
			var upper *sv.Breakend
			if j < n {
				upper = links[j].First()
			} else {
				upper = ch.OpenBreakend(false)
			}
			if upper == nil {
				e.logger.Debug("chain upper breakend missing", zap.Int("chain", ch.ID), zap.Int("index", j))
				continue
			}
			if j > i {
				traversed = append(traversed, links[j-1])
			}

			upperGenes := e.filterGenes(upper.Genes())
			if len(upperGenes) == 0 {
				continue
			}

			candidates := e.validator.FindFusions(lowerGenes, upperGenes, resolved, false)
			if len(candidates) == 0 {
				continue
			}
			if j > i {
				candidates = dropExonic(candidates)
			}
			if e.cfg.LogReportableOnly {
				candidates = e.couldBeReportable(candidates, resolved)
			}
			if len(candidates) == 0 {
				continue
			}

			validCount := 0
			for _, f := range candidates {
				length, assembled, valid := e.checkTraversal(f, lower, traversed)
				if !valid {
					rejected.add(f, RejectInvalidTraversal, ch.ID)
					continue
				}
				validCount++

				termUp, termDown := e.checkTermination(f, ch, lower, upper, i, j)
				f.Annotations = clusterAnnotations(c)
				f.Annotations.TerminatedUp = termUp
				f.Annotations.TerminatedDown = termDown
				f.Annotations.Chain = &ChainInfo{
					ChainID:            ch.ID,
					Links:              j - i,
					Length:             length,
					TraversalAssembled: assembled,
					ValidTraversal:     valid,
				}

				tooLong := length > e.cfg.MaxChainLength
				if (!tooLong && !f.IsTerminated()) || AllowSuspectChains(f.KnownType) {
					if !hasIdenticalFusion(fusions, f) {
						fusions = append(fusions, f)
					}
					continue
				}
				if tooLong {
					rejected.add(f, RejectLongChain, ch.ID)
				} else {
					rejected.add(f, RejectTerminated, ch.ID)
				}
			}

			if validCount == 0 && j > i {
				break
			}
		}
	}
	return fusions
}

// checkTraversal sums the traversed links and checks that none of them
// crosses a splice acceptor in the fusion's direction.
func (e *Engine) checkTraversal(f *GeneFusion, lower *sv.Breakend, traversed []*sv.LinkedPair) (length int64, assembled, valid bool) {
	upStrand := f.Up.Gene().Strand
	precoding := f.Up.PreCoding()
	lowerToUpper := isBreakend(f.Up.Gene(), lower)

	assembled = true
	for _, p := range traversed {
		length += p.Length()
		if p.Inferred() {
			assembled = false
		}

		entry := p.Second()
		if lowerToUpper {
			entry = p.First()
		}
		direction := -upStrand
		if entry.Orientation != upStrand {
			direction = upStrand
		}
		if e.traverser.PairTraversesGene(p, direction, precoding) {
			return length, assembled, false
		}
	}
	return length, assembled, true
}

// checkTermination tests whether the chain ends either transcript before the
// fused section. Chain ends are never terminated.
func (e *Engine) checkTermination(f *GeneFusion, ch *sv.Chain, lower, upper *sv.Breakend, i, j int) (termUp, termDown bool) {
	n := ch.LinkCount()
	result := [2]bool{}
	for k, t := range []*genes.Transcript{f.Up, f.Down} {
		isLower := isBreakend(t.Gene(), lower)
		if (isLower && i == 0) || (!isLower && j == n) {
			continue
		}

		b, linkIndex := upper, j
		if isLower {
			b, linkIndex = lower, i-1
		}
		terminated, err := transcriptTerminated(ch, linkIndex, b, t)
		if err != nil {
			e.logger.Error("fusion termination check", zap.Int("chain", ch.ID), zap.Int("link", linkIndex), zap.Error(err))
			break
		}
		result[k] = terminated
	}
	return result[0], result[1]
}

// transcriptTerminated looks across the link outward from b and reports
// whether the far side of the templated insertion lands inside the
// transcript, cutting it short.
func transcriptTerminated(ch *sv.Chain, linkIndex int, b *sv.Breakend, t *genes.Transcript) (bool, error) {
	if b == nil {
		return false, nil
	}
	link, err := ch.Link(linkIndex)
	if err != nil {
		return false, err
	}
	up := link.First() == b
	next := link.First()
	if up {
		next = link.Second()
	}

	if next.Orientation == 1 {
		if next.Position > t.TranscriptEnd {
			return false, nil
		}
		if !t.IsUpstream() && t.CodingEnd != 0 && next.Position > t.CodingEnd {
			return false, nil
		}
	} else {
		if next.Position < t.TranscriptStart {
			return false, nil
		}
		if !t.IsUpstream() && t.CodingStart != 0 && next.Position < t.CodingStart {
			return false, nil
		}
	}
	return true, nil
}

func isBreakend(g *genes.GeneAnnotation, b *sv.Breakend) bool {
	return b != nil && b.SV() != nil && g.SvID == b.SV().ID && g.IsStart == b.IsStart()
}

func dropExonic(fusions []*GeneFusion) []*GeneFusion {
	var kept []*GeneFusion
	for _, f := range fusions {
		if !f.Exonic {
			kept = append(kept, f)
		}
	}
	return kept
}

func (e *Engine) couldBeReportable(fusions []*GeneFusion, resolved *disruption.Resolved) []*GeneFusion {
	var kept []*GeneFusion
	for _, f := range fusions {
		if e.validator.CouldBeReportable(f, resolved) {
			kept = append(kept, f)
		}
	}
	return kept
}

func hasIdenticalFusion(fusions []*GeneFusion, f *GeneFusion) bool {
	for _, other := range fusions {
		if sameFusion(other, f) {
			return true
		}
	}
	return false
}

// extractUniqueFusions keeps every reportable fusion, then the best viable
// fusion for each remaining gene pair whose SVs are not yet used.
func (e *Engine) extractUniqueFusions(fusions []*GeneFusion, resolved *disruption.Resolved) []*GeneFusion {
	usedNames := make(map[string]bool)
	usedSVs := make(map[int]bool)
	useSVs := func(f *GeneFusion) {
		usedSVs[f.Up.Gene().SvID] = true
		usedSVs[f.Down.Gene().SvID] = true
	}
	svsUsed := func(f *GeneFusion) bool {
		return usedSVs[f.Up.Gene().SvID] || usedSVs[f.Down.Gene().SvID]
	}

	var unique []*GeneFusion
	for _, f := range fusions {
		if !f.Reportable {
			continue
		}
		unique = append(unique, f)
		if !e.cfg.LogRepeatedGenePairs {
			usedNames[f.Name()] = true
		}
		useSVs(f)
	}

	for _, f := range fusions {
		if f.Reportable || usedNames[f.Name()] || svsUsed(f) || !f.Viable() {
			continue
		}

		similar := []*GeneFusion{f}
		for _, other := range fusions {
			if other == f || other.Reportable || !other.Viable() || other.Name() != f.Name() || svsUsed(other) {
				continue
			}
			similar = append(similar, other)
		}
		if !e.cfg.LogRepeatedGenePairs {
			usedNames[f.Name()] = true
		}

		if top := e.validator.DetermineReportableFusion(similar, resolved, false); top != nil {
			unique = append(unique, top)
			useSVs(top)
		}
	}
	return unique
}

// rejectLog keeps the first rejection per fusion name.
type rejectLog struct {
	seen map[string]bool
	list []Rejected
}

func newRejectLog() *rejectLog {
	return &rejectLog{seen: make(map[string]bool)}
}

func (r *rejectLog) add(f *GeneFusion, reason string, chainID int) {
	name := f.Name()
	if r.seen[name] {
		return
	}
	r.seen[name] = true
	r.list = append(r.list, Rejected{Fusion: f, Reason: reason, ChainID: chainID})
}
