// Package fusion finds gene fusions formed by single SVs and by chains of
// linked SVs.
package fusion

import (
	"fmt"

	"github.com/inodb/vibe-linx/internal/genes"
)

// ChainInfo describes the chain section joining a fusion's two breakends.
type ChainInfo struct {
	ChainID            int
	Links              int   // Links traversed between the breakends
	Length             int64 // Total length of the traversed links
	TraversalAssembled bool  // All traversed links were assembled
	ValidTraversal     bool  // No traversed link crosses a splice acceptor
}

// Annotations holds the cluster and chain context of a fusion.
type Annotations struct {
	ClusterID      int
	ClusterCount   int
	ResolvedType   string
	Chain          *ChainInfo // nil for single-SV fusions
	TerminatedUp   bool
	TerminatedDown bool
}

// GeneFusion joins the 5' part of an upstream transcript to the 3' part of a
// downstream transcript.
type GeneFusion struct {
	Up           *genes.Transcript
	Down         *genes.Transcript
	PhaseMatched bool
	Exonic       bool // Both breakends lie in exons
	KnownType    KnownType
	Reportable   bool
	Annotations  *Annotations
}

// Name returns the gene pair, e.g. TMPRSS2_ERG.
func (f *GeneFusion) Name() string {
	return f.Up.GeneName() + "_" + f.Down.GeneName()
}

// IsTerminated reports whether the chain ends either transcript before the
// fusion is formed.
func (f *GeneFusion) IsTerminated() bool {
	return f.Annotations != nil && (f.Annotations.TerminatedUp || f.Annotations.TerminatedDown)
}

// Viable reports whether the fusion can produce an in-frame product.
func (f *GeneFusion) Viable() bool {
	return f.PhaseMatched
}

func (f *GeneFusion) String() string {
	return fmt.Sprintf("%s sv(%d-%d) %s-%s", f.Name(), f.Up.Gene().SvID, f.Down.Gene().SvID, f.Up.TransID, f.Down.TransID)
}

// sameFusion reports whether two fusions join the same transcripts through
// the same SVs.
func sameFusion(a, b *GeneFusion) bool {
	return a.Up.Gene().SvID == b.Up.Gene().SvID &&
		a.Down.Gene().SvID == b.Down.Gene().SvID &&
		a.Up.TransID == b.Up.TransID &&
		a.Down.TransID == b.Down.TransID
}
