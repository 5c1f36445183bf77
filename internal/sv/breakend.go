package sv

import (
	"fmt"

	"github.com/inodb/vibe-linx/internal/genes"
)

// Breakend is one side of an SV.
type Breakend struct {
	Chromosome        string
	Position          int64
	Orientation       int8    // +1 retains the lower side, -1 the upper side
	CopyNumberLowSide float64 // Copy number on the low side of the breakend

	sv      *SV
	isStart bool
	genes   []*genes.GeneAnnotation
	dbLink  *DBPair
	links   []*LinkedPair
}

// NewBreakend creates a breakend not yet attached to an SV.
func NewBreakend(chrom string, pos int64, orientation int8, cnLowSide float64) *Breakend {
	return &Breakend{Chromosome: chrom, Position: pos, Orientation: orientation, CopyNumberLowSide: cnLowSide}
}

// SV returns the owning SV.
func (b *Breakend) SV() *SV { return b.sv }

// IsStart reports whether this is the SV's start breakend.
func (b *Breakend) IsStart() bool { return b.isStart }

// Other returns the SV's other breakend, nil for a single breakend.
func (b *Breakend) Other() *Breakend {
	if b.isStart {
		return b.sv.end
	}
	return b.sv.start
}

// Genes returns the gene annotations at this breakend.
func (b *Breakend) Genes() []*genes.GeneAnnotation { return b.genes }

// SetGenes attaches gene annotations. It is called once while the sample
// graph is built.
func (b *Breakend) SetGenes(g []*genes.GeneAnnotation) { b.genes = g }

// DBLink returns the deletion bridge the breakend is part of, or nil.
func (b *Breakend) DBLink() *DBPair { return b.dbLink }

// Links returns the linked pairs the breakend takes part in.
func (b *Breakend) Links() []*LinkedPair { return b.links }

func (b *Breakend) String() string {
	return fmt.Sprintf("%s:%d:%d", b.Chromosome, b.Position, b.Orientation)
}
