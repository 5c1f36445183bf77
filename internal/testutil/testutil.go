// Package testutil builds reference annotation and SV graphs for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-linx/internal/ensembl"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

// PreGeneDistance is the promoter distance used with Reference.
const PreGeneDistance = 200

// Reference returns a cache with two forward-strand coding genes on
// chromosome 1 (GENE1 at 1000-2000, GENE2 at 10000-12000) and a copy of GENE2
// on chromosome 2 named GENE3.
//
// The GENE2 and GENE3 transcripts start at 11000, so their gene spans reach
// 1000 bases further upstream than any transcript. A breakend in that stretch
// and beyond PreGeneDistance of 11000 falls in the gene span but touches no
// transcript, and the annotator leaves it non-genic.
//
// GENE1 intron 2 and GENE2 intron 1 are phase matched (phase 1), as are
// GENE1 intron 3 and GENE2 intron 2 (phase 2).
func Reference() *ensembl.Cache {
	c := ensembl.New()
	c.AddGene(forwardGene("ENSG0001", "GENE1", "ENST0001", "1", 1000, 2000, 1000, 1400, 1900, []ensembl.Exon{
		{Number: 1, Start: 1000, End: 1100, PhaseStart: -1, PhaseEnd: -1},
		{Number: 2, Start: 1300, End: 1500, PhaseStart: -1, PhaseEnd: 1},
		{Number: 3, Start: 1600, End: 1700, PhaseStart: 1, PhaseEnd: 2},
		{Number: 4, Start: 1800, End: 1900, PhaseStart: 2, PhaseEnd: -1},
	}))
	downExons := []ensembl.Exon{
		{Number: 1, Start: 11000, End: 11100, PhaseStart: -1, PhaseEnd: 1},
		{Number: 2, Start: 11300, End: 11500, PhaseStart: 1, PhaseEnd: 2},
		{Number: 3, Start: 11600, End: 11700, PhaseStart: 2, PhaseEnd: 0},
		{Number: 4, Start: 11950, End: 12000, PhaseStart: 2, PhaseEnd: -1},
	}
	c.AddGene(forwardGene("ENSG0002", "GENE2", "ENST0002", "1", 10000, 12000, 11000, 11050, 11980, downExons))
	c.AddGene(forwardGene("ENSG0003", "GENE3", "ENST0003", "2", 10000, 12000, 11000, 11050, 11980, append([]ensembl.Exon(nil), downExons...)))
	return c
}

func forwardGene(geneID, name, transID, chrom string, start, end, transStart, cdsStart, cdsEnd int64, exons []ensembl.Exon) *ensembl.Gene {
	g := &ensembl.Gene{ID: geneID, Name: name, Chrom: chrom, Start: start, End: end, Strand: 1, Biotype: "protein_coding"}
	g.Transcripts = []*ensembl.Transcript{{
		ID: transID, GeneID: geneID, GeneName: name, Chrom: chrom,
		Start: transStart, End: end, Strand: 1, Biotype: "protein_coding", IsCanonical: true,
		CDSStart: cdsStart, CDSEnd: cdsEnd, Exons: exons,
	}}
	return g
}

// Annotator returns an annotator over Reference using PreGeneDistance.
func Annotator() *genes.Annotator {
	a := genes.NewAnnotator(Reference())
	a.SetPreGeneDistance(PreGeneDistance)
	return a
}

// Annotate attaches gene annotations to every breakend of the given SVs.
func Annotate(a *genes.Annotator, svs ...*sv.SV) {
	for _, s := range svs {
		for _, isStart := range []bool{true, false} {
			b := s.Breakend(isStart)
			if b == nil {
				continue
			}
			b.SetGenes(a.Annotate(s.ID, isStart, b.Chromosome, b.Position, b.Orientation))
		}
	}
}

// SV creates a two-breakend SV with unit copy numbers.
func SV(id int, t sv.Type, chrStart string, posStart int64, orientStart int8, chrEnd string, posEnd int64, orientEnd int8) *sv.SV {
	return sv.New(id, t, 1,
		sv.NewBreakend(chrStart, posStart, orientStart, 1),
		sv.NewBreakend(chrEnd, posEnd, orientEnd, 1))
}

// DEL creates a deletion between start and end.
func DEL(id int, chrom string, start, end int64) *sv.SV {
	return SV(id, sv.DEL, chrom, start, 1, chrom, end, -1)
}

// DUP creates a tandem duplication between start and end.
func DUP(id int, chrom string, start, end int64) *sv.SV {
	return SV(id, sv.DUP, chrom, start, -1, chrom, end, 1)
}

// SGL creates a single breakend.
func SGL(id int, chrom string, pos int64, orientation int8) *sv.SV {
	return sv.New(id, sv.SGL, 1, sv.NewBreakend(chrom, pos, orientation, 1), nil)
}

// Link joins two breakends in chain order.
func Link(first, second *sv.Breakend) *sv.LinkedPair {
	return sv.NewLinkedPair(first, second, false)
}

// Chain builds a chain, failing the test if the links do not join up.
func Chain(t *testing.T, id int, links ...*sv.LinkedPair) *sv.Chain {
	t.Helper()
	ch, err := sv.NewChain(id, links)
	require.NoError(t, err)
	return ch
}

// Cluster groups SVs into a cluster.
func Cluster(id int, resolvedType string, svs []*sv.SV, chains ...*sv.Chain) *sv.Cluster {
	return sv.NewCluster(id, resolvedType, svs, chains)
}

// Singletons puts each SV in its own cluster typed after the SV.
func Singletons(svs ...*sv.SV) []*sv.Cluster {
	clusters := make([]*sv.Cluster, 0, len(svs))
	for i, s := range svs {
		clusters = append(clusters, sv.NewCluster(100+i, string(s.Type), []*sv.SV{s}, nil))
	}
	return clusters
}
