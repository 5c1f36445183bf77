package genes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-linx/internal/ensembl"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/testutil"
)

func annotateOne(t *testing.T, a *genes.Annotator, chrom string, pos int64, orientation int8) *genes.Transcript {
	t.Helper()
	found := a.Annotate(1, true, chrom, pos, orientation)
	require.Len(t, found, 1)
	require.Len(t, found[0].Transcripts(), 1)
	return found[0].Transcripts()[0]
}

func TestAnnotator_ForwardStrand(t *testing.T) {
	a := testutil.Annotator()

	tests := []struct {
		name        string
		pos         int64
		orientation int8
		exonUp      int
		exonDown    int
		phaseUp     int
		phaseDown   int
		codingBases int64
		region      genes.RegionType
		coding      genes.CodingType
		upstream    bool
	}{
		{"intron 2", 1550, 1, 2, 3, 1, 1, 101, genes.RegionIntronic, genes.CodingCDS, true},
		{"intron 1 non-coding", 1200, -1, 1, 2, -1, -1, 0, genes.RegionIntronic, genes.Coding5PUTR, false},
		{"exon 3", 1650, 1, 3, 3, 2, 1, 152, genes.RegionExonic, genes.CodingCDS, true},
		{"promoter", 900, -1, 0, 1, -1, -1, 0, genes.RegionPromoter, genes.Coding5PUTR, false},
		{"after last exon", 1950, 1, 4, -1, -1, -1, 300, genes.RegionDownstream, genes.Coding3PUTR, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := annotateOne(t, a, "1", tt.pos, tt.orientation)
			assert.Equal(t, "ENST0001", tr.TransID)
			assert.Equal(t, "GENE1", tr.GeneName())
			assert.Equal(t, tt.exonUp, tr.ExonUpstream)
			assert.Equal(t, tt.exonDown, tr.ExonDownstream)
			assert.Equal(t, tt.phaseUp, tr.ExonUpstreamPhase)
			assert.Equal(t, tt.phaseDown, tr.ExonDownstreamPhase)
			assert.Equal(t, tt.codingBases, tr.CodingBases)
			assert.Equal(t, tt.region, tr.RegionType())
			assert.Equal(t, tt.coding, tr.CodingType())
			assert.Equal(t, tt.upstream, tr.IsUpstream())
			assert.Equal(t, int64(300), tr.TotalCodingBases, "stop codon excluded")
			assert.Equal(t, 4, tr.ExonMax)
		})
	}
}

func TestAnnotator_PromoterDistanceFromTranscript(t *testing.T) {
	a := testutil.Annotator()

	// GENE2's transcript starts 1000 bases into the gene.
	assert.Empty(t, a.Annotate(1, true, "1", 9900, 1))

	tr := annotateOne(t, a, "1", 10900, 1)
	assert.True(t, tr.IsPromoter())
	assert.Equal(t, "GENE2", tr.GeneName())
}

func TestAnnotator_NonGenic(t *testing.T) {
	a := testutil.Annotator()
	assert.Empty(t, a.Annotate(1, true, "1", 5000, 1))
	assert.Empty(t, a.Annotate(1, true, "1", 2500, 1), "downstream of the gene")
	assert.Empty(t, a.Annotate(1, true, "9", 1500, 1))
}

func TestAnnotator_GeneFields(t *testing.T) {
	a := testutil.Annotator()
	found := a.Annotate(7, false, "1", 11200, -1)
	require.Len(t, found, 1)

	g := found[0]
	assert.Equal(t, 7, g.SvID)
	assert.False(t, g.IsStart)
	assert.Equal(t, "ENSG0002", g.GeneID)
	assert.Equal(t, int64(11200), g.Position)
	assert.False(t, g.IsUpstream())
	require.NotNil(t, g.Canonical())

	tr := g.Canonical()
	assert.Equal(t, genes.TranscriptKey{SvID: 7, IsStart: false, TransID: "ENST0002"}, tr.Key())
	assert.Equal(t, int64(51), tr.CodingBases)
	assert.Equal(t, int64(381), tr.TotalCodingBases)
	assert.Equal(t, 1, tr.ExonUpstreamPhase)
	assert.Equal(t, 1, tr.ExonDownstreamPhase)
}

func TestAnnotator_RestrictTo(t *testing.T) {
	a := testutil.Annotator()
	a.RestrictTo([]string{"GENE2"})
	assert.Empty(t, a.Annotate(1, true, "1", 1550, 1))
	assert.Len(t, a.Annotate(1, true, "1", 11200, 1), 1)

	a.RestrictTo(nil)
	assert.Len(t, a.Annotate(1, true, "1", 1550, 1), 1)
}

func TestAnnotator_ReverseStrand(t *testing.T) {
	c := ensembl.New()
	c.AddGene(&ensembl.Gene{
		ID: "ENSG0009", Name: "REV", Chrom: "3", Start: 1000, End: 2000, Strand: -1,
		Transcripts: []*ensembl.Transcript{{
			ID: "ENST0009", GeneID: "ENSG0009", GeneName: "REV", Chrom: "3",
			Start: 1000, End: 2000, Strand: -1, IsCanonical: true,
			CDSStart: 1050, CDSEnd: 1850,
			Exons: []ensembl.Exon{
				{Number: 3, Start: 1000, End: 1100, PhaseStart: 2, PhaseEnd: -1},
				{Number: 2, Start: 1400, End: 1500, PhaseStart: 0, PhaseEnd: 2},
				{Number: 1, Start: 1800, End: 2000, PhaseStart: -1, PhaseEnd: 0},
			},
		}},
	})
	a := genes.NewAnnotator(c)
	a.SetPreGeneDistance(200)

	tr := annotateOne(t, a, "3", 1600, 1)
	assert.Equal(t, 1, tr.ExonUpstream)
	assert.Equal(t, 2, tr.ExonDownstream)
	assert.Equal(t, 0, tr.ExonUpstreamPhase)
	assert.Equal(t, 0, tr.ExonDownstreamPhase)
	assert.Equal(t, int64(51), tr.CodingBases)
	assert.False(t, tr.IsUpstream(), "reverse strand with orientation +1 keeps the 3' part")

	tr = annotateOne(t, a, "3", 1450, -1)
	assert.True(t, tr.IsExonic())
	assert.Equal(t, int64(102), tr.CodingBases)
	assert.True(t, tr.IsUpstream())

	tr = annotateOne(t, a, "3", 2100, -1)
	assert.True(t, tr.IsPromoter())

	assert.Empty(t, a.Annotate(1, true, "3", 900, 1))
}
