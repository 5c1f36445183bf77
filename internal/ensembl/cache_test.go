package ensembl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_AddGeneKeepsOrder(t *testing.T) {
	c := New()
	c.AddGene(&Gene{ID: "B", Name: "GB", Chrom: "1", Start: 500, End: 600, Strand: 1})
	c.AddGene(&Gene{ID: "A", Name: "GA", Chrom: "1", Start: 100, End: 200, Strand: 1})
	c.AddGene(&Gene{ID: "C", Name: "GC", Chrom: "2", Start: 100, End: 200, Strand: -1})
	c.AddGene(&Gene{ID: "A", Name: "dup", Chrom: "1", Start: 1, End: 2, Strand: 1})

	genes := c.Genes("1")
	require.Len(t, genes, 2)
	assert.Equal(t, "A", genes[0].ID)
	assert.Equal(t, "B", genes[1].ID)
	assert.Equal(t, "GA", c.GeneByID("A").Name, "duplicate id ignored")
	assert.Equal(t, 3, c.GeneCount())
	assert.Equal(t, []string{"1", "2"}, c.Chromosomes())
	assert.Nil(t, c.GeneByName("missing"))
}

func TestCache_AddTranscriptCreatesGene(t *testing.T) {
	c := New()
	c.AddTranscript(&Transcript{ID: "T1", GeneID: "G1", GeneName: "KRAS", Chrom: "12", Start: 100, End: 300, Strand: -1})
	c.AddTranscript(&Transcript{ID: "T2", GeneID: "G1", GeneName: "KRAS", Chrom: "12", Start: 50, End: 400, Strand: -1})

	g := c.GeneByName("KRAS")
	require.NotNil(t, g)
	assert.Equal(t, int64(50), g.Start)
	assert.Equal(t, int64(400), g.End)
	assert.Len(t, g.Transcripts, 2)
	assert.Equal(t, 2, c.TranscriptCount())
}

func TestCache_FindGenes(t *testing.T) {
	c := fusionCache()

	tests := []struct {
		name     string
		pos      int64
		distance int64
		want     []string
	}{
		{"inside gene1", 1250, 0, []string{"GENE1"}},
		{"between genes", 5000, 0, nil},
		{"promoter of gene2", 9900, 200, []string{"GENE2"}},
		{"beyond promoter", 9700, 200, nil},
		{"downstream not padded", 2100, 200, nil},
		{"other chromosome", 1250, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chrom := "1"
			if tt.name == "other chromosome" {
				chrom = "2"
			}
			var names []string
			for _, g := range c.FindGenes(chrom, tt.pos, tt.distance) {
				names = append(names, g.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCache_FindGenesReverseStrandPadding(t *testing.T) {
	c := New()
	c.AddGene(&Gene{ID: "R", Name: "REV", Chrom: "3", Start: 1000, End: 2000, Strand: -1})

	assert.Len(t, c.FindGenes("3", 2150, 200), 1, "reverse strand promoter lies above the gene")
	assert.Empty(t, c.FindGenes("3", 850, 200))
}

func TestCache_FindGenesAfterAdd(t *testing.T) {
	c := fusionCache()
	assert.Empty(t, c.FindGenes("1", 5000, 0))

	c.AddGene(&Gene{ID: "ENSG0003", Name: "GENE3", Chrom: "1", Start: 4000, End: 6000, Strand: 1})
	found := c.FindGenes("1", 5000, 0)
	require.Len(t, found, 1)
	assert.Equal(t, "GENE3", found[0].Name)
}

func TestGene_CanonicalTranscript(t *testing.T) {
	g := fusionGenes()[0]
	require.NotNil(t, g.CanonicalTranscript())
	assert.Equal(t, "ENST0001", g.CanonicalTranscript().ID)

	g.Transcripts[0].IsCanonical = false
	assert.Nil(t, g.CanonicalTranscript())
}

func TestTranscript_Coding(t *testing.T) {
	tr := fusionGenes()[0].Transcripts[0]

	assert.True(t, tr.IsProteinCoding())
	assert.Equal(t, int64(101), tr.CodingOverlap(&tr.Exons[1]))
	assert.Equal(t, int64(0), tr.CodingOverlap(&tr.Exons[0]))
	assert.Equal(t, int64(101+101+101), tr.TotalCodingBases())

	require.NotNil(t, tr.FindExon(1650))
	assert.Equal(t, 3, tr.FindExon(1650).Number)
	assert.Nil(t, tr.FindExon(1200))
}
