package ensembl

// fusionGenes returns two forward-strand coding genes on chromosome 1 used
// across the package tests.
func fusionGenes() []*Gene {
	gene1 := &Gene{ID: "ENSG0001", Name: "GENE1", Chrom: "1", Start: 1000, End: 2000, Strand: 1, Biotype: "protein_coding"}
	gene1.Transcripts = []*Transcript{{
		ID: "ENST0001", GeneID: gene1.ID, GeneName: gene1.Name, Chrom: "1",
		Start: 1000, End: 2000, Strand: 1, Biotype: "protein_coding", IsCanonical: true,
		CDSStart: 1400, CDSEnd: 1900,
		Exons: []Exon{
			{Number: 1, Start: 1000, End: 1100, PhaseStart: -1, PhaseEnd: -1},
			{Number: 2, Start: 1300, End: 1500, PhaseStart: -1, PhaseEnd: 1},
			{Number: 3, Start: 1600, End: 1700, PhaseStart: 1, PhaseEnd: 2},
			{Number: 4, Start: 1800, End: 1900, PhaseStart: 2, PhaseEnd: -1},
		},
	}}

	gene2 := &Gene{ID: "ENSG0002", Name: "GENE2", Chrom: "1", Start: 10000, End: 12000, Strand: 1, Biotype: "protein_coding"}
	gene2.Transcripts = []*Transcript{{
		ID: "ENST0002", GeneID: gene2.ID, GeneName: gene2.Name, Chrom: "1",
		Start: 11000, End: 12000, Strand: 1, Biotype: "protein_coding", IsCanonical: true,
		CDSStart: 11050, CDSEnd: 11980,
		Exons: []Exon{
			{Number: 1, Start: 11000, End: 11100, PhaseStart: -1, PhaseEnd: 1},
			{Number: 2, Start: 11300, End: 11500, PhaseStart: 1, PhaseEnd: 2},
			{Number: 3, Start: 11600, End: 11700, PhaseStart: 2, PhaseEnd: 0},
			{Number: 4, Start: 11950, End: 12000, PhaseStart: 2, PhaseEnd: -1},
		},
	}}

	return []*Gene{gene1, gene2}
}

func fusionCache() *Cache {
	c := New()
	for _, g := range fusionGenes() {
		c.AddGene(g)
	}
	return c
}
