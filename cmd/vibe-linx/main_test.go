package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-linx/internal/analysis"
	"github.com/inodb/vibe-linx/internal/duckdb"
	"github.com/inodb/vibe-linx/internal/output"
)

const testGTF = `##description: test annotation
chr1	HAVANA	gene	1000	2000	.	+	.	gene_id "ENSG0001.3"; gene_type "protein_coding"; gene_name "GENE1";
chr1	HAVANA	transcript	1000	2000	.	+	.	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; transcript_type "protein_coding"; tag "Ensembl_canonical";
chr1	HAVANA	exon	1000	1100	.	+	.	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; exon_number "1";
chr1	HAVANA	exon	1300	1500	.	+	.	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; exon_number "2";
chr1	HAVANA	exon	1600	1700	.	+	.	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; exon_number "3";
chr1	HAVANA	CDS	1400	1500	.	+	0	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; exon_number "2";
chr1	HAVANA	CDS	1600	1697	.	+	1	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; exon_number "3";
chr1	HAVANA	stop_codon	1698	1700	.	+	0	gene_id "ENSG0001.3"; transcript_id "ENST0001.2"; gene_name "GENE1"; exon_number "3";
`

const testPanel = "Hugo Symbol\tEntrez Gene ID\tGene Type\nGENE1\t1\tTSG\n"

const testSample = `{"sampleId": "S1",
 "svs": [{"id": 1, "type": "DEL", "jcn": 1.0,
          "start": {"chromosome": "1", "position": 1550, "orientation": 1, "copyNumberLowSide": 2.0},
          "end":   {"chromosome": "1", "position": 5000, "orientation": -1, "copyNumberLowSide": 2.0}}]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testOptions(t *testing.T) runOptions {
	t.Helper()
	dir := t.TempDir()
	return runOptions{
		assembly:    "GRCh38",
		gtf:         writeFile(t, dir, "gencode.v46.annotation.gtf", testGTF),
		driverPanel: writeFile(t, dir, "cancerGeneList.tsv", testPanel),
		outputDir:   filepath.Join(dir, "out"),
		workers:     2,
		analysis:    analysis.DefaultConfig(),
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRunSamples(t *testing.T) {
	opts := testOptions(t)
	opts.db = filepath.Join(t.TempDir(), "results.duckdb")
	sample := writeFile(t, t.TempDir(), "S1.json", testSample)

	require.NoError(t, runSamples(opts, []string{sample}))

	fusions := readLines(t, filepath.Join(opts.outputDir, fusionsFile))
	require.Len(t, fusions, 1, "header only")
	assert.True(t, strings.HasPrefix(fusions[0], "SampleId\tName\t"))

	disruptions := readLines(t, filepath.Join(opts.outputDir, disruptionsFile))
	require.Len(t, disruptions, 2)
	assert.Contains(t, disruptions[1], "GENE1")

	assert.NoFileExists(t, filepath.Join(opts.outputDir, invalidFusionsFile))

	recs, err := output.ReadReportableDisruptions(output.ReportableDisruptionFile(opts.outputDir, "S1"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "GENE1", recs[0].Gene)

	store, err := duckdb.Open(opts.db)
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.DisruptionsBySample("S1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ENST0001", rows[0].TransID)
}

func TestRunSamples_GeneCacheReused(t *testing.T) {
	opts := testOptions(t)
	sample := writeFile(t, t.TempDir(), "S1.json", testSample)

	require.NoError(t, runSamples(opts, []string{sample}))
	assert.FileExists(t, filepath.Join(filepath.Dir(opts.gtf), "genes.gob"))

	require.NoError(t, runSamples(opts, []string{sample}))
	recs, err := output.ReadReportableDisruptions(output.ReportableDisruptionFile(opts.outputDir, "S1"))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRunSamples_FailedSample(t *testing.T) {
	opts := testOptions(t)
	opts.invalidFusions = true
	good := writeFile(t, t.TempDir(), "S1.json", testSample)
	missing := filepath.Join(t.TempDir(), "S2.json")

	err := runSamples(opts, []string{missing, good})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 samples failed")

	assert.FileExists(t, output.ReportableDisruptionFile(opts.outputDir, "S1"))
	assert.FileExists(t, filepath.Join(opts.outputDir, invalidFusionsFile))
}

func TestRunSamples_NoAnnotation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	opts := testOptions(t)
	opts.gtf = ""

	err := runSamples(opts, []string{"S1.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vibe-linx download")
}

func TestFindGENCODEFiles(t *testing.T) {
	dir := t.TempDir()
	_, _, found := findGENCODEFiles(dir, "GRCh38")
	assert.False(t, found)

	gtf := writeFile(t, dir, "gencode.v46.annotation.gtf.gz", "")
	got, canonical, found := findGENCODEFiles(dir, "GRCh38")
	assert.True(t, found)
	assert.Equal(t, gtf, got)
	assert.Empty(t, canonical)

	writeFile(t, dir, "ensembl_biomart_canonical_transcripts_per_hgnc.txt", "")
	_, canonical, _ = findGENCODEFiles(dir, "GRCh38")
	assert.NotEmpty(t, canonical)

	_, _, found = findGENCODEFiles(dir, "GRCh37")
	assert.False(t, found)
}

func TestGencodeGTFURL(t *testing.T) {
	assert.True(t, strings.HasSuffix(gencodeGTFURL("GRCh38"), "/gencode.v46.annotation.gtf.gz"))
	assert.True(t, strings.HasSuffix(gencodeGTFURL("grch37"), "/GRCh37_mapping/gencode.v46lift37.annotation.gtf.gz"))
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := newLogger(level, false)
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}
	_, err := newLogger("loud", false)
	assert.ErrorIs(t, err, errUsage)

	l, err := newLogger("loud", true)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"TMPRSS2", "ERG"}, splitList("TMPRSS2, ERG,"))
	assert.Nil(t, splitList(""))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes))
	}
}
