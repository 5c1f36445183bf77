package duckdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/ensembl"
	"github.com/inodb/vibe-linx/internal/fusion"
	"github.com/inodb/vibe-linx/internal/sv"
	"github.com/inodb/vibe-linx/internal/testutil"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleResults runs a GENE1_GENE2 deletion through both engines.
func sampleResults(t *testing.T) (fusion.Result, *disruption.Resolved) {
	t.Helper()
	s := testutil.DEL(1, "1", 1550, 11200)
	clusters := testutil.Singletons(s)
	testutil.Annotate(testutil.Annotator(), s)

	df := disruption.NewFinder(testutil.Reference(), disruption.DefaultConfig())
	df.AddDisruptionGeneID("ENSG0001")
	df.AddDisruptionGeneID("ENSG0002")
	resolved := df.MarkTranscriptsDisruptive([]*sv.SV{s})

	e := fusion.NewEngine(fusion.NewFinder(nil, fusion.FinderConfig{}), df, fusion.DefaultConfig())
	return e.Run(resolved, []*sv.SV{s}, clusters), resolved
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "linx.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndQueryFusions(t *testing.T) {
	s := openInMemory(t)
	res, _ := sampleResults(t)
	require.Len(t, res.Fusions, 1)

	// The repeated fusion is written once.
	fusions := append(res.Fusions, res.Fusions[0])
	require.NoError(t, s.WriteFusions("S1", "run-1", fusions))

	rows, err := s.FusionsBySample("S1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "GENE1_GENE2", r.Name)
	assert.Equal(t, "NONE", r.KnownType)
	assert.True(t, r.PhaseMatched)
	assert.Equal(t, "ENST0001", r.TransUp)
	assert.Equal(t, 2, r.ExonUp)
	assert.Equal(t, 2, r.ExonDown)
	assert.Equal(t, 100, r.ClusterID)
	assert.Equal(t, -1, r.ChainID)

	rows, err = s.FusionsByGene("GENE2")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.FusionsByGene("GENE3")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteFusions_Chain(t *testing.T) {
	s := openInMemory(t)
	res, _ := sampleResults(t)
	f := res.Fusions[0]
	f.Annotations.Chain = &fusion.ChainInfo{ChainID: 3, Links: 2, Length: 1200, ValidTraversal: true}

	require.NoError(t, s.WriteFusions("S1", "run-1", []*fusion.GeneFusion{f}))
	rows, err := s.FusionsBySample("S1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].ChainID)
	assert.Equal(t, 2, rows[0].ChainLinks)
	assert.Equal(t, int64(1200), rows[0].ChainLength)
}

func TestWriteAndQueryDisruptions(t *testing.T) {
	s := openInMemory(t)
	_, resolved := sampleResults(t)
	records := resolved.Reportable()
	require.NotEmpty(t, records)

	require.NoError(t, s.WriteDisruptions("S1", "run-1", append(records, records...)))

	rows, err := s.DisruptionsBySample("S1")
	require.NoError(t, err)
	require.Len(t, rows, len(records))
	assert.Equal(t, records[0], rows[0].Record)
	assert.Equal(t, "S1", rows[0].SampleID)
}

func TestClearSample(t *testing.T) {
	s := openInMemory(t)
	res, resolved := sampleResults(t)
	require.NoError(t, s.WriteFusions("S1", "run-1", res.Fusions))
	require.NoError(t, s.WriteFusions("S2", "run-1", res.Fusions))
	require.NoError(t, s.WriteDisruptions("S1", "run-1", resolved.Reportable()))

	require.NoError(t, s.ClearSample("S1"))

	rows, err := s.FusionsBySample("S1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	disruptions, err := s.DisruptionsBySample("S1")
	require.NoError(t, err)
	assert.Empty(t, disruptions)

	rows, err = s.FusionsBySample("S2")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestNewRunID(t *testing.T) {
	a, err := NewRunID()
	require.NoError(t, err)
	b, err := NewRunID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "run-"))
	assert.Len(t, a, len("run-")+runIDLength)
	assert.NotEqual(t, a, b)
}

// --- Gene cache tests (gob) ---

func writeSource(t *testing.T, dir, name, content string) FileFingerprint {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	fp, err := StatFile(path)
	require.NoError(t, err)
	return fp
}

func TestGeneCache_WriteLoad(t *testing.T) {
	dir := t.TempDir()
	gtf := writeSource(t, dir, "genes.gtf", "gtf")
	canonical := writeSource(t, dir, "canonical.txt", "canonical")

	gc := NewGeneCache(filepath.Join(dir, "cache"))
	assert.False(t, gc.Valid(gtf, canonical))
	require.NoError(t, gc.Write(testutil.Reference(), gtf, canonical))
	assert.True(t, gc.Valid(gtf, canonical))

	c := ensembl.New()
	require.NoError(t, gc.Load(c))
	assert.Equal(t, 3, c.GeneCount())
	g := c.GeneByName("GENE2")
	require.NotNil(t, g)
	require.Len(t, g.Transcripts, 1)
	assert.Len(t, g.Transcripts[0].Exons, 4)
	assert.Equal(t, int64(11050), g.Transcripts[0].CDSStart)
	assert.Len(t, c.FindGenes("1", 1550, 0), 1)
}

func TestGeneCache_InvalidatedBySourceChange(t *testing.T) {
	dir := t.TempDir()
	gtf := writeSource(t, dir, "genes.gtf", "gtf")

	gc := NewGeneCache(dir)
	require.NoError(t, gc.Write(testutil.Reference(), gtf, FileFingerprint{}))
	assert.True(t, gc.Valid(gtf, FileFingerprint{}))

	changed := gtf
	changed.Size++
	assert.False(t, gc.Valid(changed, FileFingerprint{}))

	changed = gtf
	changed.ModTime = gtf.ModTime.Add(time.Second)
	assert.False(t, gc.Valid(changed, FileFingerprint{}))

	gc.Clear()
	assert.False(t, gc.Valid(gtf, FileFingerprint{}))
}

func TestStatFile(t *testing.T) {
	fp, err := StatFile("")
	require.NoError(t, err)
	assert.Equal(t, FileFingerprint{}, fp)

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
