package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/fusion"
	"github.com/inodb/vibe-linx/internal/sv"
	"github.com/inodb/vibe-linx/internal/testutil"
)

// delFusion returns the GENE1_GENE2 fusion across a deletion of 1550-11200.
func delFusion(t *testing.T) *fusion.GeneFusion {
	t.Helper()
	s := testutil.DEL(1, "1", 1550, 11200)
	clusters := testutil.Singletons(s)
	testutil.Annotate(testutil.Annotator(), s)

	df := disruption.NewFinder(testutil.Reference(), disruption.DefaultConfig())
	e := fusion.NewEngine(fusion.NewFinder(nil, fusion.FinderConfig{}), df, fusion.DefaultConfig())
	res := e.Run(df.MarkTranscriptsDisruptive([]*sv.SV{s}), []*sv.SV{s}, clusters)
	require.Len(t, res.Fusions, 1)
	return res.Fusions[0]
}

// columns splits a written row and maps it to the header.
func columns(t *testing.T, header []string, line string) map[string]string {
	t.Helper()
	fields := strings.Split(line, "\t")
	require.Len(t, fields, len(header))
	row := make(map[string]string, len(header))
	for i, h := range header {
		row[h] = fields[i]
	}
	return row
}

func TestFusionWriter_SingleSV(t *testing.T) {
	var buf bytes.Buffer
	w := NewFusionWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write("S1", delFusion(t)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(fusionColumns, "\t"), lines[0])

	row := columns(t, fusionColumns, lines[1])
	checks := map[string]string{
		"SampleId":     "S1",
		"Name":         "GENE1_GENE2",
		"Reportable":   "false",
		"KnownType":    "NONE",
		"PhaseMatched": "true",
		"SvIdUp":       "1",
		"TransUp":      "ENST0001",
		"ExonUp":       "2",
		"RegionUp":     "Intronic",
		"CodingUp":     "Coding",
		"TransDown":    "ENST0002",
		"ExonDown":     "2",
		"ClusterId":    "100",
		"ResolvedType": "DEL",
		"ChainId":      "-",
		"ChainLength":  "-",
		"TerminatedUp": "false",
	}
	for col, want := range checks {
		assert.Equal(t, want, row[col], col)
	}
}

func TestFusionWriter_Chain(t *testing.T) {
	f := delFusion(t)
	f.Annotations.Chain = &fusion.ChainInfo{ChainID: 4, Links: 2, Length: 1500, TraversalAssembled: true, ValidTraversal: true}
	f.Annotations.TerminatedDown = true

	var buf bytes.Buffer
	w := NewFusionWriter(&buf)
	require.NoError(t, w.Write("S1", f))
	require.NoError(t, w.Flush())

	row := columns(t, fusionColumns, strings.TrimSpace(buf.String()))
	assert.Equal(t, "4", row["ChainId"])
	assert.Equal(t, "2", row["ChainLinks"])
	assert.Equal(t, "1500", row["ChainLength"])
	assert.Equal(t, "true", row["TerminatedDown"])
}

func TestInvalidFusionWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewInvalidFusionWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write("S1", fusion.Rejected{Fusion: delFusion(t), Reason: fusion.RejectLongChain, ChainID: 3}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "S1\tGENE1_GENE2\tLongChain\t1\t1\t3", lines[1])
}
