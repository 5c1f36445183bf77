package output

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

func sampleRecord() disruption.Record {
	return disruption.Record{
		SvID:          5,
		IsStart:       true,
		Type:          sv.BND,
		ClusterID:     2,
		Chromosome:    "1",
		Position:      1550,
		Orientation:   1,
		GeneID:        "ENSG0001",
		GeneName:      "GENE1",
		Strand:        1,
		KaryotypeBand: "p36.33",
		JCN:           1.2,
		TransID:       "ENST0001",
		ExonUp:        2,
		ExonDown:      3,
		CodingType:    genes.CodingCDS,
		RegionType:    genes.RegionIntronic,
		UndisruptedCN: 0.8,
		Reportable:    true,
	}
}

func TestDisruptionWriter(t *testing.T) {
	excluded := sampleRecord()
	excluded.Reportable = false
	excluded.ExcludedReason = disruption.ReasonSameIntron
	excluded.ExtraInfo = "1-200"

	var buf bytes.Buffer
	w := NewDisruptionWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteAll("S1", []disruption.Record{sampleRecord(), excluded}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	row := columns(t, disruptionColumns, lines[1])
	assert.Equal(t, "true", row["Reportable"])
	assert.Equal(t, "BND", row["Type"])
	assert.Equal(t, "0.80", row["UndisruptedCN"])
	assert.Equal(t, "-", row["ExcludedReason"])

	row = columns(t, disruptionColumns, lines[2])
	assert.Equal(t, "false", row["Reportable"])
	assert.Equal(t, "SameIntronNoSPA", row["ExcludedReason"])
	assert.Equal(t, "1-200", row["ExtraInfo"])
}

func TestReportableDisruptions_WriteRead(t *testing.T) {
	negative := sampleRecord()
	negative.SvID = 6
	negative.UndisruptedCN = -0.4
	negative.KaryotypeBand = ""

	path := ReportableDisruptionFile(t.TempDir(), "S1")
	assert.True(t, strings.HasSuffix(path, "S1.linx.disruptions.tsv"))
	require.NoError(t, WriteReportableDisruptions(path, []disruption.Record{sampleRecord(), negative}))

	got, err := ReadReportableDisruptions(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ReportableDisruption{
		SvID:                  5,
		Chromosome:            "1",
		Orientation:           1,
		Strand:                1,
		ChrBand:               "p36.33",
		Gene:                  "GENE1",
		Type:                  "BND",
		JunctionCopyNumber:    1.2,
		ExonUp:                2,
		ExonDown:              3,
		UndisruptedCopyNumber: 0.8,
	}, got[0])
	assert.Equal(t, 0.0, got[1].UndisruptedCopyNumber, "clamped at zero")
	assert.Empty(t, got[1].ChrBand)
}

func TestReadReportableDisruptions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"short row", "#svId\tchromosome\n1\t1\n"},
		{"bad number", "#svId\n" + "x\t1\t1\t1\t-\tG\tDEL\t1\t1\t2\t0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := t.TempDir() + "/bad.tsv"
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := ReadReportableDisruptions(path)
			assert.Error(t, err)
		})
	}

	_, err := ReadReportableDisruptions(t.TempDir() + "/missing.tsv")
	assert.Error(t, err)
}
