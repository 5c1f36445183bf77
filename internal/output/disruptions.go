package output

import (
	"io"

	"github.com/inodb/vibe-linx/internal/disruption"
)

var disruptionColumns = []string{
	"SampleId", "Reportable", "SvId", "IsStart", "Type", "ClusterId",
	"Chromosome", "Position", "Orientation",
	"GeneId", "GeneName", "Strand", "TransId", "ExonUp", "ExonDown", "CodingType", "RegionType",
	"UndisruptedCN", "ExcludedReason", "ExtraInfo",
}

// DisruptionWriter writes reportable and excluded disruptions for any number
// of samples into one file.
type DisruptionWriter struct {
	*tabWriter
}

// NewDisruptionWriter creates a disruption writer.
func NewDisruptionWriter(w io.Writer) *DisruptionWriter {
	return &DisruptionWriter{newTabWriter(w, disruptionColumns)}
}

// Write writes a single disruption record.
func (dw *DisruptionWriter) Write(sampleID string, r disruption.Record) error {
	return dw.writeRow([]string{
		sampleID, btoa(r.Reportable), itoa(r.SvID), btoa(r.IsStart), orNull(string(r.Type)), itoa(r.ClusterID),
		r.Chromosome, i64(r.Position), i8(r.Orientation),
		r.GeneID, r.GeneName, i8(r.Strand), r.TransID, itoa(r.ExonUp), itoa(r.ExonDown),
		string(r.CodingType), string(r.RegionType),
		ftoa(r.UndisruptedCN, 2), orNull(r.ExcludedReason), orNull(r.ExtraInfo),
	})
}

// WriteAll writes every record of a sample.
func (dw *DisruptionWriter) WriteAll(sampleID string, records []disruption.Record) error {
	for _, r := range records {
		if err := dw.Write(sampleID, r); err != nil {
			return err
		}
	}
	return nil
}
