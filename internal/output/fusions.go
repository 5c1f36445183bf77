package output

import (
	"io"

	"github.com/inodb/vibe-linx/internal/fusion"
	"github.com/inodb/vibe-linx/internal/genes"
)

var fusionColumns = []string{
	"SampleId", "Name", "Reportable", "KnownType", "PhaseMatched", "Exonic",
	"SvIdUp", "GeneUp", "TransUp", "StrandUp", "ExonUp", "RegionUp", "CodingUp",
	"SvIdDown", "GeneDown", "TransDown", "StrandDown", "ExonDown", "RegionDown", "CodingDown",
	"ClusterId", "ClusterCount", "ResolvedType",
	"ChainId", "ChainLinks", "ChainLength", "TraversalAssembled", "ValidTraversal",
	"TerminatedUp", "TerminatedDown",
}

// FusionWriter writes fusions, one row each.
type FusionWriter struct {
	*tabWriter
}

// NewFusionWriter creates a fusion writer.
func NewFusionWriter(w io.Writer) *FusionWriter {
	return &FusionWriter{newTabWriter(w, fusionColumns)}
}

// Write writes a single fusion.
func (fw *FusionWriter) Write(sampleID string, f *fusion.GeneFusion) error {
	values := []string{
		sampleID, f.Name(), btoa(f.Reportable), string(f.KnownType), btoa(f.PhaseMatched), btoa(f.Exonic),
	}
	values = append(values, fusionSide(f.Up, f.Up.ExonUpstream)...)
	values = append(values, fusionSide(f.Down, f.Down.ExonDownstream)...)

	a := f.Annotations
	if a == nil {
		values = append(values, null, null, null)
	} else {
		values = append(values, itoa(a.ClusterID), itoa(a.ClusterCount), orNull(a.ResolvedType))
	}

	if a == nil || a.Chain == nil {
		values = append(values, null, null, null, null, null)
	} else {
		c := a.Chain
		values = append(values, itoa(c.ChainID), itoa(c.Links), i64(c.Length), btoa(c.TraversalAssembled), btoa(c.ValidTraversal))
	}

	var termUp, termDown bool
	if a != nil {
		termUp, termDown = a.TerminatedUp, a.TerminatedDown
	}
	values = append(values, btoa(termUp), btoa(termDown))

	return fw.writeRow(values)
}

// fusionSide formats the per-transcript columns. exon is the exon kept in
// the fusion.
func fusionSide(t *genes.Transcript, exon int) []string {
	g := t.Gene()
	return []string{
		itoa(g.SvID), g.GeneName, t.TransID, i8(g.Strand), itoa(exon),
		string(t.RegionType()), string(t.CodingType()),
	}
}

var invalidFusionColumns = []string{"SampleId", "Name", "Reason", "SvIdUp", "SvIdDown", "ChainId"}

// InvalidFusionWriter writes chained fusion candidates which were rejected.
type InvalidFusionWriter struct {
	*tabWriter
}

// NewInvalidFusionWriter creates an invalid fusion writer.
func NewInvalidFusionWriter(w io.Writer) *InvalidFusionWriter {
	return &InvalidFusionWriter{newTabWriter(w, invalidFusionColumns)}
}

// Write writes a single rejected candidate.
func (iw *InvalidFusionWriter) Write(sampleID string, r fusion.Rejected) error {
	return iw.writeRow([]string{
		sampleID, r.Fusion.Name(), r.Reason,
		itoa(r.Fusion.Up.Gene().SvID), itoa(r.Fusion.Down.Gene().SvID), itoa(r.ChainID),
	})
}
