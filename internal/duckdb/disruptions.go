package duckdb

import (
	"database/sql/driver"
	"fmt"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

// DisruptionRow is a stored disruption record.
type DisruptionRow struct {
	SampleID string
	RunID    string
	disruption.Record
}

type disruptionKey struct {
	svID    int
	isStart bool
	transID string
}

// WriteDisruptions batch-inserts the reportable and excluded disruption
// records of a sample. Each breakend transcript is written once.
func (s *Store) WriteDisruptions(sampleID, runID string, records []disruption.Record) error {
	seen := make(map[disruptionKey]bool, len(records))
	rows := make([][]driver.Value, 0, len(records))
	for _, r := range records {
		k := disruptionKey{r.SvID, r.IsStart, r.TransID}
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, []driver.Value{
			sampleID, runID, int32(r.SvID), r.IsStart, string(r.Type), int32(r.ClusterID),
			r.Chromosome, r.Position, r.Orientation,
			r.GeneID, r.GeneName, r.Strand, r.KaryotypeBand, r.JCN, r.TransID, int32(r.ExonUp), int32(r.ExonDown),
			string(r.CodingType), string(r.RegionType),
			r.UndisruptedCN, r.Reportable, r.ExcludedReason, r.ExtraInfo,
		})
	}
	if err := s.appendRows("disruptions", rows); err != nil {
		return fmt.Errorf("write disruptions: %w", err)
	}
	return nil
}

// DisruptionsBySample returns the stored disruption records of a sample in
// SV and breakend order.
func (s *Store) DisruptionsBySample(sampleID string) ([]DisruptionRow, error) {
	rows, err := s.db.Query(`SELECT
		sample_id, run_id, sv_id, is_start, sv_type, cluster_id,
		chromosome, position, orientation,
		gene_id, gene_name, strand, karyotype_band, jcn, trans_id, exon_up, exon_down,
		coding_type, region_type, undisrupted_cn, reportable, excluded_reason, extra_info
		FROM disruptions
		WHERE sample_id=?
		ORDER BY sv_id, is_start DESC, trans_id`, sampleID)
	if err != nil {
		return nil, fmt.Errorf("query disruptions: %w", err)
	}
	defer rows.Close()

	var result []DisruptionRow
	for rows.Next() {
		var r DisruptionRow
		var svType, codingType, regionType string
		if err := rows.Scan(
			&r.SampleID, &r.RunID, &r.SvID, &r.IsStart, &svType, &r.ClusterID,
			&r.Chromosome, &r.Position, &r.Orientation,
			&r.GeneID, &r.GeneName, &r.Strand, &r.KaryotypeBand, &r.JCN, &r.TransID, &r.ExonUp, &r.ExonDown,
			&codingType, &regionType, &r.UndisruptedCN, &r.Reportable, &r.ExcludedReason, &r.ExtraInfo,
		); err != nil {
			return nil, fmt.Errorf("scan disruption: %w", err)
		}
		r.Type = sv.Type(svType)
		r.CodingType = genes.CodingType(codingType)
		r.RegionType = genes.RegionType(regionType)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate disruptions: %w", err)
	}
	return result, nil
}
