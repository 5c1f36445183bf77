package duckdb

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/inodb/vibe-linx/internal/fusion"
)

// FusionRow is a stored fusion.
type FusionRow struct {
	SampleID       string
	RunID          string
	Name           string
	Reportable     bool
	KnownType      string
	PhaseMatched   bool
	Exonic         bool
	SvIDUp         int
	GeneUp         string
	TransUp        string
	ExonUp         int
	RegionUp       string
	CodingUp       string
	SvIDDown       int
	GeneDown       string
	TransDown      string
	ExonDown       int
	RegionDown     string
	CodingDown     string
	ClusterID      int
	ChainID        int // -1 for single-SV fusions
	ChainLinks     int
	ChainLength    int64
	TerminatedUp   bool
	TerminatedDown bool
}

type fusionKey struct {
	svUp, svDown       int
	transUp, transDown string
}

// WriteFusions batch-inserts the fusions of a sample. Fusions repeating the
// same SVs and transcripts are written once.
func (s *Store) WriteFusions(sampleID, runID string, fusions []*fusion.GeneFusion) error {
	seen := make(map[fusionKey]bool, len(fusions))
	rows := make([][]driver.Value, 0, len(fusions))
	for _, f := range fusions {
		k := fusionKey{f.Up.Gene().SvID, f.Down.Gene().SvID, f.Up.TransID, f.Down.TransID}
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, fusionValues(sampleID, runID, f))
	}
	if err := s.appendRows("fusions", rows); err != nil {
		return fmt.Errorf("write fusions: %w", err)
	}
	return nil
}

func fusionValues(sampleID, runID string, f *fusion.GeneFusion) []driver.Value {
	clusterID := int32(-1)
	var chainID, chainLinks, chainLength any
	var termUp, termDown bool
	if a := f.Annotations; a != nil {
		clusterID = int32(a.ClusterID)
		termUp, termDown = a.TerminatedUp, a.TerminatedDown
		if c := a.Chain; c != nil {
			chainID, chainLinks, chainLength = int32(c.ChainID), int32(c.Links), c.Length
		}
	}

	up, down := f.Up, f.Down
	return []driver.Value{
		sampleID, runID, f.Name(), f.Reportable, string(f.KnownType), f.PhaseMatched, f.Exonic,
		int32(up.Gene().SvID), up.GeneName(), up.TransID, int32(up.ExonUpstream),
		string(up.RegionType()), string(up.CodingType()),
		int32(down.Gene().SvID), down.GeneName(), down.TransID, int32(down.ExonDownstream),
		string(down.RegionType()), string(down.CodingType()),
		clusterID, chainID, chainLinks, chainLength, termUp, termDown,
	}
}

const fusionSelect = `SELECT
	sample_id, run_id, name, reportable, known_type, phase_matched, exonic,
	sv_id_up, gene_up, trans_up, exon_up, region_up, coding_up,
	sv_id_down, gene_down, trans_down, exon_down, region_down, coding_down,
	cluster_id, chain_id, chain_links, chain_length, terminated_up, terminated_down
	FROM fusions`

// FusionsBySample returns the stored fusions of a sample.
func (s *Store) FusionsBySample(sampleID string) ([]FusionRow, error) {
	rows, err := s.db.Query(fusionSelect+" WHERE sample_id=? ORDER BY sv_id_up, trans_up, sv_id_down, trans_down", sampleID)
	if err != nil {
		return nil, fmt.Errorf("query fusions by sample: %w", err)
	}
	defer rows.Close()
	return scanFusions(rows)
}

// FusionsByGene returns stored fusions with the gene on either side.
func (s *Store) FusionsByGene(geneName string) ([]FusionRow, error) {
	rows, err := s.db.Query(fusionSelect+" WHERE gene_up=? OR gene_down=? ORDER BY sample_id, sv_id_up, trans_up", geneName, geneName)
	if err != nil {
		return nil, fmt.Errorf("query fusions by gene: %w", err)
	}
	defer rows.Close()
	return scanFusions(rows)
}

func scanFusions(rows *sql.Rows) ([]FusionRow, error) {
	var result []FusionRow
	for rows.Next() {
		var r FusionRow
		var chainID, chainLinks, chainLength sql.NullInt64
		if err := rows.Scan(
			&r.SampleID, &r.RunID, &r.Name, &r.Reportable, &r.KnownType, &r.PhaseMatched, &r.Exonic,
			&r.SvIDUp, &r.GeneUp, &r.TransUp, &r.ExonUp, &r.RegionUp, &r.CodingUp,
			&r.SvIDDown, &r.GeneDown, &r.TransDown, &r.ExonDown, &r.RegionDown, &r.CodingDown,
			&r.ClusterID, &chainID, &chainLinks, &chainLength, &r.TerminatedUp, &r.TerminatedDown,
		); err != nil {
			return nil, fmt.Errorf("scan fusion: %w", err)
		}
		r.ChainID = -1
		if chainID.Valid {
			r.ChainID = int(chainID.Int64)
		}
		r.ChainLinks = int(chainLinks.Int64)
		r.ChainLength = chainLength.Int64
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fusions: %w", err)
	}
	return result, nil
}
