// Package duckdb stores fusion and disruption results in DuckDB and caches
// the parsed gene annotation as gob files.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding per-sample results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS fusions (
			sample_id VARCHAR,
			run_id VARCHAR,
			name VARCHAR,
			reportable BOOLEAN,
			known_type VARCHAR,
			phase_matched BOOLEAN,
			exonic BOOLEAN,
			sv_id_up INTEGER,
			gene_up VARCHAR,
			trans_up VARCHAR,
			exon_up INTEGER,
			region_up VARCHAR,
			coding_up VARCHAR,
			sv_id_down INTEGER,
			gene_down VARCHAR,
			trans_down VARCHAR,
			exon_down INTEGER,
			region_down VARCHAR,
			coding_down VARCHAR,
			cluster_id INTEGER,
			chain_id INTEGER,
			chain_links INTEGER,
			chain_length BIGINT,
			terminated_up BOOLEAN,
			terminated_down BOOLEAN,
			PRIMARY KEY (sample_id, sv_id_up, trans_up, sv_id_down, trans_down)
		)`,
		`CREATE TABLE IF NOT EXISTS disruptions (
			sample_id VARCHAR,
			run_id VARCHAR,
			sv_id INTEGER,
			is_start BOOLEAN,
			sv_type VARCHAR,
			cluster_id INTEGER,
			chromosome VARCHAR,
			position BIGINT,
			orientation TINYINT,
			gene_id VARCHAR,
			gene_name VARCHAR,
			strand TINYINT,
			karyotype_band VARCHAR,
			jcn DOUBLE,
			trans_id VARCHAR,
			exon_up INTEGER,
			exon_down INTEGER,
			coding_type VARCHAR,
			region_type VARCHAR,
			undisrupted_cn DOUBLE,
			reportable BOOLEAN,
			excluded_reason VARCHAR,
			extra_info VARCHAR,
			PRIMARY KEY (sample_id, sv_id, is_start, trans_id)
		)`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ClearSample removes every row of a sample.
func (s *Store) ClearSample(sampleID string) error {
	for _, table := range []string{"fusions", "disruptions"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE sample_id=?", sampleID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
