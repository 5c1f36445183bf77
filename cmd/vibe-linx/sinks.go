package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/analysis"
	"github.com/inodb/vibe-linx/internal/duckdb"
	"github.com/inodb/vibe-linx/internal/output"
)

// Cohort output files in the output directory.
const (
	fusionsFile        = "vibe-linx.fusions.tsv"
	disruptionsFile    = "vibe-linx.disruptions.tsv"
	invalidFusionsFile = "vibe-linx.invalid_fusions.tsv"
)

// sinks receives sample reports in order and writes them to every
// configured output.
type sinks struct {
	dir   string
	files []*os.File

	fusions     *output.FusionWriter
	disruptions *output.DisruptionWriter
	invalid     *output.InvalidFusionWriter

	store *duckdb.Store
	runID string
}

func newSinks(opts runOptions) (*sinks, error) {
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	s := &sinks{dir: opts.outputDir}

	f, err := s.create(fusionsFile)
	if err != nil {
		return nil, err
	}
	s.fusions = output.NewFusionWriter(f)

	if f, err = s.create(disruptionsFile); err != nil {
		s.close()
		return nil, err
	}
	s.disruptions = output.NewDisruptionWriter(f)

	if opts.invalidFusions {
		if f, err = s.create(invalidFusionsFile); err != nil {
			s.close()
			return nil, err
		}
		s.invalid = output.NewInvalidFusionWriter(f)
	}

	headers := []interface{ WriteHeader() error }{s.fusions, s.disruptions}
	if s.invalid != nil {
		headers = append(headers, s.invalid)
	}
	for _, w := range headers {
		if err := w.WriteHeader(); err != nil {
			s.close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	if opts.db != "" {
		if s.store, err = duckdb.Open(opts.db); err != nil {
			s.close()
			return nil, err
		}
		if s.runID, err = duckdb.NewRunID(); err != nil {
			s.close()
			return nil, err
		}
		logger.Info("storing results", zap.String("db", opts.db), zap.String("run", s.runID))
	}
	return s, nil
}

func (s *sinks) create(name string) (*os.File, error) {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	s.files = append(s.files, f)
	return f, nil
}

// write stores one sample. A sample already in the database is replaced.
func (s *sinks) write(r *analysis.Report) error {
	for _, f := range r.Fusions.Unique {
		if err := s.fusions.Write(r.SampleID, f); err != nil {
			return err
		}
	}
	all := r.AllDisruptions()
	if err := s.disruptions.WriteAll(r.SampleID, all); err != nil {
		return err
	}
	if s.invalid != nil {
		for _, rej := range r.Fusions.Rejected {
			if err := s.invalid.Write(r.SampleID, rej); err != nil {
				return err
			}
		}
	}
	if err := output.WriteReportableDisruptions(output.ReportableDisruptionFile(s.dir, r.SampleID), r.Disruptions); err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.ClearSample(r.SampleID); err != nil {
			return err
		}
		if err := s.store.WriteFusions(r.SampleID, s.runID, r.Fusions.Unique); err != nil {
			return err
		}
		if err := s.store.WriteDisruptions(r.SampleID, s.runID, all); err != nil {
			return err
		}
	}

	logger.Debug("sample written",
		zap.String("sample", r.SampleID),
		zap.Int("fusions", len(r.Fusions.Unique)),
		zap.Int("reportable_fusions", len(r.ReportableFusions())),
		zap.Int("disruptions", len(r.Disruptions)))
	return nil
}

// close flushes and closes every output, returning the first error.
func (s *sinks) close() error {
	var errs []error
	if s.fusions != nil {
		errs = append(errs, s.fusions.Flush())
	}
	if s.disruptions != nil {
		errs = append(errs, s.disruptions.Flush())
	}
	if s.invalid != nil {
		errs = append(errs, s.invalid.Flush())
	}
	for _, f := range s.files {
		errs = append(errs, f.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
