// Package analysis runs the disruption and fusion engines over sample SV
// graphs.
package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/ensembl"
	"github.com/inodb/vibe-linx/internal/fusion"
	"github.com/inodb/vibe-linx/internal/genes"
	"github.com/inodb/vibe-linx/internal/sv"
)

// Config holds the options of every analysis step.
type Config struct {
	PreGeneDistance int64
	AnnotateGenes   []string // When set, breakends are annotated with these genes only
	DisruptionGenes []string // Genes whose disruptions are reported
	Disruption      disruption.Config
	Fusion          fusion.Config
}

// DefaultConfig returns the default options.
func DefaultConfig() Config {
	return Config{
		PreGeneDistance: genes.DefaultPreGeneDistance,
		Disruption:      disruption.DefaultConfig(),
		Fusion:          fusion.DefaultConfig(),
	}
}

// Report is the outcome of one sample.
type Report struct {
	SampleID    string
	Disruptions []disruption.Record // Reportable disruptions
	Excluded    []disruption.Record // Driver transcripts found not disrupted
	Fusions     fusion.Result
}

// Analyser runs samples against shared reference data. It is safe for
// concurrent use once built.
type Analyser struct {
	annotator   *genes.Annotator
	disruptions *disruption.Finder
	fusions     *fusion.Engine
	logger      *zap.Logger
}

// New creates an analyser over the reference annotation.
func New(c *ensembl.Cache, validator fusion.Validator, cfg Config) *Analyser {
	annotator := genes.NewAnnotator(c)
	annotator.SetPreGeneDistance(cfg.PreGeneDistance)
	annotator.RestrictTo(cfg.AnnotateGenes)

	finder := disruption.NewFinder(c, cfg.Disruption)
	finder.AddDisruptionGenes(cfg.DisruptionGenes)

	return &Analyser{
		annotator:   annotator,
		disruptions: finder,
		fusions:     fusion.NewEngine(validator, finder, cfg.Fusion),
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger of the analyser and its engines.
func (a *Analyser) SetLogger(logger *zap.Logger) {
	a.logger = logger
	a.annotator.SetLogger(logger)
	a.disruptions.SetLogger(logger)
	a.fusions.SetLogger(logger)
}

// DisruptionFinder returns the disruption engine.
func (a *Analyser) DisruptionFinder() *disruption.Finder {
	return a.disruptions
}

// Run annotates the sample's breakends, marks disrupted transcripts and then
// finds fusions.
func (a *Analyser) Run(sample *sv.Sample) (*Report, error) {
	if sample == nil {
		return nil, fmt.Errorf("analyse: nil sample")
	}
	if sample.ID == "" {
		return nil, fmt.Errorf("analyse: sample has no id")
	}

	for _, s := range sample.SVs {
		a.annotate(s)
	}

	resolved := a.disruptions.MarkTranscriptsDisruptive(sample.SVs)
	result := a.fusions.Run(resolved, sample.SVs, sample.Clusters)

	report := &Report{
		SampleID:    sample.ID,
		Disruptions: resolved.Reportable(),
		Excluded:    resolved.Excluded(),
		Fusions:     result,
	}

	a.logger.Info("sample analysed",
		zap.String("sample", sample.ID),
		zap.Int("svs", len(sample.SVs)),
		zap.Int("clusters", len(sample.Clusters)),
		zap.Int("disruptions", len(report.Disruptions)),
		zap.Int("fusions", len(result.Fusions)),
		zap.Int("reportable_fusions", len(reportable(result.Unique))))
	return report, nil
}

func (a *Analyser) annotate(s *sv.SV) {
	for _, isStart := range []bool{true, false} {
		b := s.Breakend(isStart)
		if b == nil {
			continue
		}
		b.SetGenes(a.annotator.Annotate(s.ID, isStart, b.Chromosome, b.Position, b.Orientation))
	}
}

func reportable(fusions []*fusion.GeneFusion) []*fusion.GeneFusion {
	var out []*fusion.GeneFusion
	for _, f := range fusions {
		if f.Reportable {
			out = append(out, f)
		}
	}
	return out
}

// ReportableFusions returns the reportable unique fusions.
func (r *Report) ReportableFusions() []*fusion.GeneFusion {
	return reportable(r.Fusions.Unique)
}

// AllDisruptions returns the reportable and excluded records together.
func (r *Report) AllDisruptions() []disruption.Record {
	all := make([]disruption.Record, 0, len(r.Disruptions)+len(r.Excluded))
	all = append(all, r.Disruptions...)
	return append(all, r.Excluded...)
}
