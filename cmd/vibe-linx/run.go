package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/analysis"
	"github.com/inodb/vibe-linx/internal/disruption"
	"github.com/inodb/vibe-linx/internal/drivers"
	"github.com/inodb/vibe-linx/internal/duckdb"
	"github.com/inodb/vibe-linx/internal/ensembl"
	"github.com/inodb/vibe-linx/internal/fusion"
)

// runOptions are the resolved settings of one run command.
type runOptions struct {
	assembly       string
	gtf            string
	canonical      string
	driverPanel    string
	knownFusions   string
	outputDir      string
	db             string
	invalidFusions bool
	noGeneCache    bool
	workers        int

	analysis analysis.Config
	finder   fusion.FinderConfig
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] <sample.json|sample.vcf>...",
		Short: "Find disruptions and fusions in SV samples",
		Long: `Annotate the breakends of each sample's SVs with GENCODE genes, find
disrupted driver genes and call fusions from single SVs and chains.

Each sample file holds one sample's SVs, clusters and chains as JSON,
optionally gzipped. PURPLE SV VCFs (.vcf, .vcf.gz) are also accepted, with
each SV in its own cluster and the sample named after the last VCF column.`,
		Example: `  vibe-linx run S1.json
  vibe-linx run --drivers cancerGeneList.tsv --known-fusions known_fusions.tsv -o out/ S1.json S2.json.gz
  vibe-linx run --db results.duckdb --invalid-fusions S1.json
  vibe-linx run S1.purple.sv.vcf.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSamples(loadRunOptions(), args)
		},
	}

	f := cmd.Flags()
	f.String("assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	f.String("gtf", "", "GENCODE GTF file (default: downloaded file for the assembly)")
	f.String("canonical", "", "Canonical transcript override file")
	f.String("drivers", "", "OncoKB cancer gene list whose tumour suppressors are reported when disrupted")
	f.String("known-fusions", "", "Known fusion pairs and promiscuous genes (TSV)")
	f.StringP("output-dir", "o", ".", "Directory for output files")
	f.String("db", "", "DuckDB file to store results in")
	f.Bool("invalid-fusions", false, "Also write rejected fusion candidates")
	f.Bool("no-gene-cache", false, "Parse the GTF even when a valid gene cache exists")
	f.IntP("workers", "j", 0, "Samples analysed in parallel (default: number of CPUs)")
	f.Int64("max-chain-length", 100000, "Longest chain traversal allowed for a fusion")
	f.Int64("pre-gene-distance", 10000, "Promoter distance upstream of a transcript")
	f.Bool("require-phase-match", false, "Only keep phase-matched fusions")
	f.StringSlice("restricted-genes", nil, "Only call fusions involving these genes")
	f.StringSlice("annotate-genes", nil, "Only annotate breakends with these genes")
	f.Bool("log-reportable-only", false, "Only keep reportable fusions")
	f.Bool("log-repeated-gene-pairs", false, "Keep every fusion of a repeated gene pair")
	f.Int64("max-non-disrupted-chain-length", 5000, "Longest chain walked when looking for a return to the same intron")

	for key, flag := range map[string]string{
		"assembly":                                  "assembly",
		"ensembl.gtf":                               "gtf",
		"ensembl.canonical":                         "canonical",
		"drivers.panel":                             "drivers",
		"fusion.known_fusions":                      "known-fusions",
		"fusion.max_chain_length":                   "max-chain-length",
		"fusion.pre_gene_distance":                  "pre-gene-distance",
		"fusion.require_phase_match":                "require-phase-match",
		"fusion.restricted_genes":                   "restricted-genes",
		"fusion.annotate_genes":                     "annotate-genes",
		"fusion.log_reportable_only":                "log-reportable-only",
		"fusion.log_repeated_gene_pairs":            "log-repeated-gene-pairs",
		"disruption.max_non_disrupted_chain_length": "max-non-disrupted-chain-length",
		"output.dir":                                "output-dir",
		"output.db":                                 "db",
		"output.invalid_fusions":                    "invalid-fusions",
		"ensembl.no_gene_cache":                     "no-gene-cache",
		"workers":                                   "workers",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

func loadRunOptions() runOptions {
	cfg := analysis.DefaultConfig()
	cfg.PreGeneDistance = viper.GetInt64("fusion.pre_gene_distance")
	cfg.AnnotateGenes = viper.GetStringSlice("fusion.annotate_genes")
	cfg.Disruption = disruption.Config{
		MaxNonDisruptedChainLength: viper.GetInt64("disruption.max_non_disrupted_chain_length"),
	}
	cfg.Fusion = fusion.Config{
		MaxChainLength:       viper.GetInt64("fusion.max_chain_length"),
		RestrictedGenes:      viper.GetStringSlice("fusion.restricted_genes"),
		LogReportableOnly:    viper.GetBool("fusion.log_reportable_only"),
		LogRepeatedGenePairs: viper.GetBool("fusion.log_repeated_gene_pairs"),
	}

	return runOptions{
		assembly:       viper.GetString("assembly"),
		gtf:            viper.GetString("ensembl.gtf"),
		canonical:      viper.GetString("ensembl.canonical"),
		driverPanel:    viper.GetString("drivers.panel"),
		knownFusions:   viper.GetString("fusion.known_fusions"),
		outputDir:      viper.GetString("output.dir"),
		db:             viper.GetString("output.db"),
		invalidFusions: viper.GetBool("output.invalid_fusions"),
		noGeneCache:    viper.GetBool("ensembl.no_gene_cache"),
		workers:        viper.GetInt("workers"),
		analysis:       cfg,
		finder:         fusion.FinderConfig{RequirePhaseMatch: viper.GetBool("fusion.require_phase_match")},
	}
}

func runSamples(opts runOptions, paths []string) error {
	c, err := loadAnnotation(&opts)
	if err != nil {
		return err
	}

	if opts.driverPanel != "" {
		panel, err := drivers.LoadPanel(opts.driverPanel)
		if err != nil {
			return err
		}
		opts.analysis.DisruptionGenes = panel.DisruptionGenes()
		logger.Info("loaded driver panel",
			zap.String("path", opts.driverPanel),
			zap.Int("genes", len(panel)),
			zap.Int("disruption_genes", len(opts.analysis.DisruptionGenes)))
	} else {
		logger.Warn("no driver panel given, no disruptions will be reported")
	}

	known := fusion.NewKnownFusions()
	if opts.knownFusions != "" {
		if known, err = fusion.LoadKnownFusions(opts.knownFusions); err != nil {
			return err
		}
		logger.Info("loaded known fusions", zap.String("path", opts.knownFusions), zap.Int("entries", known.Len()))
	}

	finder := fusion.NewFinder(known, opts.finder)
	finder.SetLogger(logger)
	a := analysis.New(c, finder, opts.analysis)
	a.SetLogger(logger)

	out, err := newSinks(opts)
	if err != nil {
		return err
	}

	items := make(chan analysis.WorkItem)
	go func() {
		defer close(items)
		for i, p := range paths {
			items <- analysis.WorkItem{Seq: i, Path: p}
		}
	}()

	var failed int
	collectErr := analysis.OrderedCollect(a.RunParallel(items, opts.workers), func(r analysis.WorkResult) error {
		if r.Err != nil {
			failed++
			logger.Error("sample failed", zap.String("path", r.Path), zap.Error(r.Err))
			return nil
		}
		return out.write(r.Report)
	})
	if err := out.close(); err != nil && collectErr == nil {
		collectErr = err
	}
	if collectErr != nil {
		return collectErr
	}

	logger.Info("run complete",
		zap.Int("samples", len(paths)),
		zap.Int("failed", failed),
		zap.String("output_dir", opts.outputDir))
	if failed > 0 {
		return fmt.Errorf("%d of %d samples failed", failed, len(paths))
	}
	return nil
}

// loadAnnotation builds the gene cache from the gob cache when it matches
// the source files, otherwise from the GTF.
func loadAnnotation(opts *runOptions) (*ensembl.Cache, error) {
	dataDir := defaultDataDir(opts.assembly)
	if opts.gtf == "" {
		gtf, canonical, found := findGENCODEFiles(dataDir, opts.assembly)
		if !found {
			return nil, fmt.Errorf("no GENCODE annotation found for %s, run: vibe-linx download --assembly %s", opts.assembly, opts.assembly)
		}
		opts.gtf = gtf
		if opts.canonical == "" {
			opts.canonical = canonical
		}
	}

	gtfPrint, err := duckdb.StatFile(opts.gtf)
	if err != nil {
		return nil, err
	}
	canonicalPrint, err := duckdb.StatFile(opts.canonical)
	if err != nil {
		return nil, err
	}

	c := ensembl.New()
	gc := duckdb.NewGeneCache(filepath.Dir(opts.gtf))
	if !opts.noGeneCache && gc.Valid(gtfPrint, canonicalPrint) {
		err := gc.Load(c)
		if err == nil {
			logger.Info("loaded gene cache", zap.Int("genes", c.GeneCount()), zap.Int("transcripts", c.TranscriptCount()))
			return c, nil
		}
		logger.Warn("gene cache unreadable, parsing GTF", zap.Error(err))
		c = ensembl.New()
	}

	loader := ensembl.NewGTFLoader(opts.gtf)
	if opts.canonical != "" {
		overrides, err := ensembl.LoadCanonicalOverrides(opts.canonical)
		if err != nil {
			logger.Warn("could not load canonical overrides", zap.Error(err))
		} else {
			loader.SetCanonicalOverrides(overrides)
			logger.Info("loaded canonical overrides", zap.Int("genes", len(overrides)))
		}
	}
	if err := loader.Load(c); err != nil {
		return nil, fmt.Errorf("load GENCODE annotation: %w", err)
	}
	logger.Info("loaded GTF",
		zap.String("path", opts.gtf),
		zap.Int("genes", c.GeneCount()),
		zap.Int("transcripts", c.TranscriptCount()))

	if !opts.noGeneCache {
		if err := gc.Write(c, gtfPrint, canonicalPrint); err != nil {
			logger.Warn("could not write gene cache", zap.Error(err))
		}
	}
	return c, nil
}
