package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys lists the settings accepted by "config set".
var configKeys = []string{
	"assembly",
	"disruption.max_non_disrupted_chain_length",
	"drivers.panel",
	"ensembl.canonical",
	"ensembl.gtf",
	"ensembl.no_gene_cache",
	"fusion.annotate_genes",
	"fusion.known_fusions",
	"fusion.log_repeated_gene_pairs",
	"fusion.log_reportable_only",
	"fusion.max_chain_length",
	"fusion.pre_gene_distance",
	"fusion.require_phase_match",
	"fusion.restricted_genes",
	"log.level",
	"log.verbose",
	"output.db",
	"output.dir",
	"output.invalid_fusions",
	"workers",
}

// listKeys hold comma-separated gene lists.
var listKeys = []string{"fusion.annotate_genes", "fusion.restricted_genes"}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-linx configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-linx.yaml.",
		Example: `  vibe-linx config                                   # show all config
  vibe-linx config set drivers.panel ~/cancerGeneList.tsv
  vibe-linx config set fusion.restricted_genes TMPRSS2,ERG
  vibe-linx config get fusion.max_chain_length`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.vibe-linx.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	key = strings.ToLower(key)
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: unknown config key %q", errUsage, key)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	// Only the file's own settings are rewritten, never defaults or flags.
	file := viper.New()
	file.SetConfigFile(cfgFile)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}

	switch {
	case slices.Contains(listKeys, key):
		file.Set(key, splitList(value))
	case value == "true", value == "yes", value == "on":
		file.Set(key, true)
	case value == "false", value == "no", value == "off":
		file.Set(key, false)
	default:
		file.Set(key, value)
	}

	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
