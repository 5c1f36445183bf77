package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inodb/vibe-linx/internal/ensembl"
)

// GeneCache manages gob-serialized gene annotation on disk, stored
// alongside the GENCODE source files:
//
//	~/.vibe-linx/{assembly}/genes.gob       (serialized genes and transcripts)
//	~/.vibe-linx/{assembly}/genes.gob.meta  (source file fingerprints)
type GeneCache struct {
	dir string
}

// NewGeneCache creates a gene cache for the given directory.
func NewGeneCache(dir string) *GeneCache {
	return &GeneCache{dir: dir}
}

func (gc *GeneCache) gobPath() string {
	return filepath.Join(gc.dir, "genes.gob")
}

func (gc *GeneCache) metaPath() string {
	return filepath.Join(gc.dir, "genes.gob.meta")
}

func sourceEntries(gtf, canonical FileFingerprint) [][2]string {
	return append(gtf.metaEntries("gtf"), canonical.metaEntries("canonical")...)
}

// Valid checks whether the cached genes match the current source files.
func (gc *GeneCache) Valid(gtf, canonical FileFingerprint) bool {
	meta, err := gc.readMeta()
	if err != nil {
		return false
	}
	for _, e := range sourceEntries(gtf, canonical) {
		if meta[e[0]] != e[1] {
			return false
		}
	}
	_, err = os.Stat(gc.gobPath())
	return err == nil
}

// Load reads serialized genes from disk into the cache.
func (gc *GeneCache) Load(c *ensembl.Cache) error {
	f, err := os.Open(gc.gobPath())
	if err != nil {
		return fmt.Errorf("open gene cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*ensembl.Gene
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode gene cache: %w", err)
	}

	for _, genes := range data {
		for _, g := range genes {
			c.AddGene(g)
		}
	}
	return nil
}

// Write serializes all genes of the cache to disk.
func (gc *GeneCache) Write(c *ensembl.Cache, gtf, canonical FileFingerprint) error {
	if err := os.MkdirAll(gc.dir, 0755); err != nil {
		return fmt.Errorf("create gene cache directory: %w", err)
	}

	data := make(map[string][]*ensembl.Gene)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.Genes(chrom)
	}

	f, err := os.Create(gc.gobPath())
	if err != nil {
		return fmt.Errorf("create gene cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(gc.gobPath())
		return fmt.Errorf("encode gene cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gene cache: %w", err)
	}

	return gc.writeMeta(gtf, canonical)
}

// Clear removes the cached gene files.
func (gc *GeneCache) Clear() {
	os.Remove(gc.gobPath())
	os.Remove(gc.metaPath())
}

func (gc *GeneCache) writeMeta(gtf, canonical FileFingerprint) error {
	var lines []string
	for _, e := range sourceEntries(gtf, canonical) {
		lines = append(lines, e[0]+"="+e[1])
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(gc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (gc *GeneCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(gc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
