// Package drivers loads the driver gene panel whose tumour suppressors are
// reported when disrupted.
package drivers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Gene holds the panel classification of one gene.
type Gene struct {
	HugoSymbol string
	GeneType   string // "ONCOGENE", "TSG", or "ONCOGENE,TSG"
}

// IsTSG reports whether the gene is classed as a tumour suppressor.
func (g *Gene) IsTSG() bool {
	for _, t := range strings.Split(g.GeneType, ",") {
		if strings.TrimSpace(t) == "TSG" {
			return true
		}
	}
	return false
}

// Panel maps Hugo Symbol to Gene.
type Panel map[string]*Gene

// IsDriver returns true if the gene is on the panel.
func (p Panel) IsDriver(name string) bool {
	_, ok := p[name]
	return ok
}

// IsTSG returns true if the gene is a tumour suppressor on the panel.
func (p Panel) IsTSG(name string) bool {
	g, ok := p[name]
	return ok && g.IsTSG()
}

// DisruptionGenes returns the sorted names of panel genes reported when
// disrupted.
func (p Panel) DisruptionGenes() []string {
	var names []string
	for name, g := range p {
		if g.IsTSG() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LoadPanel loads an OncoKB cancerGeneList.tsv file, gzipped when the path
// ends in .gz.
func LoadPanel(path string) (Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open driver panel: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return ParsePanel(reader)
}

// ParsePanel reads a panel TSV with "Hugo Symbol" and "Gene Type" columns.
func ParsePanel(r io.Reader) (Panel, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("driver panel: empty file")
	}
	header := strings.Split(scanner.Text(), "\t")

	hugoIdx := -1
	geneTypeIdx := -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Hugo Symbol":
			hugoIdx = i
		case "Gene Type":
			geneTypeIdx = i
		}
	}
	if hugoIdx < 0 {
		return nil, fmt.Errorf("driver panel: missing 'Hugo Symbol' column")
	}
	if geneTypeIdx < 0 {
		return nil, fmt.Errorf("driver panel: missing 'Gene Type' column")
	}

	panel := make(Panel)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= hugoIdx || len(fields) <= geneTypeIdx {
			continue
		}
		hugo := strings.TrimSpace(fields[hugoIdx])
		if hugo == "" {
			continue
		}
		panel[hugo] = &Gene{
			HugoSymbol: hugo,
			GeneType:   strings.TrimSpace(fields[geneTypeIdx]),
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading driver panel: %w", err)
	}

	return panel, nil
}
