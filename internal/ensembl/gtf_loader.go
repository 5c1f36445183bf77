package ensembl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// GTFLoader loads gene and transcript data from GENCODE GTF files.
type GTFLoader struct {
	path               string
	canonicalOverrides CanonicalOverrides
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path}
}

// SetCanonicalOverrides sets canonical transcript overrides applied after parsing.
// For each gene with an override, the matching transcript is marked canonical
// and the gene's other transcripts are unmarked.
func (l *GTFLoader) SetCanonicalOverrides(overrides CanonicalOverrides) {
	l.canonicalOverrides = overrides
}

// Load loads all genes and transcripts from the GTF file into the cache.
func (l *GTFLoader) Load(c *Cache) error {
	return l.loadGTF(c, "")
}

// LoadChromosome loads genes and transcripts for a specific chromosome.
func (l *GTFLoader) LoadChromosome(c *Cache, chrom string) error {
	return l.loadGTF(c, chrom)
}

func (l *GTFLoader) loadGTF(c *Cache, filterChrom string) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	genes, transcripts, err := l.parseGTF(reader, filterChrom)
	if err != nil {
		return err
	}

	if len(l.canonicalOverrides) > 0 {
		applyCanonicalOverrides(transcripts, l.canonicalOverrides)
	}

	for _, g := range genes {
		c.AddGene(g)
	}

	// Deterministic transcript order within each gene.
	ids := make([]string, 0, len(transcripts))
	for id := range transcripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c.AddTranscript(transcripts[id])
	}

	return nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// parseGTF parses GTF content and returns genes and assembled transcripts.
func (l *GTFLoader) parseGTF(reader io.Reader, filterChrom string) ([]*Gene, map[string]*Transcript, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var genes []*Gene
	transcripts := make(map[string]*Transcript)
	exonsByTranscript := make(map[string][]Exon)
	cdsByTranscript := make(map[string][][2]int64)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}

		if filterChrom != "" && feat.chrom != normalizeChrom(filterChrom) {
			continue
		}

		if feat.featureType == "gene" {
			genes = append(genes, &Gene{
				ID:      stripVersion(feat.attributes["gene_id"]),
				Name:    feat.attributes["gene_name"],
				Chrom:   feat.chrom,
				Start:   feat.start,
				End:     feat.end,
				Strand:  parseStrand(feat.strand),
				Biotype: feat.attributes["gene_type"],
			})
			continue
		}

		transcriptID := stripVersion(feat.attributes["transcript_id"])
		if transcriptID == "" {
			continue
		}

		switch feat.featureType {
		case "transcript":
			transcripts[transcriptID] = &Transcript{
				ID:          transcriptID,
				GeneID:      stripVersion(feat.attributes["gene_id"]),
				GeneName:    feat.attributes["gene_name"],
				Chrom:       feat.chrom,
				Start:       feat.start,
				End:         feat.end,
				Strand:      parseStrand(feat.strand),
				Biotype:     feat.attributes["transcript_type"],
				IsCanonical: strings.Contains(feat.attributes["tag"], "Ensembl_canonical"),
			}

		case "exon":
			exonNum, _ := strconv.Atoi(feat.attributes["exon_number"])
			exonsByTranscript[transcriptID] = append(exonsByTranscript[transcriptID], Exon{
				Number:     exonNum,
				Start:      feat.start,
				End:        feat.end,
				PhaseStart: -1,
				PhaseEnd:   -1,
			})

		case "CDS", "stop_codon":
			// Coding bounds include the stop codon, matching Ensembl coding end.
			cdsByTranscript[transcriptID] = append(cdsByTranscript[transcriptID], [2]int64{feat.start, feat.end})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan GTF: %w", err)
	}

	for id, t := range transcripts {
		exons := exonsByTranscript[id]
		if len(exons) == 0 {
			delete(transcripts, id)
			continue
		}

		sort.Slice(exons, func(i, j int) bool {
			return exons[i].Start < exons[j].Start
		})

		if regions := cdsByTranscript[id]; len(regions) > 0 {
			t.CDSStart, t.CDSEnd = regions[0][0], regions[0][1]
			for _, r := range regions[1:] {
				t.CDSStart = min(t.CDSStart, r[0])
				t.CDSEnd = max(t.CDSEnd, r[1])
			}
		}

		t.Exons = exons
		setExonPhases(t)
	}

	return genes, transcripts, nil
}

// setExonPhases fills Ensembl start and end phases walking exons in
// transcription order.
func setExonPhases(t *Transcript) {
	if !t.IsProteinCoding() {
		return
	}

	n := len(t.Exons)
	var codingSoFar int64
	for k := 0; k < n; k++ {
		i := k
		if t.Strand == -1 {
			i = n - 1 - k
		}
		e := &t.Exons[i]

		coding := t.CodingOverlap(e)
		if coding == 0 {
			e.PhaseStart, e.PhaseEnd = -1, -1
			continue
		}

		var startsCoding, endsCoding bool
		if t.Strand == 1 {
			startsCoding = e.Start >= t.CDSStart
			endsCoding = e.End <= t.CDSEnd
		} else {
			startsCoding = e.End <= t.CDSEnd
			endsCoding = e.Start >= t.CDSStart
		}

		e.PhaseStart = -1
		if startsCoding {
			e.PhaseStart = int(codingSoFar % 3)
		}
		codingSoFar += coding
		e.PhaseEnd = -1
		if endsCoding {
			e.PhaseEnd = int(codingSoFar % 3)
		}
	}
}

// applyCanonicalOverrides marks the override transcript of each gene as its
// only canonical transcript.
func applyCanonicalOverrides(transcripts map[string]*Transcript, overrides CanonicalOverrides) {
	byGene := make(map[string][]*Transcript)
	for _, t := range transcripts {
		if t.GeneName != "" {
			byGene[t.GeneName] = append(byGene[t.GeneName], t)
		}
	}

	for gene, canonicalID := range overrides {
		list, ok := byGene[gene]
		if !ok {
			continue
		}
		if _, ok := transcripts[canonicalID]; !ok {
			continue
		}
		for _, t := range list {
			t.IsCanonical = t.ID == canonicalID
		}
	}
}

// parseLine parses a single GTF line.
func parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       normalizeChrom(fields[0]),
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
// Repeated tag attributes are joined with commas.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"")

		if prev, seen := attrs[key]; seen && key == "tag" {
			value = prev + "," + value
		}
		attrs[key] = value
	}

	return attrs
}

func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

// normalizeChrom removes the "chr" prefix so GENCODE names match SV callers.
func normalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}
