package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inodb/vibe-linx/internal/disruption"
)

// ReportableDisruptionSuffix names the per-sample disruption file.
const ReportableDisruptionSuffix = ".linx.disruptions.tsv"

// ReportableDisruption is one row of the per-sample disruption file.
type ReportableDisruption struct {
	SvID                  int
	Chromosome            string
	Orientation           int8
	Strand                int8
	ChrBand               string
	Gene                  string
	Type                  string
	JunctionCopyNumber    float64
	ExonUp                int
	ExonDown              int
	UndisruptedCopyNumber float64
}

var reportableColumns = []string{
	"svId", "chromosome", "orientation", "strand", "chrBand", "gene", "type",
	"junctionCopyNumber", "exonUp", "exonDown", "undisruptedCopyNumber",
}

// ReportableDisruptionFile returns the disruption file path for a sample.
func ReportableDisruptionFile(dir, sampleID string) string {
	return filepath.Join(dir, sampleID+ReportableDisruptionSuffix)
}

// NewReportableDisruption converts a disruption record. The undisrupted copy
// number is clamped at zero.
func NewReportableDisruption(r disruption.Record) ReportableDisruption {
	return ReportableDisruption{
		SvID:                  r.SvID,
		Chromosome:            r.Chromosome,
		Orientation:           r.Orientation,
		Strand:                r.Strand,
		ChrBand:               r.KaryotypeBand,
		Gene:                  r.GeneName,
		Type:                  string(r.Type),
		JunctionCopyNumber:    r.JCN,
		ExonUp:                r.ExonUp,
		ExonDown:              r.ExonDown,
		UndisruptedCopyNumber: max(r.UndisruptedCN, 0),
	}
}

// WriteReportableDisruptions writes the per-sample disruption file.
func WriteReportableDisruptions(path string, records []disruption.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create disruptions file: %w", err)
	}

	header := append([]string{"#" + reportableColumns[0]}, reportableColumns[1:]...)
	tw := newTabWriter(f, header)
	err = tw.WriteHeader()
	for _, r := range records {
		if err != nil {
			break
		}
		d := NewReportableDisruption(r)
		err = tw.writeRow([]string{
			itoa(d.SvID), d.Chromosome, i8(d.Orientation), i8(d.Strand), orNull(d.ChrBand), d.Gene, d.Type,
			ftoa(d.JunctionCopyNumber, 4), itoa(d.ExonUp), itoa(d.ExonDown), ftoa(d.UndisruptedCopyNumber, 4),
		})
	}
	if err == nil {
		err = tw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write disruptions file: %w", err)
	}
	return nil
}

// ReadReportableDisruptions reads a per-sample disruption file.
func ReadReportableDisruptions(path string) ([]ReportableDisruption, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open disruptions file: %w", err)
	}
	defer f.Close()

	var result []ReportableDisruption
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		d, err := parseReportableDisruption(strings.Split(text, "\t"))
		if err != nil {
			return nil, fmt.Errorf("disruptions file line %d: %w", line, err)
		}
		result = append(result, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan disruptions file: %w", err)
	}
	return result, nil
}

func parseReportableDisruption(fields []string) (ReportableDisruption, error) {
	if len(fields) != len(reportableColumns) {
		return ReportableDisruption{}, fmt.Errorf("expected %d fields, got %d", len(reportableColumns), len(fields))
	}

	var d ReportableDisruption
	var errs []error
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	d.SvID = atoi(fields[0])
	d.Chromosome = fields[1]
	d.Orientation = int8(atoi(fields[2]))
	d.Strand = int8(atoi(fields[3]))
	d.ChrBand = fields[4]
	if d.ChrBand == null {
		d.ChrBand = ""
	}
	d.Gene = fields[5]
	d.Type = fields[6]
	d.JunctionCopyNumber = atof(fields[7])
	d.ExonUp = atoi(fields[8])
	d.ExonDown = atoi(fields[9])
	d.UndisruptedCopyNumber = atof(fields[10])

	if len(errs) > 0 {
		return ReportableDisruption{}, errs[0]
	}
	return d, nil
}
