// Package output writes fusion and disruption results as tab-delimited files.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// tabWriter writes one header and any number of rows of tab-separated values.
type tabWriter struct {
	w       *bufio.Writer
	columns []string
}

func newTabWriter(w io.Writer, columns []string) *tabWriter {
	return &tabWriter{w: bufio.NewWriter(w), columns: columns}
}

// WriteHeader writes the header line.
func (tw *tabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

func (tw *tabWriter) writeRow(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *tabWriter) Flush() error {
	return tw.w.Flush()
}

// Null fields are written as a dash.
const null = "-"

func orNull(s string) string {
	if s == "" {
		return null
	}
	return s
}

func itoa(i int) string { return strconv.Itoa(i) }

func i64(i int64) string { return strconv.FormatInt(i, 10) }

func i8(i int8) string { return strconv.Itoa(int(i)) }

func btoa(b bool) string { return strconv.FormatBool(b) }

func ftoa(f float64, prec int) string { return strconv.FormatFloat(f, 'f', prec, 64) }
