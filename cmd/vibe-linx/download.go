package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-linx/internal/ensembl"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// gencodeGTFURL returns the comprehensive gene annotation URL for the assembly.
func gencodeGTFURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	}
	return fmt.Sprintf("%s/gencode.%s.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE annotation files",
		Long: `Download the GENCODE GTF and the Genome Nexus canonical transcript
overrides used to annotate SV breakends. Files already present are kept.`,
		Example: `  vibe-linx download
  vibe-linx download --assembly GRCh37
  vibe-linx download --output /data/gencode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(assembly, outputDir)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.vibe-linx/<assembly>)")
	return cmd
}

func runDownload(assembly, outputDir string) error {
	switch strings.ToUpper(assembly) {
	case "GRCH37", "GRCH38":
	default:
		return fmt.Errorf("%w: unsupported assembly %q", errUsage, assembly)
	}

	destDir := outputDir
	if destDir == "" {
		if destDir = defaultDataDir(assembly); destDir == "" {
			return fmt.Errorf("cannot determine home directory")
		}
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", destDir, err)
	}

	logger.Info("downloading GENCODE annotation",
		zap.String("version", gencodeVersion),
		zap.String("assembly", assembly),
		zap.String("dest", destDir))

	gtfURL := gencodeGTFURL(assembly)
	if err := downloadFile(gtfURL, filepath.Join(destDir, filepath.Base(gtfURL))); err != nil {
		return fmt.Errorf("download GTF: %w", err)
	}

	// The run still works without overrides.
	canonicalFile := filepath.Join(destDir, ensembl.CanonicalFileName())
	if err := downloadFile(ensembl.CanonicalFileURL(assembly), canonicalFile); err != nil {
		logger.Warn("could not download canonical transcript overrides", zap.Error(err))
	}

	fmt.Printf("\nDownload complete. To analyse samples, run:\n")
	fmt.Printf("  vibe-linx run --assembly %s sample.json\n", assembly)
	return nil
}

// downloadFile fetches url into destPath through a temporary file, skipping
// files that already exist.
func downloadFile(url, destPath string) error {
	name := filepath.Base(destPath)
	if info, err := os.Stat(destPath); err == nil {
		logger.Info("already downloaded", zap.String("file", name), zap.String("size", formatSize(info.Size())))
		return nil
	}

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{name: name, total: resp.ContentLength, lastPrint: time.Now()}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	logger.Info("downloaded", zap.String("file", name), zap.String("size", formatSize(pw.downloaded)))
	return nil
}

// progressWriter logs download progress at most every ten seconds.
type progressWriter struct {
	name       string
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += int64(len(p))
	if time.Since(pw.lastPrint) < 10*time.Second {
		return len(p), nil
	}
	pw.lastPrint = time.Now()

	fields := []zap.Field{zap.String("file", pw.name), zap.String("done", formatSize(pw.downloaded))}
	if pw.total > 0 {
		fields = append(fields, zap.String("pct", fmt.Sprintf("%.1f", float64(pw.downloaded)/float64(pw.total)*100)))
	}
	logger.Info("download progress", fields...)
	return len(p), nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// findGENCODEFiles looks for a downloaded GTF and canonical override file in
// dir. The canonical path is empty when no override file was downloaded.
func findGENCODEFiles(dir, assembly string) (gtfPath, canonicalPath string, found bool) {
	if dir == "" {
		return "", "", false
	}

	pattern := "gencode.v*.annotation.gtf.gz"
	if strings.EqualFold(assembly, "GRCh37") {
		pattern = "gencode.v*lift37.annotation.gtf.gz"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", "", false
	}
	gtfPath = matches[len(matches)-1]

	if p := filepath.Join(dir, ensembl.CanonicalFileName()); fileExists(p) {
		canonicalPath = p
	}
	return gtfPath, canonicalPath, true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
