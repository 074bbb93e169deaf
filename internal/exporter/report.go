package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carpulse/internal/pricing"
	"carpulse/pkg/contracts"
)

// DistributionHeaders is the column layout of <name>_distribution.csv
var DistributionHeaders = []string{"band", "lower", "upper", "count", "percentage", "method"}

// Report is one snapshot computed from one comparables file
type Report struct {
	Name          string                    `json:"name"`
	Source        string                    `json:"source"`
	FormatVersion string                    `json:"format_version"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Vehicle       pricing.VehicleDescriptor `json:"vehicle"`
	Snapshot      pricing.MarketSnapshot    `json:"snapshot"`
	Fallback      bool                      `json:"fallback"`
	SkippedRows   int                       `json:"skipped_rows"`
}

// NewReport builds a report named after its source file
func NewReport(source string, vehicle pricing.VehicleDescriptor, snapshot pricing.MarketSnapshot, skippedRows int, now time.Time) Report {
	return Report{
		Name:          ReportName(source),
		Source:        source,
		FormatVersion: contracts.ReportFormatVersion,
		GeneratedAt:   now.UTC(),
		Vehicle:       vehicle,
		Snapshot:      snapshot,
		Fallback:      snapshot.IsFallback(),
		SkippedRows:   skippedRows,
	}
}

// ReportName derives a file-system friendly report name from a path
func ReportName(source string) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "report"
	}
	return name
}

// ReportFiles lists the files written for one report
type ReportFiles struct {
	Snapshot     string
	Distribution string
}

// SnapshotExporter writes snapshot reports into an output directory
type SnapshotExporter struct {
	outDir    string
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewSnapshotExporter creates an exporter writing below outDir
func NewSnapshotExporter(outDir string, logger *slog.Logger) *SnapshotExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotExporter{
		outDir:    outDir,
		csvWriter: NewCSVWriter(outDir, logger),
		logger:    logger.With(slog.String("component", "exporter")),
	}
}

// Export writes <name>_snapshot.json and <name>_distribution.csv
func (e *SnapshotExporter) Export(report Report) (ReportFiles, error) {
	files := ReportFiles{
		Snapshot:     filepath.Join(e.outDir, report.Name+"_snapshot.json"),
		Distribution: filepath.Join(e.outDir, report.Name+"_distribution.csv"),
	}

	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return files, fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return files, fmt.Errorf("failed to encode snapshot %s: %w", report.Name, err)
	}
	if err := os.WriteFile(files.Snapshot, append(data, '\n'), 0644); err != nil {
		return files, fmt.Errorf("failed to write snapshot %s: %w", report.Name, err)
	}

	if err := e.csvWriter.WriteSimpleCSV(files.Distribution, DistributionHeaders, DistributionRecords(report.Snapshot.PriceDistribution)); err != nil {
		return files, fmt.Errorf("failed to write distribution %s: %w", report.Name, err)
	}

	e.logger.Info("report exported",
		slog.String("name", report.Name),
		slog.Int("sample_size", report.Snapshot.SampleSize),
		slog.String("method", report.Snapshot.PriceDistribution.Method.String()),
		slog.Bool("fallback", report.Fallback))

	return files, nil
}

// DistributionRecords renders the buckets in band order
func DistributionRecords(dist pricing.PriceDistribution) [][]string {
	records := make([][]string, 0, len(dist.Buckets))
	for _, b := range dist.Buckets {
		records = append(records, []string{
			b.Band.String(),
			formatFloat(b.Lower),
			formatFloat(b.Upper),
			formatInt(b.Count),
			formatInt(b.Percentage),
			b.Method.String(),
		})
	}
	return records
}
