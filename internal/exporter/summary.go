package exporter

import (
	"fmt"
	"sort"
)

// SummaryHeaders is the column layout of the batch summary file
var SummaryHeaders = []string{
	"name", "source", "sample_size", "discarded", "average_price", "price_min", "price_max",
	"q1", "median", "q3", "mode", "std_dev", "coefficient_of_variation",
	"demand", "competition", "intensity", "method", "fallback",
}

// SummaryExporter writes one line per report into a single CSV
type SummaryExporter struct {
	csvWriter *CSVWriter
}

// NewSummaryExporter creates a summary exporter sharing the writer of e
func (e *SnapshotExporter) NewSummaryExporter() *SummaryExporter {
	return &SummaryExporter{csvWriter: e.csvWriter}
}

// Export writes the reports sorted by name
func (s *SummaryExporter) Export(filePath string, reports []Report) error {
	sorted := make([]Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	stream, err := s.csvWriter.CreateStreamWriter(filePath, SummaryHeaders)
	if err != nil {
		return err
	}
	for _, r := range sorted {
		if err := stream.WriteRecord(summaryRecord(r)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write summary for %s: %w", r.Name, err)
		}
	}
	return stream.Close()
}

func summaryRecord(r Report) []string {
	snap := r.Snapshot
	var q1, q2, q3 *float64
	if snap.Quartiles != nil {
		q1, q2, q3 = &snap.Quartiles.Q1, &snap.Quartiles.Q2, &snap.Quartiles.Q3
	}
	fallback := "false"
	if r.Fallback {
		fallback = "true"
	}
	return []string{
		r.Name,
		r.Source,
		formatInt(snap.SampleSize),
		formatInt(snap.DiscardedCount),
		formatPrice(snap.AveragePrice),
		formatPrice(snap.PriceMin),
		formatPrice(snap.PriceMax),
		formatOptional(q1),
		formatOptional(q2),
		formatOptional(q3),
		formatOptional(snap.Mode),
		formatFloat(snap.StdDev),
		formatFloat(snap.CoefficientOfVariation),
		snap.DemandLevel.String(),
		snap.CompetitionLevel.String(),
		snap.CompetitionIntensity.String(),
		snap.PriceDistribution.Method.String(),
		fallback,
	}
}
