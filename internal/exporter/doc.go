// Package exporter writes market snapshot reports to disk.
//
// Each report produces two files in the output directory:
//
//	<name>_snapshot.json      the full MarketSnapshot with vehicle and source
//	<name>_distribution.csv   band,lower,upper,count,percentage,method
//
// CSV files start with a UTF-8 BOM so Excel opens them with the right
// encoding. A batch run can also write a summary CSV with one row per report.
//
// Example usage:
//
//	exp := exporter.NewSnapshotExporter("reports", logger)
//	report := exporter.NewReport(path, vehicle, snapshot, skipped, time.Now())
//	files, err := exp.Export(report)
package exporter
