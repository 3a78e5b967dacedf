// Package exporter writes summary tables for downstream tools.
//
// BuildTables lays out a domain.Report as header-plus-rows tables with a
// fixed column order. TableWriter writes them as CSV files, plus an
// optional report.xlsx workbook (one sheet per table) and run_summary.json,
// into a staging directory and moves them into place only when every file
// was written. Floats are rounded to 2 decimals at this point and nowhere
// earlier.
//
// Example usage:
//
//	writer := exporter.NewTableWriter(logger)
//	names, err := writer.WriteReport(ctx, "data/reports", report, exporter.WriteOptions{Excel: true})
//
//	headers, records, err := exporter.ReadTable("data/reports/rides_by_weekday.csv")
package exporter
