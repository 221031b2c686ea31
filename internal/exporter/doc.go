// Package exporter writes dashboard summaries as downloadable files.
//
// Every summary in pkg/contracts/domain implements domain.Tabular, so the
// writers here never look at row types:
//
//	// Stream a CSV with a UTF-8 BOM for Excel
//	err := exporter.WriteCSV(w, summary, exporter.WriteOptions{BOMPrefix: true})
//
//	// Or a workbook with one sheet per summary
//	err = exporter.WriteXLSX(w, exporter.Sheet{Name: "monthly", Table: summary})
//
// FileWriter places exports under a reports directory and is used by the
// bikereport command.
package exporter
