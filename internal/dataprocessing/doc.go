// Package dataprocessing loads the cleaned bike-share dataset and computes
// the dashboard summaries from it.
//
// A Table is immutable once loaded and is shared read-only between
// requests. Filter returns a new Table; every aggregator is a pure function
// of its input table, so concurrent callers need no locking.
//
// # Loading
//
//	table, err := dataprocessing.LoadFile(ctx, "data/hour.csv", dataprocessing.LoadOptions{})
//
// CSV and XLSX sources are accepted. The header must carry dteday, casual,
// registered, cnt, season and weekday; hr and temp are optional and recorded
// in the table Schema. Rows whose total is not casual + registered are
// rejected with ErrInconsistentCounts.
//
// # Aggregation
//
// Monthly, Seasonal, Weekday, Daily and Totals work on any table. Hourly
// and Scatter need the hr and temp columns and return a *MissingColumnError
// otherwise.
package dataprocessing
